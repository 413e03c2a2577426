package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/scoring"
)

func TestIsRequested(t *testing.T) {
	tests := []struct {
		id, param string
		want      bool
	}{
		{"abc", "1", true},
		{"abc", "true", true},
		{"abc", "TRUE", true},
		{"demo", "", true},
		{"abc", "", false},
		{"abc", "0", false},
		{"abc", "yes", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRequested(tt.id, tt.param), "id=%s param=%s", tt.id, tt.param)
	}
}

func TestNew_Deterministic(t *testing.T) {
	a := New("abc")
	b := New("abc")
	assert.Equal(t, a, b)

	assert.Equal(t, "abc", a.Analysis.ID)
	assert.Equal(t, domain.StatusCompleted, a.Analysis.Status)
	assert.Equal(t, domain.RiskMedium, a.Analysis.RiskLevel)
	require.NotNil(t, a.Result)
	assert.Equal(t, "abc", a.Result.AnalysisID)
}

func TestNew_ScoreMatchesWeighting(t *testing.T) {
	a := New(DemoID)
	require.NotNil(t, a.Analysis.OverallScore)
	assert.Equal(t, float64(scoring.WeightedScore(*a.Result)), *a.Analysis.OverallScore)
}
