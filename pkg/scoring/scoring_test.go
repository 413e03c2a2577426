package scoring

import (
	"testing"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(v float64) domain.AnalysisResult {
	return domain.AnalysisResult{
		RelevanceScore:    v,
		CompletenessScore: v,
		RiskScore:         v,
		ClarityScore:      v,
		AccuracyScore:     v,
	}
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	require.NoError(t, DefaultWeights.Validate())
	assert.Equal(t, 100, DefaultWeights.Total())
	assert.Equal(t, 1.0, DefaultWeights.Sum())
	assert.NotEmpty(t, DefaultWeights.Version)
}

func TestWeights_ValidateRejectsDrift(t *testing.T) {
	w := DefaultWeights
	w.Clarity = 20
	assert.Error(t, w.Validate())

	w = DefaultWeights
	w.Risk = -5
	w.Accuracy = 45
	assert.Error(t, w.Validate())
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name   string
		result domain.AnalysisResult
		want   int
	}{
		{name: "uniform 80", result: uniform(80), want: 80},
		{name: "zero", result: uniform(0), want: 0},
		{name: "perfect", result: uniform(100), want: 100},
		{
			name: "mixed",
			result: domain.AnalysisResult{
				RelevanceScore:    90, // 22.5
				CompletenessScore: 70, // 14
				RiskScore:         40, // 10
				ClarityScore:      85, // 12.75
				AccuracyScore:     60, // 9
			},
			want: 68, // 68.25
		},
		{
			name: "rounds half up",
			result: domain.AnalysisResult{
				RelevanceScore: 2, // 0.5
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightedScore(tt.result))
		})
	}
}

func TestLabelAndTone(t *testing.T) {
	tests := []struct {
		score float64
		label string
		tone  Tone
	}{
		{100, "Excellent", ToneGreen},
		{80, "Excellent", ToneGreen},
		{79.9, "Good", ToneYellow},
		{60, "Good", ToneYellow},
		{59, "Fair", ToneRed},
		{40, "Fair", ToneRed},
		{39, "Needs Improvement", ToneRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, Label(tt.score), "label for %v", tt.score)
		assert.Equal(t, tt.tone, ToneOf(tt.score), "tone for %v", tt.score)
	}
}

func TestTrendOf(t *testing.T) {
	assert.Equal(t, TrendUp, TrendOf(Relevance, 75))
	assert.Equal(t, TrendNeutral, TrendOf(Clarity, 50))
	assert.Equal(t, TrendDown, TrendOf(Accuracy, 49))

	assert.Equal(t, TrendUp, TrendOf(Risk, 25))
	assert.Equal(t, TrendNeutral, TrendOf(Risk, 50))
	assert.Equal(t, TrendDown, TrendOf(Risk, 51))
}

func TestSummarize(t *testing.T) {
	s := Summarize(domain.AnalysisResult{
		RelevanceScore:    90,
		CompletenessScore: 70,
		RiskScore:         40,
		ClarityScore:      85,
		AccuracyScore:     60,
	})
	assert.Equal(t, 69, s.Average)
	assert.Equal(t, 90.0, s.Highest)
	assert.Equal(t, 40.0, s.Lowest)
}

func TestRiskLevelFor(t *testing.T) {
	assert.Equal(t, domain.RiskLow, RiskLevelFor(90))
	assert.Equal(t, domain.RiskLow, RiskLevelFor(75))
	assert.Equal(t, domain.RiskMedium, RiskLevelFor(71))
	assert.Equal(t, domain.RiskMedium, RiskLevelFor(50))
	assert.Equal(t, domain.RiskHigh, RiskLevelFor(49.9))
}
