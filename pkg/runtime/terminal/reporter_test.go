package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/riskread/pkg/models/domain"
)

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.Report{
		Title:    "contract.pdf",
		Subtitle: "PDF | 2 KB",
		Badges:   []string{"Completed", "Cached"},
		Sections: []domain.ReportSection{{
			Title:   "Document Summary",
			Summary: map[string]interface{}{"Status": "Completed", "Risk Level": "Low"},
			Details: []domain.ReportDetail{{Name: "Relevance (25%)", Value: 88, Unit: "/100", Description: "Excellent"}},
		}},
	}

	require.NoError(t, NewReporter(&buf).Handle(report))
	out := buf.String()
	assert.Contains(t, out, "contract.pdf [Completed, Cached]\nPDF | 2 KB")
	// Summary keys are printed in sorted order.
	assert.Contains(t, out, "Risk Level: Low\nStatus: Completed")
	assert.Contains(t, out, "- Relevance (25%): 88 /100\n  Excellent")
}
