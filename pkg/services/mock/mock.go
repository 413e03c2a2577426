// Package mock builds the fixed demo analysis shown when a caller asks for
// mock data or opens the reserved "demo" id.
package mock

import (
	"strings"
	"time"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/scoring"
)

const DemoID = "demo"

// IsRequested reports whether the mock dataset should replace live data.
func IsRequested(id, param string) bool {
	p := strings.ToLower(strings.TrimSpace(param))
	return p == "1" || p == "true" || id == DemoID
}

var (
	createdAt   = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	startedAt   = createdAt.Add(5 * time.Second)
	completedAt = createdAt.Add(47 * time.Second)
)

// New returns the demo analysis for id. Every call returns equal values.
func New(id string) domain.AnalysisWithResult {
	result := newResult(id)
	score := float64(scoring.WeightedScore(*result))
	started, completed := startedAt, completedAt

	return domain.AnalysisWithResult{
		Analysis: domain.Analysis{
			ID:                    id,
			FileName:              "Vendor_Services_Agreement_2024.pdf",
			FileType:              domain.FileTypePDF,
			FileSize:              2_457_600,
			FileURL:               "https://example.com/demo/Vendor_Services_Agreement_2024.pdf",
			Status:                domain.StatusCompleted,
			OverallScore:          &score,
			RiskLevel:             domain.RiskMedium,
			CreatedAt:             createdAt,
			UpdatedAt:             completedAt,
			ProcessingStartedAt:   &started,
			ProcessingCompletedAt: &completed,
		},
		Result: result,
	}
}

func newResult(id string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:                "mock-result-" + id,
		AnalysisID:        id,
		RelevanceScore:    88,
		CompletenessScore: 74,
		RiskScore:         42,
		ClarityScore:      81,
		AccuracyScore:     79,
		Insights: []domain.Insight{
			{Category: domain.InsightRisk, Text: "Limitation of liability excludes data breach damages, leaving the client exposed to uncapped third-party claims.", Confidence: 0.92},
			{Category: domain.InsightRisk, Text: "Auto-renewal clause requires 90 days notice, which is longer than the client's procurement cycle.", Confidence: 0.81},
			{Category: domain.InsightStrength, Text: "Service levels are defined with measurable uptime targets and service credits.", Confidence: 0.88},
			{Category: domain.InsightWeakness, Text: "Termination for convenience is available to the vendor only.", Confidence: 0.76},
			{Category: domain.InsightOpportunity, Text: "Volume discount tiers could be renegotiated given projected usage growth.", Confidence: 0.69},
		},
		Recommendations: []domain.Recommendation{
			{Priority: domain.PriorityHigh, Category: "Liability", Text: "Negotiate a mutual liability cap that explicitly covers data protection breaches."},
			{Priority: domain.PriorityHigh, Category: "Termination", Text: "Add a mutual termination for convenience right with 30 days notice."},
			{Priority: domain.PriorityMedium, Category: "Renewal", Text: "Reduce the non-renewal notice period to 30 days."},
			{Priority: domain.PriorityLow, Category: "Pricing", Text: "Request an annual price review tied to a published index."},
		},
		Highlights: []domain.Highlight{
			{Page: 4, Text: "In no event shall Vendor be liable for any loss of data or security incident.", Reason: "Shifts breach risk entirely to the client.", Category: domain.HighlightRisky},
			{Page: 7, Text: "This Agreement renews automatically for successive twelve (12) month terms.", Reason: "Renewal happens without an explicit decision.", Category: domain.HighlightImportant},
			{Page: 9, Text: "Fees may be adjusted from time to time upon notice.", Reason: "No limit or notice period for price changes.", Category: domain.HighlightUnclear},
		},
		ExtractedFields: []domain.ExtractedField{
			{Name: "Contract Value", Value: "$480,000", Confidence: 96},
			{Name: "Effective Date", Value: "2024-02-01", Confidence: 98},
			{Name: "Initial Term", Value: "36 months", Confidence: 93},
			{Name: "Governing Law", Value: "State of New York", Confidence: 90},
			{Name: "Non-renewal Notice Period", Value: "90 days", Confidence: 87},
		},
		Questions: []domain.Question{
			{Text: "Does the client's cyber insurance cover losses excluded by the vendor?", Priority: domain.QuestionCritical, Category: "Liability", SuggestedAction: "Confirm coverage with the insurance broker before signing."},
			{Text: "Who owns derivative work product created during onboarding?", Priority: domain.QuestionImportant, Category: "Intellectual Property", SuggestedAction: "Ask the vendor to add an IP assignment clause."},
			{Text: "Are sub-processors located outside the EU?", Priority: domain.QuestionOptional, Category: "Data Protection"},
		},
		CreatedAt: completedAt,
	}
}
