package domain

import "time"

type InsightCategory string

const (
	InsightRisk        InsightCategory = "risk"
	InsightStrength    InsightCategory = "strength"
	InsightWeakness    InsightCategory = "weakness"
	InsightOpportunity InsightCategory = "opportunity"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type HighlightCategory string

const (
	HighlightRisky     HighlightCategory = "risky"
	HighlightImportant HighlightCategory = "important"
	HighlightUnclear   HighlightCategory = "unclear"
)

type QuestionPriority string

const (
	QuestionCritical  QuestionPriority = "critical"
	QuestionImportant QuestionPriority = "important"
	QuestionOptional  QuestionPriority = "optional"
)

type Insight struct {
	Category   InsightCategory
	Text       string
	Confidence float64 // 0-1
}

type Recommendation struct {
	Priority Priority
	Category string // compliance
	Text     string
}

type Highlight struct {
	Page     int
	Text     string
	Reason   string
	Category HighlightCategory
}

type ExtractedField struct {
	Name       string
	Value      string
	Confidence float64 // 0-100
}

type Question struct {
	Text            string
	Priority        QuestionPriority
	Category        string
	SuggestedAction string
}

// AnalysisResult is the structured output of a completed analysis. It is
// created once by the backend and never changes afterwards.
type AnalysisResult struct {
	ID                string
	AnalysisID        string
	RelevanceScore    float64
	CompletenessScore float64
	RiskScore         float64
	ClarityScore      float64
	AccuracyScore     float64
	Insights          []Insight
	Recommendations   []Recommendation
	Highlights        []Highlight
	ExtractedFields   []ExtractedField
	Questions         []Question
	CreatedAt         time.Time
}
