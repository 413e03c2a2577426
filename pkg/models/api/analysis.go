package api

import "time"

type Analysis struct {
	ID                    string     `json:"id"`
	FileName              string     `json:"file_name"`
	FileType              string     `json:"file_type"`
	FileSize              int64      `json:"file_size"`
	FileURL               string     `json:"file_url,omitempty"`
	Status                string     `json:"status"`
	OverallScore          *float64   `json:"overall_score"`
	RiskLevel             *string    `json:"risk_level"`
	ErrorMessage          *string    `json:"error_message,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at"`
}

type Insight struct {
	Category   string  `json:"category"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type Recommendation struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

type Highlight struct {
	Page     int    `json:"page"`
	Text     string `json:"text"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

type ExtractedField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type Question struct {
	Text            string `json:"text"`
	Priority        string `json:"priority"`
	Category        string `json:"category"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

type AnalysisResult struct {
	ID                string           `json:"id"`
	AnalysisID        string           `json:"analysis_id"`
	RelevanceScore    float64          `json:"relevance_score"`
	CompletenessScore float64          `json:"completeness_score"`
	RiskScore         float64          `json:"risk_score"`
	ClarityScore      float64          `json:"clarity_score"`
	AccuracyScore     float64          `json:"accuracy_score"`
	Insights          []Insight        `json:"insights"`
	Recommendations   []Recommendation `json:"recommendations"`
	Highlights        []Highlight      `json:"highlights"`
	ExtractedFields   []ExtractedField `json:"extracted_fields"`
	Questions         []Question       `json:"questions"`
	CreatedAt         time.Time        `json:"created_at"`
}

type AnalysisWithResults struct {
	Analysis Analysis        `json:"analysis"`
	Result   *AnalysisResult `json:"result"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type AnalysisListResponse struct {
	Analyses   []Analysis `json:"analyses"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

type CreateAnalysisInput struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	FileURL  string `json:"file_url"`
}

type UpdateAnalysisInput struct {
	Status       *string  `json:"status,omitempty"`
	RiskLevel    *string  `json:"risk_level,omitempty"`
	OverallScore *float64 `json:"overall_score,omitempty"`
	ErrorMessage *string  `json:"error_message,omitempty"`
}

// ResetAnalysisInput is the PUT body used to trigger a reanalysis.
type ResetAnalysisInput struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
