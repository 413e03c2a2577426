package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transitions are expected without an
// explicit reanalysis.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeXLSX FileType = "xlsx"
	FileTypeTXT  FileType = "txt"
)

type Analysis struct {
	ID                    string
	FileName              string   // quarterly-risk.pdf
	FileType              FileType // pdf
	FileSize              int64    // bytes
	FileURL               string
	Status                Status
	OverallScore          *float64 // 0-100, nil until scored
	RiskLevel             RiskLevel
	ErrorMessage          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ProcessingStartedAt   *time.Time
	ProcessingCompletedAt *time.Time
}

type AnalysisWithResult struct {
	Analysis Analysis
	Result   *AnalysisResult // nil until the analysis completes
}

type CreateAnalysisInput struct {
	FileName string
	FileType FileType
	FileSize int64
	FileURL  string
}

// AnalysisPatch carries the fields of a partial update. Nil fields are left
// untouched by the server.
type AnalysisPatch struct {
	Status       *Status
	RiskLevel    *RiskLevel
	OverallScore *float64
	ErrorMessage *string
}

func (p AnalysisPatch) Empty() bool {
	return p.Status == nil && p.RiskLevel == nil && p.OverallScore == nil && p.ErrorMessage == nil
}

func (p AnalysisPatch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("nothing to update")
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("invalid status %q", *p.Status)
	}
	if p.RiskLevel != nil && !p.RiskLevel.Valid() {
		return fmt.Errorf("invalid risk level %q", *p.RiskLevel)
	}
	if p.OverallScore != nil && (*p.OverallScore < 0 || *p.OverallScore > 100) {
		return fmt.Errorf("overall score %.2f out of range 0-100", *p.OverallScore)
	}
	return nil
}
