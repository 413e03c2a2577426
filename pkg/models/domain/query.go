package domain

import "fmt"

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	SortByCreatedAt    = "created_at"
	SortByOverallScore = "overall_score"
	SortByFileName     = "file_name"
)

type ListQuery struct {
	Page      int
	Limit     int
	Status    Status
	RiskLevel RiskLevel
	SortBy    string // created_at, overall_score, file_name
	SortOrder SortOrder
}

func (q ListQuery) Validate() error {
	if q.Page < 0 || q.Limit < 0 {
		return fmt.Errorf("page and limit must not be negative")
	}
	if q.Status != "" && !q.Status.Valid() {
		return fmt.Errorf("invalid status %q", q.Status)
	}
	if q.RiskLevel != "" && !q.RiskLevel.Valid() {
		return fmt.Errorf("invalid risk level %q", q.RiskLevel)
	}
	switch q.SortBy {
	case "", SortByCreatedAt, SortByOverallScore, SortByFileName:
	default:
		return fmt.Errorf("invalid sort field %q", q.SortBy)
	}
	if q.SortOrder != "" && q.SortOrder != SortAsc && q.SortOrder != SortDesc {
		return fmt.Errorf("invalid sort order %q", q.SortOrder)
	}
	return nil
}

type ListPage struct {
	Analyses   []Analysis
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

type RiskLevelCounts struct {
	Low    int
	Medium int
	High   int
}

type Stats struct {
	Total      int
	Completed  int
	Failed     int
	Processing int
	Pending    int
	AvgScore   float64
	RiskLevels RiskLevelCounts
}
