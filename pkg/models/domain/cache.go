package domain

import "time"

// CachedAnalysis is a client-local snapshot of a terminal analysis.
type CachedAnalysis struct {
	Analysis   Analysis
	Result     *AnalysisResult
	CachedAt   time.Time
	AccessedAt time.Time
}
