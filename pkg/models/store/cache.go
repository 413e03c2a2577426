package store

import "time"

// CacheRecord is one row of the analysis_cache table. Analysis and Result hold
// the api JSON encoding so cached rows survive domain model refactors.
type CacheRecord struct {
	ID         string
	Status     string
	Analysis   []byte
	Result     []byte // NULL when the analysis has no result
	CachedAt   time.Time
	AccessedAt time.Time
}
