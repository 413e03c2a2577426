package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/de-tools/riskread/pkg/models/api"
	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/models/store"
)

func MapCachedAnalysisDomainToStore(c domain.CachedAnalysis) (store.CacheRecord, error) {
	analysis, err := json.Marshal(MapAnalysisDomainToApi(c.Analysis))
	if err != nil {
		return store.CacheRecord{}, fmt.Errorf("failed to encode analysis %s: %w", c.Analysis.ID, err)
	}

	rec := store.CacheRecord{
		ID:         c.Analysis.ID,
		Status:     string(c.Analysis.Status),
		Analysis:   analysis,
		CachedAt:   c.CachedAt,
		AccessedAt: c.AccessedAt,
	}
	if c.Result != nil {
		rec.Result, err = json.Marshal(MapResultDomainToApi(c.Result))
		if err != nil {
			return store.CacheRecord{}, fmt.Errorf("failed to encode result of %s: %w", c.Analysis.ID, err)
		}
	}
	return rec, nil
}

func MapCacheRecordStoreToDomain(rec store.CacheRecord) (domain.CachedAnalysis, error) {
	var analysis api.Analysis
	if err := json.Unmarshal(rec.Analysis, &analysis); err != nil {
		return domain.CachedAnalysis{}, fmt.Errorf("failed to decode cached analysis %s: %w", rec.ID, err)
	}

	res := domain.CachedAnalysis{
		Analysis:   MapAnalysisApiToDomain(analysis),
		CachedAt:   rec.CachedAt,
		AccessedAt: rec.AccessedAt,
	}
	if len(rec.Result) > 0 {
		var result api.AnalysisResult
		if err := json.Unmarshal(rec.Result, &result); err != nil {
			return domain.CachedAnalysis{}, fmt.Errorf("failed to decode cached result %s: %w", rec.ID, err)
		}
		res.Result = MapResultApiToDomain(&result)
	}
	return res, nil
}
