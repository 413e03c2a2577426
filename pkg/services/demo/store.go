// Package demo is the in-memory analysis backend served by cmd/web. New
// analyses move from pending to processing to completed as time passes and
// complete with the mock dataset.
package demo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/scoring"
	"github.com/de-tools/riskread/pkg/services/mock"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

type Config struct {
	// PendingFor is how long a new or reset analysis waits before processing.
	PendingFor time.Duration
	// ProcessingFor is how long processing takes before the result appears.
	ProcessingFor time.Duration
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

type record struct {
	analysis domain.Analysis
	result   *domain.AnalysisResult
	// settled analyses ignore the schedule until they are reset
	settled bool
}

type Store struct {
	mu      sync.Mutex
	config  Config
	records map[string]*record
}

func NewStore(config Config) *Store {
	if config.PendingFor <= 0 {
		config.PendingFor = 3 * time.Second
	}
	if config.ProcessingFor <= 0 {
		config.ProcessingFor = 10 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Store{
		config:  config,
		records: make(map[string]*record),
	}
}

// Seed adds a settled analysis as is, for example demo fixtures.
func (s *Store) Seed(data domain.AnalysisWithResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[data.Analysis.ID] = &record{analysis: data.Analysis, result: data.Result, settled: true}
}

func (s *Store) List(ctx context.Context, query domain.ListQuery) (domain.ListPage, error) {
	if err := query.Validate(); err != nil {
		return domain.ListPage{}, domain.NewError(domain.KindValidation, "Invalid list query", err)
	}

	s.mu.Lock()
	all := make([]domain.Analysis, 0, len(s.records))
	for _, rec := range s.records {
		s.advance(ctx, rec)
		if query.Status != "" && rec.analysis.Status != query.Status {
			continue
		}
		if query.RiskLevel != "" && rec.analysis.RiskLevel != query.RiskLevel {
			continue
		}
		all = append(all, rec.analysis)
	}
	s.mu.Unlock()

	sortAnalyses(all, query.SortBy, query.SortOrder)

	page, limit := query.Page, query.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	res := domain.ListPage{
		Analyses:   []domain.Analysis{},
		Total:      len(all),
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(len(all)) / float64(limit))),
	}
	// compare pages before multiplying so huge page numbers cannot overflow
	if page <= res.TotalPages {
		start := (page - 1) * limit
		end := min(start+limit, len(all))
		res.Analyses = all[start:end]
	}
	return res, nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.AnalysisWithResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(ctx, id)
	if err != nil {
		return domain.AnalysisWithResult{}, err
	}
	return domain.AnalysisWithResult{Analysis: rec.analysis, Result: rec.result}, nil
}

func (s *Store) Status(ctx context.Context, id string) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.analysis.Status, nil
}

func (s *Store) Create(ctx context.Context, input domain.CreateAnalysisInput) (domain.Analysis, error) {
	if strings.TrimSpace(input.FileName) == "" {
		return domain.Analysis{}, domain.NewError(domain.KindValidation, "file_name is required", nil)
	}
	if input.FileSize < 0 {
		return domain.Analysis{}, domain.NewError(domain.KindValidation, "file_size must not be negative", nil)
	}

	now := s.config.Now()
	analysis := domain.Analysis{
		ID:        uuid.NewString(),
		FileName:  input.FileName,
		FileType:  input.FileType,
		FileSize:  input.FileSize,
		FileURL:   input.FileURL,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.records[analysis.ID] = &record{analysis: analysis}
	s.mu.Unlock()

	zerolog.Ctx(ctx).Info().Str("analysis_id", analysis.ID).Str("file", analysis.FileName).Msg("analysis queued")
	return analysis, nil
}

// Update applies a partial update. Any explicit change settles the analysis so
// the schedule no longer overrides it.
func (s *Store) Update(ctx context.Context, id string, patch domain.AnalysisPatch) (domain.Analysis, error) {
	if err := patch.Validate(); err != nil {
		return domain.Analysis{}, domain.NewError(domain.KindValidation, "Invalid update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Analysis{}, err
	}

	if patch.Status != nil {
		rec.analysis.Status = *patch.Status
	}
	if patch.RiskLevel != nil {
		rec.analysis.RiskLevel = *patch.RiskLevel
	}
	if patch.OverallScore != nil {
		score := *patch.OverallScore
		rec.analysis.OverallScore = &score
	}
	if patch.ErrorMessage != nil {
		rec.analysis.ErrorMessage = *patch.ErrorMessage
	}
	rec.analysis.UpdatedAt = s.config.Now()
	rec.settled = true

	return rec.analysis, nil
}

// Reset puts the analysis back to pending and restarts the schedule.
func (s *Store) Reset(ctx context.Context, id string) (domain.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Analysis{}, err
	}

	now := s.config.Now()
	rec.analysis.Status = domain.StatusPending
	rec.analysis.OverallScore = nil
	rec.analysis.RiskLevel = ""
	rec.analysis.ErrorMessage = ""
	rec.analysis.ProcessingStartedAt = nil
	rec.analysis.ProcessingCompletedAt = nil
	rec.analysis.UpdatedAt = now
	rec.result = nil
	rec.settled = false

	zerolog.Ctx(ctx).Info().Str("analysis_id", id).Msg("analysis reset")
	return rec.analysis, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	zerolog.Ctx(ctx).Info().Str("analysis_id", id).Msg("analysis deleted")
	return nil
}

func (s *Store) lookup(ctx context.Context, id string) (*record, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	s.advance(ctx, rec)
	return rec, nil
}

// advance moves rec along the schedule measured from its last update. The
// caller holds s.mu.
func (s *Store) advance(ctx context.Context, rec *record) {
	if rec.settled {
		return
	}
	now := s.config.Now()
	queued := rec.analysis.UpdatedAt
	if rec.analysis.ProcessingStartedAt != nil {
		queued = rec.analysis.ProcessingStartedAt.Add(-s.config.PendingFor)
	}
	startAt := queued.Add(s.config.PendingFor)
	doneAt := startAt.Add(s.config.ProcessingFor)

	if rec.analysis.Status == domain.StatusPending && !now.Before(startAt) {
		rec.analysis.Status = domain.StatusProcessing
		rec.analysis.ProcessingStartedAt = &startAt
		rec.analysis.UpdatedAt = startAt
	}
	if rec.analysis.Status == domain.StatusProcessing && !now.Before(doneAt) {
		s.complete(rec, doneAt)
		zerolog.Ctx(ctx).Debug().Str("analysis_id", rec.analysis.ID).Msg("analysis completed")
	}
}

func (s *Store) complete(rec *record, at time.Time) {
	data := mock.New(rec.analysis.ID)
	result := data.Result
	result.CreatedAt = at

	score := float64(scoring.WeightedScore(*result))
	rec.analysis.Status = domain.StatusCompleted
	rec.analysis.OverallScore = &score
	rec.analysis.RiskLevel = scoring.RiskLevelFor(score)
	rec.analysis.ProcessingCompletedAt = &at
	rec.analysis.UpdatedAt = at
	rec.result = result
	rec.settled = true
}

func notFound(id string) error {
	return domain.NewError(domain.KindNotFound, "Analysis not found",
		fmt.Errorf("%w: %s", domain.ErrNotFound, id))
}

func sortAnalyses(list []domain.Analysis, by string, order domain.SortOrder) {
	desc := order != domain.SortAsc
	less := func(i, j int) bool {
		a, b := list[i], list[j]
		switch by {
		case domain.SortByOverallScore:
			return scoreOf(a) < scoreOf(b)
		case domain.SortByFileName:
			return strings.ToLower(a.FileName) < strings.ToLower(b.FileName)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}

func scoreOf(a domain.Analysis) float64 {
	if a.OverallScore == nil {
		return -1
	}
	return *a.OverallScore
}
