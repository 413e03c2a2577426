package analysis

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/notify"
	"github.com/de-tools/riskread/pkg/store/client"
)

const (
	MsgRestarted     = "Analysis restarted successfully!"
	MsgRestartFailed = "Failed to restart analysis"
)

// Cache is the part of the local cache the facade keeps in step with
// server-side changes.
type Cache interface {
	Put(ctx context.Context, analysis domain.Analysis, result *domain.AnalysisResult) error
	Remove(ctx context.Context, id string) error
}

type Service struct {
	api      client.API
	cache    Cache
	notifier notify.Notifier
}

func NewService(api client.API, cache Cache, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Service{api: api, cache: cache, notifier: notifier}
}

func (s *Service) List(ctx context.Context, query domain.ListQuery) (domain.ListPage, error) {
	return s.api.List(ctx, query)
}

func (s *Service) Get(ctx context.Context, id string) (domain.AnalysisWithResult, error) {
	return s.api.Get(ctx, id)
}

func (s *Service) Status(ctx context.Context, id string) (domain.Status, error) {
	return s.api.Status(ctx, id)
}

func (s *Service) Create(ctx context.Context, input domain.CreateAnalysisInput) (domain.Analysis, error) {
	return s.api.Create(ctx, input)
}

// Update patches the analysis. A terminal result replaces the cached copy,
// anything else evicts it.
func (s *Service) Update(ctx context.Context, id string, patch domain.AnalysisPatch) (domain.Analysis, error) {
	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		return domain.Analysis{}, err
	}

	if updated.Status.IsTerminal() {
		full, err := s.api.Get(ctx, id)
		if err == nil {
			s.put(ctx, full.Analysis, full.Result)
			return updated, nil
		}
		zerolog.Ctx(ctx).Warn().Err(err).Str("analysis_id", id).Msg("failed to refresh cached analysis")
	}
	s.drop(ctx, id)
	return updated, nil
}

// Reanalyze resets the analysis to pending so the backend runs it again.
func (s *Service) Reanalyze(ctx context.Context, id string) (domain.Analysis, error) {
	updated, err := s.api.Reset(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("analysis_id", id).Msg("error restarting analysis")
		notify.Error(s.notifier, MsgRestartFailed)
		return domain.Analysis{}, err
	}

	s.drop(ctx, id)
	notify.Success(s.notifier, MsgRestarted)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}
	s.drop(ctx, id)
	return nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if limit <= 0 {
		limit = 5
	}
	page, err := s.api.List(ctx, domain.ListQuery{
		Page:      1,
		Limit:     limit,
		SortBy:    "created_at",
		SortOrder: domain.SortDesc,
	})
	if err != nil {
		return nil, err
	}
	return page.Analyses, nil
}

func (s *Service) put(ctx context.Context, a domain.Analysis, r *domain.AnalysisResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, a, r); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("analysis_id", a.ID).Msg("failed to cache analysis")
	}
}

func (s *Service) drop(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remove(ctx, id); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("analysis_id", id).Msg("failed to drop cached analysis")
	}
}
