// Package display decides what a single analysis screen shows when three
// sources compete for it: the local cache, the polled server state and the
// demo dataset.
package display

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/mock"
)

type Cache interface {
	Get(ctx context.Context, id string) (domain.CachedAnalysis, bool, error)
	Put(ctx context.Context, analysis domain.Analysis, result *domain.AnalysisResult) error
}

// View is one consistent snapshot. Analysis is nil until something loaded.
type View struct {
	Analysis  *domain.Analysis
	Result    *domain.AnalysisResult
	FromCache bool
	Mock      bool
}

func (v View) Loaded() bool {
	return v.Analysis != nil
}

func (v View) Status() domain.Status {
	if v.Analysis == nil {
		return ""
	}
	return v.Analysis.Status
}

type Config struct {
	ID string
	// MockParam is the raw value of the mock request parameter ("1", "true").
	MockParam string
	ForceMock bool
	Cache     Cache
}

type Reconciler struct {
	mu sync.Mutex

	id    string
	cache Cache

	mockRequested bool
	hydrated      bool
	view          View

	persisted   string // fingerprint of the last snapshot written to the cache
	errNotified bool
}

func NewReconciler(cfg Config) *Reconciler {
	return &Reconciler{
		id:            cfg.ID,
		cache:         cfg.Cache,
		mockRequested: cfg.ForceMock || mock.IsRequested(cfg.ID, cfg.MockParam),
	}
}

func (r *Reconciler) ID() string {
	return r.id
}

func (r *Reconciler) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Hydrate sets the initial view from the demo dataset or the cache. Only the
// first call reads anything. A cache miss and a cache failure both leave the
// view empty so the caller goes to the network.
func (r *Reconciler) Hydrate(ctx context.Context) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hydrated {
		return r.view
	}
	r.hydrated = true

	if r.mockRequested {
		r.setMock()
		return r.view
	}

	r.loadCached(ctx)
	return r.view
}

func (r *Reconciler) NeedsPolling() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.needsPolling()
}

func (r *Reconciler) needsPolling() bool {
	if r.view.Mock {
		return false
	}
	return !r.view.FromCache || !r.view.Status().IsTerminal()
}

// ApplyDetail overwrites the view with the server projection and persists it
// once it is terminal.
func (r *Reconciler) ApplyDetail(ctx context.Context, data domain.AnalysisWithResult) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hydrated = true
	if r.view.Mock {
		return r.view
	}

	analysis := data.Analysis
	r.view.Analysis = &analysis
	r.view.Result = data.Result
	r.errNotified = false

	if analysis.Status.IsTerminal() {
		r.persist(ctx, analysis, data.Result)
		r.view.FromCache = true
	}
	return r.view
}

// ApplyStatus takes the lightweight status signal and reports whether the
// full record has to be fetched again.
func (r *Reconciler) ApplyStatus(status domain.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.view.Mock {
		return false
	}
	return status == domain.StatusCompleted && r.view.Status() != domain.StatusCompleted
}

// ApplyError reports whether a failed fetch should be shown to the user. It
// is true once per error streak and never while a cached copy is on screen.
func (r *Reconciler) ApplyError(err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil || r.view.Mock || r.view.FromCache || r.errNotified {
		return false
	}
	r.errNotified = true
	return true
}

func (r *Reconciler) UseMock() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hydrated = true
	r.setMock()
	return r.view
}

// UseLive leaves demo mode. It returns true when nothing cached could be
// shown and the caller has to fetch from the server.
func (r *Reconciler) UseLive(ctx context.Context) (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.id == mock.DemoID {
		return r.view, false
	}

	r.view = View{}
	r.errNotified = false
	if r.loadCached(ctx) {
		return r.view, false
	}
	return r.view, true
}

// Invalidate forgets that the current view is settled, e.g. after a
// reanalysis was requested, so polling resumes.
func (r *Reconciler) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.view.FromCache = false
	r.persisted = ""
}

func (r *Reconciler) setMock() {
	data := mock.New(r.id)
	r.view = View{
		Analysis:  &data.Analysis,
		Result:    data.Result,
		FromCache: true,
		Mock:      true,
	}
}

func (r *Reconciler) loadCached(ctx context.Context) bool {
	if r.cache == nil {
		return false
	}

	logger := zerolog.Ctx(ctx)
	entry, ok, err := r.cache.Get(ctx, r.id)
	if err != nil {
		logger.Warn().Err(err).Str("analysis_id", r.id).Msg("cache lookup failed, falling back to server")
		return false
	}
	if !ok {
		return false
	}

	analysis := entry.Analysis
	r.view = View{
		Analysis:  &analysis,
		Result:    entry.Result,
		FromCache: true,
	}
	r.persisted = fingerprint(analysis)
	logger.Debug().Str("analysis_id", r.id).Str("status", string(analysis.Status)).Msg("showing cached analysis")
	return true
}

func (r *Reconciler) persist(ctx context.Context, analysis domain.Analysis, result *domain.AnalysisResult) {
	fp := fingerprint(analysis)
	if r.cache == nil || fp == r.persisted {
		return
	}

	if err := r.cache.Put(ctx, analysis, result); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("analysis_id", analysis.ID).Msg("failed to cache analysis")
		return
	}
	r.persisted = fp
}

func fingerprint(a domain.Analysis) string {
	return fmt.Sprintf("%s|%s|%d", a.ID, a.Status, a.UpdatedAt.UnixNano())
}
