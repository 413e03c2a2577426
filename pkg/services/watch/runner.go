package watch

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/display"
	"github.com/de-tools/riskread/pkg/services/mock"
	"github.com/de-tools/riskread/pkg/services/notify"
)

const (
	MsgLoadFailed    = "Failed to load analysis"
	MsgShowingMock   = "Showing demo output"
	MsgShowingCached = "Showing cached output"
	MsgLoadingLive   = "Loading live output"
)

// Fetcher is the read side of the analysis API the runner polls.
type Fetcher interface {
	Get(ctx context.Context, id string) (domain.AnalysisWithResult, error)
	Status(ctx context.Context, id string) (domain.Status, error)
}

type RunnerConfig struct {
	PollInterval time.Duration
	// Follow keeps the runner alive after the analysis settles so it can still
	// react to refetch and mode switch requests.
	Follow bool
}

type Update struct {
	View    display.View
	Err     error // last detail fetch error, nil on success
	Polling bool
}

type command int

const (
	cmdRefetch command = iota
	cmdMock
	cmdLive
)

type Runner struct {
	reconciler *display.Reconciler
	api        Fetcher
	notifier   notify.Notifier
	config     RunnerConfig

	done     chan struct{}
	updates  chan Update
	commands chan command
}

func NewRunner(reconciler *display.Reconciler, api Fetcher, notifier notify.Notifier, config RunnerConfig) *Runner {
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Runner{
		reconciler: reconciler,
		api:        api,
		notifier:   notifier,
		config:     config,
		done:       make(chan struct{}),
		updates:    make(chan Update, 100),
		commands:   make(chan command, 8),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Updates is closed when Run returns.
func (r *Runner) Updates() <-chan Update {
	return r.updates
}

func (r *Runner) RequestRefetch() {
	r.send(cmdRefetch)
}

func (r *Runner) UseMock() {
	r.send(cmdMock)
}

func (r *Runner) UseLive() {
	r.send(cmdLive)
}

func (r *Runner) send(c command) {
	select {
	case r.commands <- c:
	default:
	}
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("analysis_id", r.reconciler.ID()).Logger()
	ctx = logger.WithContext(ctx)
	defer close(r.done)
	defer close(r.updates)

	view := r.reconciler.Hydrate(ctx)
	r.emit(ctx, Update{View: view, Polling: r.reconciler.NeedsPolling()})

	if r.reconciler.NeedsPolling() {
		r.poll(ctx)
	}

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		if !r.config.Follow && !r.reconciler.NeedsPolling() {
			logger.Debug().Msg("analysis settled, polling stopped")
			return
		}

		select {
		case <-ctx.Done():
			logger.Debug().Msg("watch cancelled")
			return
		case <-ticker.C:
			if r.reconciler.NeedsPolling() {
				r.poll(ctx)
			}
		case c := <-r.commands:
			r.handle(ctx, c)
		}
	}
}

func (r *Runner) handle(ctx context.Context, c command) {
	switch c {
	case cmdRefetch:
		r.poll(ctx)
	case cmdMock:
		view := r.reconciler.UseMock()
		notify.Info(r.notifier, MsgShowingMock)
		r.emit(ctx, Update{View: view})
	case cmdLive:
		if r.reconciler.ID() == mock.DemoID {
			return
		}
		view, refetch := r.reconciler.UseLive(ctx)
		if !refetch {
			notify.Info(r.notifier, MsgShowingCached)
			r.emit(ctx, Update{View: view})
			return
		}
		notify.Info(r.notifier, MsgLoadingLive)
		r.emit(ctx, Update{View: view, Polling: true})
		r.poll(ctx)
	}
}

// poll fetches detail and status together, then applies detail before status.
func (r *Runner) poll(ctx context.Context) {
	if r.reconciler.View().Mock {
		return
	}
	logger := zerolog.Ctx(ctx)
	id := r.reconciler.ID()

	// A plain Group rather than WithContext: one failed fetch must not cancel
	// the other, and each result is applied on its own below.
	var (
		g         errgroup.Group
		detail    domain.AnalysisWithResult
		detailErr error
		status    domain.Status
		statusErr error
	)
	g.Go(func() error {
		detail, detailErr = r.api.Get(ctx, id)
		return detailErr
	})
	g.Go(func() error {
		status, statusErr = r.api.Status(ctx, id)
		return statusErr
	})
	if err := g.Wait(); err != nil {
		logger.Debug().Err(err).Msg("poll round had a failed fetch")
	}

	if ctx.Err() != nil {
		return
	}

	r.applyDetail(ctx, detail, detailErr)

	if statusErr == nil && r.reconciler.ApplyStatus(status) {
		logger.Debug().Str("status", string(status)).Msg("status completed ahead of detail, refetching")
		detail, detailErr = r.api.Get(ctx, id)
		r.applyDetail(ctx, detail, detailErr)
	}

	r.emit(ctx, Update{View: r.reconciler.View(), Err: detailErr, Polling: r.reconciler.NeedsPolling()})
}

func (r *Runner) applyDetail(ctx context.Context, detail domain.AnalysisWithResult, err error) {
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to fetch analysis")
		if r.reconciler.ApplyError(err) {
			notify.Error(r.notifier, MsgLoadFailed)
		}
		return
	}
	r.reconciler.ApplyDetail(ctx, detail)
}

func (r *Runner) emit(ctx context.Context, u Update) {
	select {
	case r.updates <- u:
	case <-ctx.Done():
	}
}
