package commands

import (
	"context"
	"io"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/analysis"
	"github.com/de-tools/riskread/pkg/services/config"
	"github.com/de-tools/riskread/pkg/services/display"
	"github.com/de-tools/riskread/pkg/services/notify"
	"github.com/de-tools/riskread/pkg/services/report"
	"github.com/de-tools/riskread/pkg/services/upload"
	"github.com/de-tools/riskread/pkg/services/watch"
	"github.com/de-tools/riskread/pkg/store/client"
	"github.com/de-tools/riskread/pkg/store/sqlite/cache"
)

// Handler renders a report to the terminal.
type Handler interface {
	Handle(report *domain.Report) error
}

// Env carries everything the commands need. The root command fills it in
// before any subcommand runs.
type Env struct {
	Settings *config.Settings
	API      client.API
	Cache    cache.Store
	Analyses *analysis.Service
	Uploads  *upload.Service
	Reports  *report.Exporter
	Notifier notify.Notifier
	Text     Handler
	Table    Handler
	Out      io.Writer
}

func (e *Env) runnerConfig(follow bool) watch.RunnerConfig {
	cfg := watch.RunnerConfig{Follow: follow, PollInterval: config.DefaultPollInterval}
	if e.Settings != nil && e.Settings.PollInterval > 0 {
		cfg.PollInterval = e.Settings.PollInterval
	}
	return cfg
}

func (e *Env) reconciler(id string, forceMock bool) *display.Reconciler {
	cfg := display.Config{ID: id, ForceMock: forceMock}
	if e.Cache != nil {
		cfg.Cache = e.Cache
	}
	return display.NewReconciler(cfg)
}

// loadView resolves the display state once: mock or cache first, then a
// single detail fetch while the view is still unsettled.
func (e *Env) loadView(ctx context.Context, id string, forceMock bool) (display.View, error) {
	r := e.reconciler(id, forceMock)
	view := r.Hydrate(ctx)
	if !r.NeedsPolling() {
		return view, nil
	}

	data, err := e.API.Get(ctx, id)
	if err != nil {
		if r.ApplyError(err) {
			notify.Error(e.Notifier, watch.MsgLoadFailed)
		}
		if view.Loaded() {
			return view, nil
		}
		return view, err
	}
	return r.ApplyDetail(ctx, data), nil
}

// follow polls until the analysis settles, calling onUpdate for every
// snapshot, and returns the final view.
func (e *Env) follow(ctx context.Context, id string, forceMock bool, onUpdate func(watch.Update)) (display.View, error) {
	r := e.reconciler(id, forceMock)
	runner := watch.NewRunner(r, e.API, e.Notifier, e.runnerConfig(false))
	go runner.Run(ctx)

	var last watch.Update
	for u := range runner.Updates() {
		last = u
		if onUpdate != nil {
			onUpdate(u)
		}
	}
	if err := ctx.Err(); err != nil {
		return r.View(), err
	}
	if !last.View.Loaded() && last.Err != nil {
		return last.View, last.Err
	}
	return r.View(), nil
}
