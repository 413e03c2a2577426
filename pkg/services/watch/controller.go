package watch

import (
	"context"
	"fmt"
	"sync"

	"github.com/de-tools/riskread/pkg/services/display"
	"github.com/de-tools/riskread/pkg/services/notify"
)

type Controller interface {
	Start(ctx context.Context, req Request) (*Runner, error)
	Cancel(ctx context.Context, id string) error
	Stop()
}

type Request struct {
	ID        string
	MockParam string
	ForceMock bool
}

type runnerDescriptor struct {
	cancelFunc context.CancelFunc
	reconciler *display.Reconciler
	runner     *Runner
}

type DefaultController struct {
	api      Fetcher
	cache    display.Cache
	notifier notify.Notifier
	config   RunnerConfig

	mu      sync.Mutex
	runners map[string]runnerDescriptor
}

func NewController(api Fetcher, cache display.Cache, notifier notify.Notifier, config RunnerConfig) *DefaultController {
	return &DefaultController{
		api:      api,
		cache:    cache,
		notifier: notifier,
		config:   config,
		runners:  make(map[string]runnerDescriptor),
	}
}

// Start begins watching an analysis. Starting an id that is already watched
// replaces the previous runner.
func (ctrl *DefaultController) Start(ctx context.Context, req Request) (*Runner, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("analysis id is required")
	}
	_ = ctrl.Cancel(ctx, req.ID)

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	reconciler := display.NewReconciler(display.Config{
		ID:        req.ID,
		MockParam: req.MockParam,
		ForceMock: req.ForceMock,
		Cache:     ctrl.cache,
	})
	runner := NewRunner(reconciler, ctrl.api, ctrl.notifier, ctrl.config)
	ctrl.runners[req.ID] = runnerDescriptor{
		cancelFunc: cancel,
		reconciler: reconciler,
		runner:     runner,
	}

	go runner.Run(ctx)
	return runner, nil
}

// Invalidate marks the watched analysis as unsettled and polls it again.
func (ctrl *DefaultController) Invalidate(id string) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	desc, ok := ctrl.runners[id]
	if !ok {
		return fmt.Errorf("analysis not watched: %s", id)
	}
	desc.reconciler.Invalidate()
	desc.runner.RequestRefetch()
	return nil
}

func (ctrl *DefaultController) Cancel(_ context.Context, id string) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	desc, ok := ctrl.runners[id]
	if !ok {
		return fmt.Errorf("analysis not watched: %s", id)
	}
	desc.cancelFunc()
	<-desc.runner.Done()

	delete(ctrl.runners, id)
	return nil
}

func (ctrl *DefaultController) Stop() {
	ctrl.mu.Lock()
	ids := make([]string, 0, len(ctrl.runners))
	for id := range ctrl.runners {
		ids = append(ids, id)
	}
	ctrl.mu.Unlock()

	for _, id := range ids {
		_ = ctrl.Cancel(context.Background(), id)
	}
}
