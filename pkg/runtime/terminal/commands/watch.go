package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/de-tools/riskread/pkg/runtime/tui"
	"github.com/de-tools/riskread/pkg/services/analysis"
	"github.com/de-tools/riskread/pkg/services/display"
	"github.com/de-tools/riskread/pkg/services/report"
	"github.com/de-tools/riskread/pkg/services/watch"
)

type WatchCmd struct {
	env    *Env
	mock   bool
	output string
}

func NewWatchCmd(env *Env) *cobra.Command {
	wc := &WatchCmd{env: env}
	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Open the live analysis view",
		Args:  cobra.ExactArgs(1),
		RunE:  wc.run,
	}

	cmd.Flags().BoolVar(&wc.mock, "mock", false, "Start with the demo analysis")
	cmd.Flags().StringVarP(&wc.output, "output", "o", ".", "Directory for PDF reports")

	return cmd
}

// tuiActions backs the reanalyze and report keys. Notices from both go
// through the bridge into the program.
type tuiActions struct {
	analyses *analysis.Service
	ctrl     *watch.DefaultController
	reports  *report.Exporter
	output   string
}

func (a *tuiActions) Reanalyze(ctx context.Context, id string) error {
	if _, err := a.analyses.Reanalyze(ctx, id); err != nil {
		return err
	}
	return a.ctrl.Invalidate(id)
}

func (a *tuiActions) Export(ctx context.Context, view display.View) (string, error) {
	if !view.Loaded() {
		return "", fmt.Errorf("nothing to export yet")
	}
	return a.reports.Export(ctx, a.output, *view.Analysis, view.Result, view.Mock)
}

func (wc *WatchCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	id := args[0]

	bridge := &tui.Bridge{}
	ctrl := watch.NewController(wc.env.API, wc.env.Cache, bridge, wc.env.runnerConfig(true))
	defer ctrl.Stop()

	actions := &tuiActions{
		analyses: analysis.NewService(wc.env.API, wc.env.Cache, bridge),
		ctrl:     ctrl,
		reports:  report.NewExporter(report.NewGenerator(), bridge),
		output:   wc.output,
	}

	runner, err := ctrl.Start(ctx, watch.Request{ID: id, ForceMock: wc.mock})
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.New(ctx, id, runner, actions), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("live view failed: %w", err)
	}
	return nil
}
