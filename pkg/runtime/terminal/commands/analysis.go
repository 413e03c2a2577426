package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/models/api"
	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/display"
	"github.com/de-tools/riskread/pkg/services/mock"
	"github.com/de-tools/riskread/pkg/services/stats"
	"github.com/de-tools/riskread/pkg/services/watch"
)

type ListCmd struct {
	env       *Env
	page      int
	limit     int
	status    string
	riskLevel string
	sortBy    string
	sortOrder string
}

func NewListCmd(env *Env) *cobra.Command {
	lc := &ListCmd{env: env}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analyses",
		Args:  cobra.NoArgs,
		RunE:  lc.run,
	}

	cmd.Flags().IntVar(&lc.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&lc.limit, "limit", 10, "Analyses per page")
	cmd.Flags().StringVar(&lc.status, "status", "", "Filter by status (pending, processing, completed, failed)")
	cmd.Flags().StringVar(&lc.riskLevel, "risk-level", "", "Filter by risk level (low, medium, high)")
	cmd.Flags().StringVar(&lc.sortBy, "sort-by", "created_at", "Sort field (created_at, overall_score, file_name)")
	cmd.Flags().StringVar(&lc.sortOrder, "sort-order", "desc", "Sort order (asc, desc)")

	return cmd
}

func (lc *ListCmd) run(cmd *cobra.Command, _ []string) error {
	query := domain.ListQuery{
		Page:      lc.page,
		Limit:     lc.limit,
		Status:    domain.Status(lc.status),
		RiskLevel: domain.RiskLevel(lc.riskLevel),
		SortBy:    lc.sortBy,
		SortOrder: domain.SortOrder(lc.sortOrder),
	}
	if query.Status != "" && !query.Status.Valid() {
		return fmt.Errorf("invalid status %q", lc.status)
	}
	if query.RiskLevel != "" && !query.RiskLevel.Valid() {
		return fmt.Errorf("invalid risk level %q", lc.riskLevel)
	}
	if query.SortOrder != domain.SortAsc && query.SortOrder != domain.SortDesc {
		return fmt.Errorf("invalid sort order %q", lc.sortOrder)
	}

	page, err := lc.env.Analyses.List(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("failed to list analyses: %w", err)
	}
	return lc.env.Table.Handle(adapters.MapListPageToReport("Analyses", page))
}

type ShowCmd struct {
	env     *Env
	mock    bool
	follow  bool
	jsonOut bool
}

func NewShowCmd(env *Env) *cobra.Command {
	sc := &ShowCmd{env: env}
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one analysis, from the local cache when it is settled",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.run,
	}

	cmd.Flags().BoolVar(&sc.mock, "mock", false, "Show the demo analysis instead of server data")
	cmd.Flags().BoolVar(&sc.follow, "follow", false, "Keep polling until the analysis completes or fails")
	cmd.Flags().BoolVar(&sc.jsonOut, "json", false, "Print JSON instead of text")

	return cmd
}

func (sc *ShowCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	var (
		view display.View
		err  error
	)
	if sc.follow {
		view, err = sc.env.follow(ctx, id, sc.mock, func(u watch.Update) {
			if !sc.jsonOut {
				fmt.Fprintln(sc.env.Out, statusLine(u.View))
			}
		})
	} else {
		view, err = sc.env.loadView(ctx, id, sc.mock)
	}
	if err != nil {
		return fmt.Errorf("failed to load analysis %s: %w", id, err)
	}
	if !view.Loaded() {
		return fmt.Errorf("analysis %s is not available", id)
	}
	return sc.print(view)
}

type viewJSON struct {
	api.AnalysisWithResults
	FromCache bool `json:"from_cache"`
	Mock      bool `json:"mock"`
}

func (sc *ShowCmd) print(view display.View) error {
	if sc.jsonOut {
		out := viewJSON{
			AnalysisWithResults: adapters.MapAnalysisWithResultDomainToApi(domain.AnalysisWithResult{
				Analysis: *view.Analysis,
				Result:   view.Result,
			}),
			FromCache: view.FromCache,
			Mock:      view.Mock,
		}
		enc := json.NewEncoder(sc.env.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return sc.env.Text.Handle(adapters.MapAnalysisToReport(*view.Analysis, view.Result, viewBadges(view)))
}

func viewBadges(view display.View) []string {
	switch {
	case view.Mock:
		return []string{"Demo"}
	case view.FromCache:
		return []string{"Cached"}
	}
	return nil
}

type ReportCmd struct {
	env    *Env
	mock   bool
	output string
}

func NewReportCmd(env *Env) *cobra.Command {
	rc := &ReportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Write the PDF report for an analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().BoolVar(&rc.mock, "mock", false, "Export the demo analysis")
	cmd.Flags().StringVarP(&rc.output, "output", "o", ".", "Directory to write the report into")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	view, err := rc.env.loadView(ctx, args[0], rc.mock)
	if err != nil {
		return fmt.Errorf("failed to load analysis %s: %w", args[0], err)
	}

	path, err := rc.env.Reports.Export(ctx, rc.output, *view.Analysis, view.Result, view.Mock)
	if err != nil {
		return err
	}
	fmt.Fprintln(rc.env.Out, path)
	return nil
}

type ReanalyzeCmd struct {
	env *Env
}

func NewReanalyzeCmd(env *Env) *cobra.Command {
	rc := &ReanalyzeCmd{env: env}
	return &cobra.Command{
		Use:   "reanalyze <id>",
		Short: "Reset an analysis to pending so it runs again",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}
}

func (rc *ReanalyzeCmd) run(cmd *cobra.Command, args []string) error {
	if args[0] == mock.DemoID {
		return fmt.Errorf("the demo analysis cannot be reanalyzed")
	}
	a, err := rc.env.Analyses.Reanalyze(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(rc.env.Out, "%s: %s\n", a.ID, a.Status)
	return nil
}

type UpdateCmd struct {
	env          *Env
	status       string
	riskLevel    string
	overallScore float64
}

func NewUpdateCmd(env *Env) *cobra.Command {
	uc := &UpdateCmd{env: env}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Patch fields of an analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  uc.run,
	}

	cmd.Flags().StringVar(&uc.status, "status", "", "New status")
	cmd.Flags().StringVar(&uc.riskLevel, "risk-level", "", "New risk level")
	cmd.Flags().Float64Var(&uc.overallScore, "overall-score", 0, "New overall score (0-100)")

	return cmd
}

func (uc *UpdateCmd) run(cmd *cobra.Command, args []string) error {
	var patch domain.AnalysisPatch
	flags := cmd.Flags()

	if flags.Changed("status") {
		s := domain.Status(uc.status)
		if !s.Valid() {
			return fmt.Errorf("invalid status %q", uc.status)
		}
		patch.Status = &s
	}
	if flags.Changed("risk-level") {
		l := domain.RiskLevel(uc.riskLevel)
		if !l.Valid() {
			return fmt.Errorf("invalid risk level %q", uc.riskLevel)
		}
		patch.RiskLevel = &l
	}
	if flags.Changed("overall-score") {
		if uc.overallScore < 0 || uc.overallScore > 100 {
			return fmt.Errorf("overall score must be between 0 and 100, got %v", uc.overallScore)
		}
		score := uc.overallScore
		patch.OverallScore = &score
	}
	if patch == (domain.AnalysisPatch{}) {
		return fmt.Errorf("nothing to update: set --status, --risk-level or --overall-score")
	}

	a, err := uc.env.Analyses.Update(cmd.Context(), args[0], patch)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	fmt.Fprintf(uc.env.Out, "%s: %s\n", a.ID, a.Status)
	return nil
}

type DeleteCmd struct {
	env *Env
}

func NewDeleteCmd(env *Env) *cobra.Command {
	dc := &DeleteCmd{env: env}
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  dc.run,
	}
}

func (dc *DeleteCmd) run(cmd *cobra.Command, args []string) error {
	if err := dc.env.Analyses.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	fmt.Fprintf(dc.env.Out, "deleted %s\n", args[0])
	return nil
}

type RecentCmd struct {
	env   *Env
	limit int
}

func NewRecentCmd(env *Env) *cobra.Command {
	rc := &RecentCmd{env: env}
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recently created analyses",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
	cmd.Flags().IntVar(&rc.limit, "limit", 5, "Number of analyses")
	return cmd
}

func (rc *RecentCmd) run(cmd *cobra.Command, _ []string) error {
	analyses, err := rc.env.Analyses.Recent(cmd.Context(), rc.limit)
	if err != nil {
		return fmt.Errorf("failed to load recent analyses: %w", err)
	}
	return rc.env.Table.Handle(adapters.MapRecentToReport(analyses))
}

type StatsCmd struct {
	env *Env
}

func NewStatsCmd(env *Env) *cobra.Command {
	sc := &StatsCmd{env: env}
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize all analyses",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
}

func (sc *StatsCmd) run(cmd *cobra.Command, _ []string) error {
	s, err := stats.Load(cmd.Context(), sc.env.API)
	if err != nil {
		return fmt.Errorf("failed to load statistics: %w", err)
	}
	return sc.env.Table.Handle(adapters.MapStatsToReport(s))
}

// statusLine is the progress line printed by show --follow and upload --watch.
func statusLine(view display.View) string {
	if !view.Loaded() {
		return "waiting for analysis"
	}
	parts := []string{view.Analysis.FileName, adapters.Capitalize(string(view.Status()))}
	if view.Analysis.OverallScore != nil {
		parts = append(parts, fmt.Sprintf("%.0f/100", *view.Analysis.OverallScore))
	}
	return strings.Join(parts, " | ")
}
