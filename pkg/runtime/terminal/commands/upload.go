package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/services/upload"
	"github.com/de-tools/riskread/pkg/services/watch"
)

type UploadCmd struct {
	env     *Env
	fileURL string
	watch   bool
}

func NewUploadCmd(env *Env) *cobra.Command {
	uc := &UploadCmd{env: env}
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document and start its analysis",
		Long:  "Upload a PDF, DOCX, XLSX or TXT file (max 10MB) and create an analysis for it.",
		Args:  cobra.ExactArgs(1),
		RunE:  uc.run,
	}

	cmd.Flags().StringVar(&uc.fileURL, "file-url", "", "Use an already reachable URL instead of uploading to the blob backend")
	cmd.Flags().BoolVar(&uc.watch, "watch", false, "Poll the new analysis until it completes or fails")

	return cmd
}

func (uc *UploadCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := uc.env.Uploads.Submit(ctx, upload.Request{Path: args[0], FileURL: uc.fileURL})
	if err != nil {
		return err
	}
	fmt.Fprintf(uc.env.Out, "%s: %s\n", a.ID, a.Status)

	if !uc.watch {
		return nil
	}
	view, err := uc.env.follow(ctx, a.ID, false, func(u watch.Update) {
		fmt.Fprintln(uc.env.Out, statusLine(u.View))
	})
	if err != nil {
		return fmt.Errorf("failed to watch analysis %s: %w", a.ID, err)
	}
	return uc.env.Text.Handle(adapters.MapAnalysisToReport(*view.Analysis, view.Result, viewBadges(view)))
}
