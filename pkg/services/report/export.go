package report

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/notify"
)

const (
	MsgDownloaded     = "PDF report downloaded"
	MsgFailed         = "Failed to generate PDF report"
	MsgMockDownloaded = "Mock analysis PDF downloaded"
	MsgMockFailed     = "Failed to generate mock analysis PDF"
)

type Exporter struct {
	generator *Generator
	notifier  notify.Notifier
}

func NewExporter(generator *Generator, notifier notify.Notifier) *Exporter {
	if generator == nil {
		generator = NewGenerator()
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Exporter{generator: generator, notifier: notifier}
}

// Export writes the report into dir and returns its path. Demo analyses get
// their own notification wording.
func (e *Exporter) Export(ctx context.Context, dir string, a domain.Analysis, r *domain.AnalysisResult, demo bool) (string, error) {
	logger := zerolog.Ctx(ctx)
	ok, failed := MsgDownloaded, MsgFailed
	if demo {
		ok, failed = MsgMockDownloaded, MsgMockFailed
	}

	path, err := e.write(dir, a, r)
	if err != nil {
		logger.Error().Err(err).Str("analysis_id", a.ID).Msg("error generating PDF")
		notify.Error(e.notifier, failed)
		return "", domain.NewError(domain.KindGeneration, failed, err)
	}

	logger.Debug().Str("path", path).Msg("report written")
	notify.Success(e.notifier, ok)
	return path, nil
}

func (e *Exporter) write(dir string, a domain.Analysis, r *domain.AnalysisResult) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(a.FileName))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := e.generator.Render(f, a, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
