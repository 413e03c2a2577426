package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/mock"
	"github.com/de-tools/riskread/pkg/services/notify"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
}

func render(t *testing.T, a domain.Analysis, r *domain.AnalysisResult) string {
	t.Helper()
	var buf bytes.Buffer
	g := NewGenerator(WithClock(fixedClock), WithoutCompression())
	require.NoError(t, g.Render(&buf, a, r))
	return buf.String()
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pdf", "contract.pdf", "riskread_contract_analysis.pdf"},
		{"only last extension", "q1.report.docx", "riskread_q1.report_analysis.pdf"},
		{"no extension", "notes", "riskread_notes_analysis.pdf"},
		{"directories dropped", "a/b/plan.xlsx", "riskread_plan_analysis.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.in))
		})
	}
}

func TestRender_FullResult(t *testing.T) {
	full := mock.New(mock.DemoID)
	out := render(t, full.Analysis, full.Result)

	assert.True(t, len(out) > 0 && out[:5] == "%PDF-")
	for _, want := range []string{
		"(RiskRead AI)",
		"(Document Risk Analysis Report)",
		"(" + full.Analysis.FileName + ")",
		"Generated on March 1, 2024, 09:15 AM",
		"(Document Summary)",
		"(Score Breakdown)",
		"Relevance \\(25%\\)",
		"(Key Insights)",
		"(Recommendations)",
		"(Key Highlights)",
		"(Extracted Fields)",
		"(Questions & Clarifications)",
		"(Important Disclaimer)",
		FooterTitle,
		"Page 1 of ",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, NotReady)
	assert.NotContains(t, out, "{nb}")
}

func TestRender_NullResult(t *testing.T) {
	a := domain.Analysis{
		ID:        "a-1",
		FileName:  "draft.docx",
		FileType:  domain.FileTypeDOCX,
		FileSize:  2048,
		Status:    domain.StatusProcessing,
		CreatedAt: fixedClock(),
	}
	out := render(t, a, nil)

	assert.Contains(t, out, NotReady)
	assert.Contains(t, out, "Important: This report is generated automatically")
	assert.Contains(t, out, "(2 KB)")
	assert.Contains(t, out, "Page 1 of 1")
	assert.NotContains(t, out, "(Score Breakdown)")
}

func TestRender_NonLatinText(t *testing.T) {
	full := mock.New(mock.DemoID)
	full.Result.Insights = append(full.Result.Insights, domain.Insight{
		Category:   domain.InsightRisk,
		Text:       "Clause “7.2” mentions 東京 and €500",
		Confidence: 0.5,
	})

	var buf bytes.Buffer
	require.NoError(t, NewGenerator().Render(&buf, full.Analysis, full.Result))
	assert.NotZero(t, buf.Len())
}

func TestExporter(t *testing.T) {
	full := mock.New(mock.DemoID)

	t.Run("writes file and notifies", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		recorder := &notify.Recorder{}
		e := NewExporter(NewGenerator(WithClock(fixedClock)), recorder)

		path, err := e.Export(context.Background(), dir, full.Analysis, full.Result, false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, FileName(full.Analysis.FileName)), path)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
		assert.Equal(t, []string{MsgDownloaded}, recorder.Messages(notify.LevelSuccess))
	})

	t.Run("demo wording", func(t *testing.T) {
		recorder := &notify.Recorder{}
		_, err := NewExporter(nil, recorder).Export(context.Background(), t.TempDir(), full.Analysis, full.Result, true)
		require.NoError(t, err)
		assert.Equal(t, []string{MsgMockDownloaded}, recorder.Messages(notify.LevelSuccess))
	})

	t.Run("unwritable directory", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		recorder := &notify.Recorder{}
		_, err := NewExporter(nil, recorder).Export(context.Background(), blocker, full.Analysis, full.Result, true)
		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindGeneration))
		assert.Equal(t, []string{MsgMockFailed}, recorder.Messages(notify.LevelError))
	})
}

func TestDocumentSummary_RowBreaksPageAsWhole(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		room     float64
	}{
		{"short row at page end", "nda.pdf", 20},
		{"wrapped file name taller than the room left", strings.Repeat("supplier clause ", 30) + ".pdf", 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDocument(false)
			d.y = d.height - footerGap - tt.room

			d.documentSummary(domain.Analysis{
				FileName:  tt.fileName,
				FileType:  domain.FileTypePDF,
				FileSize:  4096,
				Status:    domain.StatusCompleted,
				RiskLevel: domain.RiskLow,
				CreatedAt: fixedClock(),
			})

			assert.Equal(t, 2, d.pdf.PageNo())
			assert.Greater(t, d.y, margin)
			assert.Less(t, d.y, d.height/2)
			require.NoError(t, d.pdf.Error())
		})
	}
}
