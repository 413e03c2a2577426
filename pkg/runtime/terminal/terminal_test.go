package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/models/api"
	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/runtime/terminal/commands"
	"github.com/de-tools/riskread/pkg/services/analysis"
	"github.com/de-tools/riskread/pkg/services/config"
	"github.com/de-tools/riskread/pkg/services/mock"
	"github.com/de-tools/riskread/pkg/services/notify"
	"github.com/de-tools/riskread/pkg/services/report"
	"github.com/de-tools/riskread/pkg/services/upload"
	"github.com/de-tools/riskread/pkg/store/client"
	"github.com/de-tools/riskread/pkg/store/sqlite"
	"github.com/de-tools/riskread/pkg/store/sqlite/cache"
)

// backend is a minimal analysis API serving one completed analysis.
type backend struct {
	mu       sync.Mutex
	down     bool
	patches  []api.UpdateAnalysisInput
	queries  []string
	analysis domain.AnalysisWithResult
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /api/analysis", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()
		writeJSON(w, adapters.MapListPageDomainToApi(domain.ListPage{
			Analyses:   []domain.Analysis{b.analysis.Analysis},
			Total:      1,
			Page:       1,
			Limit:      10,
			TotalPages: 1,
		}))
	})
	mux.HandleFunc("GET /api/analysis/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		down := b.down
		b.mu.Unlock()
		if down {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, api.ErrorResponse{Error: "down"})
			return
		}
		if r.PathValue("id") != b.analysis.Analysis.ID {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, api.ErrorResponse{Error: "Analysis not found"})
			return
		}
		writeJSON(w, adapters.MapAnalysisWithResultDomainToApi(b.analysis))
	})
	mux.HandleFunc("PATCH /api/analysis/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch api.UpdateAnalysisInput
		_ = json.NewDecoder(r.Body).Decode(&patch)
		b.mu.Lock()
		b.patches = append(b.patches, patch)
		b.mu.Unlock()
		a := b.analysis.Analysis
		if patch.Status != nil {
			a.Status = domain.Status(*patch.Status)
		}
		writeJSON(w, adapters.MapAnalysisDomainToApi(a))
	})
	return mux
}

func (b *backend) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *backend) seenQueries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

func (b *backend) seenPatches() []api.UpdateAnalysisInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.UpdateAnalysisInput(nil), b.patches...)
}

type fixture struct {
	backend  *backend
	env      *commands.Env
	out      *bytes.Buffer
	recorder *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	data := mock.New("a-1")
	b := &backend{analysis: data}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	apiClient, err := client.NewAnalysisClient(client.Settings{Host: srv.URL})
	require.NoError(t, err)

	db, err := sqlite.NewDB(sqlite.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := cache.NewStore(db, cache.DefaultOptions())
	require.NoError(t, err)

	recorder := &notify.Recorder{}
	return &fixture{
		backend: b,
		env: &commands.Env{
			Settings: &config.Settings{PollInterval: config.DefaultPollInterval},
			API:      apiClient,
			Cache:    store,
			Analyses: analysis.NewService(apiClient, store, recorder),
			Uploads:  upload.NewService(apiClient, nil, recorder, "uploads"),
			Reports:  report.NewExporter(report.NewGenerator(), recorder),
			Notifier: recorder,
		},
		out:      &bytes.Buffer{},
		recorder: recorder,
	}
}

func (f *fixture) run(args ...string) error {
	f.out.Reset()
	cli := NewCLI(Options{Output: f.out, ErrOutput: &bytes.Buffer{}, Env: f.env})
	cli.SetArgs(args)
	return cli.ExecuteContext(context.Background())
}

func TestShow_CachesTerminalAnalysis(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run("show", "a-1"))
	assert.Contains(t, f.out.String(), "Vendor_Services_Agreement_2024.pdf")
	assert.Contains(t, f.out.String(), "=== Score Breakdown ===")

	// Given the backend is down
	f.backend.setDown(true)

	// When the same analysis is shown again
	require.NoError(t, f.run("show", "a-1"))

	// Then it comes from the cache without an error notice
	assert.Contains(t, f.out.String(), "[Completed, Cached]")
	assert.Empty(t, f.recorder.Messages(notify.LevelError))

	require.NoError(t, f.run("cache", "latest"))
	assert.Equal(t, "a-1\n", f.out.String())
}

func TestShow_NetworkErrorWithoutCache(t *testing.T) {
	f := newFixture(t)
	f.backend.setDown(true)

	err := f.run("show", "a-1")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNetwork))
	assert.Equal(t, []string{"Failed to load analysis"}, f.recorder.Messages(notify.LevelError))
}

func TestShow_MockJSON(t *testing.T) {
	f := newFixture(t)
	f.backend.setDown(true)

	require.NoError(t, f.run("show", "a-1", "--mock", "--json"))

	var out struct {
		Analysis  api.Analysis        `json:"analysis"`
		Result    *api.AnalysisResult `json:"result"`
		FromCache bool                `json:"from_cache"`
		Mock      bool                `json:"mock"`
	}
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &out))
	assert.True(t, out.Mock)
	assert.Equal(t, "a-1", out.Analysis.ID)
	require.NotNil(t, out.Result)

	// Demo output never lands in the cache.
	require.Error(t, f.run("cache", "latest"))
}

func TestList_SendsFilters(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run("list", "--status", "completed", "--limit", "5"))
	assert.Contains(t, f.out.String(), "Vendor_Services_Agreement_2024.pdf")
	queries := f.backend.seenQueries()
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "status=completed")
	assert.Contains(t, queries[0], "limit=5")

	require.Error(t, f.run("list", "--status", "done"))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)

	require.Error(t, f.run("update", "a-1"))
	require.Error(t, f.run("update", "a-1", "--overall-score", "120"))

	require.NoError(t, f.run("update", "a-1", "--status", "processing"))
	assert.Equal(t, "a-1: processing\n", f.out.String())
	patches := f.backend.seenPatches()
	require.Len(t, patches, 1)
	require.NotNil(t, patches[0].Status)
	assert.Equal(t, "processing", *patches[0].Status)
	assert.Nil(t, patches[0].RiskLevel)
}

func TestReport_WritesPDF(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	require.NoError(t, f.run("report", "a-1", "-o", dir))
	path := filepath.Join(dir, "riskread_Vendor_Services_Agreement_2024_analysis.pdf")
	assert.Equal(t, path+"\n", f.out.String())

	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, []string{report.MsgDownloaded}, f.recorder.Messages(notify.LevelSuccess))
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run("stats"))
	assert.Contains(t, f.out.String(), "Average Score")
	assert.Contains(t, f.backend.seenQueries()[0], "limit=1000")
}

func TestReanalyze_RejectsDemo(t *testing.T) {
	f := newFixture(t)
	require.Error(t, f.run("reanalyze", mock.DemoID))
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644))

	err := f.run("upload", path)
	require.Error(t, err)
	assert.True(t, upload.IsRejection(err))
	assert.Equal(t,
		[]string{"File type not supported. Please upload PDF, DOCX, XLSX, or TXT files."},
		f.recorder.Messages(notify.LevelError))
}
