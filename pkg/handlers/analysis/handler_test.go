package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/riskread/pkg/models/api"
	"github.com/de-tools/riskread/pkg/models/domain"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) List(ctx context.Context, query domain.ListQuery) (domain.ListPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.ListPage), args.Error(1)
}

func (m *mockBackend) Get(ctx context.Context, id string) (domain.AnalysisWithResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AnalysisWithResult), args.Error(1)
}

func (m *mockBackend) Status(ctx context.Context, id string) (domain.Status, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Status), args.Error(1)
}

func (m *mockBackend) Create(ctx context.Context, input domain.CreateAnalysisInput) (domain.Analysis, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.Analysis), args.Error(1)
}

func (m *mockBackend) Update(ctx context.Context, id string, patch domain.AnalysisPatch) (domain.Analysis, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Analysis), args.Error(1)
}

func (m *mockBackend) Reset(ctx context.Context, id string) (domain.Analysis, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Analysis), args.Error(1)
}

func (m *mockBackend) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var created = time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)

func sampleAnalysis(id string, status domain.Status) domain.Analysis {
	return domain.Analysis{
		ID:        id,
		FileName:  "nda.pdf",
		FileType:  domain.FileTypePDF,
		FileSize:  1024,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func notFound() error {
	return domain.NewError(domain.KindNotFound, "Analysis not found", domain.ErrNotFound)
}

func setupRouter(backend *mockBackend) http.Handler {
	router := chi.NewRouter()
	router.Route("/api/analysis", NewHandler(backend).Routes)
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res.Error
}

func TestList(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		setupMock      func(*mockBackend)
		expectedStatus int
		expectedIDs    []string
	}{
		{
			name:   "passes filters through",
			target: "/api/analysis?page=2&limit=5&status=completed&risk_level=high&sort_by=file_name&sort_order=asc",
			setupMock: func(m *mockBackend) {
				m.On("List", mock.Anything, domain.ListQuery{
					Page:      2,
					Limit:     5,
					Status:    domain.StatusCompleted,
					RiskLevel: domain.RiskHigh,
					SortBy:    domain.SortByFileName,
					SortOrder: domain.SortAsc,
				}).Return(domain.ListPage{
					Analyses:   []domain.Analysis{sampleAnalysis("a1", domain.StatusCompleted)},
					Total:      6,
					Page:       2,
					Limit:      5,
					TotalPages: 2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"a1"},
		},
		{
			name:   "empty list",
			target: "/api/analysis",
			setupMock: func(m *mockBackend) {
				m.On("List", mock.Anything, domain.ListQuery{}).Return(domain.ListPage{Page: 1, Limit: 10}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{},
		},
		{
			name:           "invalid page",
			target:         "/api/analysis?page=two",
			setupMock:      func(m *mockBackend) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid status",
			target:         "/api/analysis?status=archived",
			setupMock:      func(m *mockBackend) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(mockBackend)
			tt.setupMock(backend)

			rec := serve(setupRouter(backend), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedIDs != nil {
				var res api.AnalysisListResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
				ids := make([]string, 0, len(res.Analyses))
				for _, a := range res.Analyses {
					ids = append(ids, a.ID)
				}
				assert.Equal(t, tt.expectedIDs, ids)
			}
			backend.AssertExpectations(t)
		})
	}
}

func TestGet(t *testing.T) {
	backend := new(mockBackend)
	score := 82.0
	a := sampleAnalysis("a1", domain.StatusCompleted)
	a.OverallScore = &score
	a.RiskLevel = domain.RiskLow
	backend.On("Get", mock.Anything, "a1").Return(domain.AnalysisWithResult{
		Analysis: a,
		Result:   &domain.AnalysisResult{ID: "r1", AnalysisID: "a1", RiskScore: 90},
	}, nil)
	backend.On("Get", mock.Anything, "missing").Return(domain.AnalysisWithResult{}, notFound())
	router := setupRouter(backend)

	rec := serve(router, http.MethodGet, "/api/analysis/a1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res api.AnalysisWithResults
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "completed", res.Analysis.Status)
	require.NotNil(t, res.Analysis.RiskLevel)
	assert.Equal(t, "low", *res.Analysis.RiskLevel)
	require.NotNil(t, res.Result)
	assert.Equal(t, 90.0, res.Result.RiskScore)

	rec = serve(router, http.MethodGet, "/api/analysis/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Analysis not found", decodeError(t, rec))

	backend.AssertExpectations(t)
}

func TestStatus(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Status", mock.Anything, "a1").Return(domain.StatusProcessing, nil)
	backend.On("Status", mock.Anything, "boom").Return(domain.Status(""), fmt.Errorf("store offline"))
	router := setupRouter(backend)

	rec := serve(router, http.MethodGet, "/api/analysis/a1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "processing", res.Status)

	rec = serve(router, http.MethodGet, "/api/analysis/boom/status", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreate(t *testing.T) {
	backend := new(mockBackend)
	input := domain.CreateAnalysisInput{
		FileName: "nda.pdf",
		FileType: domain.FileTypePDF,
		FileSize: 1024,
		FileURL:  "https://files.example.com/nda.pdf",
	}
	backend.On("Create", mock.Anything, input).Return(sampleAnalysis("new-id", domain.StatusPending), nil)
	router := setupRouter(backend)

	body := `{"file_name":"nda.pdf","file_type":"pdf","file_size":1024,"file_url":"https://files.example.com/nda.pdf"}`
	rec := serve(router, http.MethodPost, "/api/analysis", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var res api.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "new-id", res.ID)
	assert.Equal(t, "pending", res.Status)

	rec = serve(router, http.MethodPost, "/api/analysis", `{"file_name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPost, "/api/analysis", `{"file_name":"x.pdf","owner":"me"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	backend.AssertExpectations(t)
}

func TestUpdate(t *testing.T) {
	backend := new(mockBackend)
	failed := domain.StatusFailed
	backend.On("Update", mock.Anything, "a1", domain.AnalysisPatch{Status: &failed}).
		Return(sampleAnalysis("a1", domain.StatusFailed), nil)
	router := setupRouter(backend)

	rec := serve(router, http.MethodPatch, "/api/analysis/a1", `{"status":"failed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res api.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "failed", res.Status)

	backend.AssertExpectations(t)
}

func TestReset(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Reset", mock.Anything, "a1").Return(sampleAnalysis("a1", domain.StatusPending), nil)
	router := setupRouter(backend)

	rec := serve(router, http.MethodPut, "/api/analysis/a1", `{"status":"pending"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodPut, "/api/analysis/a1", `{"status":"completed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), `status must be "pending"`)

	backend.AssertNumberOfCalls(t, "Reset", 1)
}

func TestDelete(t *testing.T) {
	backend := new(mockBackend)
	backend.On("Delete", mock.Anything, "a1").Return(nil)
	backend.On("Delete", mock.Anything, "missing").Return(notFound())
	router := setupRouter(backend)

	rec := serve(router, http.MethodDelete, "/api/analysis/a1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, http.MethodDelete, "/api/analysis/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	backend.AssertExpectations(t)
}
