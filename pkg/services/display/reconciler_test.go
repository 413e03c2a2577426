package display

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/riskread/pkg/models/domain"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, id string) (domain.CachedAnalysis, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CachedAnalysis), args.Bool(1), args.Error(2)
}

func (m *mockCache) Put(ctx context.Context, analysis domain.Analysis, result *domain.AnalysisResult) error {
	args := m.Called(ctx, analysis, result)
	return args.Error(0)
}

var updatedAt = time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

func analysis(status domain.Status) domain.Analysis {
	return domain.Analysis{ID: "a-1", FileName: "lease.pdf", Status: status, UpdatedAt: updatedAt}
}

func cached(status domain.Status) domain.CachedAnalysis {
	return domain.CachedAnalysis{Analysis: analysis(status)}
}

func TestHydrate_CacheHitTerminal(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusCompleted, domain.StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			c := &mockCache{}
			c.On("Get", mock.Anything, "a-1").Return(cached(status), true, nil).Once()

			r := NewReconciler(Config{ID: "a-1", Cache: c})
			v := r.Hydrate(context.Background())

			assert.True(t, v.FromCache)
			assert.Equal(t, status, v.Status())
			assert.False(t, r.NeedsPolling())
			c.AssertExpectations(t)
		})
	}
}

func TestHydrate_CacheHitNonTerminal(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusPending, domain.StatusProcessing} {
		t.Run(string(status), func(t *testing.T) {
			c := &mockCache{}
			c.On("Get", mock.Anything, "a-1").Return(cached(status), true, nil)

			r := NewReconciler(Config{ID: "a-1", Cache: c})
			v := r.Hydrate(context.Background())

			assert.True(t, v.FromCache)
			assert.True(t, r.NeedsPolling())
		})
	}
}

func TestHydrate_MissAndErrorFallThrough(t *testing.T) {
	t.Run("miss", func(t *testing.T) {
		c := &mockCache{}
		c.On("Get", mock.Anything, "a-1").Return(domain.CachedAnalysis{}, false, nil)

		r := NewReconciler(Config{ID: "a-1", Cache: c})
		v := r.Hydrate(context.Background())
		assert.False(t, v.Loaded())
		assert.True(t, r.NeedsPolling())
	})

	t.Run("error", func(t *testing.T) {
		c := &mockCache{}
		c.On("Get", mock.Anything, "a-1").Return(domain.CachedAnalysis{}, false, errors.New("corrupt"))

		r := NewReconciler(Config{ID: "a-1", Cache: c})
		v := r.Hydrate(context.Background())
		assert.False(t, v.Loaded())
		assert.True(t, r.NeedsPolling())
	})
}

func TestHydrate_OnlyOnce(t *testing.T) {
	c := &mockCache{}
	c.On("Get", mock.Anything, "a-1").Return(domain.CachedAnalysis{}, false, nil).Once()

	r := NewReconciler(Config{ID: "a-1", Cache: c})
	ctx := context.Background()
	r.Hydrate(ctx)
	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusProcessing)})
	v := r.Hydrate(ctx)

	assert.Equal(t, domain.StatusProcessing, v.Status())
	c.AssertExpectations(t)
}

func TestMock_NeverTouchesCacheOrNetworkState(t *testing.T) {
	tests := []Config{
		{ID: "a-1", MockParam: "1"},
		{ID: "a-1", MockParam: "true"},
		{ID: "demo"},
		{ID: "a-1", ForceMock: true},
	}
	for _, cfg := range tests {
		c := &mockCache{}
		cfg.Cache = c

		r := NewReconciler(cfg)
		ctx := context.Background()
		v := r.Hydrate(ctx)

		assert.True(t, v.Mock)
		assert.True(t, v.FromCache)
		assert.False(t, r.NeedsPolling())

		// server data and signals are ignored
		r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusPending)})
		assert.Equal(t, domain.StatusCompleted, r.View().Status())
		assert.False(t, r.ApplyStatus(domain.StatusCompleted))
		assert.False(t, r.ApplyError(errors.New("boom")))

		c.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		c.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestApplyDetail_PersistsOncePerTerminalSnapshot(t *testing.T) {
	// Given an analysis that is not cached yet
	c := &mockCache{}
	c.On("Get", mock.Anything, "a-1").Return(domain.CachedAnalysis{}, false, nil)
	c.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	r := NewReconciler(Config{ID: "a-1", Cache: c})
	ctx := context.Background()
	r.Hydrate(ctx)

	// When the server reports pending, then completed three times
	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusPending)})
	assert.True(t, r.NeedsPolling())

	result := &domain.AnalysisResult{ID: "r-1", AnalysisID: "a-1"}
	for i := 0; i < 3; i++ {
		r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusCompleted), Result: result})
	}

	// Then the cache is written exactly once and polling stops
	c.AssertNumberOfCalls(t, "Put", 1)
	v := r.View()
	assert.True(t, v.FromCache)
	assert.Equal(t, result, v.Result)
	assert.False(t, r.NeedsPolling())
}

func TestApplyDetail_CachedSnapshotNotRewritten(t *testing.T) {
	c := &mockCache{}
	c.On("Get", mock.Anything, "a-1").Return(cached(domain.StatusCompleted), true, nil)

	r := NewReconciler(Config{ID: "a-1", Cache: c})
	ctx := context.Background()
	r.Hydrate(ctx)
	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusCompleted)})

	c.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyDetail_NetworkOverwritesCache(t *testing.T) {
	c := &mockCache{}
	c.On("Get", mock.Anything, "a-1").Return(cached(domain.StatusProcessing), true, nil)
	c.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	r := NewReconciler(Config{ID: "a-1", Cache: c})
	ctx := context.Background()
	r.Hydrate(ctx)

	next := analysis(domain.StatusFailed)
	next.ErrorMessage = "unreadable"
	next.UpdatedAt = updatedAt.Add(time.Minute)
	v := r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: next})

	assert.Equal(t, domain.StatusFailed, v.Status())
	assert.Equal(t, "unreadable", v.Analysis.ErrorMessage)
	c.AssertNumberOfCalls(t, "Put", 1)
}

func TestApplyDetail_CacheWriteFailureRetriedNextTime(t *testing.T) {
	c := &mockCache{}
	c.On("Get", mock.Anything, "a-1").Return(domain.CachedAnalysis{}, false, nil)
	c.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	c.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	r := NewReconciler(Config{ID: "a-1", Cache: c})
	ctx := context.Background()
	r.Hydrate(ctx)
	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusCompleted)})
	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusCompleted)})
	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusCompleted)})

	c.AssertNumberOfCalls(t, "Put", 2)
}

func TestApplyStatus(t *testing.T) {
	r := NewReconciler(Config{ID: "a-1"})
	ctx := context.Background()
	r.Hydrate(ctx)

	assert.False(t, r.ApplyStatus(domain.StatusProcessing))
	assert.True(t, r.ApplyStatus(domain.StatusCompleted), "nothing shown yet")

	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusProcessing)})
	assert.True(t, r.ApplyStatus(domain.StatusCompleted))
	assert.False(t, r.ApplyStatus(domain.StatusFailed))

	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusCompleted)})
	assert.False(t, r.ApplyStatus(domain.StatusCompleted))
}

func TestApplyError_OneShotAndRearmed(t *testing.T) {
	r := NewReconciler(Config{ID: "a-1"})
	ctx := context.Background()
	r.Hydrate(ctx)
	boom := errors.New("boom")

	assert.True(t, r.ApplyError(boom))
	assert.False(t, r.ApplyError(boom))

	r.ApplyDetail(ctx, domain.AnalysisWithResult{Analysis: analysis(domain.StatusProcessing)})
	assert.True(t, r.ApplyError(boom), "a successful fetch re-arms the notification")
	assert.False(t, r.ApplyError(nil))
}

func TestApplyError_SilentWithCache(t *testing.T) {
	c := &mockCache{}
	c.On("Get", mock.Anything, "a-1").Return(cached(domain.StatusProcessing), true, nil)

	r := NewReconciler(Config{ID: "a-1", Cache: c})
	r.Hydrate(context.Background())

	assert.False(t, r.ApplyError(errors.New("boom")))
}

func TestUseMockAndUseLive(t *testing.T) {
	t.Run("cache hit shown immediately", func(t *testing.T) {
		c := &mockCache{}
		c.On("Get", mock.Anything, "a-1").Return(cached(domain.StatusCompleted), true, nil)

		r := NewReconciler(Config{ID: "a-1", Cache: c})
		ctx := context.Background()
		r.Hydrate(ctx)

		v := r.UseMock()
		assert.True(t, v.Mock)
		assert.False(t, r.NeedsPolling())

		v, refetch := r.UseLive(ctx)
		assert.False(t, refetch)
		assert.False(t, v.Mock)
		assert.True(t, v.FromCache)
		assert.Equal(t, "lease.pdf", v.Analysis.FileName)
	})

	t.Run("miss requires refetch", func(t *testing.T) {
		c := &mockCache{}
		c.On("Get", mock.Anything, "a-1").Return(domain.CachedAnalysis{}, false, nil)

		r := NewReconciler(Config{ID: "a-1", MockParam: "1", Cache: c})
		ctx := context.Background()
		require.True(t, r.Hydrate(ctx).Mock)

		v, refetch := r.UseLive(ctx)
		assert.True(t, refetch)
		assert.False(t, v.Loaded())
		assert.True(t, r.NeedsPolling())
	})

	t.Run("demo id stays in mock mode", func(t *testing.T) {
		r := NewReconciler(Config{ID: "demo"})
		ctx := context.Background()
		r.Hydrate(ctx)

		v, refetch := r.UseLive(ctx)
		assert.False(t, refetch)
		assert.True(t, v.Mock)
	})
}

func TestInvalidate(t *testing.T) {
	c := &mockCache{}
	c.On("Get", mock.Anything, "a-1").Return(cached(domain.StatusCompleted), true, nil)

	r := NewReconciler(Config{ID: "a-1", Cache: c})
	r.Hydrate(context.Background())
	require.False(t, r.NeedsPolling())

	r.Invalidate()
	assert.True(t, r.NeedsPolling())
}
