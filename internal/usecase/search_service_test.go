package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/infrastructure/catalog"
	"github.com/elcom/backend/internal/vocabulary"
)

// mockCache implements domain.CacheRepository for testing
type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	setErr  error
	getHits int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	m.getHits++
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}


func defaultSearchConfig() SearchServiceConfig {
	return SearchServiceConfig{
		MaxResults:                   5,
		MinRelevance:                 0.3,
		FuzzyThreshold:               65,
		SpellingCutoff:               0.8,
		EnableCategoryClassification: true,
	}
}

func newTestSearchService(t *testing.T, cache domain.CacheRepository, config SearchServiceConfig) *SearchService {
	t.Helper()
	return NewSearchService(newTestStore(t), vocabulary.MustDefault(), cache, nil, config, zerolog.Nop())
}

func TestSearchScenarios(t *testing.T) {
	ctx := context.Background()
	svc := newTestSearchService(t, nil, defaultSearchConfig())

	t.Run("exact name", func(t *testing.T) {
		out, err := svc.Search(ctx, "RS-1601 switch")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFound, out.Status)
		assert.Equal(t, domain.StrategyExact, out.Strategy)
		assert.Equal(t, []string{"RS-1601"}, names(out.Products))
		assert.Equal(t, []float64{ExactMatchScore}, out.Scores)
	})

	t.Run("filters", func(t *testing.T) {
		out, err := svc.Search(ctx, "16A rocker switch, panel mount, 250V")
		require.NoError(t, err)

		f := out.Query.Filters
		assert.Equal(t, "rocker", f.Keywords["description"])
		assert.Equal(t, "panel", f.Keywords["mounting_type"])
		assert.Equal(t, &domain.Range{Min: 250, Max: 250}, f.Voltage)
		assert.Equal(t, &domain.Range{Min: 16, Max: 16}, f.Current)

		assert.Equal(t, domain.StrategyFields, out.Strategy)
		require.NotEmpty(t, out.Products)
		assert.Equal(t, "RS-1601", out.Products[0].Name)
		assert.Equal(t, "RS-1602", out.Products[1].Name)
		assert.Len(t, out.Scores, len(out.Products))
		for i := 1; i < len(out.Scores); i++ {
			assert.GreaterOrEqual(t, out.Scores[i-1], out.Scores[i])
		}
	})

	t.Run("no match", func(t *testing.T) {
		out, err := svc.Search(ctx, "xyz")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNoMatch, out.Status)
		assert.Equal(t, domain.StrategyNone, out.Strategy)
		assert.Empty(t, out.Products)
		assert.False(t, out.Found())
	})

	t.Run("nonexistent product code", func(t *testing.T) {
		out, err := svc.Search(ctx, "xyz123nonexistent")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNoMatch, out.Status)
		assert.Empty(t, out.Products)
		assert.Equal(t, NoMatchMessage, NewFormatter(false).RenderOutcome(out))
	})

	t.Run("empty query", func(t *testing.T) {
		out, err := svc.Search(ctx, "   ")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNoMatch, out.Status)
	})

	t.Run("ev connector", func(t *testing.T) {
		out, err := svc.Search(ctx, "EV charger 32A")
		require.NoError(t, err)
		require.NotEmpty(t, out.Products)
		assert.Equal(t, "EV-T2-32", out.Products[0].Name)
		assert.Equal(t, "ev_connector", out.Query.Filters.Category)
	})
}

func TestSearchResultCap(t *testing.T) {
	t.Run("default cap of five", func(t *testing.T) {
		records := make([]catalog.Record, 0, 8)
		for i := 1; i <= 8; i++ {
			records = append(records, catalog.Record{
				Name:         fmt.Sprintf("RS-20%02d", i),
				Description:  "Rocker Switch",
				RatedVoltage: "250V AC",
				RatedCurrent: fmt.Sprintf("%dA", i*2),
				MountingType: "Panel Mount",
			})
		}
		vocab := vocabulary.MustDefault()
		store, err := catalog.NewStore(records, vocab, zerolog.Nop())
		require.NoError(t, err)
		svc := NewSearchService(store, vocab, nil, nil, defaultSearchConfig(), zerolog.Nop())

		out, err := svc.Search(context.Background(), "rocker switch")
		require.NoError(t, err)
		assert.Equal(t, domain.StrategyFields, out.Strategy)
		require.Len(t, out.Products, 5)
		require.Len(t, out.Scores, 5)
		for i := 1; i < len(out.Scores); i++ {
			assert.GreaterOrEqual(t, out.Scores[i-1], out.Scores[i])
		}
	})

	t.Run("configured cap", func(t *testing.T) {
		config := defaultSearchConfig()
		config.MaxResults = 2
		svc := newTestSearchService(t, nil, config)

		out, err := svc.Search(context.Background(), "switch")
		require.NoError(t, err)
		assert.Len(t, out.Products, 2)
	})
}

func TestSearchConfiguredZeroThresholds(t *testing.T) {
	config := defaultSearchConfig()
	config.MinRelevance = 0
	config.FuzzyThreshold = 0
	svc := newTestSearchService(t, nil, config)

	assert.Equal(t, 0.0, svc.matchingService.minRelevance)
	assert.Equal(t, 0.0, svc.matchingService.fuzzyThreshold)
}

func TestSearchConcurrent(t *testing.T) {
	svc := newTestSearchService(t, newMockCache(), defaultSearchConfig())
	queries := []string{
		"16A rocker switch, panel mount, 250V",
		"Résistance connecteur solaire IP67",
		"EV charger 32A",
		"xyz123nonexistent",
	}

	want := make([][]string, len(queries))
	for i, q := range queries {
		out, err := svc.Search(context.Background(), q)
		require.NoError(t, err)
		want[i] = names(out.Products)
	}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 0; n < 25; n++ {
				i := (g + n) % len(queries)
				out, err := svc.Search(context.Background(), queries[i])
				if assert.NoError(t, err) {
					assert.Equal(t, want[i], names(out.Products), queries[i])
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestSearchFuzzyNamePinned(t *testing.T) {
	config := defaultSearchConfig()
	config.EnableFuzzyName = true
	svc := newTestSearchService(t, nil, config)

	out, err := svc.Search(context.Background(), "rs 160")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyFuzzyName, out.Strategy)
	require.GreaterOrEqual(t, len(out.Products), 2)
	assert.Equal(t, "RS-1601", out.Products[0].Name)
	assert.Equal(t, "RS-1602", out.Products[1].Name)

	seen := map[string]bool{}
	for _, n := range names(out.Products) {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
	assert.LessOrEqual(t, len(out.Products), 5)
}

func TestSearchDegradedCount(t *testing.T) {
	svc := newTestSearchService(t, nil, defaultSearchConfig())

	out, err := svc.Search(context.Background(), "fuse holder 250v")
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.Equal(t, "FH-5", out.Products[0].Name)
	assert.GreaterOrEqual(t, out.Degraded, 1)
}

func TestSearchCatalogUnavailable(t *testing.T) {
	svc := NewSearchService(nil, vocabulary.MustDefault(), nil, nil, defaultSearchConfig(), zerolog.Nop())
	_, err := svc.Search(context.Background(), "switch")
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, 0, svc.CatalogSize())
}

func TestSearchCaching(t *testing.T) {
	ctx := context.Background()

	t.Run("second search is served from cache", func(t *testing.T) {
		cache := newMockCache()
		svc := newTestSearchService(t, cache, defaultSearchConfig())

		first, err := svc.Search(ctx, "16A rocker switch, panel mount, 250V")
		require.NoError(t, err)
		assert.False(t, first.Cached)

		second, err := svc.Search(ctx, "16A rocker switch, panel mount, 250V")
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, names(first.Products), names(second.Products))
		assert.Equal(t, first.Scores, second.Scores)
		assert.Equal(t, first.Strategy, second.Strategy)
		assert.Equal(t, 1, cache.getHits)

		assert.Equal(t, []domain.PopularityEntry{{Product: "RS-1601", Count: 2}}, svc.Popular(5))
	})

	t.Run("cache write failure does not fail the search", func(t *testing.T) {
		cache := newMockCache()
		cache.setErr = errors.New("boom")
		svc := newTestSearchService(t, cache, defaultSearchConfig())

		out, err := svc.Search(ctx, "RS-1601")
		require.NoError(t, err)
		assert.True(t, out.Found())
	})

	t.Run("stale entry is evicted and replaced", func(t *testing.T) {
		cache := newMockCache()
		key := generateCacheKey("rs-1601")
		cache.data[key] = []byte(`{"status":"found","strategy":"exact","ids":[999],"scores":[100]}`)
		svc := newTestSearchService(t, cache, defaultSearchConfig())

		out, err := svc.Search(ctx, "RS-1601")
		require.NoError(t, err)
		assert.False(t, out.Cached)
		assert.Equal(t, []string{"RS-1601"}, names(out.Products))
		assert.Equal(t, 1, cache.deletes)
		assert.NotContains(t, string(cache.data[key]), "999")

		again, err := svc.Search(ctx, "RS-1601")
		require.NoError(t, err)
		assert.True(t, again.Cached)
	})

	t.Run("undecodable entry is evicted", func(t *testing.T) {
		cache := newMockCache()
		cache.data[generateCacheKey("rs-1601")] = []byte(`not json`)
		svc := newTestSearchService(t, cache, defaultSearchConfig())

		out, err := svc.Search(ctx, "RS-1601")
		require.NoError(t, err)
		assert.False(t, out.Cached)
		assert.Equal(t, 1, cache.deletes)
	})
}

func TestSearchPopularity(t *testing.T) {
	ctx := context.Background()
	svc := newTestSearchService(t, nil, defaultSearchConfig())

	for _, q := range []string{"RS-1602", "RS-1601", "RS-1601", "xyz"} {
		_, err := svc.Search(ctx, q)
		require.NoError(t, err)
	}

	assert.Equal(t, []domain.PopularityEntry{
		{Product: "RS-1601", Count: 2},
		{Product: "RS-1602", Count: 1},
	}, svc.Popular(5))
}
