package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/elcom/backend/internal/domain"
	"github.com/elcom/backend/internal/textutil"
	"github.com/elcom/backend/internal/vocabulary"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	MaxResults                   int
	MinRelevance                 float64
	FuzzyThreshold               float64
	SpellingCutoff               float64
	CacheTTL                     time.Duration
	EnableStopWords              bool
	EnableInflectionFolding      bool
	EnableSpellingCorrection     bool
	EnableFuzzyName              bool
	EnableCategoryClassification bool
	Debug                        bool
}

// SearchService runs the full query pipeline against the loaded catalog.
// Flow: normalize -> clean -> extract filters -> exact name -> fuzzy name -> field scoring -> rank
type SearchService struct {
	catalog         domain.Catalog
	cache           domain.CacheRepository
	popularity      *PopularityTracker
	normalizer      *QueryNormalizer
	extractor       *FilterExtractor
	matchingService *MatchingService
	maxResults      int
	cacheTTL        time.Duration
	enableFuzzyName bool
	logger          zerolog.Logger
}

// cachedOutcome is the cache representation of a search outcome. Products are
// stored by ID and resolved against the catalog on read.
type cachedOutcome struct {
	Status   domain.Status   `json:"status"`
	Strategy domain.Strategy `json:"strategy"`
	IDs      []int           `json:"ids"`
	Scores   []float64       `json:"scores"`
	Degraded int             `json:"degraded"`
}

// NewSearchService creates a new search service with dependencies. cache may be nil.
func NewSearchService(
	catalog domain.Catalog,
	vocab *vocabulary.Compiled,
	cache domain.CacheRepository,
	popularity *PopularityTracker,
	config SearchServiceConfig,
	logger zerolog.Logger,
) *SearchService {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	if popularity == nil {
		popularity = NewPopularityTracker()
	}

	return &SearchService{
		catalog:    catalog,
		cache:      cache,
		popularity: popularity,
		normalizer: NewQueryNormalizer(vocab, NormalizerConfig{
			RemoveStopWords: config.EnableStopWords,
			FoldInflections: config.EnableInflectionFolding,
			CorrectSpelling: config.EnableSpellingCorrection,
			SpellingCutoff:  config.SpellingCutoff,
		}, logger),
		extractor: NewFilterExtractor(vocab, config.EnableCategoryClassification),
		matchingService: NewMatchingService(vocab, MatchConfig{
			FuzzyThreshold:     config.FuzzyThreshold,
			MinRelevance:       config.MinRelevance,
			EnableDebugLogging: config.Debug,
		}, logger),
		maxResults:      maxResults,
		cacheTTL:        cacheTTL,
		enableFuzzyName: config.EnableFuzzyName,
		logger:          logger,
	}
}

// Analyze runs normalization and filter extraction without matching.
func (s *SearchService) Analyze(query string) domain.QueryAnalysis {
	normalized := s.normalizer.Normalize(query)
	cleaned := s.normalizer.Clean(normalized)
	return domain.QueryAnalysis{
		Raw:        query,
		Normalized: normalized,
		Cleaned:    cleaned,
		Filters:    s.extractor.Extract(query, normalized, cleaned),
	}
}

// Search resolves a free-text query to a ranked list of products. An empty
// result is a defined no_match outcome, not an error.
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchOutcome, error) {
	if s.catalog == nil || s.catalog.Count() == 0 {
		return nil, domain.ErrCatalogUnavailable
	}

	analysis := s.Analyze(query)
	cacheKey := generateCacheKey(query)

	if cached, ok := s.getFromCache(ctx, cacheKey, analysis); ok {
		s.recordTop(cached)
		return cached, nil
	}

	outcome, err := s.match(ctx, analysis)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("query", analysis.Normalized).
		Str("strategy", string(outcome.Strategy)).
		Int("results", len(outcome.Products)).
		Int("degraded", outcome.Degraded).
		Msg("search completed")

	s.recordTop(outcome)

	if err := s.setInCache(ctx, cacheKey, outcome); err != nil {
		// Log but don't fail if caching fails
		s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache search outcome")
	}

	return outcome, nil
}

// Popular returns the n most frequently returned top products.
func (s *SearchService) Popular(n int) []domain.PopularityEntry {
	return s.popularity.Top(n)
}

// CatalogSize returns the number of loaded products
func (s *SearchService) CatalogSize() int {
	if s.catalog == nil {
		return 0
	}
	return s.catalog.Count()
}

func (s *SearchService) match(ctx context.Context, analysis domain.QueryAnalysis) (*domain.SearchOutcome, error) {
	products := s.catalog.Products()
	outcome := &domain.SearchOutcome{
		Status:   domain.StatusNoMatch,
		Strategy: domain.StrategyNone,
		Query:    analysis,
		Products: []*domain.Product{},
		Scores:   []float64{},
	}

	// An exact name hit short-circuits everything else
	if p := s.matchingService.ExactMatch(analysis.Normalized, products); p != nil {
		outcome.Status = domain.StatusFound
		outcome.Strategy = domain.StrategyExact
		outcome.Products = []*domain.Product{p}
		outcome.Scores = []float64{ExactMatchScore}
		return outcome, nil
	}

	candidates, err := s.matchingService.ScoreAll(ctx, analysis.Cleaned, analysis.Filters, products)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if c.Degraded {
			outcome.Degraded++
		}
	}
	ranked := Rank(candidates, 0)

	if s.enableFuzzyName {
		if p, ratio, ok := s.matchingService.FuzzyNameMatch(analysis.Cleaned, products); ok {
			outcome.Strategy = domain.StrategyFuzzyName
			outcome.Products = append(outcome.Products, p)
			outcome.Scores = append(outcome.Scores, ratio)
		}
	}

	for _, c := range ranked {
		if len(outcome.Products) >= s.maxResults {
			break
		}
		if len(outcome.Products) > 0 && outcome.Products[0] == c.Product {
			continue
		}
		outcome.Products = append(outcome.Products, c.Product)
		outcome.Scores = append(outcome.Scores, c.Score)
	}

	if len(outcome.Products) > 0 {
		outcome.Status = domain.StatusFound
		if outcome.Strategy == domain.StrategyNone {
			outcome.Strategy = domain.StrategyFields
		}
	}
	return outcome, nil
}

func (s *SearchService) recordTop(outcome *domain.SearchOutcome) {
	if outcome.Found() {
		s.popularity.Record(outcome.Products[0].Name)
	}
}

// generateCacheKey keys on the lowered raw text because numeric filters read
// punctuation that normalization removes ("2.5A" vs "2 5A").
func generateCacheKey(query string) string {
	return fmt.Sprintf("search:%s", textutil.Lower(query))
}

// getFromCache retrieves an outcome from cache. Entries that do not decode or
// reference products no longer in the catalog are deleted and treated as misses.
func (s *SearchService) getFromCache(ctx context.Context, key string, analysis domain.QueryAnalysis) (*domain.SearchOutcome, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}

	var entry cachedOutcome
	if err := json.Unmarshal(data, &entry); err != nil {
		s.evict(ctx, key, "undecodable cache entry")
		return nil, false
	}

	outcome := &domain.SearchOutcome{
		Status:   entry.Status,
		Strategy: entry.Strategy,
		Query:    analysis,
		Products: make([]*domain.Product, 0, len(entry.IDs)),
		Scores:   entry.Scores,
		Degraded: entry.Degraded,
		Cached:   true,
	}
	for _, id := range entry.IDs {
		p, ok := s.catalog.ByID(id)
		if !ok {
			s.evict(ctx, key, "cache entry references unknown product")
			return nil, false
		}
		outcome.Products = append(outcome.Products, p)
	}
	if outcome.Scores == nil {
		outcome.Scores = []float64{}
	}
	return outcome, true
}

func (s *SearchService) evict(ctx context.Context, key, reason string) {
	s.logger.Debug().Str("key", key).Msg(reason)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// setInCache stores an outcome in cache
func (s *SearchService) setInCache(ctx context.Context, key string, outcome *domain.SearchOutcome) error {
	if s.cache == nil {
		return nil
	}

	entry := cachedOutcome{
		Status:   outcome.Status,
		Strategy: outcome.Strategy,
		IDs:      make([]int, 0, len(outcome.Products)),
		Scores:   outcome.Scores,
		Degraded: outcome.Degraded,
	}
	for _, p := range outcome.Products {
		entry.IDs = append(entry.IDs, p.ID)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
