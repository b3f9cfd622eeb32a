// Package app assembles the search engine from configuration. Both the HTTP
// server and the CLI start from here.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/elcom/backend/config"
	"github.com/elcom/backend/internal/infrastructure/cache"
	"github.com/elcom/backend/internal/infrastructure/catalog"
	"github.com/elcom/backend/internal/usecase"
	"github.com/elcom/backend/internal/vocabulary"
)

// App holds the wired search engine
type App struct {
	Search    *usecase.SearchService
	Formatter *usecase.Formatter
	cache     cache.Cache
}

// New loads the vocabulary and catalog and builds the search service.
// A catalog that cannot be loaded is an error; callers treat it as fatal.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	vocab, err := vocabulary.Load(cfg.Catalog.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	store, err := catalog.LoadFile(cfg.Catalog.Path, vocab, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	c, err := cache.New(cache.Config{
		Type:       cfg.Cache.Type,
		RedisURL:   cfg.Cache.RedisURL,
		MaxEntries: cfg.Cache.MaxEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	logger.Info().
		Int("products", store.Count()).
		Str("cache", cfg.Cache.Type).
		Dur("cache_ttl", cfg.Cache.TTL).
		Float64("fuzzy_threshold", cfg.Search.FuzzyThreshold).
		Float64("min_relevance", cfg.Search.MinRelevance).
		Msg("catalog loaded")

	search := usecase.NewSearchService(store, vocab, c, nil, usecase.SearchServiceConfig{
		MaxResults:                   cfg.Search.MaxResults,
		MinRelevance:                 cfg.Search.MinRelevance,
		FuzzyThreshold:               cfg.Search.FuzzyThreshold,
		SpellingCutoff:               cfg.Search.SpellingCutoff,
		CacheTTL:                     cfg.Cache.TTL,
		EnableStopWords:              cfg.Search.EnableStopWords,
		EnableInflectionFolding:      cfg.Search.EnableInflectionFolding,
		EnableSpellingCorrection:     cfg.Search.EnableSpellingCorrection,
		EnableFuzzyName:              cfg.Search.EnableFuzzyName,
		EnableCategoryClassification: cfg.Search.EnableCategoryClassification,
		Debug:                        cfg.Search.Debug,
	}, logger)

	return &App{
		Search:    search,
		Formatter: usecase.NewFormatter(cfg.Search.EnableHighlighting),
		cache:     c,
	}, nil
}

// Close releases the cache backend
func (a *App) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}
