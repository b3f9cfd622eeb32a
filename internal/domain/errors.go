package domain

import "errors"

var (
	// ErrCatalogLoad is returned when the catalog file cannot be read or decoded
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrEmptyCatalog is returned when a catalog holds no usable product records
	ErrEmptyCatalog = errors.New("catalog contains no valid products")

	// ErrCatalogUnavailable is returned when a search runs without a loaded catalog
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidVocabulary is returned when the filter vocabulary cannot be compiled
	ErrInvalidVocabulary = errors.New("invalid filter vocabulary")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
