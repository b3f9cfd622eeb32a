package cache

import (
	"fmt"
	"io"
	"strings"

	"github.com/elcom/backend/internal/domain"
)

// Backend names accepted by New
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
	TypeNone   = "none"
)

// Config selects and configures a cache backend
type Config struct {
	Type       string
	RedisURL   string
	KeyPrefix  string
	MaxEntries int
}

// Cache is a CacheRepository that owns resources to release on shutdown.
type Cache interface {
	domain.CacheRepository
	io.Closer
}

// New builds the configured backend. TypeNone returns a nil Cache, which the
// search service treats as caching disabled.
func New(cfg Config) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", TypeMemory:
		return NewMemoryCache(cfg.MaxEntries), nil
	case TypeRedis:
		rc, err := NewRedisCache(cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case TypeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache type %q", domain.ErrCacheUnavailable, cfg.Type)
	}
}
