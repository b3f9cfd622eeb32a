package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Catalog is the read-only product collection the search pipeline runs against
type Catalog interface {
	Products() []*Product
	ByID(id int) (*Product, bool)
	Count() int
}
