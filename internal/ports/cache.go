package ports

import (
	"context"
	"time"
)

// CacheRepository is a byte-oriented cache with per-key TTLs. Get returns
// (nil, nil) for a missing key.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Health(ctx context.Context) error
}
