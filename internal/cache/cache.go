// Package cache memoizes encoded views. Keys carry the dataset generation,
// so entries never need invalidating one by one: a reload purges them all.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// Cache stores encoded views by key
type Cache interface {
	// Get returns the cached value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key
	Set(ctx context.Context, key string, value []byte) error

	// Purge removes every entry
	Purge(ctx context.Context) error

	// Close releases the backend
	Close() error
}

// Key builds the cache key of a view. version identifies the dataset content,
// so instances sharing a backend agree on keys for the same data.
func Key(view string, version uint64, query string) string {
	return fmt.Sprintf("%s:%016x:%s", view, version, query)
}

// New creates the cache selected by cfg.Type. Memory is the default.
func New(cfg config.CacheConfig) (Cache, error) {
	switch utils.CacheType(strings.ToLower(cfg.Type)) {
	case "", utils.CacheTypeMemory:
		return NewMemory(cfg.MaxEntries), nil
	case utils.CacheTypeRedis:
		return newRedisCache(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
			Prefix:   cfg.Prefix,
		})
	case utils.CacheTypeNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s (supported: memory, redis, none)", cfg.Type)
	}
}

// Nop is a cache that stores nothing
type Nop struct{}

// Get always misses
func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards value
func (Nop) Set(context.Context, string, []byte) error { return nil }

// Purge does nothing
func (Nop) Purge(context.Context) error { return nil }

// Close does nothing
func (Nop) Close() error { return nil }
