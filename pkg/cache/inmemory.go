package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache stores JSON text under namespaced keys with a per-entry TTL.
// Reads fail open: any problem is reported as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(key string)
	Flush()
}

type goCache struct {
	internal *cache.Cache
}

// NewCache returns a new Cache instance with default expiration and cleanup interval
func NewCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	return &goCache{
		internal: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *goCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	val, found := c.internal.Get(key)
	if !found {
		return nil, false
	}
	raw, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true
}

func (c *goCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	c.internal.Set(key, raw, ttl)
	return nil
}

func (c *goCache) Delete(key string) {
	c.internal.Delete(key)
}

func (c *goCache) Flush() {
	c.internal.Flush()
}

// GetJSON decodes the entry stored under key into T. A corrupt entry counts as a miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var zero T
	raw, found := c.Get(ctx, key)
	if !found {
		return zero, false
	}
	var typedVal T
	if err := json.Unmarshal(raw, &typedVal); err != nil {
		return zero, false
	}
	return typedVal, true
}
