package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value store with per-entry TTL.
type Cache[V any] interface {
	// Get returns ErrNotFound if the key is missing or expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

var group singleflight.Group

type computed[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses on the same key share a single fn call. Values are only
// stored when fn succeeds; a failing Set is ignored.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	// Keyed per cache instance so equal keys in different caches never share a call.
	res, err, _ := group.Do(fmt.Sprintf("%p:%s", c, key), func() (any, error) {
		v, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, v, ttl)
		return computed[V]{val: v, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	out, _ := res.(computed[V])
	return out.val, nil
}
