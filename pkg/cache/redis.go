package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisSettings struct {
	prefix     string
	defaultTTL time.Duration
}

// Redis is a cache backed by Redis. Values are stored as JSON.
type Redis[V any] struct {
	client   redis.UniversalClient
	settings redisSettings
}

// RedisSetting configures a Redis cache regardless of its value type.
type RedisSetting func(*redisSettings)

// WithPrefix namespaces keys as "{prefix}:{key}".
func WithPrefix(prefix string) RedisSetting {
	return func(s *redisSettings) {
		s.prefix = prefix
	}
}

// WithRedisDefaultTTL sets the TTL used when Set is called with zero.
// Default: 1 hour.
func WithRedisDefaultTTL(d time.Duration) RedisSetting {
	return func(s *redisSettings) {
		s.defaultTTL = d
	}
}

// NewRedis creates a Redis-backed cache. The client lifecycle stays with the caller.
func NewRedis[V any](client redis.UniversalClient, opts ...RedisSetting) *Redis[V] {
	s := redisSettings{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(&s)
	}
	return &Redis[V]{client: client, settings: s}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}
	if ttl == 0 {
		ttl = r.settings.defaultTTL
	}
	// Redis reads 0 as no expiration.
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Clear removes every key under the prefix using SCAN, or flushes the
// database when no prefix is set.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.settings.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.settings.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op; the client is owned by the caller.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.settings.prefix == "" {
		return key
	}
	return r.settings.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
