// Package cache provides a small TTL cache abstraction with in-memory and
// Redis backends. The database package uses it to memoize SELECT results.
//
// Both backends implement [Cache]. TTL semantics for Set:
//
//   - Positive duration: the entry expires after this duration
//   - Zero: the backend default TTL applies
//   - Negative: the entry never expires
//
// # Backends
//
//	mem := cache.NewMemory[[]string](cache.WithDefaultTTL(time.Minute))
//
//	client, _ := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	rc := cache.NewRedis[[]string](client, cache.WithPrefix("queries"))
//
// The Redis backend stores values as JSON, so V must round-trip through
// encoding/json.
//
// # Stampede protection
//
// [GetOrSet] computes a missing value once even when many goroutines miss the
// same key at the same time.
package cache
