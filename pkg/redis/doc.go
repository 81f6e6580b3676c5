// Package redis opens go-redis clients for the query result cache.
//
// The client is configured from a [Config], usually parsed from the environment:
//
//	cfg, err := config.Parse[redis.Config]()
//	if err != nil {
//		return err
//	}
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
// Open pings the server before returning and retries with linear backoff while
// the server is unreachable. [Healthcheck] wraps the client into a readiness
// probe and [Shutdown] into a server shutdown hook.
//
// Errors are sentinels joined with the underlying cause:
//
//   - [ErrEmptyConnectionURL] - no URL configured
//   - [ErrFailedToParseURL] - unsupported scheme or malformed URL
//   - [ErrConnectionFailed] - ping failed after all attempts
//   - [ErrHealthcheckFailed] - ping failed during a probe
package redis
