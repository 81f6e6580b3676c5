package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/plain/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// Timeout returns middleware that enforces a request timeout.
// If the handler does not complete in time a TimeoutError is returned,
// which selects the 504 error route.
//
// The handler goroutine keeps running after the timeout and its result is
// discarded. Use GetTimeoutContext in long-running operations to stop early.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := &TimeoutConfig{
		Timeout: timeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context, args ...string) (any, error) {
			ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			type result struct {
				value any
				err   error
			}

			done := make(chan result, 1)
			go func() {
				v, err := next(c, args...)
				done <- result{v, err}
			}()

			select {
			case r := <-done:
				return r.value, r.err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", cfg.Timeout.String())
					return nil, &TimeoutError{Duration: cfg.Timeout}
				}
				return nil, ctx.Err()
			}
		}
	}
}

// timeoutContextKey is used to store the timeout context.
type timeoutContextKey struct{}

// GetTimeoutContext retrieves the timeout context if available.
// This allows handlers to check for cancellation via ctx.Done().
func GetTimeoutContext(c internal.Context) context.Context {
	if v, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return v
	}
	return c.Context()
}
