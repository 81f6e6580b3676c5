// Package logger builds slog loggers with context extraction and optional
// Sentry reporting.
//
// Extractors run on every log call and add request-scoped attributes:
//
//	log := logger.New(logger.FromContext(requestIDKey{}, "request_id"))
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request processed","status":200,"request_id":"abc-123"}
//
// [NewWithConfig] selects level, format and Sentry from a [Config], usually
// parsed from the environment. Without SENTRY_DSN only the writer receives
// logs, so the same code runs in development and production. Any
// slog.Handler can be wrapped with [Decorate] to get the same extraction.
//
// [NewNope] is the default logger of components that were not given one.
package logger
