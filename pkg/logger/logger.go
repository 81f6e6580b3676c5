package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config selects the log output. Fields map to environment variables.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"PLAIN_LOG_LEVEL" envDefault:"info"`
	// Format is json or text.
	Format string `env:"PLAIN_LOG_FORMAT" envDefault:"json"`

	// With a DSN, warnings are sent to Sentry as logs and errors as issues.
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// New returns a JSON logger writing info and above to stdout.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithConfig(os.Stdout, Config{}, extractors...)
}

// NewWithConfig builds a logger writing to w according to cfg.
// If Sentry cannot be initialized the logger keeps writing to w only.
func NewWithConfig(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			EnableLogs:  true,
		})
		if err != nil {
			slog.New(h).Error("failed to initialize sentry", slog.String("error", err.Error()))
		} else {
			sh := sentryslog.Option{
				EventLevel: []slog.Level{slog.LevelError},
				LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
			}.NewSentryHandler(context.Background())
			h = newMultiHandler(h, sh)
		}
	}

	return slog.New(Decorate(h, extractors...))
}

// NewNope returns a logger that discards everything.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to a slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
