// Command plain serves an application described by its config directory.
//
// Routes come from the "routes" config module. With REQUEST_METHOD set the
// process dispatches a single request, CGI style, and prints the body to
// stdout; otherwise it listens on PLAIN_ADDR.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/plain"
	"github.com/dmitrymomot/plain/middlewares"
	"github.com/dmitrymomot/plain/pkg/config"
	"github.com/dmitrymomot/plain/pkg/logger"
	"github.com/dmitrymomot/plain/pkg/redis"
)

type settings struct {
	Env       string `env:"PLAIN_ENV" envDefault:"development"`
	Addr      string `env:"PLAIN_ADDR" envDefault:":8080"`
	ConfigDir string `env:"PLAIN_CONFIG_DIR" envDefault:"./config"`
	ViewsDir  string `env:"PLAIN_VIEWS_DIR" envDefault:"./views"`

	// CGI style one-shot request.
	RequestMethod string `env:"REQUEST_METHOD"`
	PathInfo      string `env:"PATH_INFO" envDefault:"/"`
	QueryString   string `env:"QUERY_STRING"`

	QueryCacheTTL   time.Duration `env:"PLAIN_QUERY_CACHE_TTL" envDefault:"1m"`
	HandlerTimeout  time.Duration `env:"PLAIN_HANDLER_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"PLAIN_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	Log   logger.Config
	Redis redis.Config
}

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	if err := config.LoadEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := config.Parse[settings]()
	if err != nil {
		return err
	}

	// Keep stdout clean for the response body in one-shot mode.
	logOut := io.Writer(os.Stdout)
	if cfg.RequestMethod != "" {
		logOut = os.Stderr
	}
	log := logger.NewWithConfig(logOut, cfg.Log, middlewares.RequestIDExtractor()).
		With(slog.String("component", "plain"), slog.String("env", cfg.Env))

	loader := config.NewLoader(cfg.ConfigDir, cfg.Env)
	routes, err := loadRoutes(loader)
	if err != nil {
		return err
	}

	health := []plain.HealthOption{plain.WithDatabaseCheck()}
	var closers []func(context.Context) error

	var cacheOpt plain.Option
	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		cacheOpt = plain.WithRedisQueryCache(client, cfg.QueryCacheTTL)
		health = append(health, plain.WithReadinessCheck("redis", redis.Healthcheck(client)))
		closers = append(closers, redis.Shutdown(client))
	}

	opts := []plain.Option{
		plain.WithEnvironment(cfg.Env),
		plain.WithPaths(map[string]string{
			plain.PathConfig: cfg.ConfigDir,
			plain.PathViews:  cfg.ViewsDir,
		}),
		plain.WithConfigLoader(loader),
		plain.WithCustomLogger(log),
		plain.WithHTTPMiddleware(middlewares.CORS()),
		plain.WithMiddleware(handlerMiddleware(cfg.HandlerTimeout)...),
		plain.WithHandlers(routes),
		plain.WithHealthChecks(health...),
		plain.WithMetrics(),
	}
	if cacheOpt != nil {
		opts = append(opts, cacheOpt)
	}

	app := plain.New(opts...)

	if cfg.RequestMethod != "" {
		path := cfg.PathInfo
		if cfg.QueryString != "" {
			path += "?" + cfg.QueryString
		}
		code, err := app.Serve(stdout, cfg.RequestMethod, path)
		log.Debug("request served", slog.String("path", path), slog.Int("status", code))

		closers = append(closers, func(context.Context) error { return app.Close() })
		for _, c := range closers {
			err = errors.Join(err, c(ctx))
		}
		return err
	}

	runOpts := []plain.RunOption{
		plain.Logger(log),
		plain.ShutdownTimeout(cfg.ShutdownTimeout),
		plain.WithContext(ctx),
	}
	for _, c := range closers {
		runOpts = append(runOpts, plain.ShutdownHook(c))
	}
	return app.Run(cfg.Addr, runOpts...)
}

// handlerMiddleware wraps every dispatched handler. Recover sits inside
// Timeout because Timeout runs the handler on its own goroutine.
func handlerMiddleware(timeout time.Duration) []plain.Middleware {
	return []plain.Middleware{
		middlewares.RequestID(),
		middlewares.Timeout(timeout),
		middlewares.Recover(),
	}
}
