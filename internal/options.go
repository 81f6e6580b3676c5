package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/plain/pkg/cache"
	"github.com/dmitrymomot/plain/pkg/config"
	"github.com/dmitrymomot/plain/pkg/database"
	"github.com/dmitrymomot/plain/pkg/logger"
	"github.com/dmitrymomot/plain/pkg/view"
)

// queryCachePrefix namespaces query results stored in Redis.
const queryCachePrefix = "plain:query"

// Option configures the application.
type Option func(*App)

// WithEnvironment sets the environment name used for configuration overrides.
// Defaults to "development".
func WithEnvironment(env string) Option {
	return func(a *App) {
		if env != "" {
			a.environment = env
		}
	}
}

// WithPaths registers named directories. The "config" and "views" entries
// set up the configuration loader and the template engine.
//
// Example:
//
//	plain.New(
//	    plain.WithPaths(map[string]string{
//	        plain.PathConfig: "./config",
//	        plain.PathViews:  "./views",
//	    }),
//	)
func WithPaths(paths map[string]string) Option {
	return func(a *App) {
		for name, dir := range paths {
			a.paths[name] = dir
		}
	}
}

// WithPath registers a single named directory.
func WithPath(name, dir string) Option {
	return WithPaths(map[string]string{name: dir})
}

// WithConfigLoader sets the configuration loader, overriding the "config" path.
func WithConfigLoader(l *config.Loader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	plain.New(
//	    plain.WithLogger("web", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDatabase configures the database explicitly instead of reading the
// "database" configuration file. An invalid configuration panics in New.
//
// Example:
//
//	plain.WithDatabase(database.Config{"driver": "xml", "path": "./data"})
func WithDatabase(cfg database.Config) Option {
	return func(a *App) {
		a.dbConfig = cfg.Clone()
	}
}

// WithDatabaseManager replaces the application database manager.
// Database options given with WithDatabaseOptions are ignored.
func WithDatabaseManager(m *database.Manager) Option {
	return func(a *App) {
		a.db = m
	}
}

// WithDatabaseOptions passes options to the database manager.
func WithDatabaseOptions(opts ...database.ManagerOption) Option {
	return func(a *App) {
		a.dbOptions = append(a.dbOptions, opts...)
	}
}

// WithQueryCache caches query results in c for ttl.
func WithQueryCache(c cache.Cache[[]*database.Row], ttl time.Duration) Option {
	return WithDatabaseOptions(database.WithCache(c, ttl))
}

// WithRedisQueryCache caches query results in Redis for ttl.
//
// Example:
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	// ...
//	plain.New(plain.WithRedisQueryCache(client, time.Minute))
func WithRedisQueryCache(client goredis.UniversalClient, ttl time.Duration) Option {
	return WithQueryCache(cache.NewRedis[[]*database.Row](client, cache.WithPrefix(queryCachePrefix)), ttl)
}

// WithViews sets the template engine, overriding the "views" path.
func WithViews(e *view.Engine) Option {
	return func(a *App) {
		a.views = e
	}
}

// WithMiddleware adds middleware applied to every dispatched handler,
// error handlers included. Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds net/http middleware to the outer router.
// It runs for every request, including health, metrics and static files.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	plain.New(
//	    plain.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	plain.WithHealthChecks(
//	    plain.WithDatabaseCheck(),
//	    plain.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics exposes Prometheus metrics for dispatched requests.
//
// Example:
//
//	plain.WithMetrics(plain.WithMetricsPath("/internal/metrics"))
func WithMetrics(opts ...MetricsOption) Option {
	return func(a *App) {
		cfg := &metricsConfig{
			path:      defaultMetricsPath,
			namespace: defaultMetricsNamespace,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.metricsConfig = cfg
	}
}
