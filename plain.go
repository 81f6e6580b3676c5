package plain

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/plain/internal"
	"github.com/dmitrymomot/plain/pkg/cache"
	"github.com/dmitrymomot/plain/pkg/config"
	"github.com/dmitrymomot/plain/pkg/database"
	"github.com/dmitrymomot/plain/pkg/health"
	"github.com/dmitrymomot/plain/pkg/logger"
	"github.com/dmitrymomot/plain/pkg/view"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and application services.
	Context = internal.Context

	// Request is the transport-neutral request the dispatcher routes on.
	Request = internal.Request

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// MetricsOption configures the metrics endpoint.
	MetricsOption = internal.MetricsOption

	// Component is the interface for renderable templates.
	// This is templ.Component.
	Component = internal.Component

	// HTTPError is an error carrying a response status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// StatusCoder is implemented by errors that choose their response status.
	StatusCoder = internal.StatusCoder

	// ResponseWriter wraps http.ResponseWriter with write tracking and hooks.
	ResponseWriter = internal.ResponseWriter

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor
)

// Well-known path names.
const (
	DefaultEnvironment = internal.DefaultEnvironment
	PathConfig         = internal.PathConfig
	PathViews          = internal.PathViews
)

// Errors
var (
	ErrNotFound   = internal.ErrNotFound
	ErrNoDatabase = internal.ErrNoDatabase
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	app := plain.New(
//	    plain.WithPaths(map[string]string{plain.PathConfig: "./config"}),
//	    plain.WithHandlers(handlers.NewPages()),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewRequest builds a request from a raw URI and method.
func NewRequest(uri, method string) *Request {
	return internal.NewRequest(uri, method)
}

// RequestFromHTTP wraps an incoming HTTP request.
func RequestFromHTTP(r *http.Request) *Request {
	return internal.RequestFromHTTP(r)
}

// App options

// WithEnvironment sets the environment name used for configuration overrides.
func WithEnvironment(env string) Option {
	return internal.WithEnvironment(env)
}

// WithPaths registers named directories ("config", "views", ...).
func WithPaths(paths map[string]string) Option {
	return internal.WithPaths(paths)
}

// WithPath registers a single named directory.
func WithPath(name, dir string) Option {
	return internal.WithPath(name, dir)
}

// WithConfigLoader sets the configuration loader.
func WithConfigLoader(l *config.Loader) Option {
	return internal.WithConfigLoader(l)
}

// WithLogger creates a logger with a component name and optional extractors.
//
// Example:
//
//	plain.New(
//	    plain.WithLogger("web", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithDatabase configures the database explicitly.
func WithDatabase(cfg database.Config) Option {
	return internal.WithDatabase(cfg)
}

// WithDatabaseManager replaces the application database manager.
func WithDatabaseManager(m *database.Manager) Option {
	return internal.WithDatabaseManager(m)
}

// WithDatabaseOptions passes options to the database manager.
func WithDatabaseOptions(opts ...database.ManagerOption) Option {
	return internal.WithDatabaseOptions(opts...)
}

// WithQueryCache caches query results in c for ttl.
func WithQueryCache(c cache.Cache[[]*database.Row], ttl time.Duration) Option {
	return internal.WithQueryCache(c, ttl)
}

// WithRedisQueryCache caches query results in Redis for ttl.
func WithRedisQueryCache(client goredis.UniversalClient, ttl time.Duration) Option {
	return internal.WithRedisQueryCache(client, ttl)
}

// WithViews sets the template engine.
func WithViews(e *view.Engine) Option {
	return internal.WithViews(e)
}

// WithMiddleware adds middleware applied to every dispatched handler.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http middleware to the outer router.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks enables health check endpoints with optional configuration.
//
// Example:
//
//	plain.WithHealthChecks(
//	    plain.WithDatabaseCheck(),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics exposes Prometheus metrics for dispatched requests.
func WithMetrics(opts ...MetricsOption) Option {
	return internal.WithMetrics(opts...)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithDatabaseCheck adds a readiness check pinging the application database.
func WithDatabaseCheck() HealthOption {
	return internal.WithDatabaseCheck()
}

// Metrics options

// WithMetricsPath sets the metrics endpoint path.
func WithMetricsPath(path string) MetricsOption {
	return internal.WithMetricsPath(path)
}

// WithMetricsNamespace sets the metric name prefix.
func WithMetricsNamespace(ns string) MetricsOption {
	return internal.WithMetricsNamespace(ns)
}

// Run options

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run before the server accepts requests.
func StartupHook(fn func(ctx context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
func ShutdownHook(fn func(ctx context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithError attaches the underlying cause to an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// StatusOf maps a handler error to a response status code.
func StatusOf(err error) int {
	return internal.StatusOf(err)
}

// Helpers

// Arg converts the i-th captured route argument to T.
func Arg[T ~string | ~int | ~int64 | ~float64 | ~bool](args []string, i int) T {
	return internal.Arg[T](args, i)
}

// Query retrieves a typed query parameter.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault retrieves a typed query parameter with a default value.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// ContextValue retrieves a typed value stored with Context.Set.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}
