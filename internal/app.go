package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/plain/pkg/config"
	"github.com/dmitrymomot/plain/pkg/database"
	"github.com/dmitrymomot/plain/pkg/health"
	"github.com/dmitrymomot/plain/pkg/logger"
	"github.com/dmitrymomot/plain/pkg/route"
	"github.com/dmitrymomot/plain/pkg/view"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

const (
	// DefaultEnvironment is used when no environment is configured.
	DefaultEnvironment = "development"

	// PathConfig names the directory holding configuration files.
	PathConfig = "config"

	// PathViews names the directory holding view templates.
	PathViews = "views"

	// databaseConfigName is the configuration file the database is set up from.
	databaseConfigName = "database"

	// notFoundBody is written for unmatched requests without a 404 error route.
	notFoundBody = "404!"
)

// App orchestrates the application lifecycle.
// It owns the route table, the application services handlers reach through
// Context, and the HTTP server.
type App struct {
	environment string
	paths       map[string]string
	loader      *config.Loader
	logger      *slog.Logger

	db         *database.Manager
	dbOptions  []database.ManagerOption
	dbConfig   database.Config
	dbConfigMu sync.Mutex

	views      *view.Engine
	dispatcher *route.Dispatcher[Context]
	router     chi.Router
	metrics    *dispatchMetrics

	healthConfig    *healthConfig
	metricsConfig   *metricsConfig
	middlewares     []Middleware
	httpMiddlewares []func(http.Handler) http.Handler
	handlers        []Handler
	staticRoutes    []staticRoute
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
// Routes may still be added after New through GET, POST and Error.
//
// Example:
//
//	app := plain.New(
//	    plain.WithPaths(map[string]string{"config": "./config", "views": "./views"}),
//	    plain.WithHandlers(handlers.NewUsers()),
//	)
func New(opts ...Option) *App {
	a := &App{
		environment: DefaultEnvironment,
		paths:       make(map[string]string),
		logger:      logger.NewNope(),
		dispatcher:  route.NewDispatcher[Context](),
		router:      chi.NewRouter(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.loader == nil {
		if dir := a.paths[PathConfig]; dir != "" {
			a.loader = config.NewLoader(dir, a.environment)
		}
	}
	if a.views == nil {
		if dir := a.paths[PathViews]; dir != "" {
			a.views = view.NewDirEngine(dir)
		}
	}
	if a.db == nil {
		a.db = database.NewManager(a.dbOptions...)
	}
	if a.dbConfig != nil {
		if err := a.db.Configure(a.dbConfig); err != nil {
			panic(fmt.Sprintf("database: %v", err))
		}
	}
	if a.metricsConfig != nil {
		a.metrics = newDispatchMetrics(a.metricsConfig)
	}

	a.setupRoutes()
	return a
}

// Environment returns the application environment name.
func (a *App) Environment() string {
	return a.environment
}

// Path returns the directory registered under name, or "".
func (a *App) Path(name string) string {
	return a.paths[name]
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Views returns the template engine, or nil if none is configured.
func (a *App) Views() *view.Engine {
	return a.views
}

// Config returns the configuration file name merged with its environment override.
func (a *App) Config(name string) (map[string]any, error) {
	if a.loader == nil {
		return nil, fmt.Errorf("%w: %s: no config path", config.ErrNotFound, name)
	}
	return a.loader.Get(name)
}

// Database returns the database manager. When it has not been configured
// explicitly, it is configured from the "database" configuration file.
func (a *App) Database() (*database.Manager, error) {
	a.dbConfigMu.Lock()
	defer a.dbConfigMu.Unlock()

	if a.db.Configured() {
		return a.db, nil
	}
	cfg, err := a.Config(databaseConfigName)
	if err != nil {
		return nil, errors.Join(ErrNoDatabase, err)
	}
	if err := a.db.Configure(database.Config(cfg)); err != nil {
		return nil, err
	}
	return a.db, nil
}

// Router returns the route registration interface.
func (a *App) Router() Router {
	return &routerAdapter{table: a.dispatcher.Table}
}

// GET registers a handler for GET requests. Invalid patterns panic.
func (a *App) GET(pattern string, h HandlerFunc, mw ...Middleware) {
	a.Router().GET(pattern, h, mw...)
}

// POST registers a handler for POST requests. Invalid patterns panic.
func (a *App) POST(pattern string, h HandlerFunc, mw ...Middleware) {
	a.Router().POST(pattern, h, mw...)
}

// Error registers the handler rendered for the given status code.
func (a *App) Error(code int, h HandlerFunc, mw ...Middleware) {
	a.Router().Error(code, h, mw...)
}

// Handler returns the HTTP handler serving the application.
func (a *App) Handler() http.Handler {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Handle dispatches req and returns the handler result without writing a
// response. Unmatched requests return ErrNotFound.
func (a *App) Handle(req *Request) (any, error) {
	c := newContext(newStreamWriter(nil), req, a)
	_, res, err := a.dispatch(c)
	return res, err
}

// Serve dispatches a single request and writes the response body to w.
// It returns the response status code.
func (a *App) Serve(w io.Writer, method, path string) (int, error) {
	sw := newStreamWriter(w)
	hr := NewRequest(path, method).HTTP()
	a.router.ServeHTTP(sw, hr)
	return sw.status, sw.err
}

// setupRoutes configures the router with middleware and the dispatcher.
func (a *App) setupRoutes() {
	a.router.Use(middleware.Recoverer)
	for _, mw := range a.httpMiddlewares {
		a.router.Use(mw)
	}

	// Mount static file handlers
	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	// Register health check endpoints
	if a.healthConfig != nil {
		checks := make(health.Checks, len(a.healthConfig.checks)+1)
		for name, fn := range a.healthConfig.checks {
			checks[name] = fn
		}
		if a.healthConfig.database {
			checks[databaseConfigName] = a.pingDatabase
		}
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(checks, health.WithLogger(a.logger)))
	}

	if a.metrics != nil {
		a.router.Handle(a.metrics.path, a.metrics.handler())
	}

	// Register handlers
	r := a.Router()
	for _, h := range a.handlers {
		h.Routes(r)
	}

	a.router.Handle("/*", http.HandlerFunc(a.serveDispatch))
}

func (a *App) pingDatabase(ctx context.Context) error {
	m, err := a.Database()
	if err != nil {
		return err
	}
	return database.Healthcheck(m)(ctx)
}

// serveDispatch routes an HTTP request through the dispatcher.
func (a *App) serveDispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c := newContext(w, RequestFromHTTP(r), a)

	pattern, res, err := a.dispatch(c)
	a.respond(c, res, err)

	a.metrics.observe(c.request.Method, pattern, c.response.Status(), time.Since(start))
}

// dispatch resolves the request and invokes the matched handler.
// The matched pattern is returned for instrumentation.
func (a *App) dispatch(c *requestContext) (string, any, error) {
	m, err := a.dispatcher.Lookup(c.request.Method, c.request.PathInfo)
	if err != nil {
		return "", nil, err
	}
	h := chain(m.Route.Handler, a.middlewares...)
	res, err := h(c, m.Args...)
	return m.Route.Pattern.String(), res, err
}

// respond writes the handler result, or renders err.
func (a *App) respond(c *requestContext, res any, err error) {
	if err != nil {
		a.fail(c, err)
		return
	}
	if c.Written() {
		return
	}
	if err := a.write(c, http.StatusOK, res); err != nil {
		a.fail(c, err)
	}
}

// fail renders err through the error route registered for its status code,
// falling back to a plain text body.
func (a *App) fail(c *requestContext, err error) {
	code := StatusOf(err)
	if code >= http.StatusInternalServerError {
		c.LogError("request failed",
			slog.String("method", c.request.Method),
			slog.String("path", c.request.PathInfo),
			slog.Int("status", code),
			slog.Any("error", err),
		)
	} else {
		c.LogDebug("request rejected",
			slog.String("method", c.request.Method),
			slog.String("path", c.request.PathInfo),
			slog.Int("status", code),
			slog.Any("error", err),
		)
	}
	if c.Written() {
		return
	}

	if h, ok := a.dispatcher.ErrorHandler(code); ok {
		c.failure = err
		res, herr := chain(h, a.middlewares...)(c)
		if herr == nil {
			if c.Written() {
				return
			}
			if herr = a.write(c, code, res); herr == nil {
				return
			}
		}
		c.LogError("error handler failed", slog.Int("status", code), slog.Any("error", herr))
		if c.Written() {
			return
		}
	}

	body := http.StatusText(code)
	switch {
	case code == http.StatusNotFound && AsHTTPError(err) == nil:
		body = notFoundBody
	case AsHTTPError(err) != nil && AsHTTPError(err).Message != "":
		body = AsHTTPError(err).Message
	}
	_ = c.String(code, body)
}

// write encodes a handler result. Components are rendered into a buffer
// first so a failing template leaves the response untouched.
func (a *App) write(c *requestContext, code int, res any) error {
	w := c.response
	var (
		body        []byte
		contentType string
	)

	switch v := res.(type) {
	case nil:
		if code == http.StatusOK {
			code = http.StatusNoContent
		}
		w.WriteHeader(code)
		return nil
	case Component:
		var buf bytes.Buffer
		if err := v.Render(c.Context(), &buf); err != nil {
			return err
		}
		body, contentType = buf.Bytes(), "text/html; charset=utf-8"
	case string:
		body, contentType = []byte(v), "text/html; charset=utf-8"
	case []byte:
		body, contentType = v, http.DetectContentType(v)
	case fmt.Stringer:
		body, contentType = []byte(v.String()), "text/html; charset=utf-8"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		body, contentType = data, "application/json; charset=utf-8"
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(code)
	_, err := w.Write(body)
	return err
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	database      bool
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	plain.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// WithDatabaseCheck adds a "database" readiness check pinging the application database.
func WithDatabaseCheck() HealthOption {
	return func(c *healthConfig) {
		c.database = true
	}
}
