package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/plain/pkg/database"
	"github.com/dmitrymomot/plain/pkg/view"
)

// Component is the interface for renderable templates.
type Component = templ.Component

// Context provides request/response access and the application services a
// handler needs. It also implements context.Context by delegating to the
// underlying request context.
type Context interface {
	context.Context

	// Request returns the dispatched request.
	Request() *Request

	// HTTPRequest returns the underlying *http.Request.
	HTTPRequest() *http.Request

	// Response returns the response writer.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Query returns the query parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Form returns the form value by name.
	Form(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects to the given URL with the given status code.
	Redirect(code int, url string) error

	// Render renders a component with the given status code.
	Render(code int, component Component) error

	// Error creates and returns an HTTPError without writing a response.
	// The error should be returned from the handler to select the error route.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Failure returns the error being rendered inside an error handler.
	// It is nil in regular route handlers.
	Failure() error

	// Written returns true if a response has already been written.
	Written() bool

	// Logger returns the logger for advanced usage.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	// The value can be retrieved using Get or from c.Context().Value(key).
	Set(key any, value any)

	// Get retrieves a value from the request context.
	// Returns nil if the key is not found.
	Get(key any) any

	// Environment returns the application environment name.
	Environment() string

	// Path returns a registered application path.
	Path(name string) string

	// Config returns the merged configuration file with the given name.
	Config(name string) (map[string]any, error)

	// DB returns the connection of the application database, connecting on first use.
	DB() (*database.Conn, error)

	// View returns a view over the application's template engine.
	View(name string, data map[string]any) *view.View
}

// requestContext implements the Context interface.
type requestContext struct {
	app      *App
	request  *Request
	response *ResponseWriter
	failure  error
}

// newContext creates a new context with the response wrapper.
func newContext(w http.ResponseWriter, r *Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{
		app:      app,
		request:  r,
		response: rw,
	}
}

func (c *requestContext) Request() *Request {
	return c.request
}

func (c *requestContext) HTTPRequest() *http.Request {
	return c.request.HTTP()
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.Context().Done()
}

func (c *requestContext) Err() error {
	return c.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.Context().Value(key)
}

func (c *requestContext) Query(name string) string {
	return c.request.Query.Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.Query.Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Form(name string) string {
	return c.HTTPRequest().FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.HTTPRequest().Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.HTTPRequest(), url, code)
	return nil
}

func (c *requestContext) Render(code int, component Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.Context(), c.response)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Failure() error {
	return c.failure
}

func (c *requestContext) Written() bool {
	return c.response.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.app.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.Context().Value(key)
}

func (c *requestContext) Environment() string {
	return c.app.environment
}

func (c *requestContext) Path(name string) string {
	return c.app.Path(name)
}

func (c *requestContext) Config(name string) (map[string]any, error) {
	return c.app.Config(name)
}

func (c *requestContext) DB() (*database.Conn, error) {
	m, err := c.app.Database()
	if err != nil {
		return nil, err
	}
	return m.Instance()
}

func (c *requestContext) View(name string, data map[string]any) *view.View {
	return view.New(c.app.views, name, data)
}
