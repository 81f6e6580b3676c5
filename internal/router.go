package internal

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/plain/pkg/route"
)

// Router is the interface handlers use to declare routes.
// Patterns are regular expressions matched against the whole request path;
// their capture groups become the handler arguments. Registering an invalid
// pattern panics.
type Router interface {
	// GET registers a handler for GET requests.
	GET(pattern string, h HandlerFunc, mw ...Middleware)

	// POST registers a handler for POST requests.
	POST(pattern string, h HandlerFunc, mw ...Middleware)

	// Error registers the handler rendered for the given status code.
	// Error handlers receive no arguments; Context.Failure returns the cause.
	Error(code int, h HandlerFunc, mw ...Middleware)
}

// routerAdapter registers routes on the app's table.
type routerAdapter struct {
	table *route.Table[Context]
}

func (r *routerAdapter) GET(pattern string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodGet, pattern, h, mw...)
}

func (r *routerAdapter) POST(pattern string, h HandlerFunc, mw ...Middleware) {
	r.handle(http.MethodPost, pattern, h, mw...)
}

func (r *routerAdapter) Error(code int, h HandlerFunc, mw ...Middleware) {
	if h == nil {
		panic(fmt.Sprintf("plain: error %d: %v", code, route.ErrNilHandler))
	}
	if err := r.table.RegisterError(code, chain(h, mw...)); err != nil {
		panic(fmt.Sprintf("plain: error %d: %v", code, err))
	}
}

func (r *routerAdapter) handle(method, pattern string, h HandlerFunc, mw ...Middleware) {
	if h == nil {
		panic(fmt.Sprintf("plain: %s %s: %v", method, pattern, route.ErrNilHandler))
	}
	if err := r.table.Register(method, pattern, chain(h, mw...)); err != nil {
		panic(fmt.Sprintf("plain: %s %s: %v", method, pattern, err))
	}
}
