package internal

import "github.com/dmitrymomot/plain/pkg/route"

// Handler declares routes on a router.
//
// Example:
//
//	type UsersHandler struct {
//	    users *model.Repository
//	}
//
//	func (h *UsersHandler) Routes(r plain.Router) {
//	    r.GET(`/users/(\d+)`, h.show)
//	    r.POST(`/users`, h.create)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives the request Context and the groups captured by the route
// pattern, in order. The returned value becomes the response body.
type HandlerFunc = route.HandlerFunc[Context]

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect the request, short-circuit processing,
// or replace the result.
//
// Example:
//
//	func Auth(next plain.HandlerFunc) plain.HandlerFunc {
//	    return func(c plain.Context, args ...string) (any, error) {
//	        if c.Header("Authorization") == "" {
//	            return nil, plain.ErrUnauthorized("login required")
//	        }
//	        return next(c, args...)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// chain applies mw so that the first middleware is the outermost.
func chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
