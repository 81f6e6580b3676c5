// Package internal provides the core types and implementation for the plain framework.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/plain" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: wires configuration, database, views and routing, and runs the server
//   - Context: request/response access and application services for handlers
//   - Router: interface handlers use to declare GET, POST and error routes
//   - Handler: interface implemented by types that declare routes
//   - HandlerFunc: route handler receiving captured arguments and returning a result
//   - Middleware: wraps handlers to add cross-cutting concerns
//   - Request: transport-neutral request the dispatcher matches on
//
// # Dispatch
//
// Requests first pass through a chi router that serves static files, health
// checks and metrics. Everything else is handed to a route dispatcher which
// matches the path against regular expressions registered for the request
// method. The handler result is encoded by type and written to the response.
//
// Errors are mapped to a status code with StatusOf. The error route for that
// code runs with Context.Failure returning the original error; if it fails
// too, a plain text body is written.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to database
// queries and other blocking calls:
//
//	func (h *Users) list(c internal.Context, _ ...string) (any, error) {
//	    db, err := c.DB()
//	    if err != nil {
//	        return nil, err
//	    }
//	    return db.Select().From("users").Get(c)
//	}
package internal
