// Package route matches request paths against regular-expression patterns and
// dispatches them to handlers with the captured groups as positional arguments.
//
// Patterns are RE2 expressions anchored to the whole path, so "/test/(\d+)"
// matches "/test/15" but neither "/test/15/edit" nor "/x/test/15". Patterns are
// compiled when registered: a malformed expression is reported by Register and
// never surfaces during dispatch.
//
// # Precedence
//
// Routes are kept per HTTP method in registration order and the first pattern
// that fully matches wins. Registering the same (method, pattern) pair again
// replaces the handler but keeps the original position.
//
// # Usage
//
//	d := route.NewDispatcher[context.Context]()
//	_ = d.Register(http.MethodGet, `/users/(\d+)`, func(ctx context.Context, args ...string) (any, error) {
//		return "user " + args[0], nil
//	})
//
//	res, err := d.Dispatch(ctx, http.MethodGet, "/users/42")
//	if errors.Is(err, route.ErrNotFound) {
//		// render a 404 page
//	}
//
// Only GET and POST are routable, compared case-sensitively like HTTP methods.
// Dispatching any other method, "get" included, yields [ErrNotFound]
// regardless of the registered routes.
//
// # Error routes
//
// A separate collection keyed by numeric status code holds error handlers,
// registered with [Table.RegisterError] and invoked by [Dispatcher.DispatchError].
package route
