// Package plain is a small web application framework built around a regular
// expression route dispatcher, an active-record style query builder and
// file-backed configuration.
//
// # Quick Start
//
// Create an application with plain.New, register routes and call Run:
//
//	app := plain.New(
//	    plain.WithPaths(map[string]string{
//	        plain.PathConfig: "./config",
//	        plain.PathViews:  "./views",
//	    }),
//	    plain.WithHandlers(handlers.NewUsers()),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// Routes are regular expressions matched against the whole request path.
// Capture groups are passed to the handler as positional arguments:
//
//	func (h *Users) Routes(r plain.Router) {
//	    r.GET(`/users/(\d+)`, h.show)
//	    r.POST(`/users`, h.create)
//	    r.Error(404, h.notFound)
//	}
//
//	func (h *Users) show(c plain.Context, args ...string) (any, error) {
//	    db, err := c.DB()
//	    if err != nil {
//	        return nil, err
//	    }
//	    row, err := db.Select().From("users").Where("id", args[0]).GetOne(c)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return c.View("users/show", row.Map()), nil
//	}
//
// Routes are tried in registration order and the first match wins. Handlers
// return a result which is written as the response body: strings and views
// as HTML, byte slices with a detected content type, templ components
// rendered, anything else as JSON.
//
// # Errors
//
// A returned error selects the error route for its status code. [HTTPError]
// carries its own code, missing records and unmatched routes are 404 and any
// other error is 500. Without an error route a short plain text body is sent.
//
// # Middleware
//
// Middleware wraps handlers:
//
//	func Timing(next plain.HandlerFunc) plain.HandlerFunc {
//	    return func(c plain.Context, args ...string) (any, error) {
//	        start := time.Now()
//	        res, err := next(c, args...)
//	        c.LogInfo("request", "duration", time.Since(start))
//	        return res, err
//	    }
//	}
//
// # Configuration
//
// Files in the config directory are modules addressed by name.
// Context.Config("app") reads config/app.yaml (or .json) merged with
// config/<environment>/app.yaml. The "database" module configures the
// database the first time Context.DB is called.
//
// # One-shot requests
//
// App.Serve dispatches a single request without a listener and writes the
// body to any io.Writer, which makes it usable from a CGI style entry point.
package plain
