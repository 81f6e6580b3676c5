package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/dmitrymomot/plain/internal"
)

// newApp builds an application with a single GET route wrapped in mw.
func newApp(pattern string, h internal.HandlerFunc, mw ...internal.Middleware) *internal.App {
	app := internal.New(internal.WithMiddleware(mw...))
	app.GET(pattern, h)
	return app
}

// serve runs req through app and returns the recorded response.
func serve(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
