package internal_test

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/plain/internal"
	"github.com/dmitrymomot/plain/pkg/cache"
	"github.com/dmitrymomot/plain/pkg/config"
	"github.com/dmitrymomot/plain/pkg/database"
	"github.com/dmitrymomot/plain/pkg/model"
)

func identity(_ internal.Context, args ...string) (any, error) {
	return strings.Join(args, ","), nil
}

type stringer string

func (s stringer) String() string { return string(s) }

// usersHandler declares routes the way applications do.
type usersHandler struct{}

func (h *usersHandler) Routes(r internal.Router) {
	r.GET(`/users/(\d+)`, h.show)
	r.GET(`/users/(\d+)/json`, h.json)
	r.POST(`/users`, h.create)
	r.Error(http.StatusNotFound, h.notFound)
}

func (h *usersHandler) show(c internal.Context, args ...string) (any, error) {
	conn, err := c.DB()
	if err != nil {
		return nil, err
	}
	row, err := conn.Select().From("users").Where("id", args[0]).GetOne(c)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.Join(model.ErrRecordNotFound, fmt.Errorf("user %s", args[0]))
	}
	return c.View("users/show", row.Map()), nil
}

func (h *usersHandler) json(c internal.Context, args ...string) (any, error) {
	conn, err := c.DB()
	if err != nil {
		return nil, err
	}
	return conn.Select("id", "name").From("users").WhereOp("id", "<=", args[0]).Get(c)
}

func (h *usersHandler) create(c internal.Context, _ ...string) (any, error) {
	return nil, c.String(http.StatusCreated, "created "+c.Form("name"))
}

func (h *usersHandler) notFound(c internal.Context, _ ...string) (any, error) {
	return c.View("not_found", map[string]any{"path": c.Request().PathInfo}), nil
}

func newTestApp(t *testing.T, opts ...internal.Option) *internal.App {
	t.Helper()
	base := []internal.Option{
		internal.WithEnvironment("testing"),
		internal.WithPaths(map[string]string{
			internal.PathConfig: "testdata/config",
			internal.PathViews:  "testdata/views",
		}),
	}
	return internal.New(append(base, opts...)...)
}

func serve(app http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHandle(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.GET(`/test/(\d+)`, identity)
	app.GET(`/pair/(\w+)/(\w+)`, identity)
	app.POST(`/test/(\d+)`, func(internal.Context, ...string) (any, error) { return "posted", nil })

	t.Run("captured groups", func(t *testing.T) {
		t.Parallel()
		res, err := app.Handle(internal.NewRequest("/test/15", "GET"))
		require.NoError(t, err)
		require.Equal(t, "15", res)

		res, err = app.Handle(internal.NewRequest("/pair/a/b?x=1", "GET"))
		require.NoError(t, err)
		require.Equal(t, "a,b", res)

		_, err = app.Handle(internal.NewRequest("/pair/a/b", "get"))
		require.ErrorIs(t, err, internal.ErrNotFound)
	})

	t.Run("method selects the table", func(t *testing.T) {
		t.Parallel()
		res, err := app.Handle(internal.NewRequest("/test/15", "POST"))
		require.NoError(t, err)
		require.Equal(t, "posted", res)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		for _, req := range []*internal.Request{
			internal.NewRequest("/", "GET"),
			internal.NewRequest("/test/abc", "GET"),
			internal.NewRequest("/test/15/extra", "GET"),
			internal.NewRequest("/test/15", "PUT"),
		} {
			_, err := app.Handle(req)
			require.ErrorIs(t, err, internal.ErrNotFound, req.Method+" "+req.PathInfo)
		}
	})

	t.Run("invalid pattern panics", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() { app.GET(`/broken/(\d+`, identity) })
		require.Panics(t, func() { app.POST(`/nil`, nil) })
		require.Panics(t, func() { app.Error(http.StatusNotFound, nil) })
	})
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.GET(`/string`, func(internal.Context, ...string) (any, error) { return "<b>hi</b>", nil })
	app.GET(`/bytes`, func(internal.Context, ...string) (any, error) { return []byte("raw"), nil })
	app.GET(`/stringer`, func(internal.Context, ...string) (any, error) { return stringer("str"), nil })
	app.GET(`/nil`, func(internal.Context, ...string) (any, error) { return nil, nil })
	app.GET(`/json`, func(internal.Context, ...string) (any, error) {
		return map[string]int{"n": 1}, nil
	})
	app.GET(`/written`, func(c internal.Context, _ ...string) (any, error) {
		return "ignored", c.JSON(http.StatusAccepted, map[string]bool{"ok": true})
	})
	app.GET(`/teapot`, func(internal.Context, ...string) (any, error) {
		return nil, internal.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	app.GET(`/boom`, func(internal.Context, ...string) (any, error) {
		return nil, errors.New("secret failure")
	})
	app.GET(`/missing`, func(internal.Context, ...string) (any, error) {
		return nil, model.ErrRecordNotFound
	})
	app.GET(`/unencodable`, func(internal.Context, ...string) (any, error) {
		return make(chan int), nil
	})

	tests := []struct {
		name        string
		target      string
		code        int
		body        string
		contentType string
	}{
		{"string", "/string", http.StatusOK, "<b>hi</b>", "text/html; charset=utf-8"},
		{"bytes", "/bytes", http.StatusOK, "raw", "text/plain; charset=utf-8"},
		{"stringer", "/stringer", http.StatusOK, "str", "text/html; charset=utf-8"},
		{"nil", "/nil", http.StatusNoContent, "", ""},
		{"json", "/json", http.StatusOK, `{"n":1}`, "application/json; charset=utf-8"},
		{"handler wrote", "/written", http.StatusAccepted, "{\"ok\":true}\n", "application/json; charset=utf-8"},
		{"http error", "/teapot", http.StatusTeapot, "short and stout", "text/plain; charset=utf-8"},
		{"generic error", "/boom", http.StatusInternalServerError, "Internal Server Error", "text/plain; charset=utf-8"},
		{"missing record", "/missing", http.StatusNotFound, "404!", "text/plain; charset=utf-8"},
		{"encode failure", "/unencodable", http.StatusInternalServerError, "Internal Server Error", "text/plain; charset=utf-8"},
		{"unmatched", "/nowhere", http.StatusNotFound, "404!", "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(app, http.MethodGet, tt.target)
			require.Equal(t, tt.code, w.Code)
			require.Equal(t, tt.body, w.Body.String())
			require.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
		})
	}

	t.Run("unsupported method", func(t *testing.T) {
		t.Parallel()
		w := serve(app, http.MethodDelete, "/string")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "404!", w.Body.String())
	})
}

func TestErrorRoutes(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.GET(`/boom`, func(internal.Context, ...string) (any, error) {
		return nil, errors.New("boom")
	})
	app.GET(`/forbidden`, func(c internal.Context, _ ...string) (any, error) {
		return nil, c.Error(http.StatusForbidden, "no entry")
	})
	app.Error(http.StatusNotFound, func(c internal.Context, args ...string) (any, error) {
		require.Empty(t, args)
		require.ErrorIs(t, c.Failure(), internal.ErrNotFound)
		return "custom 404 for " + c.Request().PathInfo, nil
	})
	app.Error(http.StatusInternalServerError, func(c internal.Context, _ ...string) (any, error) {
		return map[string]string{"error": c.Failure().Error()}, nil
	})
	app.Error(http.StatusForbidden, func(internal.Context, ...string) (any, error) {
		return nil, errors.New("error page broke")
	})

	w := serve(app, http.MethodGet, "/nowhere")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "custom 404 for /nowhere", w.Body.String())

	w = serve(app, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"boom"}`, w.Body.String())

	// A failing error handler falls back to the plain body.
	w = serve(app, http.MethodGet, "/forbidden")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "no entry", w.Body.String())
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var order []string
	trace := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context, args ...string) (any, error) {
				order = append(order, name)
				return next(c, args...)
			}
		}
	}
	upper := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context, args ...string) (any, error) {
			res, err := next(c, args...)
			if s, ok := res.(string); ok {
				return strings.ToUpper(s), err
			}
			return res, err
		}
	}

	app := internal.New(internal.WithMiddleware(trace("global1"), trace("global2")))
	app.GET(`/(\w+)`, identity, trace("route"), upper)

	w := serve(app, http.MethodGet, "/hello")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "HELLO", w.Body.String())
	require.Equal(t, []string{"global1", "global2", "route"}, order)
}

func TestHTTPMiddleware(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHTTPMiddleware(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Outer", "1")
			next.ServeHTTP(w, r)
		})
	}))
	app.GET(`/`, func(internal.Context, ...string) (any, error) { return "root", nil })
	app.GET(`/panic`, func(internal.Context, ...string) (any, error) { panic("boom") })

	w := serve(app, http.MethodGet, "/")
	require.Equal(t, "root", w.Body.String())
	require.Equal(t, "1", w.Header().Get("X-Outer"))

	w = serve(app, http.MethodGet, "/panic")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApplicationServices(t *testing.T) {
	t.Parallel()

	t.Run("environment and paths", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithPath("uploads", "/tmp/uploads"))
		require.Equal(t, internal.DefaultEnvironment, app.Environment())
		require.Equal(t, "/tmp/uploads", app.Path("uploads"))
		require.Empty(t, app.Path("nothing"))
		require.Nil(t, app.Views())
		require.NotNil(t, app.Logger())
	})

	t.Run("config merges environment", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(t)
		cfg, err := app.Config("app")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"name": "plain", "debug": false}, cfg)

		_, err = app.Config("nope")
		require.ErrorIs(t, err, config.ErrNotFound)
	})

	t.Run("config without path", func(t *testing.T) {
		t.Parallel()
		_, err := internal.New().Config("app")
		require.ErrorIs(t, err, config.ErrNotFound)
	})

	t.Run("context exposes services", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(t, internal.WithPath("uploads", "/srv/uploads"))
		app.GET(`/info`, func(c internal.Context, _ ...string) (any, error) {
			cfg, err := c.Config("app")
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"env":     c.Environment(),
				"uploads": c.Path("uploads"),
				"name":    cfg["name"],
				"query":   c.QueryDefault("q", "none"),
			}, nil
		})
		w := serve(app, http.MethodGet, "/info")
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"env":"testing","uploads":"/srv/uploads","name":"plain","query":"none"}`, w.Body.String())
	})
}

func TestDatabaseFromConfig(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, internal.WithHandlers(&usersHandler{}))
	t.Cleanup(func() {
		m, err := app.Database()
		require.NoError(t, err)
		require.NoError(t, m.Disconnect())
	})

	w := serve(app, http.MethodGet, "/users/2")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<h1>Bruno</h1>\n", w.Body.String())

	w = serve(app, http.MethodGet, "/users/2/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"id":"1","name":"Ana"},{"id":"2","name":"Bruno"}]`, w.Body.String())

	w = serve(app, http.MethodGet, "/users/99")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "<p>nothing at /users/99</p>\n", w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("name=Dora"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	app.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "created Dora", w.Body.String())
}

func TestDatabaseOptions(t *testing.T) {
	t.Parallel()

	t.Run("no configuration", func(t *testing.T) {
		t.Parallel()
		app := internal.New()
		_, err := app.Database()
		require.ErrorIs(t, err, internal.ErrNoDatabase)

		app.GET(`/`, func(c internal.Context, _ ...string) (any, error) {
			_, err := c.DB()
			return nil, err
		})
		w := serve(app, http.MethodGet, "/")
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("explicit configuration", func(t *testing.T) {
		t.Parallel()
		rows := cache.NewMemory[[]*database.Row]()
		app := internal.New(
			internal.WithDatabase(database.Config{"driver": "xml", "path": "testdata/data"}),
			internal.WithQueryCache(rows, 0),
		)
		app.GET(`/count`, func(c internal.Context, _ ...string) (any, error) {
			conn, err := c.DB()
			if err != nil {
				return nil, err
			}
			users, err := conn.Select("id").From("users").Get(c)
			return len(users), err
		})

		for range 2 {
			w := serve(app, http.MethodGet, "/count")
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, "3", w.Body.String())
		}
		require.Equal(t, 1, rows.Len())

		m, err := app.Database()
		require.NoError(t, err)
		require.NoError(t, m.Disconnect())
	})

	t.Run("explicit manager", func(t *testing.T) {
		t.Parallel()
		m := database.NewManager()
		require.NoError(t, m.Configure(database.Config{"driver": "json", "path": "testdata/data"}))
		app := internal.New(internal.WithDatabaseManager(m))
		got, err := app.Database()
		require.NoError(t, err)
		require.Same(t, m, got)
	})

	t.Run("invalid configuration panics", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() {
			internal.New(internal.WithDatabase(database.Config{"driver": "nope"}))
		})
	})
}

func TestViews(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.GET(`/view/(\w+)`, func(c internal.Context, args ...string) (any, error) {
		return c.View("users/show", nil).Set("name", args[0]), nil
	})
	app.GET(`/broken`, func(c internal.Context, _ ...string) (any, error) {
		return c.View("broken", nil), nil
	})
	app.GET(`/render`, func(c internal.Context, _ ...string) (any, error) {
		return nil, c.Render(http.StatusAccepted, c.View("users/show", map[string]any{"name": "direct"}))
	})

	w := serve(app, http.MethodGet, "/view/Eve")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<h1>Eve</h1>\n", w.Body.String())
	require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	w = serve(app, http.MethodGet, "/broken")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Internal Server Error", w.Body.String())

	w = serve(app, http.MethodGet, "/render")
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "<h1>direct</h1>\n", w.Body.String())

	t.Run("no engine", func(t *testing.T) {
		t.Parallel()
		app := internal.New()
		app.GET(`/`, func(c internal.Context, _ ...string) (any, error) {
			return c.View("index", nil), nil
		})
		w := serve(app, http.MethodGet, "/")
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	app := newTestApp(t,
		internal.WithHealthChecks(internal.WithDatabaseCheck()),
		internal.WithMetrics(internal.WithMetricsNamespace("test")),
	)
	app.GET(`/test/(\d+)`, identity)
	t.Cleanup(func() {
		if m, err := app.Database(); err == nil {
			_ = m.Disconnect()
		}
	})

	w := serve(app, http.MethodGet, "/health/live")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	w = serve(app, http.MethodGet, "/health/ready?format=json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"database"`)

	serve(app, http.MethodGet, "/test/1")
	serve(app, http.MethodGet, "/nowhere")

	w = serve(app, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `test_http_requests_total{code="200",method="GET",route="/test/(\\d+)"} 1`)
	require.Contains(t, w.Body.String(), `test_http_requests_total{code="404",method="GET",route="unmatched"} 1`)

	t.Run("failing readiness", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithHealthChecks(
			internal.WithReadinessPath("/ready"),
			internal.WithLivenessPath("/live"),
			internal.WithDatabaseCheck(),
		))
		require.Equal(t, http.StatusServiceUnavailable, serve(app, http.MethodGet, "/ready").Code)
		require.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/live").Code)
	})
}

func TestStaticFiles(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithStaticFiles("/static/", os.DirFS("testdata"), "views"))

	w := serve(app, http.MethodGet, "/static/style.css")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body { color: red; }\n", w.Body.String())
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(app, http.MethodGet, "/static/users/")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestServe(t *testing.T) {
	t.Parallel()

	app := internal.New()
	app.GET(`/test/(\d+)`, identity)

	var buf bytes.Buffer
	code, err := app.Serve(&buf, "GET", "/test/15")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "15", buf.String())

	buf.Reset()
	code, err = app.Serve(&buf, "", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "404!", buf.String())
}

func TestRequest(t *testing.T) {
	t.Parallel()

	req := internal.NewRequest("/users/1?sort=name", "POST")
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "/users/1", req.PathInfo)
	require.Equal(t, "name", req.Query.Get("sort"))
	require.Equal(t, "/users/1", req.HTTP().URL.Path)
	require.Equal(t, http.MethodPost, req.HTTP().Method)

	req = internal.NewRequest("", "")
	require.Equal(t, http.MethodGet, req.Method)
	require.Equal(t, "post", internal.NewRequest("/", "post").Method)
	require.Equal(t, "/", req.PathInfo)

	req = internal.NewRequest("relative/path?a=1", "GET")
	require.Equal(t, "relative/path", req.PathInfo)
	require.Equal(t, "1", req.Query.Get("a"))

	hr := httptest.NewRequest(http.MethodGet, "/a/b?c=d", nil)
	req = internal.RequestFromHTTP(hr)
	require.Equal(t, "/a/b", req.PathInfo)
	require.Equal(t, "/a/b?c=d", req.URI)
	require.Same(t, hr, req.HTTP())
}
