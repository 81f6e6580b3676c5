package plain_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/plain"
	"github.com/dmitrymomot/plain/middlewares"
	"github.com/dmitrymomot/plain/pkg/logger"
	"github.com/dmitrymomot/plain/pkg/model"
)

// pagesHandler is a small application used end to end.
type pagesHandler struct {
	message string
}

func (h *pagesHandler) Routes(r plain.Router) {
	r.GET(`/`, h.index)
	r.GET(`/test/(\d+)`, h.identity)
	r.GET(`/sum/(\d+)/(\d+)`, h.sum)
	r.POST(`/echo`, h.echo)
	r.GET(`/fail`, h.fail)
	r.Error(http.StatusNotFound, h.notFound)
}

func (h *pagesHandler) index(plain.Context, ...string) (any, error) {
	return h.message, nil
}

func (h *pagesHandler) identity(_ plain.Context, args ...string) (any, error) {
	return args[0], nil
}

func (h *pagesHandler) sum(_ plain.Context, args ...string) (any, error) {
	return map[string]int{"sum": plain.Arg[int](args, 0) + plain.Arg[int](args, 1)}, nil
}

func (h *pagesHandler) echo(c plain.Context, _ ...string) (any, error) {
	body, err := io.ReadAll(c.HTTPRequest().Body)
	if err != nil {
		return nil, plain.ErrBadRequest("unreadable body", plain.WithError(err))
	}
	return body, nil
}

func (h *pagesHandler) fail(c plain.Context, _ ...string) (any, error) {
	return nil, errors.Join(model.ErrRecordNotFound, errors.New("user 7"))
}

func (h *pagesHandler) notFound(c plain.Context, _ ...string) (any, error) {
	return "missing: " + c.Request().PathInfo, nil
}

func TestIntegration(t *testing.T) {
	t.Parallel()

	app := plain.New(
		plain.WithHandlers(&pagesHandler{message: "hello"}),
		plain.WithMiddleware(middlewares.RequestID()),
	)

	ts := httptest.NewServer(app)
	t.Cleanup(ts.Close)

	get := func(t *testing.T, path string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	t.Run("GET /", func(t *testing.T) {
		t.Parallel()
		resp, body := get(t, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "hello", body)
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("captured argument", func(t *testing.T) {
		t.Parallel()
		_, body := get(t, "/test/15")
		require.Equal(t, "15", body)
	})

	t.Run("json result", func(t *testing.T) {
		t.Parallel()
		resp, body := get(t, "/sum/2/40")
		require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
		var data map[string]int
		require.NoError(t, json.Unmarshal([]byte(body), &data))
		require.Equal(t, 42, data["sum"])
	})

	t.Run("POST /echo", func(t *testing.T) {
		t.Parallel()
		resp, err := http.Post(ts.URL+"/echo", "text/plain", bytes.NewReader([]byte("echo me")))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		require.Equal(t, "echo me", string(body))
	})

	t.Run("custom not found", func(t *testing.T) {
		t.Parallel()
		resp, body := get(t, "/nowhere")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "missing: /nowhere", body)

		resp, body = get(t, "/fail")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "missing: /fail", body)
	})

	t.Run("handle without http", func(t *testing.T) {
		t.Parallel()
		res, err := app.Handle(plain.NewRequest("/test/15", http.MethodGet))
		require.NoError(t, err)
		require.Equal(t, "15", res)

		_, err = app.Handle(plain.NewRequest("/test/15", http.MethodPut))
		require.ErrorIs(t, err, plain.ErrNotFound)
	})
}

func TestLoggingWithRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithConfig(&buf, logger.Config{Level: "debug", Format: "json"}, middlewares.RequestIDExtractor())

	app := plain.New(
		plain.WithCustomLogger(log),
		plain.WithMiddleware(middlewares.RequestID()),
	)
	app.GET(`/log`, func(c plain.Context, _ ...string) (any, error) {
		c.LogInfo("handling", slog.String("path", c.Request().PathInfo))
		return "logged", nil
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	req.Header.Set("X-Request-ID", "req-123")
	app.ServeHTTP(w, req)

	require.Equal(t, "logged", w.Body.String())
	require.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	require.Equal(t, "handling", entry["msg"])
	require.Equal(t, "req-123", entry["request_id"])
	require.Equal(t, "/log", entry["path"])
}

func TestRunShutsDown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	app := plain.New()
	app.GET(`/`, func(plain.Context, ...string) (any, error) { return "up", nil })

	var started, stopped bool
	done := make(chan error, 1)
	go func() {
		done <- app.Run("127.0.0.1:0",
			plain.WithContext(ctx),
			plain.StartupHook(func(context.Context) error { started = true; cancel(); return nil }),
			plain.ShutdownHook(func(context.Context) error { stopped = true; return nil }),
		)
	}()

	require.NoError(t, <-done)
	require.True(t, started)
	require.True(t, stopped)
}

func TestRunStartupFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("not ready")
	err := plain.New().Run("127.0.0.1:0",
		plain.WithContext(context.Background()),
		plain.StartupHook(func(context.Context) error { return boom }),
	)
	require.ErrorIs(t, err, boom)
}

func TestServeOneShot(t *testing.T) {
	t.Parallel()

	app := plain.New(plain.WithHandlers(&pagesHandler{message: "hi"}))

	var buf bytes.Buffer
	code, err := app.Serve(&buf, http.MethodGet, "/sum/1/2?"+url.Values{"x": {"y"}}.Encode())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"sum":3}`, buf.String())
}
