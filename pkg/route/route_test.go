package route_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/plain/pkg/route"
)

func identity(_ context.Context, args ...string) (any, error) {
	if len(args) == 0 {
		return "", nil
	}
	return args[0], nil
}

func echoArgs(_ context.Context, args ...string) (any, error) {
	return args, nil
}

func constant(v string) route.HandlerFunc[context.Context] {
	return func(context.Context, ...string) (any, error) {
		return v, nil
	}
}

func TestPattern(t *testing.T) {
	t.Parallel()

	t.Run("anchors both ends", func(t *testing.T) {
		t.Parallel()
		p := route.MustCompile(`/test/(\d+)`)

		args, ok := p.Match("/test/15")
		require.True(t, ok)
		require.Equal(t, []string{"15"}, args)

		_, ok = p.Match("/test/15/edit")
		require.False(t, ok)
		_, ok = p.Match("/x/test/15")
		require.False(t, ok)
	})

	t.Run("alternation is anchored as a whole", func(t *testing.T) {
		t.Parallel()
		p := route.MustCompile(`/a|/b`)

		_, ok := p.Match("/a")
		require.True(t, ok)
		_, ok = p.Match("/b")
		require.True(t, ok)
		_, ok = p.Match("/ab")
		require.False(t, ok)
	})

	t.Run("groups in left-to-right order", func(t *testing.T) {
		t.Parallel()
		p := route.MustCompile(`/blog/(\d{4})/(\d{2})/([a-z-]+)`)
		require.Equal(t, 3, p.Groups())

		args, ok := p.Match("/blog/2024/05/hello-world")
		require.True(t, ok)
		require.Equal(t, []string{"2024", "05", "hello-world"}, args)
	})

	t.Run("unmatched optional group is empty", func(t *testing.T) {
		t.Parallel()
		p := route.MustCompile(`/page(?:/(\d+))?`)

		args, ok := p.Match("/page")
		require.True(t, ok)
		require.Equal(t, []string{""}, args)
	})

	t.Run("malformed pattern fails to compile", func(t *testing.T) {
		t.Parallel()
		_, err := route.Compile(`/test/(\d+`)
		require.ErrorIs(t, err, route.ErrInvalidPattern)
		require.Panics(t, func() { route.MustCompile(`(`) })
	})
}

func TestTableRegister(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid pattern at registration", func(t *testing.T) {
		t.Parallel()
		tbl := route.NewTable[context.Context]()
		err := tbl.Register(http.MethodGet, `/broken/(`, identity)
		require.ErrorIs(t, err, route.ErrInvalidPattern)
		require.Equal(t, 0, tbl.Len())
	})

	t.Run("rejects unsupported method", func(t *testing.T) {
		t.Parallel()
		tbl := route.NewTable[context.Context]()
		err := tbl.Register(http.MethodPut, `/`, identity)
		require.ErrorIs(t, err, route.ErrUnsupportedMethod)
	})

	t.Run("rejects nil handler", func(t *testing.T) {
		t.Parallel()
		tbl := route.NewTable[context.Context]()
		require.ErrorIs(t, tbl.Register(http.MethodGet, `/`, nil), route.ErrNilHandler)
		require.ErrorIs(t, tbl.RegisterError(404, nil), route.ErrNilHandler)
	})

	t.Run("method is case sensitive", func(t *testing.T) {
		t.Parallel()
		tbl := route.NewTable[context.Context]()
		require.ErrorIs(t, tbl.Register("get", `/`, identity), route.ErrUnsupportedMethod)
		require.Empty(t, tbl.Routes(http.MethodGet))

		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/test/(\d+)`, identity))
		for _, m := range []string{"get", "Get"} {
			_, err := d.Dispatch(context.Background(), m, "/test/15")
			require.ErrorIs(t, err, route.ErrNotFound, m)
		}
		res, err := d.Dispatch(context.Background(), http.MethodGet, "/test/15")
		require.NoError(t, err)
		require.Equal(t, "15", res)
	})

	t.Run("duplicate registration replaces handler and keeps position", func(t *testing.T) {
		t.Parallel()
		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/(.*)`, constant("first")))
		require.NoError(t, d.Register(http.MethodGet, `/about`, constant("about")))
		require.NoError(t, d.Register(http.MethodGet, `/(.*)`, constant("replaced")))

		require.Equal(t, 2, d.Len())
		routes := d.Routes(http.MethodGet)
		require.Equal(t, `/(.*)`, routes[0].Pattern.String())

		res, err := d.Dispatch(context.Background(), http.MethodGet, "/about")
		require.NoError(t, err)
		require.Equal(t, "replaced", res)
	})
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newDispatcher := func(t *testing.T) *route.Dispatcher[context.Context] {
		t.Helper()
		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/test/(\d+)`, identity))
		require.NoError(t, d.Register(http.MethodPost, `/test/(\d+)`, identity))
		require.NoError(t, d.Register(http.MethodGet, `/`, constant("ok")))
		return d
	}

	t.Run("passes captured group to handler", func(t *testing.T) {
		t.Parallel()
		d := newDispatcher(t)

		res, err := d.Dispatch(ctx, http.MethodGet, "/test/15")
		require.NoError(t, err)
		require.Equal(t, "15", res)

		res, err = d.Dispatch(ctx, http.MethodPost, "/test/15")
		require.NoError(t, err)
		require.Equal(t, "15", res)
	})

	t.Run("no match is not found", func(t *testing.T) {
		t.Parallel()
		d := newDispatcher(t)

		_, err := d.Dispatch(ctx, http.MethodGet, "/test/abc")
		require.ErrorIs(t, err, route.ErrNotFound)
	})

	t.Run("root has its own route", func(t *testing.T) {
		t.Parallel()
		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/test/(\d+)`, identity))

		_, err := d.Dispatch(ctx, http.MethodGet, "/")
		require.ErrorIs(t, err, route.ErrNotFound)
	})

	t.Run("other methods are never routed", func(t *testing.T) {
		t.Parallel()
		d := newDispatcher(t)

		for _, m := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch, "BREW"} {
			_, err := d.Dispatch(ctx, m, "/")
			require.ErrorIs(t, err, route.ErrNotFound, m)
		}
	})

	t.Run("first matching pattern wins", func(t *testing.T) {
		t.Parallel()
		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/users/(\w+)`, constant("generic")))
		require.NoError(t, d.Register(http.MethodGet, `/users/me`, constant("me")))

		res, err := d.Dispatch(ctx, http.MethodGet, "/users/me")
		require.NoError(t, err)
		require.Equal(t, "generic", res)
	})

	t.Run("arguments are strings in order", func(t *testing.T) {
		t.Parallel()
		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/(\d+)/(\d+)`, echoArgs))

		res, err := d.Dispatch(ctx, http.MethodGet, "/007/42")
		require.NoError(t, err)
		require.Equal(t, []string{"007", "42"}, res)
	})

	t.Run("handler error passes through", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/`, func(context.Context, ...string) (any, error) {
			return nil, boom
		}))

		_, err := d.Dispatch(ctx, http.MethodGet, "/")
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, route.ErrNotFound)
	})

	t.Run("lookup does not invoke handler", func(t *testing.T) {
		t.Parallel()
		var called bool
		d := route.NewDispatcher[context.Context]()
		require.NoError(t, d.Register(http.MethodGet, `/x/(\d)`, func(context.Context, ...string) (any, error) {
			called = true
			return nil, nil
		}))

		m, err := d.Lookup(http.MethodGet, "/x/1")
		require.NoError(t, err)
		require.Equal(t, []string{"1"}, m.Args)
		require.False(t, called)
	})
}

func TestDispatchError(t *testing.T) {
	t.Parallel()

	d := route.NewDispatcher[context.Context]()
	_, err := d.DispatchError(context.Background(), http.StatusNotFound)
	require.ErrorIs(t, err, route.ErrNotFound)

	require.NoError(t, d.RegisterError(http.StatusNotFound, constant("custom 404!")))
	res, err := d.DispatchError(context.Background(), http.StatusNotFound)
	require.NoError(t, err)
	require.Equal(t, "custom 404!", res)
}
