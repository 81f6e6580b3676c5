package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/plain"
	"github.com/dmitrymomot/plain/pkg/config"
	"github.com/dmitrymomot/plain/pkg/database"
)

const routesConfigName = "routes"

var errInvalidRoute = errors.New("plain: invalid route")

// route maps a pattern to a view and, optionally, to a table read through
// the application database. With Key set the first captured argument
// selects one record, otherwise every row is listed.
type route struct {
	Method  string `yaml:"method"`
	Pattern string `yaml:"pattern"`
	View    string `yaml:"view"`
	Table   string `yaml:"table"`
	Key     string `yaml:"key"`
}

type routeTable struct {
	Entries []route        `yaml:"routes"`
	Errors  map[int]string `yaml:"errors"`
}

// loadRoutes reads the "routes" config module. A missing module yields an
// empty table so health and metrics still work.
func loadRoutes(l *config.Loader) (*routeTable, error) {
	t := &routeTable{}
	if err := l.Decode(routesConfigName, t); err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return t, nil
		}
		return nil, err
	}
	for i := range t.Entries {
		r := &t.Entries[i]
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		if r.Method == "" {
			r.Method = http.MethodGet
		}
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			return nil, fmt.Errorf("%w: %s %s: unsupported method", errInvalidRoute, r.Method, r.Pattern)
		}
		if r.View == "" && r.Table == "" {
			return nil, fmt.Errorf("%w: %s needs a view or a table", errInvalidRoute, r.Pattern)
		}
	}
	return t, nil
}

// Routes registers every configured route.
func (t *routeTable) Routes(r plain.Router) {
	for _, rt := range t.Entries {
		h := rt.handle
		if rt.Method == http.MethodPost {
			r.POST(rt.Pattern, h)
		} else {
			r.GET(rt.Pattern, h)
		}
	}
	for code, view := range t.Errors {
		r.Error(code, errorView(view))
	}
}

func (rt route) handle(c plain.Context, args ...string) (any, error) {
	data := map[string]any{
		"args":  args,
		"path":  c.Request().PathInfo,
		"query": flatten(c.Request().Query),
	}

	if rt.Table != "" {
		if err := rt.load(c, data, args); err != nil {
			return nil, err
		}
	}

	if rt.View == "" {
		if rec, ok := data["record"]; ok {
			return rec, nil
		}
		return data["rows"], nil
	}
	return c.View(rt.View, data), nil
}

func (rt route) load(c plain.Context, data map[string]any, args []string) error {
	conn, err := c.DB()
	if err != nil {
		return err
	}

	q := conn.Select().From(rt.Table)
	if rt.Key != "" && len(args) > 0 {
		row, err := q.Where(rt.Key, args[0]).GetOne(c)
		if err != nil {
			return err
		}
		if row == nil {
			return plain.NewHTTPError(http.StatusNotFound, "")
		}
		data["record"] = row.Map()
		return nil
	}

	rows, err := q.Get(c)
	if err != nil {
		return err
	}
	data["rows"] = rowMaps(rows)
	return nil
}

func errorView(name string) plain.HandlerFunc {
	return func(c plain.Context, _ ...string) (any, error) {
		data := map[string]any{"path": c.Request().PathInfo}
		if failure := c.Failure(); failure != nil {
			data["status"] = plain.StatusOf(failure)
			if he := plain.AsHTTPError(failure); he != nil {
				data["message"] = he.Error()
			}
		}
		return c.View(name, data), nil
	}
}

func rowMaps(rows []*database.Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	return out
}

func flatten(q map[string][]string) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
