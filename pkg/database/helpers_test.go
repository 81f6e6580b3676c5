package database_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/plain/pkg/database"
)

// fakeDriver records every call and returns fixed rows.
type fakeDriver struct {
	mu          sync.Mutex
	rows        []*database.Row
	err         error
	connectErr  error
	queries     []string
	args        [][]any
	connects    int
	disconnects int
	connected   bool
}

func (d *fakeDriver) Connect(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.connectErr != nil {
		return d.connectErr
	}
	d.connects++
	d.connected = true
	return nil
}

func (d *fakeDriver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.connected {
		d.disconnects++
	}
	d.connected = false
	return nil
}

func (d *fakeDriver) Query(_ context.Context, query string, args ...any) ([]*database.Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return nil, database.ErrNotConnected
	}
	d.queries = append(d.queries, query)
	d.args = append(d.args, args)
	if d.err != nil {
		return nil, d.err
	}
	out := make([]*database.Row, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (d *fakeDriver) Ping(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return database.ErrNotConnected
	}
	return nil
}

func (d *fakeDriver) Placeholder(int) string { return "?" }

func (d *fakeDriver) Queries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.queries...)
}

func (d *fakeDriver) Connects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

func (d *fakeDriver) Disconnects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disconnects
}

func userRows() []*database.Row {
	return []*database.Row{
		database.NewRow(database.Field{Name: "id", Value: "1"}, database.Field{Name: "name", Value: "Ana"}),
		database.NewRow(database.Field{Name: "id", Value: "2"}, database.Field{Name: "name", Value: "Bauhar"}),
	}
}

// fakeRegistry returns a registry whose "fake" driver is built by newDriver.
func fakeRegistry(newDriver func(cfg database.Config) *fakeDriver) *database.Registry {
	r := database.NewRegistry()
	r.Register("fake", func(cfg database.Config) (database.Driver, error) {
		return newDriver(cfg), nil
	})
	return r
}

func rowsAsMaps(rows []*database.Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
