package database

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Driver executes finalized statements against a backend.
type Driver interface {
	// Connect opens the backend handle. Calling it on a connected driver is a no-op.
	Connect(ctx context.Context) error
	// Disconnect releases the handle. Calling it again is a no-op.
	Disconnect() error
	Query(ctx context.Context, query string, args ...any) ([]*Row, error)
	Ping(ctx context.Context) error
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string
}

// Factory builds a driver for a configuration. Factories must not touch the
// backend; connecting is deferred to Driver.Connect.
type Factory func(cfg Config) (Driver, error)

// Registry maps driver names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry holds the built-in drivers: sql, postgres, xml, yaml and json.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("sql", NewSQLDriver)
	r.Register("postgres", NewPostgresDriver)
	r.Register("xml", NewFileDriver(XML))
	r.Register("yaml", NewFileDriver(YAML))
	r.Register("json", NewFileDriver(JSON))
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, error) {
	if name == "" {
		return nil, ErrDriverNotDefined
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	if !ok {
		return nil, errors.Join(ErrUnknownDriver, fmt.Errorf("%q", name))
	}
	return f, nil
}

// Names returns the registered driver names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
