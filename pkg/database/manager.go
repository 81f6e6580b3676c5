package database

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/plain/pkg/cache"
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRegistry sets the driver registry. Default: DefaultRegistry.
func WithRegistry(r *Registry) ManagerOption {
	return func(m *Manager) {
		m.registry = r
	}
}

// WithCache caches Get results for ttl, keyed by the configuration and the
// executed statement with its arguments.
// Concurrent misses on the same statement share a single backend call.
func WithCache(c cache.Cache[[]*Row], ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.cache = c
		m.cacheTTL = ttl
	}
}

// Manager owns the connection for the current configuration.
// The connection is created on first use and replaced whenever Configure
// is called. All methods are safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	cache    cache.Cache[[]*Row]
	cacheTTL time.Duration

	cfg     Config
	factory Factory
	timeout time.Duration
	conn    *Conn
}

// NewManager returns an unconfigured manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{registry: DefaultRegistry}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configure validates cfg and makes it current. A cached connection is
// disconnected so the next Instance call builds one from cfg.
func (m *Manager) Configure(cfg Config) error {
	factory, err := m.registry.Lookup(cfg.Driver())
	if err != nil {
		return err
	}
	timeout, err := cfg.Duration("timeout", 0)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var disconnectErr error
	if m.conn != nil {
		disconnectErr = m.conn.Disconnect()
		m.conn = nil
	}
	m.cfg = cfg.Clone()
	m.factory = factory
	m.timeout = timeout
	return disconnectErr
}

// Instance returns the connection for the current configuration, creating
// it on first call. The connection itself connects lazily.
func (m *Manager) Instance() (*Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.factory == nil {
		return nil, ErrNotConfigured
	}
	if m.conn != nil {
		return m.conn, nil
	}

	d, err := m.factory(m.cfg.Clone())
	if err != nil {
		return nil, err
	}
	m.conn = &Conn{
		driver:   d,
		cfg:      m.cfg,
		timeout:  m.timeout,
		cache:    m.cache,
		cacheTTL: m.cacheTTL,
		scope:    configScope(m.cfg),
	}
	return m.conn, nil
}

// Configured reports whether Configure succeeded at least once.
func (m *Manager) Configured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.factory != nil
}

// Ping checks the current connection, connecting if needed.
func (m *Manager) Ping(ctx context.Context) error {
	conn, err := m.Instance()
	if err != nil {
		return err
	}
	return conn.Ping(ctx)
}

// Disconnect releases the current connection. It is a no-op when there is none.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}
	err := m.conn.Disconnect()
	m.conn = nil
	return err
}

// Shutdown returns a hook that disconnects the manager when the server stops.
func Shutdown(m *Manager) func(context.Context) error {
	return func(context.Context) error {
		return m.Disconnect()
	}
}
