package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time // zero means never
	value     V
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryOption configures the in-memory cache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL time.Duration
	maxEntries int
}

// WithDefaultTTL sets the TTL used when Set is called with zero.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithMaxEntries caps the number of stored entries. When full, the oldest
// inserted key is evicted. Zero means unlimited.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}

// Memory is a process-local cache. Expired entries are dropped lazily on access.
type Memory[V any] struct {
	items  map[string]entry[V]
	order  []string
	opts   memoryOptions
	mu     sync.Mutex
	closed bool
}

// NewMemory creates an in-memory cache.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := memoryOptions{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory[V]{
		items: make(map[string]entry[V]),
		opts:  o,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	if m.closed {
		return zero, ErrClosed
	}
	e, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	if e.expired(time.Now()) {
		m.remove(key)
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if _, ok := m.items[key]; !ok {
		if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
			m.remove(m.order[0])
		}
		m.order = append(m.order, key)
	}
	m.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.remove(key)
	return nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.items = make(map[string]entry[V])
	m.order = nil
	return nil
}

// Close drops all entries. Further calls return ErrClosed.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items = nil
	m.order = nil
	return nil
}

// Len returns the number of stored entries, including expired ones not yet dropped.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// remove must be called with mu held.
func (m *Memory[V]) remove(key string) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)
