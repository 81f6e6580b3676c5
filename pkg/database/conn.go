package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/plain/pkg/cache"
)

// Conn is a lazily connected handle over a Driver.
type Conn struct {
	driver   Driver
	cfg      Config
	timeout  time.Duration
	cache    cache.Cache[[]*Row]
	cacheTTL time.Duration
	scope    string

	mu        sync.Mutex
	connected bool
}

// NewConn wraps d. A zero timeout means driver calls are bounded only by ctx.
func NewConn(d Driver, timeout time.Duration) *Conn {
	return &Conn{driver: d, timeout: timeout}
}

// Query returns a fresh builder bound to c.
func (c *Conn) Query() *Query {
	return &Query{conn: c}
}

// Select is shorthand for c.Query().Select(cols...).
func (c *Conn) Select(cols ...string) *Query {
	return c.Query().Select(cols...)
}

// Connect opens the driver if it is not open yet.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if err := c.driver.Connect(ctx); err != nil {
		return err
	}
	c.connected = true
	return nil
}

// Disconnect closes the driver. Repeated calls are no-ops.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	return c.driver.Disconnect()
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.driver.Ping(ctx)
}

// Raw executes query as is, connecting first if needed.
func (c *Conn) Raw(ctx context.Context, query string, args ...any) ([]*Row, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.driver.Query(ctx, query, args...)
}

func (c *Conn) Driver() Driver {
	return c.driver
}

// Config returns a copy of the configuration the connection was built from.
func (c *Conn) Config() Config {
	return c.cfg.Clone()
}

func (c *Conn) resolve(ctx context.Context, q *Query) ([]*Row, error) {
	sql, args, err := q.Build(c.driver.Placeholder)
	if err != nil {
		return nil, err
	}
	if c.cache == nil {
		return c.Raw(ctx, sql, args...)
	}

	key, err := cacheKey(c.scope, sql, args)
	if err != nil {
		return c.Raw(ctx, sql, args...)
	}
	rows, err := cache.GetOrSet(ctx, c.cache, key,
		func(ctx context.Context) ([]*Row, time.Duration, error) {
			rows, err := c.Raw(ctx, sql, args...)
			return rows, c.cacheTTL, err
		})
	if err != nil {
		return nil, err
	}
	return cloneRows(rows), nil
}

// cacheKey identifies an executed statement: the configuration scope, the
// placeholder SQL and the bound arguments.
func cacheKey(scope, sql string, args []any) (string, error) {
	raw, err := json.Marshal([]any{scope, sql, args})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// configScope fingerprints cfg so results cached for one backend are never
// served for another. Map keys are sorted by encoding/json.
func configScope(cfg Config) string {
	raw, err := json.Marshal(map[string]any(cfg))
	if err != nil {
		// fmt prints map keys in sorted order too.
		raw = []byte(fmt.Sprint(map[string]any(cfg)))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (c *Conn) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
