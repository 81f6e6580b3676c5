package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Engines supported by the sql driver.
const (
	EngineSQLite = "sqlite"
	EnginePgx    = "pgx"
)

// SQLDriver runs statements through database/sql.
//
// Config keys:
//
//	engine   - "sqlite" (default) or "pgx"
//	dsn      - data source name; sqlite defaults to ":memory:"
//	username - overrides the user in a pgx DSN
//	password - overrides the password in a pgx DSN
type SQLDriver struct {
	engine   string
	dsn      string
	username string
	password string

	mu         sync.Mutex
	db         *sql.DB
	registered string
}

// NewSQLDriver is the factory for the "sql" driver.
func NewSQLDriver(cfg Config) (Driver, error) {
	engine := cfg.String("engine")
	if engine == "" {
		engine = EngineSQLite
	}
	if engine != EngineSQLite && engine != EnginePgx {
		return nil, errors.Join(ErrInvalidConfig, fmt.Errorf("unsupported engine %q", engine))
	}
	return &SQLDriver{
		engine:   engine,
		dsn:      cfg.String("dsn"),
		username: cfg.String("username"),
		password: cfg.String("password"),
	}, nil
}

// newMemoryDriver returns a driver over a private in-memory sqlite database.
func newMemoryDriver() *SQLDriver {
	return &SQLDriver{engine: EngineSQLite, dsn: ":memory:"}
}

func (d *SQLDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return nil
	}

	db, err := d.open()
	if err != nil {
		return newConnectionError(err, err.Error())
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		d.unregister()
		return newConnectionError(err, err.Error())
	}
	d.db = db
	return nil
}

func (d *SQLDriver) open() (*sql.DB, error) {
	switch d.engine {
	case EnginePgx:
		cfg, err := pgx.ParseConfig(d.dsn)
		if err != nil {
			return nil, err
		}
		if d.username != "" {
			cfg.User = d.username
		}
		if d.password != "" {
			cfg.Password = d.password
		}
		d.registered = stdlib.RegisterConnConfig(cfg)
		return sql.Open("pgx", d.registered)
	default:
		dsn := d.dsn
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// Every connection to :memory: is a separate database.
		if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
			db.SetMaxOpenConns(1)
		}
		return db, nil
	}
}

func (d *SQLDriver) unregister() {
	if d.registered != "" {
		stdlib.UnregisterConnConfig(d.registered)
		d.registered = ""
	}
}

func (d *SQLDriver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	d.unregister()
	return err
}

func (d *SQLDriver) handle() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil, ErrNotConnected
	}
	return d.db, nil
}

func (d *SQLDriver) Query(ctx context.Context, query string, args ...any) ([]*Row, error) {
	db, err := d.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(err, query)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, queryError(err, query)
	}

	var out []*Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, queryError(err, query)
		}

		row := &Row{values: make(map[string]any, len(cols))}
		for i, c := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row.Set(c, v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(err, query)
	}
	return out, nil
}

// exec runs a statement that returns no rows.
func (d *SQLDriver) exec(ctx context.Context, query string, args ...any) error {
	db, err := d.handle()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return queryError(err, query)
	}
	return nil
}

func (d *SQLDriver) Ping(ctx context.Context) error {
	db, err := d.handle()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return newConnectionError(err, err.Error())
	}
	return nil
}

func (d *SQLDriver) Placeholder(n int) string {
	if d.engine == EnginePgx {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func queryError(err error, query string) *ConnectionError {
	return newConnectionError(err, fmt.Sprintf("%s with query %q", err, query))
}
