package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Format describes a structured data file the file driver can load.
type Format struct {
	Name       string
	Extensions []string
	// Decode returns the file's records in file order.
	Decode func(r io.Reader) ([]*Row, error)
}

var (
	XML  = Format{Name: "xml", Extensions: []string{".xml"}, Decode: decodeXML}
	YAML = Format{Name: "yaml", Extensions: []string{".yaml", ".yml"}, Decode: decodeYAML}
	JSON = Format{Name: "json", Extensions: []string{".json"}, Decode: decodeJSON}
)

// FileDriver loads every data file of a directory into an in-memory sqlite
// database on connect, one table per file, and then delegates all queries
// to that database.
//
// Config keys:
//
//	path - directory holding the data files (required)
type FileDriver struct {
	format  Format
	path    string
	hasPath bool

	mu  sync.Mutex
	mem *SQLDriver
}

// NewFileDriver returns the factory for a file-backed driver of format f.
func NewFileDriver(f Format) Factory {
	return func(cfg Config) (Driver, error) {
		return &FileDriver{
			format:  f,
			path:    cfg.String("path"),
			hasPath: cfg.Has("path"),
		}, nil
	}
}

func (d *FileDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mem != nil {
		return nil
	}
	if !d.hasPath || d.path == "" {
		return ErrNoPath
	}
	info, err := os.Stat(d.path)
	if err != nil {
		return errors.Join(ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return errors.Join(ErrInvalidPath, fmt.Errorf("%s is not a directory", d.path))
	}

	mem := newMemoryDriver()
	if err := mem.Connect(ctx); err != nil {
		return err
	}
	if err := d.load(ctx, mem); err != nil {
		_ = mem.Disconnect()
		return err
	}
	d.mem = mem
	return nil
}

func (d *FileDriver) load(ctx context.Context, mem *SQLDriver) error {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return errors.Join(ErrInvalidPath, err)
	}

	// os.ReadDir returns entries sorted by name.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !slices.Contains(d.format.Extensions, ext) {
			continue
		}
		table := strings.TrimSuffix(e.Name(), ext)

		records, err := d.decodeFile(filepath.Join(d.path, e.Name()))
		if err != nil {
			return err
		}
		if err := loadTable(ctx, mem, table, records); err != nil {
			return err
		}
	}
	return nil
}

func (d *FileDriver) decodeFile(name string) ([]*Row, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Join(ErrInvalidDataFile, err)
	}
	defer f.Close()

	records, err := d.format.Decode(f)
	if err != nil {
		return nil, errors.Join(ErrInvalidDataFile, fmt.Errorf("%s: %w", filepath.Base(name), err))
	}
	return records, nil
}

// loadTable creates table with the union of the record keys in first-seen
// order and inserts every record. Tables without any column are skipped.
func loadTable(ctx context.Context, mem *SQLDriver, table string, records []*Row) error {
	var columns []string
	for _, r := range records {
		for _, c := range r.Columns() {
			if !slices.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
	}
	if len(columns) == 0 {
		return nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(quoted, ","))
	if err := mem.exec(ctx, create); err != nil {
		return err
	}

	for _, r := range records {
		if r.Len() == 0 {
			continue
		}
		fields := r.Fields()
		names := make([]string, len(fields))
		marks := make([]string, len(fields))
		args := make([]any, len(fields))
		for i, f := range fields {
			names[i] = quoteIdent(f.Name)
			marks[i] = mem.Placeholder(i + 1)
			args[i] = f.Value
		}
		insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(table), strings.Join(names, ","), strings.Join(marks, ","))
		if err := mem.exec(ctx, insert, args...); err != nil {
			return err
		}
	}
	return nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (d *FileDriver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mem == nil {
		return nil
	}
	err := d.mem.Disconnect()
	d.mem = nil
	return err
}

func (d *FileDriver) handle() (*SQLDriver, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mem == nil {
		return nil, ErrNotConnected
	}
	return d.mem, nil
}

func (d *FileDriver) Query(ctx context.Context, query string, args ...any) ([]*Row, error) {
	mem, err := d.handle()
	if err != nil {
		return nil, err
	}
	return mem.Query(ctx, query, args...)
}

func (d *FileDriver) Ping(ctx context.Context) error {
	mem, err := d.handle()
	if err != nil {
		return err
	}
	return mem.Ping(ctx)
}

func (d *FileDriver) Placeholder(int) string {
	return "?"
}
