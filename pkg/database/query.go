package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type clause struct {
	column string
	op     string
	value  any
}

// Query accumulates a SELECT statement through chained calls.
// A Query is owned by a single caller; Conn.Query hands out a fresh one per use.
type Query struct {
	conn *Conn

	selected bool
	columns  []string
	table    string
	wheres   []clause
}

// NewQuery returns a builder that is not bound to a connection.
// It can render SQL but Get and GetOne fail with ErrNotConfigured.
func NewQuery() *Query {
	return &Query{}
}

// Select starts a new statement selecting cols, or every column when none
// are given. It clears any FROM and WHERE set before.
func (q *Query) Select(cols ...string) *Query {
	q.selected = true
	q.columns = append([]string(nil), cols...)
	q.table = ""
	q.wheres = nil
	return q
}

// From sets the target table.
func (q *Query) From(table string) *Query {
	q.table = table
	return q
}

// Where appends an equality condition.
func (q *Query) Where(col string, value any) *Query {
	return q.WhereOp(col, "=", value)
}

// WhereOp appends a condition with an explicit operator, e.g. "<>", ">=", "like".
// Conditions are joined with AND.
func (q *Query) WhereOp(col, op string, value any) *Query {
	q.wheres = append(q.wheres, clause{column: col, op: op, value: value})
	return q
}

// Reset clears the build state.
func (q *Query) Reset() {
	q.selected = false
	q.columns = nil
	q.table = ""
	q.wheres = nil
}

// Render returns the statement with values inlined as quoted literals.
// The literal form is meant for logs. Execution and caching use Build.
func (q *Query) Render() (string, error) {
	return q.render(func(_ int, v string) string {
		return "'" + v + "'"
	})
}

// Build returns the statement with a placeholder per value and the values
// as arguments, in order. bind maps the 1-based argument index to the
// backend placeholder, e.g. "?" or "$1".
func (q *Query) Build(bind func(n int) string) (string, []any, error) {
	var args []any
	sql, err := q.render(func(n int, v string) string {
		args = append(args, v)
		return bind(n)
	})
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

func (q *Query) render(value func(n int, v string) string) (string, error) {
	if !q.selected {
		return "", errors.Join(ErrInvalidQuery, errors.New("no SELECT clause set"))
	}
	if q.table == "" {
		return "", errors.Join(ErrInvalidQuery, errors.New("no FROM clause set"))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(q.columns, ","))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(q.table)

	for i, w := range q.wheres {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(w.column)
		sb.WriteByte(' ')
		sb.WriteString(w.op)
		sb.WriteByte(' ')
		sb.WriteString(value(i+1, stringify(w.value)))
	}
	return sb.String(), nil
}

// Get executes the statement and returns every row.
// The build state is cleared whether or not the call succeeds.
func (q *Query) Get(ctx context.Context) ([]*Row, error) {
	defer q.Reset()

	if q.conn == nil {
		return nil, ErrNotConfigured
	}
	return q.conn.resolve(ctx, q)
}

// GetOne executes the statement and returns the first row, or nil when
// nothing matched. The build state is cleared like Get.
func (q *Query) GetOne(ctx context.Context) (*Row, error) {
	rows, err := q.Get(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprint(v)
}
