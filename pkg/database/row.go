package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Field is a single column/value pair of a Row.
type Field struct {
	Name  string
	Value any
}

// Row is an ordered mapping of column name to value.
// The zero value is an empty row ready to use.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a row from fields, keeping their order.
// A repeated name overwrites the earlier value in place.
func NewRow(fields ...Field) *Row {
	r := &Row{values: make(map[string]any, len(fields))}
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Get returns the value stored under col.
func (r *Row) Get(col string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[col]
	return v, ok
}

// Set stores value under col. New columns are appended.
func (r *Row) Set(col string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.values[col] = value
}

// Delete removes col. Missing columns are ignored.
func (r *Row) Delete(col string) {
	if _, ok := r.values[col]; !ok {
		return
	}
	delete(r.values, col)
	if i := slices.Index(r.columns, col); i >= 0 {
		r.columns = slices.Delete(r.columns, i, i+1)
	}
}

func (r *Row) Has(col string) bool {
	_, ok := r.Get(col)
	return ok
}

// Columns returns the column names in order.
func (r *Row) Columns() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.columns)
}

// Fields returns the column/value pairs in order.
func (r *Row) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.columns))
	for i, c := range r.columns {
		out[i] = Field{Name: c, Value: r.values[c]}
	}
	return out
}

func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.columns)
}

// Map returns an unordered copy of the row.
func (r *Row) Map() map[string]any {
	if r == nil {
		return map[string]any{}
	}
	return maps.Clone(r.values)
}

// String returns col formatted with fmt.Sprint, or "" when missing or nil.
func (r *Row) String(col string) string {
	v, ok := r.Get(col)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

// Clone returns a copy that shares no state with r.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	return &Row{
		columns: slices.Clone(r.columns),
		values:  maps.Clone(r.values),
	}
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[c])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping its key order.
// Numbers are decoded as json.Number.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("database: row must be a JSON object")
	}

	r.columns = nil
	r.values = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("database: unexpected row key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		r.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

func cloneRows(rows []*Row) []*Row {
	out := make([]*Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
