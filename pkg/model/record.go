package model

import (
	"encoding/json"
	"reflect"
	"slices"

	"github.com/dmitrymomot/plain/pkg/database"
)

// Record is a row-backed model instance with explicit field access.
type Record struct {
	data     *database.Row
	original *database.Row
}

// New returns a record holding fields. It has no original data, so every
// field counts as dirty.
func New(fields ...database.Field) *Record {
	return &Record{data: database.NewRow(fields...)}
}

// Make returns a record loaded from row and remembers row as its original data.
// A nil row gives an empty record.
func Make(row *database.Row) *Record {
	if row == nil {
		row = database.NewRow()
	}
	return &Record{data: row.Clone(), original: row.Clone()}
}

func (r *Record) Get(field string) (any, bool) {
	return r.data.Get(field)
}

func (r *Record) Set(field string, value any) {
	r.data.Set(field, value)
}

func (r *Record) Has(field string) bool {
	return r.data.Has(field)
}

func (r *Record) Unset(field string) {
	r.data.Delete(field)
}

// String returns the field formatted as text, or "" when missing.
func (r *Record) String(field string) string {
	return r.data.String(field)
}

// Fields returns the field/value pairs in column order.
func (r *Record) Fields() []database.Field {
	return r.data.Fields()
}

func (r *Record) Columns() []string {
	return r.data.Columns()
}

// Row returns a copy of the current data.
func (r *Record) Row() *database.Row {
	return r.data.Clone()
}

// Original returns a copy of the data the record was made from, or nil for
// records built with New.
func (r *Record) Original() *database.Row {
	return r.original.Clone()
}

// Dirty returns the fields whose value differs from the original data,
// in column order, followed by original fields that were unset.
func (r *Record) Dirty() []string {
	var dirty []string
	for _, f := range r.data.Fields() {
		old, ok := r.original.Get(f.Name)
		if !ok || !reflect.DeepEqual(old, f.Value) {
			dirty = append(dirty, f.Name)
		}
	}
	for _, col := range r.original.Columns() {
		if !r.data.Has(col) && !slices.Contains(dirty, col) {
			dirty = append(dirty, col)
		}
	}
	return dirty
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.data)
}
