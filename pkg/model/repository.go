package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/plain/pkg/database"
)

// Selector starts a query. *database.Conn implements it.
type Selector interface {
	Select(cols ...string) *database.Query
}

// Repository loads records of one schema.
type Repository struct {
	schema Schema
}

// NewRepository returns a repository for s.
func NewRepository(s Schema) *Repository {
	return &Repository{schema: s}
}

func (r *Repository) Schema() Schema {
	return r.schema
}

// Find loads the record whose primary key equals id.
func (r *Repository) Find(ctx context.Context, db Selector, id any) (*Record, error) {
	if db == nil {
		return nil, ErrNoConnection
	}
	row, err := db.Select().From(r.schema.Table).Where(r.schema.PrimaryKey, id).GetOne(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.Join(ErrRecordNotFound, fmt.Errorf("%s %s=%v", r.schema.Name, r.schema.PrimaryKey, id))
	}
	return Make(row), nil
}

// All loads every record of the table.
func (r *Repository) All(ctx context.Context, db Selector) ([]*Record, error) {
	if db == nil {
		return nil, ErrNoConnection
	}
	rows, err := db.Select().From(r.schema.Table).Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, len(rows))
	for i, row := range rows {
		out[i] = Make(row)
	}
	return out, nil
}
