package model

import "errors"

var (
	ErrRecordNotFound = errors.New("model: record not found")
	ErrNoConnection   = errors.New("model: no database connection")
)
