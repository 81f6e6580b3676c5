package database

import (
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

var (
	ErrInvalidQuery      = errors.New("database: invalid query")
	ErrConnection        = errors.New("database: connection error")
	ErrNotConnected      = errors.New("database: driver is not connected")
	ErrNotConfigured     = errors.New("database: manager is not configured")
	ErrUnknownDriver     = errors.New("database: unknown driver")
	ErrDriverNotDefined  = errors.New("database: driver not defined")
	ErrInvalidConfig     = errors.New("database: invalid configuration")
	ErrNoPath            = errors.New("database: no path defined for file database")
	ErrInvalidPath       = errors.New("database: invalid directory for file database")
	ErrInvalidDataFile   = errors.New("database: invalid data file")
	ErrHealthcheckFailed = errors.New("database: healthcheck failed")
)

// ConnectionError reports a backend failure while connecting or executing a query.
// Code carries the backend-native error code: the sqlite result code or the
// Postgres SQLSTATE. It is empty when the backend reported none.
type ConnectionError struct {
	Code    string
	Message string
	Err     error
}

func newConnectionError(err error, message string) *ConnectionError {
	return &ConnectionError{
		Code:    nativeCode(err),
		Message: message,
		Err:     err,
	}
}

func (e *ConnectionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return "database: " + msg + " (code " + e.Code + ")"
	}
	return "database: " + msg
}

// Unwrap exposes both ErrConnection and the backend error to errors.Is/As.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

func nativeCode(err error) string {
	if err == nil {
		return ""
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return strconv.Itoa(se.Code())
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
