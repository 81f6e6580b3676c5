package route

import "errors"

var (
	// ErrNotFound is returned when no pattern matches the dispatched path.
	ErrNotFound = errors.New("route: not found")

	ErrInvalidPattern    = errors.New("route: invalid pattern")
	ErrUnsupportedMethod = errors.New("route: unsupported method")
	ErrNilHandler        = errors.New("route: nil handler")
)
