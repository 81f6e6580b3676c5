package route

import "fmt"

// Dispatcher resolves (method, path) pairs against a Table and invokes the
// matching handler.
type Dispatcher[C any] struct {
	*Table[C]
}

// NewDispatcher creates a dispatcher over a fresh table.
func NewDispatcher[C any]() *Dispatcher[C] {
	return &Dispatcher[C]{Table: NewTable[C]()}
}

// NewDispatcherFor creates a dispatcher over an existing table.
func NewDispatcherFor[C any](t *Table[C]) *Dispatcher[C] {
	return &Dispatcher[C]{Table: t}
}

// Lookup finds the handler for the request without invoking it.
// Returns ErrNotFound when nothing matches.
func (d *Dispatcher[C]) Lookup(method, path string) (Match[C], error) {
	m, ok := MatchPath(path, d.Routes(method))
	if !ok {
		return Match[C]{}, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	return m, nil
}

// Dispatch invokes the first handler whose pattern matches path, passing the
// captured groups in order. The handler result is returned as is.
func (d *Dispatcher[C]) Dispatch(c C, method, path string) (any, error) {
	m, err := d.Lookup(method, path)
	if err != nil {
		return nil, err
	}
	return m.Route.Handler(c, m.Args...)
}

// DispatchError invokes the error handler registered for code.
// Returns ErrNotFound when no handler is registered for it.
func (d *Dispatcher[C]) DispatchError(c C, code int) (any, error) {
	h, ok := d.ErrorHandler(code)
	if !ok {
		return nil, fmt.Errorf("%w: error handler %d", ErrNotFound, code)
	}
	return h(c)
}
