package route

import (
	"fmt"
	"net/http"
)

// HandlerFunc handles a matched route. It receives the caller-supplied value c
// (usually a request context) and the captured groups of the pattern.
// The returned value is passed through the dispatcher unmodified.
type HandlerFunc[C any] func(c C, args ...string) (any, error)

// Route is a single (method, pattern, handler) registration.
type Route[C any] struct {
	Handler HandlerFunc[C]
	Pattern *Pattern
	Method  string
}

// Match is the result of resolving a path: the handler to invoke and the
// positional arguments captured from the path.
type Match[C any] struct {
	Route *Route[C]
	Args  []string
}

// Methods lists the routable HTTP methods.
var Methods = []string{http.MethodGet, http.MethodPost}

// collection keeps routes in registration order, indexed by raw pattern.
type collection[C any] struct {
	index  map[string]int
	routes []*Route[C]
}

func newCollection[C any]() *collection[C] {
	return &collection[C]{index: make(map[string]int)}
}

func (c *collection[C]) put(r *Route[C]) {
	if i, ok := c.index[r.Pattern.String()]; ok {
		c.routes[i] = r
		return
	}
	c.index[r.Pattern.String()] = len(c.routes)
	c.routes = append(c.routes, r)
}

// Table stores route registrations per method and error handlers per status code.
// Registration is expected to happen before dispatching starts; a Table is safe
// for concurrent reads once populated.
type Table[C any] struct {
	methods map[string]*collection[C]
	errors  map[int]HandlerFunc[C]
}

// NewTable creates an empty route table.
func NewTable[C any]() *Table[C] {
	t := &Table[C]{
		methods: make(map[string]*collection[C], len(Methods)),
		errors:  make(map[int]HandlerFunc[C]),
	}
	for _, m := range Methods {
		t.methods[m] = newCollection[C]()
	}
	return t
}

// Register adds a route. The pattern is compiled immediately so that malformed
// expressions fail here instead of on the first request. Registering the same
// method and pattern twice replaces the earlier handler.
func (t *Table[C]) Register(method, pattern string, h HandlerFunc[C]) error {
	if h == nil {
		return ErrNilHandler
	}
	coll, ok := t.methods[method]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	p, err := Compile(pattern)
	if err != nil {
		return err
	}
	coll.put(&Route[C]{Method: method, Pattern: p, Handler: h})
	return nil
}

// RegisterError sets the handler for the given status code, replacing any previous one.
func (t *Table[C]) RegisterError(code int, h HandlerFunc[C]) error {
	if h == nil {
		return ErrNilHandler
	}
	t.errors[code] = h
	return nil
}

// Routes returns the routes registered for method in precedence order.
// Unknown methods yield an empty slice.
func (t *Table[C]) Routes(method string) []*Route[C] {
	coll, ok := t.methods[method]
	if !ok {
		return nil
	}
	return coll.routes
}

// ErrorHandler returns the handler registered for code.
func (t *Table[C]) ErrorHandler(code int) (HandlerFunc[C], bool) {
	h, ok := t.errors[code]
	return h, ok
}

// Len returns the total number of registered routes.
func (t *Table[C]) Len() int {
	n := 0
	for _, coll := range t.methods {
		n += len(coll.routes)
	}
	return n
}

// MatchPath tries routes in order and returns the first full match.
func MatchPath[C any](path string, routes []*Route[C]) (Match[C], bool) {
	for _, r := range routes {
		if args, ok := r.Pattern.Match(path); ok {
			return Match[C]{Route: r, Args: args}, true
		}
	}
	return Match[C]{}, false
}
