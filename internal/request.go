package internal

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Request is the transport-neutral view of an incoming request that the
// dispatcher routes on.
type Request struct {
	// Method is the upper-cased HTTP method.
	Method string

	// PathInfo is the URL path used for route matching. Never empty.
	PathInfo string

	// URI is the request URI as received.
	URI string

	// Query holds the parsed query string.
	Query url.Values

	http *http.Request
}

// NewRequest builds a request from a raw URI and method.
// An empty method means GET, an empty path means "/".
func NewRequest(uri, method string) *Request {
	req := &Request{
		Method: normalizeMethod(method),
		URI:    uri,
		Query:  url.Values{},
	}

	u, err := url.ParseRequestURI(uri)
	if err != nil {
		// Keep whatever precedes the query string; routing still works on it.
		path, rawQuery, _ := strings.Cut(uri, "?")
		req.PathInfo = normalizePath(path)
		req.Query, _ = url.ParseQuery(rawQuery)
		return req
	}
	req.PathInfo = normalizePath(u.Path)
	req.Query = u.Query()
	return req
}

// RequestFromHTTP wraps an incoming HTTP request.
func RequestFromHTTP(r *http.Request) *Request {
	return &Request{
		Method:   normalizeMethod(r.Method),
		PathInfo: normalizePath(r.URL.Path),
		URI:      r.RequestURI,
		Query:    r.URL.Query(),
		http:     r,
	}
}

// HTTP returns the underlying *http.Request, building one on first use for
// requests created with NewRequest.
func (r *Request) HTTP() *http.Request {
	if r.http == nil {
		u := &url.URL{Path: r.PathInfo, RawQuery: r.Query.Encode()}
		hr, err := http.NewRequestWithContext(context.Background(), r.Method, u.String(), nil)
		if err != nil {
			hr = &http.Request{Method: r.Method, URL: u, Header: make(http.Header)}
		}
		hr.RequestURI = r.URI
		hr.Body = http.NoBody
		r.http = hr
	}
	return r.http
}

// WithContext returns a shallow copy of r bound to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	out := *r
	out.http = r.HTTP().WithContext(ctx)
	return &out
}

// Context returns the request's context.
func (r *Request) Context() context.Context {
	return r.HTTP().Context()
}

func normalizeMethod(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return m
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
