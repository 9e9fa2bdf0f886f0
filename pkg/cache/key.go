package cache

import "net/http"

// Key identifies a cached response.
// Keys compare exactly: query parameter order matters and nothing is canonicalized.
type Key struct {
	// Method is the request method (e.g., "GET")
	Method string

	// Path is the escaped request path (e.g., "/zaiko/events/42")
	Path string

	// RawQuery is the query string without the leading '?'
	RawQuery string
}

// KeyFromRequest derives the cache key of r.
func KeyFromRequest(r *http.Request) Key {
	return Key{
		Method:   r.Method,
		Path:     r.URL.EscapedPath(),
		RawQuery: r.URL.RawQuery,
	}
}

// String generates the key string used by stores.
//
// Example:
//
//	GET /square.png?u=https%3A%2F%2Fmedia.zaiko.io%2Fa.png
func (k Key) String() string {
	s := k.Method + " " + k.Path
	if k.RawQuery != "" {
		s += "?" + k.RawQuery
	}
	return s
}
