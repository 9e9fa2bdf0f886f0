package cache

import (
	"net/http"
	"time"
)

// Entry represents a cached response.
type Entry struct {
	// StatusCode is the HTTP status code of the cached response
	StatusCode int `json:"status_code"`

	// Header holds the response headers as they were at store time
	Header http.Header `json:"header"`

	// Body is the response body. It must not be modified once stored.
	Body []byte `json:"body"`

	// StoredAt is when the entry was stored
	StoredAt time.Time `json:"stored_at"`

	// TTL is how long the entry stays servable after StoredAt
	TTL time.Duration `json:"ttl"`
}

// IsExpired returns true once now - StoredAt >= TTL.
func (e *Entry) IsExpired(now time.Time) bool {
	return now.Sub(e.StoredAt) >= e.TTL
}

// Remaining returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) Remaining(now time.Time) time.Duration {
	remaining := e.TTL - now.Sub(e.StoredAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	age := now.Sub(e.StoredAt)
	if age < 0 {
		return 0
	}
	return age
}

// Clone returns a copy with its own header map. The body is shared read-only.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Header = e.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	return &c
}
