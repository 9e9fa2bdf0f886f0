// Package freshness stamps Cache-Control on responses from their final status.
//
// Successful responses (200) get a long max-age, everything else a short one.
// The directive is written when the handler commits its status, so a
// response cache sitting outside the middleware stores it together with the
// rest of the response.
package freshness

import (
	"fmt"
	"net/http"
	"time"
)

// HeaderCacheControl is the header written by the annotator.
const HeaderCacheControl = "Cache-Control"

// Policy holds the max-age for successful and non-successful responses.
type Policy struct {
	Success time.Duration
	Failure time.Duration
}

// DefaultPolicy is one hour for successes and five minutes otherwise.
var DefaultPolicy = Policy{
	Success: time.Hour,
	Failure: 5 * time.Minute,
}

// MaxAge returns the max-age for status. Only 200 counts as success.
func (p Policy) MaxAge(status int) time.Duration {
	if status == http.StatusOK {
		return p.Success
	}
	return p.Failure
}

// Directive returns the Cache-Control value for status.
func (p Policy) Directive(status int) string {
	return directive(p.MaxAge(status))
}

// Annotate sets the Cache-Control for status on h.
// Its signature matches cache.Options.OnError.
func (p Policy) Annotate(h http.Header, status int) {
	h.Set(HeaderCacheControl, p.Directive(status))
}

// Refresh rewrites the Cache-Control of a response replayed from a cache so
// max-age never exceeds the cache entry's remaining lifespan.
// Its signature matches cache.Options.OnHit.
func (p Policy) Refresh(h http.Header, status int, remaining time.Duration) {
	maxAge := p.MaxAge(status)
	if remaining < maxAge {
		maxAge = remaining
	}
	h.Set(HeaderCacheControl, directive(maxAge))
}

func directive(maxAge time.Duration) string {
	if maxAge < 0 {
		maxAge = 0
	}
	return fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second))
}
