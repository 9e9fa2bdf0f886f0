package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/nekok500/zzapi/pkg/logging"
)

// Response headers set by the middleware.
const (
	HeaderCache = "X-Cache"
	HeaderAge   = "Age"
)

// Middleware serves GET and HEAD requests through the cache. Other methods
// pass straight to next.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		entry, hit, err := c.GetOrCompute(r.Context(), KeyFromRequest(r), func(ctx context.Context) (*Entry, error) {
			rec := newRecorder()
			next.ServeHTTP(rec, r.WithContext(ctx))
			return rec.entry(), nil
		})
		if err != nil {
			logger := logging.FromContext(r.Context())
			if r.Context().Err() != nil || errors.Is(err, ErrAbandoned) {
				logger.Debug().Err(err).Msg("Client went away before response was ready")
				return
			}
			logger.Error().Err(err).Msg("Cached computation failed")
			c.writeFailure(w, err)
			return
		}

		c.write(w, entry, hit)
	})
}

// writeFailure answers with a plain 500 when no entry could be produced.
func (c *Cache) writeFailure(w http.ResponseWriter, err error) {
	body := fmt.Sprintf("Something went wrong: %v", err)
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	if c.onError != nil {
		c.onError(h, http.StatusInternalServerError)
	}
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, body)
}

// write replays entry onto w.
func (c *Cache) write(w http.ResponseWriter, entry *Entry, hit bool) {
	h := w.Header()
	for key, values := range entry.Header {
		h[key] = values
	}

	if hit {
		now := c.now()
		h.Set(HeaderCache, "HIT")
		h.Set(HeaderAge, strconv.FormatInt(int64(entry.Age(now).Seconds()), 10))
		if c.onHit != nil {
			c.onHit(h, entry.StatusCode, entry.Remaining(now))
		}
	} else {
		h.Set(HeaderCache, "MISS")
	}

	h.Set("Content-Length", strconv.Itoa(len(entry.Body)))
	w.WriteHeader(entry.StatusCode)
	_, _ = w.Write(entry.Body)
}

// recorder buffers a handler's response so it can be stored.
type recorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: http.Header{}}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = code
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(b)
}

// entry snapshots the recorded response.
func (r *recorder) entry() *Entry {
	status := r.status
	if !r.wroteHeader {
		status = http.StatusOK
	}
	return &Entry{
		StatusCode: status,
		Header:     r.header.Clone(),
		Body:       r.body.Bytes(),
	}
}
