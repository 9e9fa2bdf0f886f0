// Package middleware provides the HTTP middleware shared by all routes.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

var (
	// HTTPRequests counts served requests by route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zzapi_http_requests_total",
			Help: "Total HTTP requests served by route and status",
		},
		[]string{"route", "status"},
	)

	// HTTPDuration tracks request duration by route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zzapi_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RouteFunc names the route of a request for metric labels. It must return a
// small, fixed set of values.
type RouteFunc func(r *http.Request) string

// RequestLogger assigns a request id, attaches a request-scoped zerolog logger
// to the request context, and logs and counts every served request.
// A nil route labels everything by path.
func RequestLogger(route RouteFunc) func(http.Handler) http.Handler {
	if route == nil {
		route = func(r *http.Request) string { return r.URL.Path }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rid := r.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, rid)

			logger := log.With().
				Str("request_id", rid).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Logger()

			mw := &metaWriter{ResponseWriter: w}
			next.ServeHTTP(mw, r.WithContext(logger.WithContext(r.Context())))

			status := mw.statusCode()
			duration := time.Since(start)
			name := route(r)

			HTTPRequests.WithLabelValues(name, strconv.Itoa(status)).Inc()
			HTTPDuration.WithLabelValues(name).Observe(duration.Seconds())

			level := zerolog.InfoLevel
			switch {
			case status >= 500:
				level = zerolog.ErrorLevel
			case status >= 400:
				level = zerolog.WarnLevel
			}
			logger.WithLevel(level).
				Int("status", status).
				Int("size", mw.size).
				Str("cache", w.Header().Get("X-Cache")).
				Dur("duration", duration).
				Msg("HTTP request served")
		})
	}
}

// metaWriter records the status and body size written by a handler.
type metaWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (m *metaWriter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *metaWriter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.size += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (m *metaWriter) Unwrap() http.ResponseWriter {
	return m.ResponseWriter
}

// statusCode returns the written status. A handler that wrote nothing is
// counted as 200, matching net/http.
func (m *metaWriter) statusCode() int {
	if m.status == 0 {
		return http.StatusOK
	}
	return m.status
}
