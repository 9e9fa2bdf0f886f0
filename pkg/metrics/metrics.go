// Package metrics exposes the Prometheus registry used by zzapi.
// All metrics are defined in their respective packages (cache, upstream,
// middleware, api) to maintain modularity and avoid circular dependencies.
//
// This package provides the /metrics handler and a reference for all
// available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by zzapi.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry read by Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - zzapi_cache_hits_total (Counter): Responses served from the cache
//   - zzapi_cache_misses_total (Counter): Lookups that found no live entry
//   - zzapi_cache_shared_total (Counter): Callers that joined another caller's computation
//   - zzapi_cache_stores_total (Counter): Entries written to the store
//   - zzapi_cache_abandoned_total (Counter): Computations dropped because their caller went away
//   - zzapi_cache_errors_total{operation} (Counter): Store errors by operation (get, set)
//   - zzapi_cache_entries{store} (Gauge): Entries held by the memory store
//
// Upstream Metrics (pkg/upstream):
//   - zzapi_upstream_requests_total{host, status} (Counter): Upstream requests by host and status
//   - zzapi_upstream_request_duration_seconds{host} (Histogram): Upstream request duration
//   - zzapi_upstream_errors_total{class} (Counter): Errors by class (client, server, status, network, body)
//
// HTTP Metrics (pkg/middleware):
//   - zzapi_http_requests_total{route, status} (Counter): Served requests by route and status
//   - zzapi_http_request_duration_seconds{route} (Histogram): Request duration by route
//
// Image Metrics (pkg/api):
//   - zzapi_canvas_fit_duration_seconds (Histogram): Decode, fit and encode duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(zzapi_cache_hits_total[5m])) /
//   (sum(rate(zzapi_cache_hits_total[5m])) + sum(rate(zzapi_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(zzapi_upstream_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(zzapi_http_request_duration_seconds_bucket[5m]))
//
//   # De-duplicated Requests
//   rate(zzapi_cache_shared_total[5m])
