// Package cache provides the response cache that sits in front of the route
// handlers.
//
// The cache maps a request identity (method, escaped path and raw query,
// compared exactly) to a complete response: status code, headers and body.
// Every entry lives for one global TTL measured from the moment it was
// stored. Expired entries are never served.
//
// Features:
//
// - Per-key de-duplication: concurrent misses for the same key share one
// computation; unrelated keys never wait on each other
// - Abandoned computations (the requesting client went away) are never stored
// - Pluggable Store: in-process MemoryStore (default) or RedisStore
// - Injectable clock for deterministic expiry in tests
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	store := cache.NewMemoryStore(nil)
//	c := cache.New(store, cache.Options{TTL: time.Hour})
//
//	entry, hit, err := c.GetOrCompute(ctx, cache.Key{Method: "GET", Path: "/square.png", RawQuery: "u=..."},
//		func(ctx context.Context) (*cache.Entry, error) {
//			return &cache.Entry{StatusCode: 200, Body: body}, nil
//		})
//
// # HTTP Middleware
//
//	handler := c.Middleware(router)
//
// The middleware buffers the wrapped handler's response, stores it and
// replays it. Cached replays carry "X-Cache: HIT" and an Age header; fresh
// responses carry "X-Cache: MISS". Stored headers are replayed as they were
// at store time unless Options.OnHit rewrites them.
//
// # Metrics
//
//   - zzapi_cache_hits_total - Lookups served from a live entry
//   - zzapi_cache_misses_total - Lookups that started or joined a computation
//   - zzapi_cache_shared_total - Callers that joined another caller's computation
//   - zzapi_cache_stores_total - Entries written to the store
//   - zzapi_cache_abandoned_total - Computations dropped because the client went away
//   - zzapi_cache_errors_total{operation} - Store errors
//   - zzapi_cache_entries{store="memory"} - Live entries held in memory
package cache
