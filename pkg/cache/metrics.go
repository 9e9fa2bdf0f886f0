package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks lookups served from a live entry
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zzapi_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses tracks lookups that started or joined a computation
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zzapi_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheShared tracks callers that joined an in-flight computation
	CacheShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zzapi_cache_shared_total",
			Help: "Total number of callers served by another caller's in-flight computation",
		},
	)

	// CacheStores tracks entries written to the store
	CacheStores = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zzapi_cache_stores_total",
			Help: "Total number of response cache entries stored",
		},
	)

	// CacheAbandoned tracks computations dropped without storing
	CacheAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zzapi_cache_abandoned_total",
			Help: "Total number of computations abandoned because the client went away",
		},
	)

	// CacheErrors tracks store operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zzapi_cache_errors_total",
			Help: "Total number of response cache store errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)

	// CacheEntries tracks live entries by store
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zzapi_cache_entries",
			Help: "Current number of response cache entries",
		},
		[]string{"store"}, // "memory"
	)
)
