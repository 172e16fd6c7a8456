package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks hits by layer ("memory", "redis")
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discussionblog_cache_hits_total",
			Help: "Total number of memoized results served without loading",
		},
		[]string{"layer"},
	)

	// CacheMisses tracks loads that had to run
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discussionblog_cache_misses_total",
			Help: "Total number of cache misses that ran a loader",
		},
	)

	// CoalescedCalls tracks callers that joined an in-flight load
	CoalescedCalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discussionblog_cache_coalesced_total",
			Help: "Total number of calls that shared an in-flight load",
		},
	)

	// StoreErrors tracks shared store failures
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discussionblog_cache_store_errors_total",
			Help: "Total number of shared cache store errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "decode"
	)
)
