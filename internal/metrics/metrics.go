package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewsTotal counts completed reviews by outcome status:
	// ok, degraded, cached, or malformed.
	ReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewd_reviews_total",
		Help: "Completed review requests by status.",
	}, []string{"status"})

	// CacheHits counts fingerprint cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewd_cache_hits_total",
		Help: "Review cache hits.",
	})

	// CacheMisses counts fingerprint cache misses.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewd_cache_misses_total",
		Help: "Review cache misses.",
	})

	// CacheEvictions counts entries evicted by size or TTL bounds.
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewd_cache_evictions_total",
		Help: "Review cache evictions.",
	})

	// AIRequests counts LLM analysis attempts by outcome: ok, transient,
	// terminal, or malformed.
	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewd_ai_requests_total",
		Help: "LLM analysis requests by outcome.",
	}, []string{"outcome"})

	// AIRetries counts retried LLM attempts.
	AIRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewd_ai_retries_total",
		Help: "Retried LLM analysis attempts.",
	})
)
