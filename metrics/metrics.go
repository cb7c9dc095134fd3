package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelrules_searches_total",
			Help: "Total number of rule searches executed",
		},
	)

	SearchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelrules_search_failures_total",
			Help: "Total number of searches that failed at the rule store",
		},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travelrules_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrules_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrules_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrules_cache_evictions_total",
			Help: "Total number of entries evicted on expiry",
		},
		[]string{"cache"},
	)

	RuleViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelrules_rule_views_total",
			Help: "Total number of rule detail views",
		},
	)

	FeedbackSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrules_feedback_submitted_total",
			Help: "Total number of feedback entries accepted",
		},
		[]string{"type"},
	)

	EventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrules_events_tracked_total",
			Help: "Total number of analytics events recorded",
		},
		[]string{"type"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelrules_store_query_duration_seconds",
			Help:    "Time taken by rule store queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
)
