package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency per method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workspot",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	VenueSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workspot",
		Name:      "venue_searches_total",
		Help:      "Completed radius searches.",
	})

	VenueRecommendationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "workspot",
		Name:      "venue_recommendations_total",
		Help:      "Completed personalized recommendation queries.",
	})

	ReviewMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspot",
		Name:      "review_mutations_total",
		Help:      "Committed review mutations by operation.",
	}, []string{"operation"})

	VoteMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workspot",
		Name:      "vote_mutations_total",
		Help:      "Committed review vote mutations by operation.",
	}, []string{"operation"})
)
