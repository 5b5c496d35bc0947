package metrics

import "github.com/prometheus/client_golang/prometheus"

// Suggestion lookup Prometheus metrics.
var (
	SuggestLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_lookups_total",
			Help:      "Suggestion lookups by outcome",
		},
		[]string{"outcome"}, // "ok" / "empty_query" / "failed_open"
	)

	SuggestLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggest_lookup_duration_seconds",
			Help:      "Suggestion lookup duration in seconds, both branches included",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	SuggestResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggest_results",
			Help:      "Number of merged suggestions returned",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		},
	)

	SuggestBranchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_branch_errors_total",
			Help:      "Retrieval branch failures",
		},
		[]string{"branch"}, // "name" / "terms"
	)
)

var suggestMetricsRegistered bool

// RegisterSuggestMetrics registers suggestion metrics. Must be called once from main.
func RegisterSuggestMetrics() {
	if suggestMetricsRegistered {
		return
	}
	prometheus.MustRegister(SuggestLookupsTotal, SuggestLookupDuration, SuggestResults, SuggestBranchErrorsTotal)
	suggestMetricsRegistered = true
}
