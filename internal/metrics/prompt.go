package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prompt provider Prometheus metrics.
var (
	PromptRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_requests_total",
			Help:      "Total number of prompt provider requests",
		},
		[]string{"provider", "model", "status"},
	)

	PromptRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prompt_request_duration_seconds",
			Help:      "Prompt provider request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"provider", "model"},
	)

	PromptTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_tokens_total",
			Help:      "Total prompt tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	PromptErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_errors_total",
			Help:      "Total prompt provider errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	PromptFeatureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_feature_requests_total",
			Help:      "AI feature calls by outcome",
		},
		[]string{"feature", "outcome"}, // ok, cached, invalid_input, quota, rate_limited, provider_error
	)

	PromptBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prompt_budget_tokens_remaining",
			Help:      "Remaining prompt token budget",
		},
		[]string{"provider", "period"},
	)

	PromptCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_cache_total",
			Help:      "Prompt response cache hits and misses",
		},
		[]string{"feature", "result"}, // "hit" / "miss"
	)
)

var promptMetricsRegistered bool

// RegisterPromptMetrics registers prompt provider metrics. Must be called once from main.
func RegisterPromptMetrics() {
	if promptMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		PromptRequestsTotal,
		PromptRequestDuration,
		PromptTokensTotal,
		PromptErrorsTotal,
		PromptFeatureTotal,
		PromptBudgetTokensRemaining,
		PromptCacheTotal,
	)
	promptMetricsRegistered = true
}
