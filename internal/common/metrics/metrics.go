// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_requests_total",
			Help: "Total number of shopping requests processed",
		},
		[]string{"action", "region"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	PipelineStageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_fallbacks_total",
			Help: "Times a stage degraded to its deterministic fallback",
		},
		[]string{"stage", "error_code"},
	)

	DiscoveryProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_provider_calls_total",
			Help: "Provider calls by outcome (ok, error, timeout, cache_hit)",
		},
		[]string{"provider", "outcome"},
	)

	DiscoveryBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_batch_size",
			Help:    "Number of items discovered per request",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 40, 80},
		},
	)
)
