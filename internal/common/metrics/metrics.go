// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_evaluations_completed_total",
			Help: "Total number of completed review evaluations",
		},
		[]string{"review_type", "fallback_mode"},
	)

	EvaluationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_evaluations_failed_total",
			Help: "Total number of failed review evaluations",
		},
		[]string{"review_type", "error_code"},
	)

	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rating_evaluation_duration_seconds",
			Help: "Duration of review evaluation in seconds",
		},
		[]string{"review_type"},
	)

	GatewayCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_gateway_calls_total",
			Help: "Outbound model API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "model_gateway_call_duration_seconds",
			Help: "Duration of outbound model API calls in seconds",
		},
		[]string{"operation"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_requests_total",
			Help: "Cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "analysis_cache_entries",
			Help: "Number of entries currently held by the cache store",
		},
		[]string{"backend"},
	)
)
