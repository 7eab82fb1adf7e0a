// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PipelineRunsTotal tracks completed pipeline runs by terminal branch.
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_pipeline_runs_total",
			Help: "Completed message pipeline runs",
		},
		[]string{"intent"},
	)

	// PipelineStageFailures tracks degraded stages inside pipeline runs.
	PipelineStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_pipeline_stage_failures_total",
			Help: "Pipeline stages that fell back to their degraded path",
		},
		[]string{"stage"},
	)

	// PipelineDuration tracks end-to-end pipeline latency per message.
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_pipeline_duration_seconds",
			Help:    "End-to-end message pipeline duration",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	// SessionsActive tracks active websocket sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of active realtime chat sessions",
		},
	)

	// MessagesTotal tracks chat messages by sender.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages processed",
		},
		[]string{"sender"},
	)

	// CatalogLookupsTotal tracks catalog searches by kind and outcome.
	CatalogLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Catalog lookups by record kind and hit/miss",
		},
		[]string{"kind", "outcome"},
	)

	// LLMCallDuration tracks remote model call latency per operation.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "Remote language model call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"operation", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordStageFailure records a pipeline stage falling back.
func RecordStageFailure(stage string) {
	PipelineStageFailures.WithLabelValues(stage).Inc()
}

// RecordCatalogLookup records a catalog search result.
func RecordCatalogLookup(kind string, hits int) {
	outcome := "hit"
	if hits == 0 {
		outcome = "miss"
	}
	CatalogLookupsTotal.WithLabelValues(kind, outcome).Inc()
}
