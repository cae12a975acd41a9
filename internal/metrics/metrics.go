// Package metrics exposes Prometheus collectors for the assignment pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pressroom"

var (
	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "assignments_total",
			Help:      "Template assignments by mode and template",
		},
		[]string{"mode", "template"},
	)

	AnalysisFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "failures_total",
			Help:      "Analyses that collapsed to the deterministic path, by reason",
		},
		[]string{"reason"}, // timeout, canceled, error, invalid_layout
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Content analysis latency in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"}, // heuristic, inference
	)

	InvalidOverridesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "invalid_overrides_total",
			Help:      "Caller-supplied template overrides outside the template set",
		},
	)

	RenderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "errors_total",
			Help:      "Renderer failures by template",
		},
		[]string{"template"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordAssignment counts one finished assignment.
func RecordAssignment(mode, template string) {
	AssignmentsTotal.WithLabelValues(mode, template).Inc()
}

// RecordAnalysisFailure counts one analysis that fell back to the deterministic path.
func RecordAnalysisFailure(reason string) {
	AnalysisFailuresTotal.WithLabelValues(reason).Inc()
}

// ObserveAnalysis records analysis latency in seconds.
func ObserveAnalysis(source string, seconds float64) {
	AnalysisDuration.WithLabelValues(source).Observe(seconds)
}
