// internal/utils/metrics.go
package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "content_planner"

// APIMetrics holds the Prometheus collectors of the generation service.
// Each instance owns its registry so tests can create as many as they need.
type APIMetrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	llmRequests   *prometheus.CounterVec
	llmDuration   *prometheus.HistogramVec
	generations   *prometheus.CounterVec
	errorsCounter *prometheus.CounterVec
}

// NewAPIMetrics creates and registers the collectors.
func NewAPIMetrics() *APIMetrics {
	am := &APIMetrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"endpoint", "method", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_requests_total",
			Help:      "Calls to the upstream text-generation API.",
		}, []string{"provider", "model", "result"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream text-generation latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider", "model"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "generations_total",
			Help:      "Generation requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		errorsCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Errors by type and component.",
		}, []string{"type", "component"}),
	}

	am.registry.MustRegister(
		am.apiRequests,
		am.apiDuration,
		am.llmRequests,
		am.llmDuration,
		am.generations,
		am.errorsCounter,
	)
	return am
}

// RecordAPIRequest records one HTTP request.
func (am *APIMetrics) RecordAPIRequest(endpoint, method string, statusCode int, duration time.Duration) {
	am.apiRequests.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Inc()
	am.apiDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// RecordLLMRequest records one upstream call.
func (am *APIMetrics) RecordLLMRequest(provider, model, result string, duration time.Duration) {
	am.llmRequests.WithLabelValues(provider, model, result).Inc()
	am.llmDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordGeneration records the outcome of a generation request
// (fallback, success, upstream_error, generation_failed).
func (am *APIMetrics) RecordGeneration(kind, outcome string) {
	am.generations.WithLabelValues(kind, outcome).Inc()
}

// RecordError records an error occurrence.
func (am *APIMetrics) RecordError(errorType, component string) {
	am.errorsCounter.WithLabelValues(errorType, component).Inc()
}

// Registry exposes the underlying registry.
func (am *APIMetrics) Registry() *prometheus.Registry {
	return am.registry
}

// Handler serves the Prometheus exposition format.
func (am *APIMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(am.registry, promhttp.HandlerOpts{})
}
