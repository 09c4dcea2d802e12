package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	verificationOutcomes *prometheus.CounterVec
	evaluationOutcomes   *prometheus.CounterVec
	persistenceFailures  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecotask",
			Name:      "api_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ecotask",
			Name:      "api_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method", "route"})

		verificationOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecotask",
			Name:      "verification_outcomes_total",
			Help:      "Photo verifications by outcome and content analysis path.",
		}, []string{"outcome", "analysis"})

		evaluationOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecotask",
			Name:      "evaluation_outcomes_total",
			Help:      "Rubric evaluations by outcome.",
		}, []string{"outcome"})

		persistenceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecotask",
			Name:      "persistence_failures_total",
			Help:      "Failed writes of pipeline results.",
		}, []string{"kind"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, verificationOutcomes, evaluationOutcomes, persistenceFailures)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// VerificationOutcomes exposes the verification outcome counter.
func VerificationOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return verificationOutcomes
}

// EvaluationOutcomes exposes the evaluation outcome counter.
func EvaluationOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationOutcomes
}

// PersistenceFailures exposes the persistence failure counter.
func PersistenceFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return persistenceFailures
}
