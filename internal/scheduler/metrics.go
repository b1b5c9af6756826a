package scheduler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments generation attempts across all departments (the
// collectors carry no department label): how many variants were tried, how
// long the solver spent on each, and how the run as a whole resolved.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	variantAttempts *prometheus.CounterVec
	variantDuration *prometheus.HistogramVec
	runOutcomes     *prometheus.CounterVec
}

// NewMetrics registers the scheduler's Prometheus collectors in their own
// registry, the same isolation the rest of the service's metrics use.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	variantAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_variant_attempts_total",
		Help: "Number of solver attempts per variant outcome",
	}, []string{"outcome"})

	variantDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_variant_duration_seconds",
		Help:    "Duration of a single variant's solve attempt",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	runOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_generation_runs_total",
		Help: "Number of generate() calls by final status",
	}, []string{"status"})

	registry.MustRegister(variantAttempts, variantDuration, runOutcomes)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		variantAttempts: variantAttempts,
		variantDuration: variantDuration,
		runOutcomes:     runOutcomes,
	}
}

// Handler exposes the scheduler's Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveVariant records one variant attempt's outcome and duration.
// outcome is "feasible" or "infeasible".
func (m *Metrics) ObserveVariant(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.variantAttempts.WithLabelValues(outcome).Inc()
	m.variantDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveRun records a generate() call's terminal status: "success",
// "infeasible", or "error" (missing input or a persistence failure).
func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.runOutcomes.WithLabelValues(status).Inc()
}
