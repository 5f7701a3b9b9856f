// Package metrics exposes Prometheus collectors for lifecycle operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orodjarna"

// Lifecycle records outcomes of issue, return and receive operations.
type Lifecycle struct {
	results  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
}

// NewLifecycle registers the lifecycle collectors on reg.
func NewLifecycle(reg prometheus.Registerer) *Lifecycle {
	m := &Lifecycle{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "operations_total",
			Help:      "Lifecycle operations by outcome kind.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "operation_duration_seconds",
			Help:      "Lifecycle operation latency including conflict retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "conflict_retries_total",
			Help:      "Transactions retried after losing a race.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.results, m.duration, m.retries)
	return m
}

// Observe records one finished operation. outcome is "ok" or an error kind.
func (m *Lifecycle) Observe(operation, outcome string, d time.Duration) {
	m.results.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// ConflictRetry counts one retried transaction.
func (m *Lifecycle) ConflictRetry(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
