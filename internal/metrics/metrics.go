// Package metrics provides Prometheus instrumentation for the service layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors shared by the HTTP layer and the
// transactional update engine.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	txnAttempts  *prometheus.CounterVec
	txnConflicts *prometheus.CounterVec
	txnExhausted *prometheus.CounterVec
}

// New creates a metrics set backed by its own registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by service, method, path and status.",
		}, []string{"service", "method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"service", "method", "path"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		txnAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txn_attempts_total",
			Help:      "Optimistic transaction attempts by operation.",
		}, []string{"operation"}),
		txnConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txn_conflicts_total",
			Help:      "Optimistic transaction commit conflicts by operation.",
		}, []string{"operation"}),
		txnExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txn_retries_exhausted_total",
			Help:      "Transactions that exhausted their retry budget.",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.txnAttempts,
		m.txnConflicts,
		m.txnExhausted,
	)
	return m
}

// Handler exposes the registry for a /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks a request as started.
func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }

// DecrementInFlight marks a request as finished.
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(service, method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(service, method, path, status).Inc()
	m.httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordTxnAttempt records one optimistic commit attempt.
func (m *Metrics) RecordTxnAttempt(operation string) {
	m.txnAttempts.WithLabelValues(operation).Inc()
}

// RecordTxnConflict records a commit rejected by a concurrent write.
func (m *Metrics) RecordTxnConflict(operation string) {
	m.txnConflicts.WithLabelValues(operation).Inc()
}

// RecordTxnExhausted records a transaction that gave up after its retry
// budget.
func (m *Metrics) RecordTxnExhausted(operation string) {
	m.txnExhausted.WithLabelValues(operation).Inc()
}
