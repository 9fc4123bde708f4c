// Package metrics holds the Prometheus collectors of the posting engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Posting outcomes used as the "outcome" label of books_postings_total.
const (
	OutcomePosted       = "posted"
	OutcomeIdempotent   = "idempotent"
	OutcomeRejected     = "rejected"
	OutcomeCompensated  = "compensated"
	OutcomePartialWrite = "partial_write"
	OutcomeFailed       = "failed"
)

// Metrics bundles every collector. A nil *Metrics is valid and records nothing,
// which keeps tests free of registry wiring.
type Metrics struct {
	gatherer prometheus.Gatherer

	PostingsTotal     *prometheus.CounterVec
	PostingDuration   prometheus.Histogram
	AuditFailures     prometheus.Counter
	OutboxDispatched  *prometheus.CounterVec
	HTTPInFlight      prometheus.Gauge
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		PostingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "books_postings_total",
			Help: "Journal postings by outcome.",
		}, []string{"outcome"}),
		PostingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "books_posting_duration_seconds",
			Help:    "Time spent posting a journal entry.",
			Buckets: prometheus.DefBuckets,
		}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "books_audit_failures_total",
			Help: "Audit events that could not be written.",
		}),
		OutboxDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "books_outbox_dispatched_total",
			Help: "Outbox deliveries by handler and outcome.",
		}, []string{"handler", "outcome"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(
		m.PostingsTotal, m.PostingDuration, m.AuditFailures, m.OutboxDispatched,
		m.HTTPInFlight, m.HTTPRequestsTotal, m.HTTPDuration,
	)
	return m
}

// NewDefault registers the collectors on a fresh registry that also carries the
// Go runtime and process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return New(reg)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObservePosting records one posting attempt.
func (m *Metrics) ObservePosting(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.PostingsTotal.WithLabelValues(outcome).Inc()
	m.PostingDuration.Observe(seconds)
}

// IncAuditFailure counts an audit event that was dropped.
func (m *Metrics) IncAuditFailure() {
	if m == nil {
		return
	}
	m.AuditFailures.Inc()
}

// ObserveDispatch counts one outbox delivery attempt.
func (m *Metrics) ObserveDispatch(handler, outcome string) {
	if m == nil {
		return
	}
	m.OutboxDispatched.WithLabelValues(handler, outcome).Inc()
}
