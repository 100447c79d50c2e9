package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// Metrics holds the Prometheus collectors of one Server. Each instance owns
// its registry, so several servers (or tests) can coexist in a process.
type Metrics struct {
	registry        *prometheus.Registry
	activeRequests  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rejections      *prometheus.CounterVec
	terms           prometheus.Histogram
	handler         http.Handler
}

// NewMetrics creates and registers the server collectors together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fibseq_active_requests",
			Help: "Number of requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibseq_requests_total",
			Help: "Requests served, by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fibseq_request_duration_seconds",
			Help:    "Request latency, by route.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"route"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fibseq_rejections_total",
			Help: "Failed sequence requests, by failure kind.",
		}, []string{"kind"}),
		terms: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fibseq_sequence_terms",
			Help:    "Number of terms returned per successful sequence request.",
			Buckets: prometheus.ExponentialBuckets(1, 10, 7),
		}),
	}
	m.registry.MustRegister(
		m.activeRequests, m.requestsTotal, m.requestDuration, m.rejections, m.terms,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return m
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRejection counts a failed sequence request by kind. Errors without
// a kind (timeouts, cancellations) are counted as "other".
func (m *Metrics) ObserveRejection(err error) {
	kind := string(apperrors.KindOf(err))
	if kind == "" {
		kind = "other"
	}
	m.rejections.WithLabelValues(kind).Inc()
}

// ObserveTerms records the length of a returned sequence.
func (m *Metrics) ObserveTerms(n int) { m.terms.Observe(float64(n)) }

// WritePrometheus serves the exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
