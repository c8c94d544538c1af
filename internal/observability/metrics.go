package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Admission outcomes.
const (
	OutcomeAssigned = "assigned"
	OutcomeQueued   = "queued"
	OutcomeError    = "error"
)

// Metrics owns the service's Prometheus collectors on a private registry.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests         *prometheus.CounterVec
	httpErrors           *prometheus.CounterVec
	admissions           *prometheus.CounterVec
	admissionLatency     prometheus.Histogram
	reservationConflicts *prometheus.CounterVec
	queueDepth           prometheus.Gauge
	redraws              *prometheus.CounterVec
	releases             *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		httpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "http",
			Name:      "errors_total",
			Help:      "HTTP error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "admissions_total",
			Help:      "Admission decisions by outcome",
		}, []string{"outcome"}),
		admissionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Name:      "admission_duration_seconds",
			Help:      "Time taken to reach an admission decision",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		reservationConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "reservation_conflicts_total",
			Help:      "Reservations refused because a staff member or unit was at capacity",
		}, []string{"reason"}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "queue_depth",
			Help:      "Queue entries seen by the most recent listing or redraw pass",
		}),
		redraws: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "redraws_total",
			Help:      "Queue redraw attempts by outcome",
		}, []string{"outcome"}),
		releases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "releases_total",
			Help:      "Assignments released by terminal status",
		}, []string{"status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, _ time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(route, method, code).Inc()
}

// RecordAdmission counts one admission decision and its latency.
func (m *Metrics) RecordAdmission(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(outcome).Inc()
	m.admissionLatency.Observe(elapsed.Seconds())
}

// RecordReservationConflict counts a refused reservation.
func (m *Metrics) RecordReservationConflict(reason string) {
	if m == nil {
		return
	}
	m.reservationConflicts.WithLabelValues(reason).Inc()
}

// SetQueueDepth records the latest observed queue size.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// RecordRedraw counts one redraw attempt.
func (m *Metrics) RecordRedraw(outcome string) {
	if m == nil {
		return
	}
	m.redraws.WithLabelValues(outcome).Inc()
}

// RecordRelease counts a released assignment.
func (m *Metrics) RecordRelease(status string) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(status).Inc()
}
