package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "flashcards"

// Metrics holds all application metrics.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	GenerationsTotal  *prometheus.CounterVec
	AIRequestDuration *prometheus.HistogramVec

	CheckoutSessionsTotal *prometheus.CounterVec
	CreditsGrantedTotal   *prometheus.CounterVec
}

// New registers every metric with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quota",
				Name:      "generations_total",
				Help:      "Flashcard generation attempts by outcome",
			},
			[]string{"outcome"},
		),
		AIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "request_duration_seconds",
				Help:      "Generative AI request duration in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"status"},
		),
		CheckoutSessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "checkout_sessions_total",
				Help:      "Checkout sessions created by plan",
			},
			[]string{"plan"},
		),
		CreditsGrantedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "credits_granted_total",
				Help:      "Generation credits granted from paid checkout sessions",
			},
			[]string{"plan"},
		),
	}
}

// Record* methods are no-ops on a nil *Metrics.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordGeneration(outcome string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordAIRequest(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AIRequestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *Metrics) RecordCheckoutSession(plan string) {
	if m == nil {
		return
	}
	m.CheckoutSessionsTotal.WithLabelValues(plan).Inc()
}

func (m *Metrics) RecordCreditsGranted(plan string, credits int) {
	if m == nil {
		return
	}
	m.CreditsGrantedTotal.WithLabelValues(plan).Add(float64(credits))
}
