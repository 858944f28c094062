package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the advisor API collectors on a private registry so tests
// can build as many instances as they like. Recording methods are no-ops on
// a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	AdvisorsCreated      prometheus.Counter
	ValidationFailures   *prometheus.CounterVec
	HealthStatusAssigned *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
	WebsocketClients     prometheus.Gauge
	WebsocketDropped     prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		AdvisorsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "advisor_api_advisors_created_total",
			Help: "Total number of advisors created",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_api_validation_failures_total",
			Help: "Create requests rejected by validation, by reason",
		}, []string{"reason"}),
		HealthStatusAssigned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_api_health_status_assigned_total",
			Help: "Health statuses assigned at creation",
		}, []string{"status"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "advisor_api_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "advisor_api_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
		WebsocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "advisor_api_websocket_clients",
			Help: "Connected websocket clients",
		}),
		WebsocketDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "advisor_api_websocket_dropped_messages_total",
			Help: "Change events dropped for slow websocket clients",
		}),
	}
}

func (m *Metrics) IncrementAdvisorCreated() {
	if m == nil {
		return
	}
	m.AdvisorsCreated.Inc()
}

func (m *Metrics) IncrementValidationFailure(reason string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementHealthStatus(status string) {
	if m == nil {
		return
	}
	m.HealthStatusAssigned.WithLabelValues(status).Inc()
}

// ObserveRequest records one finished HTTP request.
// Call with time.Now() taken before the handler ran.
func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
