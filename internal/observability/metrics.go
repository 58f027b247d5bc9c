package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Publish results recorded by EventPublished.
const (
	ResultPublished = "published"
	ResultFailed    = "failed"
)

// Metrics owns the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	ordersCreated       prometheus.Counter
	orderTransitions    *prometheus.CounterVec
	reservationFailures prometheus.Counter
	eventsPublished     *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders committed in Pending status.",
		}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Committed order status transitions by target status.",
		}, []string{"to"}),
		reservationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stock_reservation_failures_total",
			Help: "Order creations rejected for insufficient stock.",
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Outbox publish attempts by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.ordersCreated,
		m.orderTransitions,
		m.reservationFailures,
		m.eventsPublished,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderCreated() { m.ordersCreated.Inc() }

func (m *Metrics) OrderTransitioned(to string) { m.orderTransitions.WithLabelValues(to).Inc() }

func (m *Metrics) ReservationFailed() { m.reservationFailures.Inc() }

func (m *Metrics) EventPublished(ok bool) {
	result := ResultPublished
	if !ok {
		result = ResultFailed
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}

// Collectors used by tests to read individual series.
func (m *Metrics) RequestsCounter() *prometheus.CounterVec        { return m.httpRequests }
func (m *Metrics) OrdersCreatedCounter() prometheus.Counter       { return m.ordersCreated }
func (m *Metrics) TransitionsCounter() *prometheus.CounterVec     { return m.orderTransitions }
func (m *Metrics) ReservationFailuresCounter() prometheus.Counter { return m.reservationFailures }
func (m *Metrics) PublishedCounter() *prometheus.CounterVec       { return m.eventsPublished }
