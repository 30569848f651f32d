// Package metrics Prometheus collectors for checkout, settlement and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	apporder "storefront/application/order"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics collectors registered on one registry
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated   *prometheus.CounterVec
	ordersCancelled prometheus.Counter
	settlements     *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, plus the Go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders placed, by kind (user or guest).",
		}, []string{"kind"}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled by their owner.",
		}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Payment settlements, by outcome.",
		}, []string{"outcome"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_gateway_calls_total",
			Help:      "Payment provider calls, by operation and result.",
		}, []string{"operation", "result"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_gateway_call_duration_seconds",
			Help:      "Payment provider call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersCreated, m.ordersCancelled, m.settlements,
		m.gatewayCalls, m.gatewayDuration,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Handler exposition endpoint for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderCreated(kind string) {
	m.ordersCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) OrderCancelled() {
	m.ordersCancelled.Inc()
}

func (m *Metrics) SettlementFinished(outcome string) {
	m.settlements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GatewayCall(operation string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.gatewayCalls.WithLabelValues(operation, result).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveRequest records one served request; route is the matched pattern, not the raw path
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

var _ apporder.Metrics = (*Metrics)(nil)
