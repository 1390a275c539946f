// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "destinote_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "destinote_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route"})

	HTTPInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "destinote_http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	})

	// AccessDecisions counts gate outcomes: allow, forbidden, unauthenticated.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "destinote_access_decisions_total",
		Help: "Authorization decisions by resource type and outcome.",
	}, []string{"resource", "outcome"})

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "destinote_circuit_breaker_state",
		Help: "State of outbound circuit breakers (0 closed, 1 half-open, 2 open).",
	}, []string{"name"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "destinote_upstream_requests_total",
		Help: "Calls to external services by service, operation and result.",
	}, []string{"service", "operation", "result"})
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
