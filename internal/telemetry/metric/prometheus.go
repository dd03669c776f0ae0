package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every TokStore metric.
const Namespace = "tokstore"

// Registry holds all application metrics.
type Registry struct {
	BackendOps      *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec

	TokenOps      *prometheus.CounterVec
	TokenDuration *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every TokStore metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		BackendOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "backend_operations_total",
				Help:      "Backend calls by adapter, operation and result.",
			},
			[]string{"adapter", "op", "result"},
		),
		BackendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "backend_operation_duration_seconds",
				Help:      "Backend call latency by adapter and operation.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 9),
			},
			[]string{"adapter", "op"},
		),
		TokenOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "token_operations_total",
				Help:      "Token store operations by operation and outcome.",
			},
			[]string{"op", "result"},
		),
		TokenDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "token_operation_duration_seconds",
				Help:      "Token store operation latency, including secret hashing.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		registry: reg,
	}

	reg.MustRegister(r.BackendOps)
	reg.MustRegister(r.BackendDuration)
	reg.MustRegister(r.TokenOps)
	reg.MustRegister(r.TokenDuration)
	reg.MustRegister(r.HTTPRequests)
	registerRuntimeCollectors(reg)

	return r
}

// Registerer returns the underlying registerer for component-owned metrics.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an http.Handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

// ObserveTokenOperation records one token store operation.
func (r *Registry) ObserveTokenOperation(op, outcome string, elapsed time.Duration) {
	r.TokenOps.WithLabelValues(op, outcome).Inc()
	r.TokenDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func (r *Registry) ObserveHTTPRequest(method, route string, status int) {
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
