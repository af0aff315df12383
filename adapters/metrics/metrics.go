// Package metrics provides Prometheus metrics collection for quotagate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for quotagate.
type Collector struct {
	// Entitlement metrics
	DecisionsTotal *prometheus.CounterVec // kind, allowed
	DenialsTotal   *prometheus.CounterVec // kind, reason
	RolloversTotal prometheus.Counter

	// Accounting metrics
	UsageRecorded  *prometheus.CounterVec // kind; incremented by amount
	UsageLogErrors prometheus.Counter

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec // method, path, status
	RequestDuration *prometheus.HistogramVec
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a collector registered on the given registry.
// Tests pass a fresh registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quotagate",
				Name:      "decisions_total",
				Help:      "Total entitlement decisions by action kind and outcome",
			},
			[]string{"kind", "allowed"},
		),
		DenialsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quotagate",
				Name:      "denials_total",
				Help:      "Total denied entitlement checks by action kind and reason",
			},
			[]string{"kind", "reason"},
		),
		RolloversTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quotagate",
				Name:      "rollovers_total",
				Help:      "Total monthly usage counter resets performed",
			},
		),
		UsageRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quotagate",
				Name:      "usage_recorded_total",
				Help:      "Total usage recorded by action kind (units or minutes)",
			},
			[]string{"kind"},
		),
		UsageLogErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quotagate",
				Name:      "usage_log_errors_total",
				Help:      "Total usage-log append failures (best-effort writes)",
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quotagate",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quotagate",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
	}
}
