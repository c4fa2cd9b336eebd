// Package metrics holds the Prometheus metrics for the memo routes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the memo domain.
type Metrics struct {
	RequestDuration        *prometheus.HistogramVec
	SessionsByStatus       *prometheus.CounterVec
	ViaNegativaActivations prometheus.Counter
	PreviewNotReady        prometheus.Counter
	BackendFailures        prometheus.Counter
}

// New creates and registers all metrics on the given registerer. Tests pass
// a private registry so repeated construction never double-registers.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memo_gateway_request_duration_seconds",
			Help:    "Duration of memo route handling, including the backend fetch",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
		SessionsByStatus: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memo_gateway_sessions_by_status_total",
			Help: "Session responses served, labeled by derived lifecycle status",
		}, []string{"status"}),
		ViaNegativaActivations: factory.NewCounter(prometheus.CounterOpts{
			Name: "memo_gateway_via_negativa_activations_total",
			Help: "Sessions served in the elevated-risk (DO_NOT_PROCEED) mode",
		}),
		PreviewNotReady: factory.NewCounter(prometheus.CounterOpts{
			Name: "memo_gateway_preview_not_ready_total",
			Help: "Legacy preview lookups answered with the retryable not-ready signal",
		}),
		BackendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "memo_gateway_backend_failures_total",
			Help: "Outbound decision-memo backend fetches that failed to complete",
		}),
	}
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(route, code string, d time.Duration) {
	m.RequestDuration.WithLabelValues(route, code).Observe(d.Seconds())
}
