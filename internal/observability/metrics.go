package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the process-wide registry surface. Constructed once in main
// and shared read-only.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	modelCalls    *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "venturedraft",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "venturedraft",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		modelCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "venturedraft",
				Subsystem: "model",
				Name:      "calls_total",
				Help:      "Total language-model invocations",
			},
			[]string{"kind", "outcome"},
		),
		modelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "venturedraft",
				Subsystem: "model",
				Name:      "call_duration_seconds",
				Help:      "Language-model call duration, stream drain included",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"kind"},
		),
	}
	m.registry.MustRegister(m.httpRequests, m.httpLatency, m.modelCalls, m.modelDuration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveModelCall(kind string, ok bool, elapsed time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.modelCalls.WithLabelValues(kind, outcome).Inc()
	m.modelDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
