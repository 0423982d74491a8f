package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation"
	OutcomeRejected   = "rejected"
	OutcomeTransport  = "transport"
	OutcomeThrottled  = "throttled"
)

// Metrics owns its own registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	initializations *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		initializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ride",
			Subsystem: "payment_relay",
			Name:      "initializations_total",
			Help:      "Payment initialization requests by outcome.",
		}, []string{"outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ride",
			Subsystem: "payment_relay",
			Name:      "gateway_request_duration_seconds",
			Help:      "Time spent waiting on the payment gateway.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.initializations,
		m.gatewayDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Initialization records one finished request. Requests that never reached
// the gateway pass a zero duration and are left out of the histogram.
func (m *Metrics) Initialization(outcome string, gatewayTime time.Duration) {
	m.initializations.WithLabelValues(outcome).Inc()
	if gatewayTime > 0 {
		m.gatewayDuration.WithLabelValues(outcome).Observe(gatewayTime.Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
