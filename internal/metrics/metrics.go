package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecommerce"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// CheckoutMetrics tracks confirm outcomes and wallet compensations.
type CheckoutMetrics struct {
	Confirms      *prometheus.CounterVec
	Compensations *prometheus.CounterVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

func NewCheckoutMetrics(reg prometheus.Registerer, service string) *CheckoutMetrics {
	confirms := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "checkout_confirms_total",
		Help:      "Checkout confirmations by result.",
	}, []string{"result"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "wallet_compensations_total",
		Help:      "Compensating wallet credits issued after a failed order write.",
	}, []string{"result"})

	reg.MustRegister(confirms, compensations)
	return &CheckoutMetrics{Confirms: confirms, Compensations: compensations}
}

// ObserveConfirm is nil-safe so services can run without metrics.
func (m *CheckoutMetrics) ObserveConfirm(result string) {
	if m == nil {
		return
	}
	m.Confirms.WithLabelValues(result).Inc()
}

func (m *CheckoutMetrics) ObserveCompensation(result string) {
	if m == nil {
		return
	}
	m.Compensations.WithLabelValues(result).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
