// Package observability exposes Prometheus metrics for upstream chat calls.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts chat calls and observes their latency, labeled by
// provider and outcome. A nil *Metrics is a valid no-op collector so call
// sites never need to branch on whether metrics are enabled.
type Metrics struct {
	chatRequests *prometheus.CounterVec
	chatLatency  *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		chatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aigateway",
			Name:      "chat_requests_total",
			Help:      "Chat requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		chatLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aigateway",
			Name:      "chat_request_duration_seconds",
			Help:      "Upstream chat call latency by provider.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"provider"}),
	}
}

// ObserveChat records one completed chat call.
func (m *Metrics) ObserveChat(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.chatRequests.WithLabelValues(provider, outcome).Inc()
	m.chatLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}
