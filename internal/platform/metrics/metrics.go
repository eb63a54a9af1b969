// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics for the gateway.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all HTTP metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landgate_http_request_duration_seconds",
			Help:    "HTTP request latency by method, path, and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}
