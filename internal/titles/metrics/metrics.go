// Package metrics registers the conveyancing-domain Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds collectors for vault queries and view building.
type Metrics struct {
	VaultQueries    *prometheus.CounterVec
	VaultErrors     *prometheus.CounterVec
	ViewsBuilt      prometheus.Counter
	StatusFallbacks prometheus.Counter
}

// New creates and registers all conveyancing metrics.
func New() *Metrics {
	return &Metrics{
		VaultQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "landgate_vault_queries_total",
			Help: "Ledger vault queries by entity type.",
		}, []string{"entity"}),
		VaultErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "landgate_vault_query_errors_total",
			Help: "Failed ledger vault queries by entity type.",
		}, []string{"entity"}),
		ViewsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landgate_transfer_views_built_total",
			Help: "Transfer views assembled from vault state.",
		}),
		StatusFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landgate_status_fallbacks_total",
			Help: "Aggregate status derivations that hit the fallback marker.",
		}),
	}
}

// ObserveQuery records one vault query and its outcome.
func (m *Metrics) ObserveQuery(entity string, err error) {
	if m == nil {
		return
	}
	m.VaultQueries.WithLabelValues(entity).Inc()
	if err != nil {
		m.VaultErrors.WithLabelValues(entity).Inc()
	}
}

// IncViewsBuilt counts one assembled transfer view.
func (m *Metrics) IncViewsBuilt() {
	if m == nil {
		return
	}
	m.ViewsBuilt.Inc()
}

// IncStatusFallbacks counts one fallback status derivation.
func (m *Metrics) IncStatusFallbacks() {
	if m == nil {
		return
	}
	m.StatusFallbacks.Inc()
}
