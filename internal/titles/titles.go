// Package titles wires the conveyancing domain: record store, view
// service, and HTTP handler.
package titles

import (
	"log/slog"

	"landgate/internal/ledger"
	platformmetrics "landgate/internal/platform/metrics"
	"landgate/internal/titles/handler"
	"landgate/internal/titles/metrics"
	"landgate/internal/titles/service"
	"landgate/internal/titles/store"
)

// Service exposes transfer-view reads and the confirm-payment write.
type Service = service.Service

// Handler wires the /api title routes to the service.
type Handler = handler.Handler

// NewService constructs the titles service over a ledger client handle.
func NewService(client ledger.Client, logger *slog.Logger, m *metrics.Metrics) *Service {
	st := store.New(client, store.WithLogger(logger), store.WithMetrics(m))
	return service.New(st, service.WithLogger(logger), service.WithMetrics(m))
}

// NewHandler constructs the HTTP handler for the title routes.
func NewHandler(s *Service, logger *slog.Logger, m *platformmetrics.Metrics) *Handler {
	return handler.New(s, logger, m)
}
