// Package httptransport assembles the gateway's router: domain routes
// under /api plus the operational endpoints.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"landgate/internal/titles"
)

// NewRouter mounts all public endpoints.
func NewRouter(titlesHandler *titles.Handler) http.Handler {
	r := chi.NewRouter()

	titlesHandler.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
