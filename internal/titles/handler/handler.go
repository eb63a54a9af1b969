// Package handler exposes the conveyancing read model over HTTP. It is a
// thin layer: decode the route, call the service, translate domain
// errors to status codes.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"landgate/internal/ledger"
	"landgate/internal/platform/metrics"
	"landgate/internal/platform/middleware"
	"landgate/internal/titles/models"
	dErrors "landgate/pkg/domain-errors"
)

// Service defines the title operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]models.TransferView, error)
	Get(ctx context.Context, titleNumber string) (*models.TransferView, error)
	ConfirmPayment(ctx context.Context, titleNumber string) error
	Me(ctx context.Context) (ledger.Party, error)
	Peers(ctx context.Context) ([]ledger.Party, error)
}

// Handler handles the /api title routes.
type Handler struct {
	logger  *slog.Logger
	titles  Service
	metrics *metrics.Metrics
}

// New creates a titles Handler.
func New(titles Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, titles: titles, metrics: m}
}

// Register mounts the title routes under /api on the given router.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.Timeout(30 * time.Second))
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.LatencyMiddleware(h.metrics))
	api.Get("/me", h.handleMe)
	api.Get("/peers", h.handlePeers)
	api.Get("/titles", h.handleListTitles)
	api.Get("/titles/{titleNumber}", h.handleGetTitle)
	api.Put("/titles/{titleNumber}/confirm-payment", h.handleConfirmPayment)

	r.Mount("/api", api)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.titles.Me(r.Context())
	if err != nil {
		h.writeError(w, r, err, "failed to resolve node identity")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]ledger.Party{"me": me})
}

func (h *Handler) handlePeers(w http.ResponseWriter, r *http.Request) {
	peers, err := h.titles.Peers(r.Context())
	if err != nil {
		h.writeError(w, r, err, "failed to list network peers")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]ledger.Party{"peers": peers})
}

func (h *Handler) handleListTitles(w http.ResponseWriter, r *http.Request) {
	views, err := h.titles.List(r.Context())
	if err != nil {
		h.writeError(w, r, err, "failed to build transfer views")
		return
	}
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetTitle(w http.ResponseWriter, r *http.Request) {
	titleNumber := chi.URLParam(r, "titleNumber")
	view, err := h.titles.Get(r.Context(), titleNumber)
	if err != nil {
		h.writeError(w, r, err, "failed to build transfer view")
		return
	}
	if view == nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeNotFound, "unknown title number"), "")
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	titleNumber := chi.URLParam(r, "titleNumber")
	if err := h.titles.ConfirmPayment(r.Context(), titleNumber); err != nil {
		h.writeError(w, r, err, "failed to confirm payment")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err.Error())
	}
}

// writeError logs server-side faults and emits the JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError && msg != "" {
		h.logger.ErrorContext(r.Context(), msg,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": string(code)})
}
