package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"election-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *bun.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHandler(db Pinger, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready reports 503 until the database answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: "database unreachable"})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
