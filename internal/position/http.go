package position

import (
	"errors"
	"log/slog"
	"net/http"

	"election-service/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, validate *validator.Validate, logger *slog.Logger) *Handler {
	return &Handler{service: service, validate: validate, logger: logger}
}

// RegisterRoutes mounts the read routes for everyone and wraps writes in
// manage.
func (h *Handler) RegisterRoutes(router chi.Router, manage func(http.Handler) http.Handler) {
	router.Get("/positions", h.GetAllPositions)
	router.Get("/positions/{id}", h.GetPosition)

	router.Group(func(r chi.Router) {
		r.Use(manage)
		r.Post("/positions", h.CreatePosition)
		r.Put("/positions/{id}", h.UpdatePosition)
		r.Delete("/positions/{id}", h.DeletePosition)
	})
}

func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var position Position
	if err := httputil.DecodeJSON(r, &position); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&position); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating position", "name", position.Name, "vote_limit", position.VoteLimit)
	if err := h.service.CreatePosition(r.Context(), &position); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, position)
}

func (h *Handler) GetAllPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.service.GetAllPositions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if positions == nil {
		positions = []Position{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, positions)
}

func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid position ID")
		return
	}

	position, err := h.service.GetPositionByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, position)
}

func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid position ID")
		return
	}

	var position Position
	if err := httputil.DecodeJSON(r, &position); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&position); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	position.ID = id

	h.logger.InfoContext(r.Context(), "updating position", "id", id)
	if err := h.service.UpdatePosition(r.Context(), &position); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, position)
}

func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid position ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting position", "id", id)
	if err := h.service.DeletePosition(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrPositionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Position not found")
	case errors.Is(err, ErrPositionExists), errors.Is(err, ErrPositionInUse):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "position request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
