package votergroup

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

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/voter-groups", h.CreateGroup)
	router.Get("/voter-groups", h.GetAllGroups)
	router.Get("/voter-groups/{id}", h.GetGroup)
	router.Put("/voter-groups/{id}", h.UpdateGroup)
	router.Delete("/voter-groups/{id}", h.DeleteGroup)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var group VoterGroup
	if err := httputil.DecodeJSON(r, &group); err != nil || h.validate.Struct(&group) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.service.CreateGroup(r.Context(), &group); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, group)
}

func (h *Handler) GetAllGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.GetAllGroups(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if groups == nil {
		groups = []VoterGroup{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid voter group ID")
		return
	}

	group, err := h.service.GetGroupByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid voter group ID")
		return
	}

	var group VoterGroup
	if err := httputil.DecodeJSON(r, &group); err != nil || h.validate.Struct(&group) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	group.ID = id

	if err := h.service.UpdateGroup(r.Context(), &group); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid voter group ID")
		return
	}

	if err := h.service.DeleteGroup(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Voter group not found")
	case errors.Is(err, ErrGroupExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "voter group request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
