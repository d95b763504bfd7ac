package voter

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
	router.Post("/voters", h.CreateVoter)
	router.Get("/voters", h.GetAllVoters)
	router.Get("/voters/{id}", h.GetVoter)
	router.Put("/voters/{id}", h.UpdateVoter)
	router.Delete("/voters/{id}", h.DeleteVoter)
	router.Get("/voter-groups/{id}/voters", h.GetGroupVoters)
}

func (h *Handler) CreateVoter(w http.ResponseWriter, r *http.Request) {
	var req CreateVoterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.logger.WarnContext(r.Context(), "voter validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating voter", "student_id", req.StudentID)
	voter, err := h.service.CreateVoter(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, voter)
}

func (h *Handler) GetAllVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.service.GetAllVoters(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if voters == nil {
		voters = []Voter{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, voters)
}

func (h *Handler) GetGroupVoters(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid voter group ID")
		return
	}

	voters, err := h.service.GetGroupVoters(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if voters == nil {
		voters = []Voter{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, voters)
}

func (h *Handler) GetVoter(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid voter ID")
		return
	}

	voter, err := h.service.GetVoterByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, voter)
}

func (h *Handler) UpdateVoter(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid voter ID")
		return
	}

	var req UpdateVoterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "updating voter", "id", id)
	voter, err := h.service.UpdateVoter(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, voter)
}

func (h *Handler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid voter ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting voter", "id", id)
	if err := h.service.DeleteVoter(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrVoterNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Voter not found")
	case errors.Is(err, ErrStudentIDExists), errors.Is(err, ErrVoterHasVotes):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownReference), errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "voter request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
