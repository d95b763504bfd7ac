package election

import (
	"errors"
	"log/slog"
	"net/http"

	"election-service/internal/candidate"
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

// RegisterRoutes mounts the read routes for everyone and wraps every write,
// status change included, in manage.
func (h *Handler) RegisterRoutes(router chi.Router, manage func(http.Handler) http.Handler) {
	router.Get("/elections", h.GetAllElections)
	router.Get("/elections/active", h.GetActiveElection)
	router.Get("/elections/{id}", h.GetElection)
	router.Get("/elections/{id}/candidates", h.GetCandidates)

	router.Group(func(r chi.Router) {
		r.Use(manage)
		r.Post("/elections", h.CreateElection)
		r.Put("/elections/{id}", h.UpdateElection)
		r.Delete("/elections/{id}", h.DeleteElection)
		r.Post("/elections/{id}/start", h.changeStatus(ActionStart))
		r.Post("/elections/{id}/pause", h.changeStatus(ActionPause))
		r.Post("/elections/{id}/resume", h.changeStatus(ActionResume))
		r.Post("/elections/{id}/stop", h.changeStatus(ActionStop))
		r.Post("/elections/{id}/end", h.changeStatus(ActionEnd))
		r.Post("/elections/{id}/candidates", h.LinkCandidate)
		r.Delete("/elections/{id}/candidates/{candidateId}", h.UnlinkCandidate)
	})
}

func (h *Handler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req CreateElectionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating election", "title", req.Title)
	election, err := h.service.CreateElection(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, election)
}

func (h *Handler) GetAllElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.service.GetAllElections(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if elections == nil {
		elections = []Election{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, elections)
}

func (h *Handler) GetActiveElection(w http.ResponseWriter, r *http.Request) {
	election, err := h.service.GetActiveElection(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, election)
}

func (h *Handler) GetElection(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid election ID")
		return
	}

	election, err := h.service.GetElectionByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, election)
}

func (h *Handler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid election ID")
		return
	}

	var req UpdateElectionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "updating election", "id", id)
	election, err := h.service.UpdateElection(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, election)
}

func (h *Handler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid election ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting election", "id", id)
	if err := h.service.DeleteElection(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) changeStatus(action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.IDParam(r, "id")
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid election ID")
			return
		}

		election, err := h.service.ChangeStatus(r.Context(), id, action)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}

		h.logger.InfoContext(r.Context(), "election status changed",
			"id", id,
			"action", action,
			"status", election.Status,
		)
		httputil.RespondWithJSON(w, http.StatusOK, election)
	}
}

func (h *Handler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid election ID")
		return
	}

	candidates, err := h.service.GetCandidates(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if candidates == nil {
		candidates = []candidate.Candidate{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *Handler) LinkCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid election ID")
		return
	}

	var req LinkCandidateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil || h.validate.Struct(&req) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.service.LinkCandidate(r.Context(), id, req.CandidateID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, ElectionCandidate{ElectionID: id, CandidateID: req.CandidateID})
}

func (h *Handler) UnlinkCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid election ID")
		return
	}
	candidateID, err := httputil.IDParam(r, "candidateId")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	if err := h.service.UnlinkCandidate(r.Context(), id, candidateID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrElectionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Election not found")
	case errors.Is(err, ErrNoActiveElection):
		httputil.RespondWithErrorCode(w, http.StatusNotFound, "NoActiveElection", err.Error())
	case errors.Is(err, ErrCandidateNotLinked):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrElectionExists),
		errors.Is(err, ErrElectionLocked),
		errors.Is(err, ErrElectionActive),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrCandidateAlreadyLinked):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownCandidate), errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "election request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
