package candidate

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
	maxPhoto int64
}

func NewHandler(service Service, validate *validator.Validate, logger *slog.Logger, maxPhoto int64) *Handler {
	return &Handler{service: service, validate: validate, logger: logger, maxPhoto: maxPhoto}
}

func (h *Handler) RegisterRoutes(router chi.Router, manage func(http.Handler) http.Handler) {
	router.Get("/candidates", h.GetAllCandidates)
	router.Get("/candidates/{id}", h.GetCandidate)

	router.Group(func(r chi.Router) {
		r.Use(manage)
		r.Post("/candidates", h.CreateCandidate)
		r.Put("/candidates/{id}", h.UpdateCandidate)
		r.Delete("/candidates/{id}", h.DeleteCandidate)
		r.Post("/candidates/{id}/photo", h.UploadPhoto)
	})
}

func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var candidate Candidate
	if err := httputil.DecodeJSON(r, &candidate); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&candidate); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating candidate", "position_id", candidate.PositionID)
	if err := h.service.CreateCandidate(r.Context(), &candidate); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, candidate)
}

func (h *Handler) GetAllCandidates(w http.ResponseWriter, r *http.Request) {
	positionID, err := httputil.QueryInt(r, "positionId")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid position ID")
		return
	}

	candidates, err := h.service.GetAllCandidates(r.Context(), positionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *Handler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	candidate, err := h.service.GetCandidateByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, candidate)
}

func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	var candidate Candidate
	if err := httputil.DecodeJSON(r, &candidate); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&candidate); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	candidate.ID = id

	h.logger.InfoContext(r.Context(), "updating candidate", "id", id)
	if err := h.service.UpdateCandidate(r.Context(), &candidate); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, candidate)
}

func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting candidate", "id", id)
	if err := h.service.DeleteCandidate(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto accepts multipart/form-data with the image in the "photo" field.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	// Allow some room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhoto+64<<10)
	file, _, err := r.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondWithError(w, http.StatusRequestEntityTooLarge, ErrPhotoTooLarge.Error())
			return
		}
		httputil.RespondWithError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	candidate, err := h.service.UploadPhoto(r.Context(), id, file)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "candidate photo uploaded", "id", id, "path", candidate.PhotoPath)
	httputil.RespondWithJSON(w, http.StatusOK, candidate)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCandidateNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Candidate not found")
	case errors.Is(err, ErrCandidateHasVotes):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrPhotoTooLarge):
		httputil.RespondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrUnsupportedPhoto):
		httputil.RespondWithError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, ErrUnknownPosition), errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "candidate request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
