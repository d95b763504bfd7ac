package vote

import (
	"errors"
	"log/slog"
	"net/http"

	"election-service/internal/auth"
	"election-service/internal/election"
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

// RegisterRoutes expects the router to sit behind auth.Authenticate.
func (h *Handler) RegisterRoutes(router chi.Router) {
	vote := auth.Require(auth.CapVote)
	view := auth.Require(auth.CapViewResults)

	router.With(vote).Post("/votes", h.CastVote)
	router.With(vote).Post("/votes/batch", h.CastBallot)
	router.With(vote).Get("/votes/voter/{electionId}", h.GetMyVotes)
	router.With(view).Get("/votes/results", h.GetResults)
	router.With(view).Get("/elections/{id}/results", h.GetElectionResults)
	router.With(auth.Require(auth.CapManageElections)).Post("/votes/reset/{voterId}", h.ResetVoter)
	router.With(auth.Require(auth.CapResetElection)).Post("/elections/{id}/reset", h.ResetElection)
}

func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var req SingleVote
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid request")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), err.Error())
		return
	}
	if req.VoterID != 0 && req.VoterID != principal.ID {
		httputil.RespondWithErrorCode(w, http.StatusForbidden, "Forbidden", "voters can only vote for themselves")
		return
	}
	req.VoterID = principal.ID

	receipt, err := h.service.RecordVote(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "vote recorded",
		"voter_id", receipt.VoterID,
		"election_id", receipt.ElectionID,
		"position_id", receipt.PositionID,
		"last", receipt.HasVoted,
	)
	httputil.RespondWithJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) CastBallot(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid request")
		return
	}
	if len(req.Votes) == 0 {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrEmptyBatch), ErrEmptyBatch.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), err.Error())
		return
	}

	receipt, err := h.service.RecordVotes(r.Context(), principal.ID, req.Votes)
	if errors.Is(err, ErrBatchRejected) && receipt != nil {
		httputil.RespondWithJSON(w, http.StatusBadRequest, struct {
			httputil.ErrorResponse
			*BatchReceipt
		}{
			ErrorResponse: httputil.ErrorResponse{Error: err.Error(), Code: Code(err)},
			BatchReceipt:  receipt,
		})
		return
	}
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ballot recorded",
		"voter_id", receipt.VoterID,
		"election_id", receipt.ElectionID,
		"votes", receipt.Summary.Total,
	)
	httputil.RespondWithJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	electionID, err := httputil.IDParam(r, "electionId")
	if err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid election ID")
		return
	}

	votes, err := h.service.VoterVotes(r.Context(), principal.ID, electionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if votes == nil {
		votes = []Vote{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, votes)
}

// GetResults serves ?electionId=, defaulting to the active election.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID, err := httputil.QueryInt(r, "electionId")
	if err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid election ID")
		return
	}
	h.respondWithResults(w, r, electionID)
}

func (h *Handler) GetElectionResults(w http.ResponseWriter, r *http.Request) {
	electionID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid election ID")
		return
	}
	h.respondWithResults(w, r, electionID)
}

func (h *Handler) respondWithResults(w http.ResponseWriter, r *http.Request, electionID int) {
	results, err := h.service.Results(r.Context(), electionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, results)
}

func (h *Handler) ResetVoter(w http.ResponseWriter, r *http.Request) {
	voterID, err := httputil.IDParam(r, "voterId")
	if err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid voter ID")
		return
	}
	electionID, err := httputil.QueryInt(r, "electionId")
	if err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid election ID")
		return
	}

	removed, err := h.service.ResetVoter(r.Context(), voterID, electionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFrom(r.Context())
	h.logger.InfoContext(r.Context(), "voter ballot reset", "voter_id", voterID, "by", principal.ID)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]int{"voterId": voterID, "votesRemoved": removed})
}

func (h *Handler) ResetElection(w http.ResponseWriter, r *http.Request) {
	electionID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(ErrInvalidInput), "Invalid election ID")
		return
	}

	removed, err := h.service.ResetElection(r.Context(), electionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFrom(r.Context())
	h.logger.WarnContext(r.Context(), "election reset", "election_id", electionID, "by", principal.ID)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]int{"electionId": electionID, "votesRemoved": removed})
}

// handleServiceError: rejections are 400, storage outages 503, the rest 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, election.ErrElectionNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Election not found")
	case IsValidation(err):
		httputil.RespondWithErrorCode(w, http.StatusBadRequest, Code(err), err.Error())
	case errors.Is(err, ErrStorageConflict):
		h.logger.WarnContext(r.Context(), "vote storage conflict", "error", err)
		httputil.RespondWithErrorCode(w, http.StatusConflict, Code(err), err.Error())
	case errors.Is(err, ErrStorageUnavailable):
		h.logger.WarnContext(r.Context(), "vote storage unavailable", "error", err)
		w.Header().Set("Retry-After", "1")
		httputil.RespondWithErrorCode(w, http.StatusServiceUnavailable, Code(err), "storage temporarily unavailable, retry")
	default:
		h.logger.ErrorContext(r.Context(), "vote request failed", "error", err, "code", Code(err))
		httputil.RespondWithErrorCode(w, http.StatusInternalServerError, Code(err), "Internal server error")
	}
}
