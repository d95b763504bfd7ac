package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"election-service/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service       *Service
	validate      *validator.Validate
	logger        *slog.Logger
	secureCookies bool
}

func NewHandler(service *Service, validate *validator.Validate, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		validate:      validate,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes mounts the public login/refresh/logout endpoints.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/voter/login", h.VoterLogin)
	router.Post("/auth/admin/login", h.AdminLogin)
	router.Post("/auth/refresh", h.Refresh)
	router.Post("/auth/logout", h.Logout)
}

func (h *Handler) VoterLogin(w http.ResponseWriter, r *http.Request) {
	var req VoterLoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.logger.WarnContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.VoterLogin(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "voter logged in", "voter_id", resp.Principal.ID)
	h.respondWithTokens(w, resp)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.AdminLogin(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "admin logged in", "admin_id", resp.Principal.ID, "role", resp.Principal.Role)
	h.respondWithTokens(w, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondWithTokens(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ClearAuthCookie(w, h.secureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// Me is mounted by the app behind Authenticate.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondWithErrorCode(w, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	profile, err := h.service.Me(r.Context(), principal)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) respondWithTokens(w http.ResponseWriter, resp *AuthResponse) {
	SetAuthCookie(w, resp.AccessToken, h.service.tokens.TTL(), h.secureCookies)
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidRefreshToken),
		errors.Is(err, ErrPrincipalGone):
		httputil.RespondWithErrorCode(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "auth request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
