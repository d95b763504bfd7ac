package admin

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
	router.Post("/admins", h.CreateAdmin)
	router.Get("/admins", h.GetAllAdmins)
	router.Get("/admins/{id}", h.GetAdmin)
	router.Put("/admins/{id}", h.UpdateAdmin)
	router.Delete("/admins/{id}", h.DeleteAdmin)
}

func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating admin", "username", req.Username, "role", req.Role)
	admin, err := h.service.CreateAdmin(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, admin)
}

func (h *Handler) GetAllAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.GetAllAdmins(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if admins == nil {
		admins = []Admin{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, admins)
}

func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid admin ID")
		return
	}

	admin, err := h.service.GetAdminByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, admin)
}

func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid admin ID")
		return
	}

	var req UpdateAdminRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "updating admin", "id", id)
	admin, err := h.service.UpdateAdmin(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, admin)
}

func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid admin ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting admin", "id", id)
	if err := h.service.DeleteAdmin(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAdminNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Admin not found")
	case errors.Is(err, ErrUsernameExists), errors.Is(err, ErrLastSuperAdmin):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "admin request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
