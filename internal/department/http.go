package department

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
	return &Handler{
		service:  service,
		validate: validate,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/departments", h.CreateDepartment)
	router.Get("/departments", h.GetAllDepartments)
	router.Get("/departments/{id}", h.GetDepartment)
	router.Put("/departments/{id}", h.UpdateDepartment)
	router.Delete("/departments/{id}", h.DeleteDepartment)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var department Department
	if err := httputil.DecodeJSON(r, &department); err != nil || h.validate.Struct(&department) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating department", "name", department.Name)
	if err := h.service.CreateDepartment(r.Context(), &department); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, department)
}

func (h *Handler) GetAllDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.GetAllDepartments(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if departments == nil {
		departments = []Department{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, departments)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	department, err := h.service.GetDepartmentByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, department)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	var department Department
	if err := httputil.DecodeJSON(r, &department); err != nil || h.validate.Struct(&department) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	department.ID = id

	h.logger.InfoContext(r.Context(), "updating department", "id", id)
	if err := h.service.UpdateDepartment(r.Context(), &department); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, department)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting department", "id", id)
	if err := h.service.DeleteDepartment(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrDepartmentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Department not found")
	case errors.Is(err, ErrDepartmentExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "department request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
