package course

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
	router.Post("/courses", h.CreateCourse)
	router.Get("/courses", h.GetAllCourses)
	router.Get("/courses/{id}", h.GetCourse)
	router.Put("/courses/{id}", h.UpdateCourse)
	router.Delete("/courses/{id}", h.DeleteCourse)
	router.Get("/departments/{id}/courses", h.GetDepartmentCourses)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var course Course
	if err := httputil.DecodeJSON(r, &course); err != nil || h.validate.Struct(&course) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating course", "code", course.Code)
	if err := h.service.CreateCourse(r.Context(), &course); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, course)
}

func (h *Handler) GetAllCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.GetAllCourses(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if courses == nil {
		courses = []Course{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, courses)
}

func (h *Handler) GetDepartmentCourses(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	courses, err := h.service.GetDepartmentCourses(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if courses == nil {
		courses = []Course{}
	}
	httputil.RespondWithJSON(w, http.StatusOK, courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	course, err := h.service.GetCourseByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, course)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	var course Course
	if err := httputil.DecodeJSON(r, &course); err != nil || h.validate.Struct(&course) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	course.ID = id

	if err := h.service.UpdateCourse(r.Context(), &course); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, course)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid course ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting course", "id", id)
	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Course not found")
	case errors.Is(err, ErrCourseExists):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownDepartment), errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "course request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
