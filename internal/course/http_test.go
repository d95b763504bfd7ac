package course_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"election-service/internal/course"
	"election-service/internal/department"
	"election-service/internal/logger"
	"election-service/internal/metrics"
	"election-service/internal/validation"
	"election-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterHandlers_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	mockMetrics := metrics.NewMock()
	validate := validation.New()

	router := chi.NewRouter()
	department.NewHandler(department.NewService(department.NewRepository(pgContainer.DB, mockMetrics)), validate, logger.Discard()).RegisterRoutes(router)
	course.NewHandler(course.NewService(course.NewRepository(pgContainer.DB, mockMetrics)), validate, logger.Discard()).RegisterRoutes(router)

	send := func(method, path string, payload interface{}) *httptest.ResponseRecorder {
		var body bytes.Buffer
		if payload != nil {
			json.NewEncoder(&body).Encode(payload)
		}
		req := httptest.NewRequest(method, path, &body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	createDepartment := func(t *testing.T, name, code string) department.Department {
		t.Helper()
		w := send(http.MethodPost, "/departments", map[string]string{"name": name, "code": code})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var d department.Department
		require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
		return d
	}

	t.Run("CreateDepartment_NormalizesCode", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)

		d := createDepartment(t, "Computer Science", " cs ")
		assert.Equal(t, "CS", d.Code)

		w := send(http.MethodPost, "/departments", map[string]string{"name": "Comp Sci", "code": "cs"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("CreateCourse_UnknownDepartment", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)

		w := send(http.MethodPost, "/courses", map[string]interface{}{"name": "BS Computer Science", "code": "BSCS", "departmentId": 99})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DepartmentCourses", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)

		cs := createDepartment(t, "Computer Science", "CS")
		math := createDepartment(t, "Mathematics", "MATH")
		for _, c := range []map[string]interface{}{
			{"name": "BS Computer Science", "code": "BSCS", "departmentId": cs.ID},
			{"name": "BS Information Technology", "code": "BSIT", "departmentId": cs.ID},
			{"name": "BS Mathematics", "code": "BSMATH", "departmentId": math.ID},
		} {
			w := send(http.MethodPost, "/courses", c)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		w := send(http.MethodGet, "/departments/"+strconv.Itoa(cs.ID)+"/courses", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var courses []course.Course
		require.NoError(t, json.NewDecoder(w.Body).Decode(&courses))
		assert.Len(t, courses, 2)

		w = send(http.MethodDelete, "/departments/"+strconv.Itoa(cs.ID), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = send(http.MethodGet, "/courses", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&courses))
		require.Len(t, courses, 1)
		assert.Equal(t, "BSMATH", courses[0].Code)
	})

	t.Run("GetCourse_NotFound", func(t *testing.T) {
		testdb.Reset(t, pgContainer.DB)

		w := send(http.MethodGet, "/courses/12345", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
