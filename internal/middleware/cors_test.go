package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"election-service/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	called := false
	handler := middleware.CORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("AllowedOrigin", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("UnknownOrigin", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Preflight", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodOptions, "/api/votes", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
