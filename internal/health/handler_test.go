package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"election-service/internal/health"
	"election-service/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ping       error
		wantStatus int
		wantBody   string
	}{
		{"Health", "/health", nil, http.StatusOK, `{"status":"ok"}`},
		{"Ready", "/ready", nil, http.StatusOK, `{"status":"ready"}`},
		{"Ready_DatabaseDown", "/ready", errors.New("connection refused"), http.StatusServiceUnavailable, `{"status":"unavailable","error":"database unreachable"}`},
		{"Health_DatabaseDown", "/health", errors.New("connection refused"), http.StatusOK, `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			ping := tt.ping
			health.NewHandler(pingFunc(func(context.Context) error { return ping }), logger.Discard()).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
