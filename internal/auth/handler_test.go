package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"election-service/internal/admin"
	"election-service/internal/auth"
	"election-service/internal/logger"
	"election-service/internal/metrics"
	"election-service/internal/validation"
	"election-service/internal/voter"
	"election-service/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func post(router http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)

	mockMetrics := metrics.NewMock()
	voterRepo := voter.NewRepository(pgContainer.DB, mockMetrics)
	adminRepo := admin.NewRepository(pgContainer.DB, mockMetrics)
	tokens := auth.NewTokenManager("test-secret-key-for-testing", 15*time.Minute)
	authService := auth.NewService(auth.NewRepository(pgContainer.DB, mockMetrics), voterRepo, adminRepo, tokens, time.Hour, mockMetrics)
	handler := auth.NewHandler(authService, validation.New(), logger.Discard(), false)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	router.With(auth.Authenticate(tokens, logger.Discard())).Get("/api/me", handler.Me)

	seed := func(t *testing.T) {
		t.Helper()
		testdb.Reset(t, pgContainer.DB)
		ctx := context.Background()

		hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, voterRepo.Create(ctx, &voter.Voter{
			StudentID: "2024-00001",
			FirstName: "Ada",
			LastName:  "Lovelace",
			Password:  string(hashed),
		}))
		require.NoError(t, adminRepo.Create(ctx, &admin.Admin{
			Username: "registrar",
			Password: string(hashed),
			Role:     admin.RoleSuperAdmin,
		}))
	}

	t.Run("VoterLogin_Success", func(t *testing.T) {
		seed(t)

		w := post(router, "/auth/voter/login", map[string]string{"studentId": "2024-00001", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp auth.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, auth.RoleVoter, resp.Principal.Role)
		assert.Equal(t, "Ada Lovelace", resp.Principal.Name)

		var foundAuthCookie bool
		for _, cookie := range w.Result().Cookies() {
			if cookie.Name == auth.CookieName {
				foundAuthCookie = true
				assert.Equal(t, resp.AccessToken, cookie.Value)
				assert.True(t, cookie.HttpOnly)
			}
		}
		assert.True(t, foundAuthCookie, "token cookie should be set")
	})

	t.Run("VoterLogin_WrongPassword", func(t *testing.T) {
		seed(t)

		w := post(router, "/auth/voter/login", map[string]string{"studentId": "2024-00001", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("VoterLogin_MalformedStudentID", func(t *testing.T) {
		seed(t)

		w := post(router, "/auth/voter/login", map[string]string{"studentId": "24-1", "password": "password123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AdminLogin_AndMe", func(t *testing.T) {
		seed(t)

		w := post(router, "/auth/admin/login", map[string]string{"username": "registrar", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code)
		var resp auth.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, auth.RoleSuperAdmin, resp.Principal.Role)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
		me := httptest.NewRecorder()
		router.ServeHTTP(me, req)

		require.Equal(t, http.StatusOK, me.Code)
		var profile auth.Profile
		require.NoError(t, json.NewDecoder(me.Body).Decode(&profile))
		assert.Equal(t, "registrar", profile.Username)
		assert.Nil(t, profile.HasVoted)
	})

	t.Run("Refresh_RotatesToken", func(t *testing.T) {
		seed(t)

		w := post(router, "/auth/voter/login", map[string]string{"studentId": "2024-00001", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code)
		var login auth.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&login))

		w = post(router, "/auth/refresh", map[string]string{"refreshToken": login.RefreshToken})
		require.Equal(t, http.StatusOK, w.Code)
		var refreshed auth.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&refreshed))
		assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

		w = post(router, "/auth/refresh", map[string]string{"refreshToken": login.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "a refresh token is single-use")
	})

	t.Run("Logout_InvalidatesRefreshToken", func(t *testing.T) {
		seed(t)

		w := post(router, "/auth/voter/login", map[string]string{"studentId": "2024-00001", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code)
		var login auth.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&login))

		w = post(router, "/auth/logout", map[string]string{"refreshToken": login.RefreshToken})
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = post(router, "/auth/refresh", map[string]string{"refreshToken": login.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
