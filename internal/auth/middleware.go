package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"election-service/internal/httputil"
)

const CookieName = "token"

type contextKey struct{}

// WithPrincipal stores the caller in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the caller stored by Authenticate.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Authenticate validates the access token from the "token" cookie or an
// Authorization: Bearer header and stores the principal in the request
// context.
func Authenticate(tokens *TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				httputil.RespondWithErrorCode(w, http.StatusUnauthorized, "Unauthorized", "unauthorized")
				return
			}

			principal, err := tokens.Parse(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token", "path", r.URL.Path, "error", err)
				httputil.RespondWithErrorCode(w, http.StatusUnauthorized, "Unauthorized", "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// Require rejects callers whose role lacks capability. It must run after
// Authenticate.
func Require(capability Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				httputil.RespondWithErrorCode(w, http.StatusUnauthorized, "Unauthorized", "unauthorized")
				return
			}
			if !Allows(principal.Role, capability) {
				httputil.RespondWithErrorCode(w, http.StatusForbidden, "Forbidden", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SetAuthCookie sets the access token in an HttpOnly cookie.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteStrictMode
	if !secure {
		sameSite = http.SameSiteLaxMode // local testing from Postman
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

func ClearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
