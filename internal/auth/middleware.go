package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/jobboard/internal/models"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing user claims in context
	UserContextKey contextKey = "user"
)

// SessionRevocationChecker defines the interface for checking if sessions are revoked
type SessionRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationConfig holds configuration for session revocation behavior
type RevocationConfig struct {
	FailClosed bool // If true, deny access if revocation check fails; if false, allow access (fail open)
}

// UserRepository interface for fetching user data
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ExtractToken reads the session token from the session cookie, falling back to
// an Authorization: Bearer header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return ""
}

// authenticate resolves the request's session claims. The returned status is the
// HTTP code to fail with when claims is nil.
func authenticate(r *http.Request, tm *TokenManager, checker SessionRevocationChecker, cfg RevocationConfig) (*models.TokenClaims, int, string) {
	tokenString := ExtractToken(r)
	if tokenString == "" {
		return nil, http.StatusUnauthorized, "authentication required"
	}

	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid or expired session"
	}

	if checker != nil {
		revoked, err := checker.IsRevoked(r.Context(), claims.ID)
		if err != nil && cfg.FailClosed {
			return nil, http.StatusServiceUnavailable, "unable to verify session status"
		}
		if revoked {
			return nil, http.StatusUnauthorized, "session has been revoked"
		}
	}

	return claims, http.StatusOK, ""
}

// AuthMiddleware requires a valid, unrevoked session and injects its claims into context
func AuthMiddleware(tm *TokenManager, checker SessionRevocationChecker, cfg RevocationConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, status, message := authenticate(r, tm, checker, cfg)
			if claims == nil {
				if status == http.StatusServiceUnavailable {
					pkghttp.WriteError(w, status, "service_unavailable", message)
					return
				}
				pkghttp.WriteUnauthorized(w, message)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injects claims when a valid session is present and otherwise lets the
// request through anonymously
func OptionalAuth(tm *TokenManager, checker SessionRevocationChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _, _ := authenticate(r, tm, checker, RevocationConfig{FailClosed: true})
			if claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole creates a middleware that enforces role-based access control.
// The role is re-read from the database so demotions take effect immediately.
func RequireRole(userRepo UserRepository, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Must be used after AuthMiddleware
			claims := GetUserFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "authentication required")
				return
			}

			user, err := userRepo.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "user not found")
					return
				}
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if user.Role != role {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
