package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/handlers"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookies = auth.CookieConfig{Secure: true, SameSite: "lax"}

func authResult(userID, email string) *services.AuthResult {
	return &services.AuthResult{
		User: &models.User{
			ID:       userID,
			Username: "alice",
			Email:    email,
			Role:     models.RoleUser,
		},
		Token:     "session_token_123",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_Success_SetsSessionCookie(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResult, error) {
			assert.Equal(t, "user@example.com", email)
			return authResult("user123", email), nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, testCookies)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp handlers.SessionResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "user123", resp.User.ID)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "session_token_123", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.NotContains(t, w.Body.String(), "session_token_123")
}

func TestLogin_AuthenticationFailed(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResult, error) {
			return nil, models.ErrUnauthorized
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, testCookies)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email:    "user@example.com",
		Password: "wrongpassword",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
	assert.Nil(t, sessionCookie(w))
}

func TestLogin_InvalidEmail_Returns400(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, testCookies)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/login", handlers.LoginRequest{
		Email:    "not-an-email",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 400, "validation_error")
}

func TestRegister_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error) {
			assert.Equal(t, "alice", input.Username)
			assert.Equal(t, "FRIEND42", input.ReferralCode)
			assert.Equal(t, "Europe/Berlin", input.Timezone)
			return authResult("user123", input.Email), nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, testCookies)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", handlers.RegisterRequest{
		Username:     "alice",
		Email:        "new@example.com",
		Password:     "Str0ng!Passw0rd",
		Timezone:     "Europe/Berlin",
		ReferralCode: "FRIEND42",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp handlers.SessionResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotNil(t, sessionCookie(w))
	handlers.AssertInvalidates(t, w, views.Credits, views.Profile)
}

func TestRegister_OverlongReferralCode_Returns201(t *testing.T) {
	called := false
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error) {
			called = true
			return authResult("user123", input.Email), nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, testCookies)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", handlers.RegisterRequest{
		Username:     "alice",
		Email:        "new@example.com",
		Password:     "Str0ng!Passw0rd",
		ReferralCode: strings.Repeat("X", 40),
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, 201, w.Code)
	assert.True(t, called)
}

func TestRegister_DuplicateAccount_Returns409(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error) {
			return nil, models.ErrConflict
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, testCookies)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", handlers.RegisterRequest{
		Username: "alice",
		Email:    "taken@example.com",
		Password: "Str0ng!Passw0rd",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 409, "conflict")
}

func TestRegister_WeakPassword_ReturnsFieldError(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error) {
			return nil, models.NewValidationError("password", "must be at least 12 characters")
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, testCookies)
	req := handlers.NewTestRequest(t, "POST", "/api/auth/register", handlers.RegisterRequest{
		Username: "alice",
		Email:    "new@example.com",
		Password: "short",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 400, "validation_error")
	assert.Contains(t, w.Body.String(), "password")
}

func TestLogout_AlwaysReturns204(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(r *http.Request)
		wantToken string
	}{
		{
			name:      "cookie session",
			setup:     func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "tok"}) },
			wantToken: "tok",
		},
		{
			name:      "bearer session",
			setup:     func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok2") },
			wantToken: "tok2",
		},
		{
			name:  "no session at all",
			setup: func(r *http.Request) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			mockAuth := &handlers.MockAuthService{
				LogoutFunc: func(ctx context.Context, token string) { got = token },
			}

			handler := handlers.NewAuthHandler(mockAuth, testCookies)
			req := handlers.NewTestRequest(t, "POST", "/api/auth/logout", nil)
			tt.setup(req)

			w := httptest.NewRecorder()
			handler.Logout(w, req)

			assert.Equal(t, 204, w.Code)
			assert.Equal(t, tt.wantToken, got)

			cookie := sessionCookie(w)
			require.NotNil(t, cookie)
			assert.Equal(t, -1, cookie.MaxAge)
		})
	}
}

func TestMe_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		MeFunc: func(ctx context.Context, userID string) (*models.User, error) {
			tz := "America/New_York"
			return &models.User{ID: userID, Username: "alice", Email: "a@example.com", Role: models.RoleUser, Timezone: tz, BankedCredits: 5}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, testCookies)
	req := handlers.NewTestRequest(t, "GET", "/api/auth/me", nil)
	req = handlers.WithAuthContext(req, "user123", "a@example.com")

	w := httptest.NewRecorder()
	handler.Me(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "user123", resp.ID)
	assert.Equal(t, "America/New_York", resp.Timezone)
	assert.Equal(t, 5, resp.BankedCredits)
}

func TestMe_NoAuthContext_Returns401(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, testCookies)
	req := handlers.NewTestRequest(t, "GET", "/api/auth/me", nil)

	w := httptest.NewRecorder()
	handler.Me(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}
