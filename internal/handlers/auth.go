package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, token string)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	cookies auth.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, cookies auth.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	Timezone     string `json:"timezone" validate:"omitempty,max=64"`
	ReferralCode string `json:"referralCode"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is returned after a successful register or login.
// The token itself travels only in the session cookie.
type SessionResponse struct {
	User      *UserResponse `json:"user"`
	ExpiresAt string        `json:"expiresAt"`
}

// Register handles POST /api/auth/register
// @Summary Register a new account
// @Description Creates the account, redeems an optional referral code and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} SessionResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Timezone:     req.Timezone,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.startSession(w, result)
	views.Invalidate(w, views.Profile, views.Credits, views.Notifications)
	writeJSON(w, http.StatusCreated, sessionResponse(result))
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.startSession(w, result)
	views.Invalidate(w, views.Profile)
	writeJSON(w, http.StatusOK, sessionResponse(result))
}

// Logout handles POST /api/auth/logout. It always answers 204 so a stale or
// missing session never surfaces as an error on sign-out.
// @Summary Sign out
// @Tags auth
// @Success 204
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), auth.ExtractToken(r))

	auth.ClearSessionCookie(w, h.cookies)
	views.Invalidate(w, views.Profile)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, err := h.service.Me(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userModelToResponse(user))
}

func (h *AuthHandler) startSession(w http.ResponseWriter, result *services.AuthResult) {
	ttl := time.Until(result.ExpiresAt)
	auth.SetSessionCookie(w, result.Token, ttl, h.cookies)
}

func sessionResponse(result *services.AuthResult) *SessionResponse {
	return &SessionResponse{
		User:      userModelToResponse(result.User),
		ExpiresAt: formatTime(result.ExpiresAt),
	}
}
