package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/views"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserService defines the interface for user business logic
type UserService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateTimezone(ctx context.Context, id, timezone string) (*models.User, error)
}

// ReferralServiceInterface issues and renders referral codes
type ReferralServiceInterface interface {
	EnsureReferralCode(ctx context.Context, userID string) (*models.ReferralCode, error)
	ShareLink(code string) string
	QRCode(ctx context.Context, userID string, size int) ([]byte, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service   UserService
	referrals ReferralServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, referrals ReferralServiceInterface) *UserHandler {
	return &UserHandler{
		service:   service,
		referrals: referrals,
	}
}

// Request/Response DTOs

// UpdateProfileRequest represents the request body for PATCH /api/users/me
type UpdateProfileRequest struct {
	Timezone *string `json:"timezone" validate:"required"`
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	Timezone        string  `json:"timezone"`
	BankedCredits   int     `json:"bankedCredits"`
	ReferralCode    *string `json:"referralCode,omitempty"`
	LastCreditReset *string `json:"lastCreditReset,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ListUsersResponse represents a list of users
type ListUsersResponse struct {
	Users []*UserResponse `json:"users"`
	Total int             `json:"total"`
}

// ReferralCodeResponse is a user's code with its share link
type ReferralCodeResponse struct {
	Code       string `json:"code"`
	ShareLink  string `json:"shareLink"`
	UsageCount int    `json:"usageCount"`
	CreatedAt  string `json:"createdAt"`
}

// userModelToResponse converts a user model to a response DTO
func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Role:            user.Role,
		Timezone:        user.Timezone,
		BankedCredits:   user.BankedCredits,
		ReferralCode:    user.ReferralCode,
		LastCreditReset: formatTimePtr(user.LastCreditReset),
		CreatedAt:       formatTime(user.CreatedAt),
		UpdatedAt:       formatTime(user.UpdatedAt),
	}
}

// UpdateMe handles PATCH /api/users/me
// @Summary Update own profile
// @Description Sets the IANA timezone used for the daily application window; an empty string clears it
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /api/users/me [patch]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateTimezone(r.Context(), claims.UserID, *req.Timezone)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Profile, views.Credits)
	writeJSON(w, http.StatusOK, userModelToResponse(user))
}

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListUsersResponse
// @Router /api/admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &ListUsersResponse{Users: make([]*UserResponse, 0, len(users))}
	for _, user := range users {
		resp.Users = append(resp.Users, userModelToResponse(user))
	}
	resp.Total = len(resp.Users)

	writeJSON(w, http.StatusOK, resp)
}

// EnsureReferralCode handles POST /api/users/{id}/referral-code
// @Summary Get or create a referral code
// @Description Returns the user's existing code, issuing one on first use
// @Tags referrals
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} ReferralCodeResponse
// @Failure 403 {object} pkghttp.ErrorResponse
// @Router /api/users/{id}/referral-code [post]
func (h *UserHandler) EnsureReferralCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUserParam(w, r)
	if !ok {
		return
	}

	code, err := h.referrals.EnsureReferralCode(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Profile)
	writeJSON(w, http.StatusOK, &ReferralCodeResponse{
		Code:       code.Code,
		ShareLink:  h.referrals.ShareLink(code.Code),
		UsageCount: code.UsageCount,
		CreatedAt:  formatTime(code.CreatedAt),
	})
}

// ReferralQRCode handles GET /api/users/{id}/referral-code/qr
// @Summary Referral share link as a QR code
// @Tags referrals
// @Produce png
// @Param id path string true "User ID"
// @Param size query int false "Edge length in pixels (64-1024)"
// @Success 200 {file} binary
// @Router /api/users/{id}/referral-code/qr [get]
func (h *UserHandler) ReferralQRCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeUserParam(w, r)
	if !ok {
		return
	}

	size := 0
	if v := r.URL.Query().Get("size"); v != "" {
		if _, err := parseIntParam(v, &size, 64, 1024); err != nil {
			pkghttp.WriteValidationError(w, "size", "must be between 64 and 1024")
			return
		}
	}

	png, err := h.referrals.QRCode(r.Context(), userID, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// authorizeUserParam resolves {id} and checks the caller may act on it
func (h *UserHandler) authorizeUserParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return "", false
	}

	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "user id is required")
		return "", false
	}
	if userID == "me" {
		userID = claims.UserID
	} else if _, err := uuid.Parse(userID); err != nil {
		pkghttp.WriteNotFound(w, "resource not found")
		return "", false
	}

	if !checkUserAccess(claims, userID) {
		pkghttp.WriteForbidden(w, "insufficient permissions")
		return "", false
	}
	return userID, true
}
