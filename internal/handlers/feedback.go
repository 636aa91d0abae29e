package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
)

// FeedbackServiceInterface defines feedback operations
type FeedbackServiceInterface interface {
	Submit(ctx context.Context, userID string, input services.FeedbackInput) (*models.Feedback, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error)
	Respond(ctx context.Context, adminID, id string, input services.FeedbackResponseInput) (*models.Feedback, error)
}

// FeedbackHandler handles feedback requests
type FeedbackHandler struct {
	service FeedbackServiceInterface
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(service FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// SubmitFeedbackRequest represents the request body for POST /api/feedback
type SubmitFeedbackRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Category string `json:"category" validate:"required"`
	Comment  string `json:"comment" validate:"required,max=5000"`
}

// RespondFeedbackRequest represents the request body for PATCH /api/feedback/{id}
type RespondFeedbackRequest struct {
	Status        string `json:"status" validate:"required"`
	AdminResponse string `json:"adminResponse" validate:"max=5000"`
}

// FeedbackResponse represents feedback in the HTTP response
type FeedbackResponse struct {
	ID            string  `json:"id"`
	UserID        *string `json:"userId,omitempty"`
	Rating        int     `json:"rating"`
	Subject       string  `json:"subject"`
	Category      string  `json:"category"`
	Comment       string  `json:"comment"`
	Status        string  `json:"status"`
	AdminResponse *string `json:"adminResponse,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// ListFeedbackResponse represents a page of feedback
type ListFeedbackResponse struct {
	Feedback []*FeedbackResponse `json:"feedback"`
	Total    int                 `json:"total"`
}

func feedbackModelToResponse(fb *models.Feedback) *FeedbackResponse {
	return &FeedbackResponse{
		ID:            fb.ID,
		UserID:        fb.UserID,
		Rating:        fb.Rating,
		Subject:       fb.Subject,
		Category:      fb.Category,
		Comment:       fb.Comment,
		Status:        fb.Status,
		AdminResponse: fb.AdminResponse,
		CreatedAt:     formatTime(fb.CreatedAt),
		UpdatedAt:     formatTime(fb.UpdatedAt),
	}
}

// Submit handles POST /api/feedback. A session is optional.
// @Summary Send product feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Success 201 {object} FeedbackResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /api/feedback [post]
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := ""
	if claims := auth.GetUserFromContext(r); claims != nil {
		userID = claims.UserID
	}

	fb, err := h.service.Submit(r.Context(), userID, services.FeedbackInput{
		Rating:   req.Rating,
		Subject:  req.Subject,
		Category: req.Category,
		Comment:  req.Comment,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Feedback)
	writeJSON(w, http.StatusCreated, feedbackModelToResponse(fb))
}

// List handles GET /api/feedback (admin)
// @Summary List feedback
// @Tags admin
// @Produce json
// @Param status query string false "received or resolved"
// @Success 200 {object} ListFeedbackResponse
// @Router /api/feedback [get]
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items, err := h.service.List(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &ListFeedbackResponse{Feedback: make([]*FeedbackResponse, 0, len(items))}
	for _, fb := range items {
		resp.Feedback = append(resp.Feedback, feedbackModelToResponse(fb))
	}
	resp.Total = len(resp.Feedback)

	writeJSON(w, http.StatusOK, resp)
}

// Respond handles PATCH /api/feedback/{id} (admin)
// @Summary Answer or resolve feedback
// @Description A response notifies the author and, when email is configured, mails them
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} FeedbackResponse
// @Router /api/feedback/{id} [patch]
func (h *FeedbackHandler) Respond(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req RespondFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fb, err := h.service.Respond(r.Context(), claims.UserID, id, services.FeedbackResponseInput{
		Status:        req.Status,
		AdminResponse: req.AdminResponse,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Feedback, views.Notifications)
	writeJSON(w, http.StatusOK, feedbackModelToResponse(fb))
}
