package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/views"
)

// NotificationServiceInterface defines the notification feed operations
type NotificationServiceInterface interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service NotificationServiceInterface
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// NotificationResponse represents a notification in the HTTP response
type NotificationResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data"`
	Read      bool              `json:"read"`
	CreatedAt string            `json:"createdAt"`
}

// ListNotificationsResponse is a page of the feed plus the unread total
type ListNotificationsResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Unread        int                     `json:"unread"`
}

// UnreadCountResponse is the caller's unread total
type UnreadCountResponse struct {
	Count int `json:"count"`
}

func notificationModelToResponse(n *models.Notification) *NotificationResponse {
	data := map[string]string(n.Data)
	if data == nil {
		data = map[string]string{}
	}
	return &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Data:      data,
		Read:      n.Read,
		CreatedAt: formatTime(n.CreatedAt),
	}
}

// List handles GET /api/notifications
// @Summary Notification feed, newest first
// @Tags notifications
// @Produce json
// @Success 200 {object} ListNotificationsResponse
// @Router /api/notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items, err := h.service.List(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	unread, err := h.service.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &ListNotificationsResponse{
		Notifications: make([]*NotificationResponse, 0, len(items)),
		Unread:        unread,
	}
	for _, n := range items {
		resp.Notifications = append(resp.Notifications, notificationModelToResponse(n))
	}

	writeJSON(w, http.StatusOK, resp)
}

// UnreadCount handles GET /api/notifications/unread-count
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} UnreadCountResponse
// @Router /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &UnreadCountResponse{Count: count})
}

// MarkRead handles POST /api/notifications/{id}/mark-read
// @Summary Mark one notification read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/notifications/{id}/mark-read [post]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), claims.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Notifications)
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/notifications/mark-all-read
// @Summary Mark every notification read
// @Tags notifications
// @Success 204
// @Router /api/notifications/mark-all-read [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkAllRead(r.Context(), claims.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Notifications)
	w.WriteHeader(http.StatusNoContent)
}
