package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/jobboard/internal/models"
)

// NotificationRepository defines notification persistence
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// UnreadCache memoises unread counts; see views.UnreadCache
type UnreadCache interface {
	Get(userID string) (count int, generation uint64, ok bool)
	Set(userID string, count int, generation uint64) bool
	Evict(userIDs ...string)
}

// Notifier is how other services emit notifications. Evict is for notifications
// written inside a repository transaction.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
	Evict(userIDs ...string)
}

// NotificationService lists notifications and keeps the unread count cache coherent
type NotificationService struct {
	repo   NotificationRepository
	cache  UnreadCache
	logger *slog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo NotificationRepository, cache UnreadCache, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// List returns the user's notifications newest first
func (s *NotificationService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error) {
	items, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list notifications", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return items, nil
}

// UnreadCount serves from cache when possible. A count that raced a write is
// returned but not cached.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, generation, ok := s.cache.Get(userID)
	if ok {
		return n, nil
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count unread notifications", slog.String("user_id", userID), slog.Any("error", err))
		return 0, models.ErrInternalServer
	}

	s.cache.Set(userID, n, generation)
	return n, nil
}

// MarkRead is idempotent. Another user's notification reports ErrNotFound.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	err := s.repo.MarkRead(ctx, userID, id)
	s.cache.Evict(userID)

	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to mark notification read",
			slog.String("user_id", userID),
			slog.String("notification_id", id),
			slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// MarkAllRead is idempotent
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	n, err := s.repo.MarkAllRead(ctx, userID)
	s.cache.Evict(userID)

	if err != nil {
		s.logger.Error("failed to mark all notifications read", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Debug("notifications marked read", slog.String("user_id", userID), slog.Int64("count", n))
	return nil
}

// Notify stores a notification for n.UserID
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	_, err := s.repo.Create(ctx, n)
	s.cache.Evict(n.UserID)

	if err != nil {
		s.logger.Error("failed to create notification",
			slog.String("user_id", n.UserID),
			slog.String("type", n.Type),
			slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// Evict drops cached counts for users whose notifications were written elsewhere
func (s *NotificationService) Evict(userIDs ...string) {
	s.cache.Evict(userIDs...)
}
