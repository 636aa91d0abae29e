package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/jobboard/internal/models"
)

// FeedbackRepository defines feedback persistence
type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error)
	GetByID(ctx context.Context, id string) (*models.Feedback, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error)
	Respond(ctx context.Context, id, status string, response *string, notify *models.Notification) (*models.Feedback, error)
}

// FeedbackUserLookup resolves the author's email address
type FeedbackUserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// FeedbackInput is a feedback submission
type FeedbackInput struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Category string `json:"category" validate:"required,oneof=bug feature general other"`
	Comment  string `json:"comment" validate:"required,max=5000"`
}

// FeedbackResponseInput is an admin answer to feedback
type FeedbackResponseInput struct {
	Status        string `json:"status" validate:"required,oneof=received resolved"`
	AdminResponse string `json:"adminResponse" validate:"max=5000"`
}

// FeedbackService accepts product feedback and lets admins answer it
type FeedbackService struct {
	repo     FeedbackRepository
	users    FeedbackUserLookup
	notifier Notifier
	email    EmailService
	logger   *slog.Logger
}

// NewFeedbackService creates a new FeedbackService. email may be nil.
func NewFeedbackService(repo FeedbackRepository, users FeedbackUserLookup, notifier Notifier, email EmailService, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		email:    email,
		logger:   logger,
	}
}

// Submit stores feedback; userID is empty for anonymous submissions
func (s *FeedbackService) Submit(ctx context.Context, userID string, input FeedbackInput) (*models.Feedback, error) {
	input.Subject = normalizeText(input.Subject)
	input.Comment = normalizeText(input.Comment)

	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		Rating:   input.Rating,
		Subject:  input.Subject,
		Category: input.Category,
		Comment:  input.Comment,
		Status:   models.FeedbackStatusReceived,
	}
	if userID != "" {
		fb.UserID = &userID
	}

	created, err := s.repo.Create(ctx, fb)
	if err != nil {
		s.logger.Error("failed to store feedback", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("feedback received",
		slog.String("feedback_id", created.ID),
		slog.String("category", created.Category),
		slog.Bool("anonymous", created.UserID == nil))
	return created, nil
}

// List returns feedback for the admin view; status may be empty
func (s *FeedbackService) List(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error) {
	if status != "" && status != models.FeedbackStatusReceived && status != models.FeedbackStatusResolved {
		return nil, models.NewValidationError("status", "must be one of: received resolved")
	}

	items, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list feedback", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return items, nil
}

// Respond updates the feedback. A non-empty response is sent to the author as a
// notification and, when email is configured, an email.
func (s *FeedbackService) Respond(ctx context.Context, adminID, id string, input FeedbackResponseInput) (*models.Feedback, error) {
	input.AdminResponse = normalizeText(input.AdminResponse)
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	var response *string
	var notify *models.Notification
	if input.AdminResponse != "" {
		response = &input.AdminResponse
		notify = &models.Notification{
			Type:  models.NotificationFeedbackResponse,
			Title: "We responded to your feedback",
			Body:  input.AdminResponse,
			Data:  models.NotificationData{"feedbackId": id},
		}
	}

	updated, err := s.repo.Respond(ctx, id, input.Status, response, notify)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to respond to feedback", slog.String("feedback_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("feedback updated",
		slog.String("feedback_id", id),
		slog.String("admin_id", adminID),
		slog.String("status", updated.Status))

	if notify == nil || updated.UserID == nil {
		return updated, nil
	}
	s.notifier.Evict(*updated.UserID)

	if s.email != nil {
		s.sendResponseEmail(ctx, *updated.UserID, updated)
	}

	return updated, nil
}

// sendResponseEmail is best effort; delivery failures are logged only
func (s *FeedbackService) sendResponseEmail(ctx context.Context, userID string, fb *models.Feedback) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load feedback author", slog.String("user_id", userID), slog.Any("error", err))
		return
	}

	if err := s.email.SendFeedbackResponse(ctx, user.Email, fb.Subject, *fb.AdminResponse); err != nil {
		s.logger.Warn("failed to email feedback response", slog.String("feedback_id", fb.ID), slog.Any("error", err))
	}
}
