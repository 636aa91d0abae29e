package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/jobboard/internal/lifecycle"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/quota"
)

// ApplicationRepository defines application persistence
type ApplicationRepository interface {
	CreateWithinQuota(ctx context.Context, app *models.Application, windowStart, windowEnd time.Time, limit int) (*models.Application, error)
	GetByID(ctx context.Context, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Application, error)
	Withdraw(ctx context.Context, id string, at time.Time) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus, notify *models.Notification) (*models.Application, error)
}

// ApplicationJobRepository is the job access the application service needs
type ApplicationJobRepository interface {
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Job, error)
}

// ApplicationUserRepository is the user access the application service needs
type ApplicationUserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ApplicationDataChecker validates the form snapshot attached to an application
type ApplicationDataChecker interface {
	Validate(data map[string]interface{}) error
}

// ApplyInput is an applicant's submission
type ApplyInput struct {
	JobID           string
	Status          string // empty or "applied"
	CoverLetter     string
	ApplicationData map[string]interface{}
}

// ApplicationService files applications under the daily quota and tracks their lifecycle
type ApplicationService struct {
	apps       ApplicationRepository
	jobs       ApplicationJobRepository
	users      ApplicationUserRepository
	dataCheck  ApplicationDataChecker
	notifier   Notifier
	defaultLoc *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(apps ApplicationRepository, jobs ApplicationJobRepository, users ApplicationUserRepository, dataCheck ApplicationDataChecker, notifier Notifier, defaultLoc *time.Location, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		apps:       apps,
		jobs:       jobs,
		users:      users,
		dataCheck:  dataCheck,
		notifier:   notifier,
		defaultLoc: defaultLoc,
		logger:     logger,
		now:        time.Now,
	}
}

// Apply files an application stamped with the server clock. The quota window is
// the user's local day; the check and insert are atomic.
func (s *ApplicationService) Apply(ctx context.Context, userID string, input ApplyInput, callerLoc *time.Location) (*models.Application, error) {
	if input.JobID == "" {
		return nil, models.NewValidationError("jobId", "this field is required")
	}
	if input.Status != "" {
		if status, ok := models.ParseApplicationStatus(input.Status); !ok || status != models.StatusApplied {
			return nil, models.NewValidationError("status", "new applications must have status applied")
		}
	}
	if s.dataCheck != nil {
		if err := s.dataCheck.Validate(input.ApplicationData); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	job, err := s.jobs.GetByID(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get job", slog.String("job_id", input.JobID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !job.AcceptsApplications() {
		return nil, models.ErrJobClosed
	}

	now := s.now()
	loc := quota.ResolveLocation(user.Timezone, fallbackLocation(callerLoc, s.defaultLoc))
	start, end := quota.Window(now, loc)

	app := &models.Application{
		JobID:           job.ID,
		UserID:          userID,
		Status:          models.StatusApplied,
		AppliedAt:       now,
		ApplicationData: models.ApplicationData(input.ApplicationData),
	}
	if cover := normalizeText(input.CoverLetter); cover != "" {
		app.CoverLetter = &cover
	}

	created, err := s.apps.CreateWithinQuota(ctx, app, start, end, models.DailyApplicationLimit)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrQuotaExceeded):
			s.logger.Info("daily application limit reached", slog.String("user_id", userID))
			return nil, &models.QuotaExceededError{
				Limit:   models.DailyApplicationLimit,
				ResetAt: end,
				ResetIn: end.Sub(now),
			}
		case errors.Is(err, models.ErrConflict):
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create application",
			slog.String("user_id", userID),
			slog.String("job_id", job.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("application submitted",
		slog.String("application_id", created.ID),
		slog.String("user_id", userID),
		slog.String("job_id", job.ID))
	return created, nil
}

// ListForUser returns the user's applications newest first
func (s *ApplicationService) ListForUser(ctx context.Context, userID string) ([]*models.Application, error) {
	apps, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list applications", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return apps, nil
}

// Grouped places the user's applications into lifecycle buckets along with the jobs they reference
func (s *ApplicationService) Grouped(ctx context.Context, userID string) (lifecycle.Buckets, map[string]*models.Job, error) {
	apps, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(apps))
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.JobID]; !ok {
			seen[app.JobID] = struct{}{}
			ids = append(ids, app.JobID)
		}
	}

	jobs, err := s.jobs.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load jobs for applications", slog.String("user_id", userID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	byID := make(map[string]*models.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	return lifecycle.GroupByStatus(apps, jobs, s.logger), byID, nil
}

// Withdraw archives the caller's own application. Withdrawing twice is a no-op.
func (s *ApplicationService) Withdraw(ctx context.Context, userID, id string) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get application", slog.String("application_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Other users' applications are indistinguishable from missing ones
	if app.UserID != userID {
		return nil, models.ErrNotFound
	}
	if app.IsWithdrawn() {
		return app, nil
	}

	withdrawn, err := s.apps.Withdraw(ctx, id, s.now())
	if err != nil {
		s.logger.Error("failed to withdraw application", slog.String("application_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("application withdrawn", slog.String("application_id", id), slog.String("user_id", userID))
	return withdrawn, nil
}

// UpdateStatus is the admin status change, restricted to the allowed transitions.
// The applicant is notified in the same transaction.
func (s *ApplicationService) UpdateStatus(ctx context.Context, adminID, id, status string) (*models.Application, error) {
	to, ok := models.ParseApplicationStatus(status)
	if !ok {
		return nil, models.NewValidationError("status", "must be one of: applied interviewing accepted rejected archived")
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get application", slog.String("application_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	from, known := models.ParseApplicationStatus(string(app.Status))
	if !known || !models.CanTransition(from, to) {
		return nil, models.ErrInvalidTransition
	}

	notify := &models.Notification{
		UserID: app.UserID,
		Type:   models.NotificationApplicationStatus,
		Title:  fmt.Sprintf("Your application is now %s", to),
		Data:   models.NotificationData{"applicationId": app.ID, "jobId": app.JobID, "status": string(to)},
	}

	updated, err := s.apps.UpdateStatus(ctx, id, from, to, notify)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Someone else moved it first
			return nil, models.ErrInvalidTransition
		}
		s.logger.Error("failed to update application status", slog.String("application_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.notifier.Evict(app.UserID)

	s.logger.Info("application status changed",
		slog.String("application_id", id),
		slog.String("admin_id", adminID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	return updated, nil
}
