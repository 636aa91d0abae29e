package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/jobboard/internal/models"
)

// ReportRepository defines job report persistence
type ReportRepository interface {
	Create(ctx context.Context, report *models.ReportedJob) (*models.ReportedJob, error)
	GetByID(ctx context.Context, id string) (*models.ReportedJob, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error)
	MarkReviewed(ctx context.Context, id, adminID string, notes *string, archiveJob bool, notify *models.Notification) (*models.ReportedJob, error)
}

// JobLookup fetches a single job
type JobLookup interface {
	GetByID(ctx context.Context, id string) (*models.Job, error)
}

// reportInput carries the validated fields of a report
type reportInput struct {
	Reason  string `json:"reason" validate:"required,oneof=ghost_listing duplicate fraudulent misleading inappropriate other"`
	Comment string `json:"comment" validate:"min=5,max=500"`
}

// ReportService accepts user reports against job listings and lets admins review them
type ReportService struct {
	reports  ReportRepository
	jobs     JobLookup
	notifier Notifier
	logger   *slog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reports ReportRepository, jobs JobLookup, notifier Notifier, logger *slog.Logger) *ReportService {
	return &ReportService{
		reports:  reports,
		jobs:     jobs,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitReport stores a pending report. The comment is NFC-normalised and trimmed
// before its length is checked. The job itself is left untouched.
func (s *ReportService) SubmitReport(ctx context.Context, userID, jobID, reason, comment string) (*models.ReportedJob, error) {
	input := reportInput{Reason: reason, Comment: normalizeText(comment)}
	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get job", slog.String("job_id", jobID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	report, err := s.reports.Create(ctx, &models.ReportedJob{
		UserID:   userID,
		JobID:    jobID,
		Reason:   input.Reason,
		Comments: input.Comment,
	})
	if err != nil {
		s.logger.Error("failed to create report",
			slog.String("user_id", userID),
			slog.String("job_id", jobID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("job reported",
		slog.String("report_id", report.ID),
		slog.String("job_id", jobID),
		slog.String("reason", report.Reason))
	return report, nil
}

// ListReports is the admin queue; status may be empty, pending or reviewed
func (s *ReportService) ListReports(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error) {
	if status != "" && status != models.ReportStatusPending && status != models.ReportStatusReviewed {
		return nil, models.NewValidationError("status", "must be one of: pending reviewed")
	}

	reports, err := s.reports.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list reports", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return reports, nil
}

// ReviewReport closes a report, optionally archiving the job, and notifies the reporter
func (s *ReportService) ReviewReport(ctx context.Context, adminID, id, notes string, archiveJob bool) (*models.ReportedJob, error) {
	notes = normalizeText(notes)
	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	body := "Thanks for your report. An administrator has reviewed it."
	if archiveJob {
		body = "Thanks for your report. The listing has been removed."
	}

	notify := &models.Notification{
		Type:  models.NotificationReportReviewed,
		Title: "Your job report was reviewed",
		Body:  body,
	}

	report, err := s.reports.MarkReviewed(ctx, id, adminID, notesPtr, archiveJob, notify)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to review report", slog.String("report_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.notifier.Evict(report.UserID)

	s.logger.Info("report reviewed",
		slog.String("report_id", id),
		slog.String("admin_id", adminID),
		slog.Bool("job_archived", archiveJob))
	return report, nil
}
