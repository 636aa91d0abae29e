package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/pkg/logger"
)

// JobRepository defines job listing persistence
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	SetActive(ctx context.Context, id string, active bool) (*models.Job, error)
}

// CreateJobInput is an admin job posting
type CreateJobInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Company      string   `json:"company" validate:"required,max=200"`
	Location     string   `json:"location" validate:"required,max=200"`
	Salary       string   `json:"salary" validate:"max=100"`
	Description  string   `json:"description" validate:"required"`
	Requirements []string `json:"requirements" validate:"dive,required,max=500"`
	Benefits     []string `json:"benefits" validate:"omitempty,dive,required,max=500"`
	Type         string   `json:"type" validate:"required,oneof=full_time part_time contract internship remote"`
	Published    *bool    `json:"published"`
}

// JobService lists listings and lets admins manage them
type JobService struct {
	repo   JobRepository
	audit  *logger.AuditLogger
	logger *slog.Logger
}

// NewJobService creates a new JobService
func NewJobService(repo JobRepository, log *slog.Logger) *JobService {
	return &JobService{
		repo:   repo,
		audit:  logger.NewAuditLogger(log),
		logger: log,
	}
}

// List returns listings matching filter
func (s *JobService) List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	jobs, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list jobs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return jobs, nil
}

// Get returns one listing. Hidden listings are only visible to admins.
func (s *JobService) Get(ctx context.Context, id string, includeHidden bool) (*models.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get job", slog.String("job_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !includeHidden && !job.Published {
		return nil, models.ErrNotFound
	}
	return job, nil
}

// Create posts a new active listing, published unless stated otherwise
func (s *JobService) Create(ctx context.Context, actorID string, input CreateJobInput) (*models.Job, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Company = strings.TrimSpace(input.Company)
	input.Location = strings.TrimSpace(input.Location)

	if err := ValidateStruct(input); err != nil {
		return nil, err
	}

	published := true
	if input.Published != nil {
		published = *input.Published
	}

	job, err := s.repo.Create(ctx, &models.Job{
		Title:        input.Title,
		Company:      input.Company,
		Location:     input.Location,
		Salary:       strings.TrimSpace(input.Salary),
		Description:  input.Description,
		Requirements: input.Requirements,
		Benefits:     input.Benefits,
		Type:         input.Type,
		IsActive:     true,
		Published:    published,
	})
	if err != nil {
		s.logger.Error("failed to create job", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAdminAction("job_created", actorID, job.ID, "", nil)
	return job, nil
}

// Archive closes a listing. Its applications display as archived from then on.
func (s *JobService) Archive(ctx context.Context, actorID, id string) (*models.Job, error) {
	return s.setActive(ctx, actorID, id, false)
}

// Restore reopens an archived listing
func (s *JobService) Restore(ctx context.Context, actorID, id string) (*models.Job, error) {
	return s.setActive(ctx, actorID, id, true)
}

func (s *JobService) setActive(ctx context.Context, actorID, id string, active bool) (*models.Job, error) {
	job, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update job", slog.String("job_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	action := "job_archived"
	if active {
		action = "job_restored"
	}
	s.audit.LogAdminAction(action, actorID, id, "", nil)

	return job, nil
}
