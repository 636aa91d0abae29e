package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/quota"
)

// AdminStatsRepository is the aggregate query surface needed by AdminService.
type AdminStatsRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context, role string) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	CountJobs(ctx context.Context, activeOnly bool) (int64, error)
	CountApplicationsSince(ctx context.Context, since time.Time) (int64, error)
	CountApplicationsByStatus(ctx context.Context) (map[string]int64, error)
	CountReportsByStatus(ctx context.Context, status string) (int64, error)
	CountFeedbackByStatus(ctx context.Context, status string) (int64, error)
}

// DashboardStatsResponse contains aggregate admin metrics.
type DashboardStatsResponse struct {
	TotalUsers         int64            `json:"totalUsers"`
	AdminCount         int64            `json:"adminCount"`
	NewUsersToday      int64            `json:"newUsersToday"`
	TotalJobs          int64            `json:"totalJobs"`
	ActiveJobs         int64            `json:"activeJobs"`
	ApplicationsToday  int64            `json:"applicationsToday"`
	ApplicationsByStat map[string]int64 `json:"applicationsByStatus"`
	PendingReports     int64            `json:"pendingReports"`
	OpenFeedback       int64            `json:"openFeedback"`
}

// AdminService aggregates data for admin dashboard endpoints.
type AdminService struct {
	stats      AdminStatsRepository
	defaultLoc *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewAdminService creates a new AdminService. "Today" is the local day in defaultLoc.
func NewAdminService(stats AdminStatsRepository, defaultLoc *time.Location, logger *slog.Logger) *AdminService {
	return &AdminService{
		stats:      stats,
		defaultLoc: defaultLoc,
		logger:     logger,
		now:        time.Now,
	}
}

// GetDashboardStats returns aggregate user, job and moderation counts.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*DashboardStatsResponse, error) {
	today, _ := quota.Window(s.now(), s.defaultLoc)

	var resp DashboardStatsResponse
	var err error

	if resp.TotalUsers, err = s.stats.CountUsers(ctx); err != nil {
		return nil, s.fail("count users", err)
	}
	if resp.AdminCount, err = s.stats.CountUsersByRole(ctx, models.RoleAdmin); err != nil {
		return nil, s.fail("count admins", err)
	}
	if resp.NewUsersToday, err = s.stats.CountUsersSince(ctx, today); err != nil {
		return nil, s.fail("count new users", err)
	}
	if resp.TotalJobs, err = s.stats.CountJobs(ctx, false); err != nil {
		return nil, s.fail("count jobs", err)
	}
	if resp.ActiveJobs, err = s.stats.CountJobs(ctx, true); err != nil {
		return nil, s.fail("count active jobs", err)
	}
	if resp.ApplicationsToday, err = s.stats.CountApplicationsSince(ctx, today); err != nil {
		return nil, s.fail("count applications today", err)
	}
	if resp.ApplicationsByStat, err = s.stats.CountApplicationsByStatus(ctx); err != nil {
		return nil, s.fail("count applications by status", err)
	}
	if resp.PendingReports, err = s.stats.CountReportsByStatus(ctx, models.ReportStatusPending); err != nil {
		return nil, s.fail("count pending reports", err)
	}
	if resp.OpenFeedback, err = s.stats.CountFeedbackByStatus(ctx, models.FeedbackStatusReceived); err != nil {
		return nil, s.fail("count open feedback", err)
	}

	return &resp, nil
}

func (s *AdminService) fail(what string, err error) error {
	s.logger.Error("dashboard: failed to "+what, slog.Any("error", err))
	return models.ErrInternalServer
}
