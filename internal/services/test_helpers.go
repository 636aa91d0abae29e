package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/repositories"
)

// MockUserRepository implements every user repository interface in this package
type MockUserRepository struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*models.User, error)
	RegisterFunc         func(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error)
	UpdateTimezoneFunc   func(ctx context.Context, id, timezone string) (*models.User, error)
	TouchCreditResetFunc func(ctx context.Context, id string, windowStart time.Time) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Register(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, user, referralCode)
	}
	user.ID = "new-user"
	return user, nil, nil
}

func (m *MockUserRepository) UpdateTimezone(ctx context.Context, id, timezone string) (*models.User, error) {
	if m.UpdateTimezoneFunc != nil {
		return m.UpdateTimezoneFunc(ctx, id, timezone)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) TouchCreditReset(ctx context.Context, id string, windowStart time.Time) error {
	if m.TouchCreditResetFunc != nil {
		return m.TouchCreditResetFunc(ctx, id, windowStart)
	}
	return nil
}

// MockSessionRepository implements SessionRepository for testing
type MockSessionRepository struct {
	RevokeFunc func(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

func (m *MockSessionRepository) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, jti, userID, expiresAt)
	}
	return nil
}

// MockApplicationRepository implements ApplicationRepository and WindowApplicationRepository
type MockApplicationRepository struct {
	CreateWithinQuotaFunc  func(ctx context.Context, app *models.Application, windowStart, windowEnd time.Time, limit int) (*models.Application, error)
	GetByIDFunc            func(ctx context.Context, id string) (*models.Application, error)
	ListByUserFunc         func(ctx context.Context, userID string) ([]*models.Application, error)
	ListAppliedBetweenFunc func(ctx context.Context, userID string, start, end time.Time) ([]*models.Application, error)
	WithdrawFunc           func(ctx context.Context, id string, at time.Time) (*models.Application, error)
	UpdateStatusFunc       func(ctx context.Context, id string, from, to models.ApplicationStatus, notify *models.Notification) (*models.Application, error)
}

func (m *MockApplicationRepository) CreateWithinQuota(ctx context.Context, app *models.Application, windowStart, windowEnd time.Time, limit int) (*models.Application, error) {
	if m.CreateWithinQuotaFunc != nil {
		return m.CreateWithinQuotaFunc(ctx, app, windowStart, windowEnd, limit)
	}
	app.ID = "app-new"
	return app, nil
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockApplicationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Application{}, nil
}

func (m *MockApplicationRepository) ListAppliedBetween(ctx context.Context, userID string, start, end time.Time) ([]*models.Application, error) {
	if m.ListAppliedBetweenFunc != nil {
		return m.ListAppliedBetweenFunc(ctx, userID, start, end)
	}
	return []*models.Application{}, nil
}

func (m *MockApplicationRepository) Withdraw(ctx context.Context, id string, at time.Time) (*models.Application, error) {
	if m.WithdrawFunc != nil {
		return m.WithdrawFunc(ctx, id, at)
	}
	return nil, models.ErrNotFound
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus, notify *models.Notification) (*models.Application, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to, notify)
	}
	return nil, models.ErrNotFound
}

// MockJobRepository implements JobRepository, ApplicationJobRepository and JobLookup
type MockJobRepository struct {
	GetByIDFunc   func(ctx context.Context, id string) (*models.Job, error)
	GetByIDsFunc  func(ctx context.Context, ids []string) ([]*models.Job, error)
	ListFunc      func(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	CreateFunc    func(ctx context.Context, job *models.Job) (*models.Job, error)
	SetActiveFunc func(ctx context.Context, id string, active bool) (*models.Job, error)
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockJobRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Job, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []*models.Job{}, nil
}

func (m *MockJobRepository) List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Job{}, nil
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, job)
	}
	job.ID = "job-new"
	return job, nil
}

func (m *MockJobRepository) SetActive(ctx context.Context, id string, active bool) (*models.Job, error) {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil, models.ErrNotFound
}

// MockCreditRepository implements CreditRepository for testing
type MockCreditRepository struct {
	AdjustFunc     func(ctx context.Context, userID string, delta int, reason string, actorID, note *string) (*models.CreditTransaction, error)
	ListByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

func (m *MockCreditRepository) Adjust(ctx context.Context, userID string, delta int, reason string, actorID, note *string) (*models.CreditTransaction, error) {
	if m.AdjustFunc != nil {
		return m.AdjustFunc(ctx, userID, delta, reason, actorID, note)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCreditRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return []*models.CreditTransaction{}, nil
}

// MockNotificationRepository implements NotificationRepository for testing
type MockNotificationRepository struct {
	CreateFunc      func(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUserFunc  func(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error)
	CountUnreadFunc func(ctx context.Context, userID string) (int, error)
	MarkReadFunc    func(ctx context.Context, userID, id string) error
	MarkAllReadFunc func(ctx context.Context, userID string) (int64, error)
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	return n, nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return []*models.Notification{}, nil
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return 0, nil
}

// MockReportRepository implements ReportRepository for testing
type MockReportRepository struct {
	CreateFunc       func(ctx context.Context, report *models.ReportedJob) (*models.ReportedJob, error)
	GetByIDFunc      func(ctx context.Context, id string) (*models.ReportedJob, error)
	ListFunc         func(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error)
	MarkReviewedFunc func(ctx context.Context, id, adminID string, notes *string, archiveJob bool, notify *models.Notification) (*models.ReportedJob, error)
}

func (m *MockReportRepository) Create(ctx context.Context, report *models.ReportedJob) (*models.ReportedJob, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, report)
	}
	report.ID = "report-new"
	return report, nil
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*models.ReportedJob, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockReportRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return []*models.ReportedJob{}, nil
}

func (m *MockReportRepository) MarkReviewed(ctx context.Context, id, adminID string, notes *string, archiveJob bool, notify *models.Notification) (*models.ReportedJob, error) {
	if m.MarkReviewedFunc != nil {
		return m.MarkReviewedFunc(ctx, id, adminID, notes, archiveJob, notify)
	}
	return nil, models.ErrNotFound
}

// MockReferralRepository implements ReferralRepository for testing
type MockReferralRepository struct {
	GetByUserIDFunc    func(ctx context.Context, userID string) (*models.ReferralCode, error)
	InsertIfAbsentFunc func(ctx context.Context, userID, code string) (*models.ReferralCode, error)
}

func (m *MockReferralRepository) GetByUserID(ctx context.Context, userID string) (*models.ReferralCode, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockReferralRepository) InsertIfAbsent(ctx context.Context, userID, code string) (*models.ReferralCode, error) {
	if m.InsertIfAbsentFunc != nil {
		return m.InsertIfAbsentFunc(ctx, userID, code)
	}
	return &models.ReferralCode{ID: "rc-1", UserID: userID, Code: code}, nil
}

// MockFeedbackRepository implements FeedbackRepository for testing
type MockFeedbackRepository struct {
	CreateFunc  func(ctx context.Context, fb *models.Feedback) (*models.Feedback, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.Feedback, error)
	ListFunc    func(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error)
	RespondFunc func(ctx context.Context, id, status string, response *string, notify *models.Notification) (*models.Feedback, error)
}

func (m *MockFeedbackRepository) Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, fb)
	}
	fb.ID = "fb-new"
	return fb, nil
}

func (m *MockFeedbackRepository) GetByID(ctx context.Context, id string) (*models.Feedback, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockFeedbackRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return []*models.Feedback{}, nil
}

func (m *MockFeedbackRepository) Respond(ctx context.Context, id, status string, response *string, notify *models.Notification) (*models.Feedback, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, id, status, response, notify)
	}
	return nil, models.ErrNotFound
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendFeedbackResponseFunc func(ctx context.Context, email, subject, response string) error
}

func (m *MockEmailService) SendFeedbackResponse(ctx context.Context, email, subject, response string) error {
	if m.SendFeedbackResponseFunc != nil {
		return m.SendFeedbackResponseFunc(ctx, email, subject, response)
	}
	return nil
}

// MockNotifier records notifications and cache evictions
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []*models.Notification
	Evicted       []string
	NotifyErr     error
}

func (m *MockNotifier) Notify(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
	m.Evicted = append(m.Evicted, n.UserID)
	return m.NotifyErr
}

func (m *MockNotifier) Evict(userIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Evicted = append(m.Evicted, userIDs...)
}

// MockStatsRepository implements AdminStatsRepository with fixed counts
type MockStatsRepository struct {
	Counts    map[string]int64
	ByStatus  map[string]int64
	Err       error
	SinceSeen []time.Time
}

func (m *MockStatsRepository) get(key string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Counts[key], nil
}

func (m *MockStatsRepository) CountUsers(ctx context.Context) (int64, error) {
	return m.get("users")
}

func (m *MockStatsRepository) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	return m.get("role:" + role)
}

func (m *MockStatsRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	m.SinceSeen = append(m.SinceSeen, since)
	return m.get("users_since")
}

func (m *MockStatsRepository) CountJobs(ctx context.Context, activeOnly bool) (int64, error) {
	if activeOnly {
		return m.get("jobs_active")
	}
	return m.get("jobs")
}

func (m *MockStatsRepository) CountApplicationsSince(ctx context.Context, since time.Time) (int64, error) {
	m.SinceSeen = append(m.SinceSeen, since)
	return m.get("applications_since")
}

func (m *MockStatsRepository) CountApplicationsByStatus(ctx context.Context) (map[string]int64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ByStatus, nil
}

func (m *MockStatsRepository) CountReportsByStatus(ctx context.Context, status string) (int64, error) {
	return m.get("reports:" + status)
}

func (m *MockStatsRepository) CountFeedbackByStatus(ctx context.Context, status string) (int64, error) {
	return m.get("feedback:" + status)
}

// Test data builders

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func NewTestUser(id, email, username string) *models.User {
	return &models.User{
		ID:        id,
		Username:  username,
		Email:     email,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func NewTestUserWithPassword(id, email, username, passwordHash string) *models.User {
	user := NewTestUser(id, email, username)
	user.PasswordHash = passwordHash
	return user
}

func NewTestJob(id string, active bool) *models.Job {
	return &models.Job{
		ID:           id,
		Title:        "Backend Engineer",
		Company:      "Acme",
		Location:     "Remote",
		Description:  "Build things",
		Requirements: []string{"Go"},
		Type:         models.JobTypeFullTime,
		IsActive:     active,
		Published:    true,
	}
}

func NewTestApplication(id, userID, jobID string, status models.ApplicationStatus, appliedAt time.Time) *models.Application {
	return &models.Application{
		ID:        id,
		UserID:    userID,
		JobID:     jobID,
		Status:    status,
		AppliedAt: appliedAt,
		UpdatedAt: appliedAt,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
