package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/lifecycle"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds user claims to request context for testing authenticated endpoints
func WithAuthContext(req *http.Request, userID, email string) *http.Request {
	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   models.RoleUser,
		Type:   auth.TokenTypeSession,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// WithAdminContext adds admin user claims to request context
func WithAdminContext(req *http.Request, userID, email string) *http.Request {
	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   models.RoleAdmin,
		Type:   auth.TokenTypeSession,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// AssertInvalidates checks the views listed in the invalidation header
func AssertInvalidates(t *testing.T, w *httptest.ResponseRecorder, expected ...views.View) {
	got := w.Header().Get(views.InvalidateHeader)
	for _, v := range expected {
		assert.Contains(t, strings.Split(got, ","), string(v), "missing invalidated view")
	}
}

// WithChiRouteContext adds Chi route context with URL parameters to a request
// This helper allows tests to set URL parameters that would normally be extracted
// by the Chi router from the URL path.
//
// Example usage:
//
//	req := httptest.NewRequest("POST", "/api/jobs/9b2e4c6a-1d3f-4a5b-8c7d-0e1f2a3b4c5d/archive", nil)
//	req = WithChiRouteContext(req, map[string]string{
//	    "id": "9b2e4c6a-1d3f-4a5b-8c7d-0e1f2a3b4c5d",
//	})
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc func(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error)
	LoginFunc    func(ctx context.Context, email, password string) (*services.AuthResult, error)
	LogoutFunc   func(ctx context.Context, token string)
	MeFunc       func(ctx context.Context, userID string) (*models.User, error)
}

func (m *MockAuthService) Register(ctx context.Context, input services.RegisterInput) (*services.AuthResult, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, input)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, token)
	}
}

func (m *MockAuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	if m.MeFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.MeFunc(ctx, userID)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	ListUsersFunc      func(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateTimezoneFunc func(ctx context.Context, id, timezone string) (*models.User, error)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListUsersFunc == nil {
		return []*models.User{}, nil
	}
	return m.ListUsersFunc(ctx, limit, offset)
}

func (m *MockUserService) UpdateTimezone(ctx context.Context, id, timezone string) (*models.User, error) {
	if m.UpdateTimezoneFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateTimezoneFunc(ctx, id, timezone)
}

// MockReferralService implements ReferralServiceInterface for testing
type MockReferralService struct {
	EnsureReferralCodeFunc func(ctx context.Context, userID string) (*models.ReferralCode, error)
	QRCodeFunc             func(ctx context.Context, userID string, size int) ([]byte, error)
}

func (m *MockReferralService) EnsureReferralCode(ctx context.Context, userID string) (*models.ReferralCode, error) {
	if m.EnsureReferralCodeFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.EnsureReferralCodeFunc(ctx, userID)
}

func (m *MockReferralService) ShareLink(code string) string {
	return "https://jobs.example.com/register?ref=" + code
}

func (m *MockReferralService) QRCode(ctx context.Context, userID string, size int) ([]byte, error) {
	if m.QRCodeFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.QRCodeFunc(ctx, userID, size)
}

// MockJobService implements JobServiceInterface for testing
type MockJobService struct {
	ListFunc    func(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	GetFunc     func(ctx context.Context, id string, includeHidden bool) (*models.Job, error)
	CreateFunc  func(ctx context.Context, actorID string, input services.CreateJobInput) (*models.Job, error)
	ArchiveFunc func(ctx context.Context, actorID, id string) (*models.Job, error)
	RestoreFunc func(ctx context.Context, actorID, id string) (*models.Job, error)
}

func (m *MockJobService) List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	if m.ListFunc == nil {
		return []*models.Job{}, nil
	}
	return m.ListFunc(ctx, filter)
}

func (m *MockJobService) Get(ctx context.Context, id string, includeHidden bool) (*models.Job, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, id, includeHidden)
}

func (m *MockJobService) Create(ctx context.Context, actorID string, input services.CreateJobInput) (*models.Job, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateFunc(ctx, actorID, input)
}

func (m *MockJobService) Archive(ctx context.Context, actorID, id string) (*models.Job, error) {
	if m.ArchiveFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ArchiveFunc(ctx, actorID, id)
}

func (m *MockJobService) Restore(ctx context.Context, actorID, id string) (*models.Job, error) {
	if m.RestoreFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.RestoreFunc(ctx, actorID, id)
}

// MockReportService implements ReportServiceInterface for testing
type MockReportService struct {
	SubmitReportFunc func(ctx context.Context, userID, jobID, reason, comment string) (*models.ReportedJob, error)
	ListReportsFunc  func(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error)
	ReviewReportFunc func(ctx context.Context, adminID, id, notes string, archiveJob bool) (*models.ReportedJob, error)
}

func (m *MockReportService) SubmitReport(ctx context.Context, userID, jobID, reason, comment string) (*models.ReportedJob, error) {
	if m.SubmitReportFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SubmitReportFunc(ctx, userID, jobID, reason, comment)
}

func (m *MockReportService) ListReports(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error) {
	if m.ListReportsFunc == nil {
		return []*models.ReportedJob{}, nil
	}
	return m.ListReportsFunc(ctx, status, limit, offset)
}

func (m *MockReportService) ReviewReport(ctx context.Context, adminID, id, notes string, archiveJob bool) (*models.ReportedJob, error) {
	if m.ReviewReportFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ReviewReportFunc(ctx, adminID, id, notes, archiveJob)
}

// MockApplicationService implements ApplicationServiceInterface for testing
type MockApplicationService struct {
	ApplyFunc        func(ctx context.Context, userID string, input services.ApplyInput, callerLoc *time.Location) (*models.Application, error)
	ListForUserFunc  func(ctx context.Context, userID string) ([]*models.Application, error)
	GroupedFunc      func(ctx context.Context, userID string) (lifecycle.Buckets, map[string]*models.Job, error)
	WithdrawFunc     func(ctx context.Context, userID, id string) (*models.Application, error)
	UpdateStatusFunc func(ctx context.Context, adminID, id, status string) (*models.Application, error)
}

func (m *MockApplicationService) Apply(ctx context.Context, userID string, input services.ApplyInput, callerLoc *time.Location) (*models.Application, error) {
	if m.ApplyFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ApplyFunc(ctx, userID, input, callerLoc)
}

func (m *MockApplicationService) ListForUser(ctx context.Context, userID string) ([]*models.Application, error) {
	if m.ListForUserFunc == nil {
		return []*models.Application{}, nil
	}
	return m.ListForUserFunc(ctx, userID)
}

func (m *MockApplicationService) Grouped(ctx context.Context, userID string) (lifecycle.Buckets, map[string]*models.Job, error) {
	if m.GroupedFunc == nil {
		return lifecycle.Buckets{}, map[string]*models.Job{}, nil
	}
	return m.GroupedFunc(ctx, userID)
}

func (m *MockApplicationService) Withdraw(ctx context.Context, userID, id string) (*models.Application, error) {
	if m.WithdrawFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.WithdrawFunc(ctx, userID, id)
}

func (m *MockApplicationService) UpdateStatus(ctx context.Context, adminID, id, status string) (*models.Application, error) {
	if m.UpdateStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateStatusFunc(ctx, adminID, id, status)
}

// MockCreditService implements CreditServiceInterface for testing
type MockCreditService struct {
	SummaryFunc             func(ctx context.Context, userID string, callerLoc *time.Location) (*services.CreditSummary, error)
	AdjustBankedCreditsFunc func(ctx context.Context, actorID, userID string, delta int, note string) (*models.CreditTransaction, error)
	ListTransactionsFunc    func(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

func (m *MockCreditService) Summary(ctx context.Context, userID string, callerLoc *time.Location) (*services.CreditSummary, error) {
	if m.SummaryFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SummaryFunc(ctx, userID, callerLoc)
}

func (m *MockCreditService) AdjustBankedCredits(ctx context.Context, actorID, userID string, delta int, note string) (*models.CreditTransaction, error) {
	if m.AdjustBankedCreditsFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.AdjustBankedCreditsFunc(ctx, actorID, userID, delta, note)
}

func (m *MockCreditService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	if m.ListTransactionsFunc == nil {
		return []*models.CreditTransaction{}, nil
	}
	return m.ListTransactionsFunc(ctx, userID, limit, offset)
}

// MockNotificationService implements NotificationServiceInterface for testing
type MockNotificationService struct {
	ListFunc        func(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error)
	UnreadCountFunc func(ctx context.Context, userID string) (int, error)
	MarkReadFunc    func(ctx context.Context, userID, id string) error
	MarkAllReadFunc func(ctx context.Context, userID string) error
}

func (m *MockNotificationService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error) {
	if m.ListFunc == nil {
		return []*models.Notification{}, nil
	}
	return m.ListFunc(ctx, userID, limit, offset)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if m.UnreadCountFunc == nil {
		return 0, nil
	}
	return m.UnreadCountFunc(ctx, userID)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if m.MarkReadFunc == nil {
		return nil
	}
	return m.MarkReadFunc(ctx, userID, id)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc == nil {
		return nil
	}
	return m.MarkAllReadFunc(ctx, userID)
}

// MockFeedbackService implements FeedbackServiceInterface for testing
type MockFeedbackService struct {
	SubmitFunc  func(ctx context.Context, userID string, input services.FeedbackInput) (*models.Feedback, error)
	ListFunc    func(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error)
	RespondFunc func(ctx context.Context, adminID, id string, input services.FeedbackResponseInput) (*models.Feedback, error)
}

func (m *MockFeedbackService) Submit(ctx context.Context, userID string, input services.FeedbackInput) (*models.Feedback, error) {
	if m.SubmitFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.SubmitFunc(ctx, userID, input)
}

func (m *MockFeedbackService) List(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error) {
	if m.ListFunc == nil {
		return []*models.Feedback{}, nil
	}
	return m.ListFunc(ctx, status, limit, offset)
}

func (m *MockFeedbackService) Respond(ctx context.Context, adminID, id string, input services.FeedbackResponseInput) (*models.Feedback, error) {
	if m.RespondFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.RespondFunc(ctx, adminID, id, input)
}
