package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/jobboard/internal/handlers"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/stretchr/testify/assert"
)

// Every {id} route answers 404 for ids that cannot name a row, without reaching the service.
func TestMalformedPathID_Returns404(t *testing.T) {
	apps := handlers.NewApplicationHandler(&handlers.MockApplicationService{})
	notes := handlers.NewNotificationHandler(&handlers.MockNotificationService{})
	jobs := handlers.NewJobHandler(&handlers.MockJobService{})
	reports := handlers.NewReportHandler(&handlers.MockReportService{})
	credits := handlers.NewCreditHandler(&handlers.MockCreditService{})
	feedback := handlers.NewFeedbackHandler(&handlers.MockFeedbackService{})
	users := handlers.NewUserHandler(&handlers.MockUserService{}, &handlers.MockReferralService{})

	tests := []struct {
		name    string
		method  string
		body    interface{}
		admin   bool
		handler http.HandlerFunc
	}{
		{"withdraw application", "POST", nil, false, apps.Withdraw},
		{"admin application status", "PATCH", map[string]string{"status": "interviewing"}, true, apps.UpdateStatus},
		{"mark notification read", "POST", nil, false, notes.MarkRead},
		{"get job", "GET", nil, false, jobs.Get},
		{"archive job", "POST", nil, true, jobs.Archive},
		{"restore job", "POST", nil, true, jobs.Restore},
		{"report job", "POST", map[string]string{"reason": "ghost_listing", "comments": "never replied"}, false, reports.Submit},
		{"review report", "PATCH", map[string]string{"adminNotes": "ok"}, true, reports.Review},
		{"adjust credits", "POST", map[string]interface{}{"delta": 2}, true, credits.Adjust},
		{"list credit transactions", "GET", nil, true, credits.Transactions},
		{"respond to feedback", "PATCH", map[string]string{"status": "resolved"}, true, feedback.Respond},
		{"ensure referral code", "POST", nil, true, users.EnsureReferralCode},
	}

	for _, tt := range tests {
		for _, id := range []string{"abc", "42", "9b2e4c6a-1d3f-4a5b-8c7d"} {
			t.Run(tt.name+"/"+id, func(t *testing.T) {
				req := handlers.NewTestRequest(t, tt.method, "/api/x/"+id, tt.body)
				req = handlers.WithChiRouteContext(req, map[string]string{"id": id})
				if tt.admin {
					req = handlers.WithAdminContext(req, "4bf8a0b9-4c3e-4f2a-9b37-0e9c8a7f6b5e", "admin@example.com")
				} else {
					req = handlers.WithAuthContext(req, "4bf8a0b9-4c3e-4f2a-9b37-0e9c8a7f6b5e", "a@example.com")
				}

				w := httptest.NewRecorder()
				tt.handler(w, req)

				handlers.AssertErrorResponse(t, w, 404, "not_found")
			})
		}
	}
}

func TestApply_MalformedJobID_ReturnsFieldError(t *testing.T) {
	called := false
	handler := handlers.NewApplicationHandler(&handlers.MockApplicationService{
		ApplyFunc: func(ctx context.Context, userID string, input services.ApplyInput, callerLoc *time.Location) (*models.Application, error) {
			called = true
			return &models.Application{}, nil
		},
	})
	req := handlers.NewTestRequest(t, "POST", "/api/applications", map[string]string{"jobId": "42"})
	req = handlers.WithAuthContext(req, "user123", "a@example.com")

	w := httptest.NewRecorder()
	handler.Apply(w, req)

	handlers.AssertErrorResponse(t, w, 400, "validation_error")
	assert.Contains(t, w.Body.String(), "jobId")
	assert.False(t, called)
}
