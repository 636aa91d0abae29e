package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/jobboard/internal/handlers"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/views"
	"github.com/stretchr/testify/assert"
)

func TestSubmitReport_Success(t *testing.T) {
	mockService := &handlers.MockReportService{
		SubmitReportFunc: func(ctx context.Context, userID, jobID, reason, comment string) (*models.ReportedJob, error) {
			assert.Equal(t, "user123", userID)
			assert.Equal(t, "9b2e4c6a-1d3f-4a5b-8c7d-0e1f2a3b4c5d", jobID)
			assert.Equal(t, models.ReportReasonGhostListing, reason)
			assert.Equal(t, "never replies", comment)
			return &models.ReportedJob{
				ID: "18c5d7e6-1f0b-4c9d-8e04-7b6f5d4c3e2b", UserID: userID, JobID: jobID, Reason: reason, Comments: comment,
				Status: models.ReportStatusPending, CreatedAt: time.Now(),
			}, nil
		},
	}

	handler := handlers.NewReportHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/api/jobs/job-1/reports", map[string]string{
		"reason":   "ghost_listing",
		"comments": "never replies",
	})
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "9b2e4c6a-1d3f-4a5b-8c7d-0e1f2a3b4c5d"})
	req = handlers.WithAuthContext(req, "user123", "a@example.com")

	w := httptest.NewRecorder()
	handler.Submit(w, req)

	var resp handlers.ReportResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "pending", resp.Status)
	handlers.AssertInvalidates(t, w, views.Reports)
}

func TestSubmitReport_CommentAlias(t *testing.T) {
	mockService := &handlers.MockReportService{
		SubmitReportFunc: func(ctx context.Context, userID, jobID, reason, comment string) (*models.ReportedJob, error) {
			assert.Equal(t, "looks fake", comment)
			return &models.ReportedJob{ID: "18c5d7e6-1f0b-4c9d-8e04-7b6f5d4c3e2b", Status: models.ReportStatusPending}, nil
		},
	}

	handler := handlers.NewReportHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/api/jobs/job-1/reports", map[string]string{
		"reason":  "fraudulent",
		"comment": "looks fake",
	})
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "9b2e4c6a-1d3f-4a5b-8c7d-0e1f2a3b4c5d"})
	req = handlers.WithAuthContext(req, "user123", "a@example.com")

	w := httptest.NewRecorder()
	handler.Submit(w, req)

	assert.Equal(t, 201, w.Code)
}

func TestSubmitReport_ShortComment_ReturnsFieldError(t *testing.T) {
	mockService := &handlers.MockReportService{
		SubmitReportFunc: func(ctx context.Context, userID, jobID, reason, comment string) (*models.ReportedJob, error) {
			return nil, models.NewValidationError("comments", "must be between 5 and 500 characters")
		},
	}

	handler := handlers.NewReportHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/api/jobs/job-1/reports", map[string]string{
		"reason":   "other",
		"comments": "abcd",
	})
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "9b2e4c6a-1d3f-4a5b-8c7d-0e1f2a3b4c5d"})
	req = handlers.WithAuthContext(req, "user123", "a@example.com")

	w := httptest.NewRecorder()
	handler.Submit(w, req)

	handlers.AssertErrorResponse(t, w, 400, "validation_error")
	assert.Contains(t, w.Body.String(), `"details":"comments"`)
}

func TestListReports_PassesStatusFilter(t *testing.T) {
	mockService := &handlers.MockReportService{
		ListReportsFunc: func(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error) {
			assert.Equal(t, "pending", status)
			return []*models.ReportedJob{{ID: "18c5d7e6-1f0b-4c9d-8e04-7b6f5d4c3e2b"}, {ID: "r2"}}, nil
		},
	}

	handler := handlers.NewReportHandler(mockService)
	req := handlers.NewTestRequest(t, "GET", "/api/admin/reported-jobs?status=pending", nil)
	req = handlers.WithAdminContext(req, "admin1", "admin@example.com")

	w := httptest.NewRecorder()
	handler.List(w, req)

	var resp handlers.ListReportsResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 2, resp.Total)
}

func TestReviewReport_WithArchive(t *testing.T) {
	mockService := &handlers.MockReportService{
		ReviewReportFunc: func(ctx context.Context, adminID, id, notes string, archiveJob bool) (*models.ReportedJob, error) {
			assert.Equal(t, "admin1", adminID)
			assert.Equal(t, "18c5d7e6-1f0b-4c9d-8e04-7b6f5d4c3e2b", id)
			assert.True(t, archiveJob)
			now := time.Now()
			return &models.ReportedJob{ID: id, Status: models.ReportStatusReviewed, ReviewedAt: &now, ReviewedBy: &adminID}, nil
		},
	}

	handler := handlers.NewReportHandler(mockService)
	req := handlers.NewTestRequest(t, "PATCH", "/api/admin/reported-jobs/r1", map[string]interface{}{
		"adminNotes": "confirmed",
		"archiveJob": true,
	})
	req = handlers.WithChiRouteContext(req, map[string]string{"id": "18c5d7e6-1f0b-4c9d-8e04-7b6f5d4c3e2b"})
	req = handlers.WithAdminContext(req, "admin1", "admin@example.com")

	w := httptest.NewRecorder()
	handler.Review(w, req)

	var resp handlers.ReportResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "reviewed", resp.Status)
	assert.NotNil(t, resp.ReviewedAt)
	handlers.AssertInvalidates(t, w, views.Reports, views.Jobs, views.Applications, views.Notifications)
}
