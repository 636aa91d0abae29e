package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/views"
)

// ReportServiceInterface defines job report operations
type ReportServiceInterface interface {
	SubmitReport(ctx context.Context, userID, jobID, reason, comment string) (*models.ReportedJob, error)
	ListReports(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error)
	ReviewReport(ctx context.Context, adminID, id, notes string, archiveJob bool) (*models.ReportedJob, error)
}

// ReportHandler handles job report requests
type ReportHandler struct {
	service ReportServiceInterface
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

// SubmitReportRequest represents the request body for POST /api/jobs/{id}/reports.
// Reason and comment are checked after normalisation by the report service.
type SubmitReportRequest struct {
	Reason   string `json:"reason"`
	Comments string `json:"comments"`
	Comment  string `json:"comment"` // accepted as an alias of comments
}

func (r SubmitReportRequest) text() string {
	if r.Comments != "" {
		return r.Comments
	}
	return r.Comment
}

// ReviewReportRequest represents the request body for PATCH /api/admin/reported-jobs/{id}
type ReviewReportRequest struct {
	AdminNotes string `json:"adminNotes" validate:"max=2000"`
	ArchiveJob bool   `json:"archiveJob"`
}

// ReportResponse represents a job report in the HTTP response
type ReportResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	JobID      string  `json:"jobId"`
	Reason     string  `json:"reason"`
	Comments   string  `json:"comments"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
	ReviewedAt *string `json:"reviewedAt,omitempty"`
	ReviewedBy *string `json:"reviewedBy,omitempty"`
	AdminNotes *string `json:"adminNotes,omitempty"`
}

// ListReportsResponse represents a page of job reports
type ListReportsResponse struct {
	Reports []*ReportResponse `json:"reports"`
	Total   int               `json:"total"`
}

func reportModelToResponse(report *models.ReportedJob) *ReportResponse {
	return &ReportResponse{
		ID:         report.ID,
		UserID:     report.UserID,
		JobID:      report.JobID,
		Reason:     report.Reason,
		Comments:   report.Comments,
		Status:     report.Status,
		CreatedAt:  formatTime(report.CreatedAt),
		ReviewedAt: formatTimePtr(report.ReviewedAt),
		ReviewedBy: report.ReviewedBy,
		AdminNotes: report.AdminNotes,
	}
}

// Submit handles POST /api/jobs/{id}/reports
// @Summary Report a job listing
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/jobs/{id}/reports [post]
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SubmitReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.service.SubmitReport(r.Context(), claims.UserID, id, req.Reason, req.text())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Reports)
	writeJSON(w, http.StatusCreated, reportModelToResponse(report))
}

// List handles GET /api/admin/reported-jobs
// @Summary List job reports
// @Tags admin
// @Produce json
// @Param status query string false "pending or reviewed"
// @Success 200 {object} ListReportsResponse
// @Router /api/admin/reported-jobs [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	reports, err := h.service.ListReports(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &ListReportsResponse{Reports: make([]*ReportResponse, 0, len(reports))}
	for _, report := range reports {
		resp.Reports = append(resp.Reports, reportModelToResponse(report))
	}
	resp.Total = len(resp.Reports)

	writeJSON(w, http.StatusOK, resp)
}

// Review handles PATCH /api/admin/reported-jobs/{id}
// @Summary Review a job report
// @Description Marks the report reviewed and optionally archives the reported listing
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Router /api/admin/reported-jobs/{id} [patch]
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ReviewReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.service.ReviewReport(r.Context(), claims.UserID, id, req.AdminNotes, req.ArchiveJob)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	affected := []views.View{views.Reports, views.Notifications}
	if req.ArchiveJob {
		affected = append(affected, views.Jobs, views.Applications)
	}
	views.Invalidate(w, affected...)
	writeJSON(w, http.StatusOK, reportModelToResponse(report))
}
