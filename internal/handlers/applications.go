package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/BradenHooton/jobboard/internal/lifecycle"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
)

// ApplicationServiceInterface defines application operations
type ApplicationServiceInterface interface {
	Apply(ctx context.Context, userID string, input services.ApplyInput, callerLoc *time.Location) (*models.Application, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Application, error)
	Grouped(ctx context.Context, userID string) (lifecycle.Buckets, map[string]*models.Job, error)
	Withdraw(ctx context.Context, userID, id string) (*models.Application, error)
	UpdateStatus(ctx context.Context, adminID, id, status string) (*models.Application, error)
}

// ApplicationHandler handles application requests
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// ApplyRequest represents the request body for POST /api/applications.
// AppliedAt is accepted for compatibility and ignored; the server clock stamps the application.
type ApplyRequest struct {
	JobID           string                 `json:"jobId" validate:"required,uuid"`
	Status          string                 `json:"status"`
	AppliedAt       string                 `json:"appliedAt"`
	CoverLetter     string                 `json:"coverLetter" validate:"max=10000"`
	ApplicationData map[string]interface{} `json:"applicationData"`
}

// UpdateStatusRequest represents the request body for the admin status change
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ApplicationResponse represents an application in the HTTP response
type ApplicationResponse struct {
	ID              string                 `json:"id"`
	JobID           string                 `json:"jobId"`
	UserID          string                 `json:"userId"`
	Status          string                 `json:"status"`
	AppliedAt       string                 `json:"appliedAt"`
	CoverLetter     *string                `json:"coverLetter,omitempty"`
	ApplicationData map[string]interface{} `json:"applicationData"`
	WithdrawnAt     *string                `json:"withdrawnAt,omitempty"`
	Job             *JobResponse           `json:"job,omitempty"`
}

// ListApplicationsResponse represents the caller's applications
type ListApplicationsResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
	Total        int                    `json:"total"`
}

// BucketResponse is one lifecycle bucket
type BucketResponse struct {
	Name         string                 `json:"name"`
	Count        int                    `json:"count"`
	Applications []*ApplicationResponse `json:"applications"`
}

// GroupedApplicationsResponse lists the buckets in display order
type GroupedApplicationsResponse struct {
	Buckets []*BucketResponse `json:"buckets"`
	Total   int               `json:"total"`
}

func applicationModelToResponse(app *models.Application) *ApplicationResponse {
	data := map[string]interface{}(app.ApplicationData)
	if data == nil {
		data = map[string]interface{}{}
	}
	return &ApplicationResponse{
		ID:              app.ID,
		JobID:           app.JobID,
		UserID:          app.UserID,
		Status:          string(app.Status),
		AppliedAt:       formatTime(app.AppliedAt),
		CoverLetter:     app.CoverLetter,
		ApplicationData: data,
		WithdrawnAt:     formatTimePtr(app.WithdrawnAt),
	}
}

// orderedBuckets returns the known buckets in display order followed by any
// catch-all buckets sorted by name
func orderedBuckets(buckets lifecycle.Buckets) []string {
	names := lifecycle.Order()
	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		known[name] = struct{}{}
	}

	var extra []string
	for name := range buckets {
		if _, ok := known[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	return append(names, extra...)
}

// List handles GET /api/applications
// @Summary List own applications
// @Tags applications
// @Produce json
// @Success 200 {object} ListApplicationsResponse
// @Router /api/applications [get]
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	apps, err := h.service.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &ListApplicationsResponse{Applications: make([]*ApplicationResponse, 0, len(apps))}
	for _, app := range apps {
		resp.Applications = append(resp.Applications, applicationModelToResponse(app))
	}
	resp.Total = len(resp.Applications)

	writeJSON(w, http.StatusOK, resp)
}

// Grouped handles GET /api/applications/grouped
// @Summary Own applications by lifecycle bucket
// @Description Applications against archived listings are always in the archived bucket
// @Tags applications
// @Produce json
// @Success 200 {object} GroupedApplicationsResponse
// @Router /api/applications/grouped [get]
func (h *ApplicationHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	buckets, jobs, err := h.service.Grouped(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	counts := buckets.Counts()
	resp := &GroupedApplicationsResponse{}
	for _, name := range orderedBuckets(buckets) {
		apps := buckets[name]
		bucket := &BucketResponse{
			Name:         name,
			Count:        counts[name],
			Applications: make([]*ApplicationResponse, 0, len(apps)),
		}
		for _, app := range apps {
			item := applicationModelToResponse(app)
			if job, ok := jobs[app.JobID]; ok {
				item.Job = jobModelToResponse(job)
			}
			bucket.Applications = append(bucket.Applications, item)
		}
		resp.Buckets = append(resp.Buckets, bucket)
		resp.Total += counts[name]
	}

	writeJSON(w, http.StatusOK, resp)
}

// Apply handles POST /api/applications
// @Summary Apply to a job
// @Description Counts against the daily limit of the caller's local day
// @Tags applications
// @Accept json
// @Produce json
// @Param X-Timezone header string false "Caller IANA timezone, used when the profile has none"
// @Success 201 {object} ApplicationResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.QuotaExceededResponse
// @Router /api/applications [post]
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req ApplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.service.Apply(r.Context(), claims.UserID, services.ApplyInput{
		JobID:           req.JobID,
		Status:          req.Status,
		CoverLetter:     req.CoverLetter,
		ApplicationData: req.ApplicationData,
	}, pkghttp.CallerLocation(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Applications, views.Credits, views.Notifications)
	writeJSON(w, http.StatusCreated, applicationModelToResponse(app))
}

// Withdraw handles POST /api/applications/{id}/withdraw
// @Summary Withdraw an application
// @Description Marks the application archived; it still counts toward the day's limit
// @Tags applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} ApplicationResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/applications/{id}/withdraw [post]
func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	app, err := h.service.Withdraw(r.Context(), claims.UserID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Applications)
	writeJSON(w, http.StatusOK, applicationModelToResponse(app))
}

// UpdateStatus handles PATCH /api/admin/applications/{id}/status
// @Summary Move an application to a new status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} ApplicationResponse
// @Failure 409 {object} pkghttp.ErrorResponse
// @Router /api/admin/applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.service.UpdateStatus(r.Context(), claims.UserID, id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Applications, views.Notifications)
	writeJSON(w, http.StatusOK, applicationModelToResponse(app))
}
