package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/services"
	"github.com/BradenHooton/jobboard/internal/views"
)

// JobServiceInterface defines job listing operations
type JobServiceInterface interface {
	List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	Get(ctx context.Context, id string, includeHidden bool) (*models.Job, error)
	Create(ctx context.Context, actorID string, input services.CreateJobInput) (*models.Job, error)
	Archive(ctx context.Context, actorID, id string) (*models.Job, error)
	Restore(ctx context.Context, actorID, id string) (*models.Job, error)
}

// JobHandler handles job listing requests
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{service: service}
}

// CreateJobRequest represents the request body for POST /api/jobs
type CreateJobRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Company      string   `json:"company" validate:"required,max=200"`
	Location     string   `json:"location" validate:"required,max=200"`
	Salary       string   `json:"salary" validate:"max=100"`
	Description  string   `json:"description" validate:"required"`
	Requirements []string `json:"requirements"`
	Benefits     []string `json:"benefits"`
	Type         string   `json:"type" validate:"required"`
	Published    *bool    `json:"published"`
}

// JobResponse represents a job listing in the HTTP response
type JobResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Salary       string   `json:"salary"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Benefits     []string `json:"benefits,omitempty"`
	Type         string   `json:"type"`
	IsActive     bool     `json:"isActive"`
	Published    bool     `json:"published"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// ListJobsResponse represents a page of job listings
type ListJobsResponse struct {
	Jobs  []*JobResponse `json:"jobs"`
	Total int            `json:"total"`
}

func jobModelToResponse(job *models.Job) *JobResponse {
	requirements := job.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	return &JobResponse{
		ID:           job.ID,
		Title:        job.Title,
		Company:      job.Company,
		Location:     job.Location,
		Salary:       job.Salary,
		Description:  job.Description,
		Requirements: requirements,
		Benefits:     job.Benefits,
		Type:         job.Type,
		IsActive:     job.IsActive,
		Published:    job.Published,
		CreatedAt:    formatTime(job.CreatedAt),
		UpdatedAt:    formatTime(job.UpdatedAt),
	}
}

// isAdmin reports whether the optional session belongs to an admin
func isAdmin(r *http.Request) bool {
	claims := auth.GetUserFromContext(r)
	return claims != nil && claims.Role == models.RoleAdmin
}

// List handles GET /api/jobs
// @Summary List job listings
// @Description Active, published listings; admins may pass all=true to include hidden ones
// @Tags jobs
// @Produce json
// @Param q query string false "Search title or company"
// @Param all query bool false "Include archived and unpublished (admin)"
// @Success 200 {object} ListJobsResponse
// @Router /api/jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filter := models.JobFilter{
		Query:         strings.TrimSpace(r.URL.Query().Get("q")),
		IncludeHidden: r.URL.Query().Get("all") == "true" && isAdmin(r),
		Limit:         limit,
		Offset:        offset,
	}

	jobs, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &ListJobsResponse{Jobs: make([]*JobResponse, 0, len(jobs))}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, jobModelToResponse(job))
	}
	resp.Total = len(resp.Jobs)

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/jobs/{id}
// @Summary Get a job listing
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/jobs/{id} [get]
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	job, err := h.service.Get(r.Context(), id, isAdmin(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobModelToResponse(job))
}

// Create handles POST /api/jobs (admin)
// @Summary Post a job listing
// @Tags jobs
// @Accept json
// @Produce json
// @Success 201 {object} JobResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /api/jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req CreateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := h.service.Create(r.Context(), claims.UserID, services.CreateJobInput{
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		Salary:       req.Salary,
		Description:  req.Description,
		Requirements: req.Requirements,
		Benefits:     req.Benefits,
		Type:         req.Type,
		Published:    req.Published,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views.Invalidate(w, views.Jobs)
	writeJSON(w, http.StatusCreated, jobModelToResponse(job))
}

// Archive handles POST /api/jobs/{id}/archive (admin)
// @Summary Archive a job listing
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobResponse
// @Router /api/jobs/{id}/archive [post]
func (h *JobHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.service.Archive)
}

// Restore handles POST /api/jobs/{id}/restore (admin)
// @Summary Restore an archived job listing
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobResponse
// @Router /api/jobs/{id}/restore [post]
func (h *JobHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.service.Restore)
}

func (h *JobHandler) setActive(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, id string) (*models.Job, error)) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	job, err := op(r.Context(), claims.UserID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Archival moves applications between buckets
	views.Invalidate(w, views.Jobs, views.Applications)
	writeJSON(w, http.StatusOK, jobModelToResponse(job))
}
