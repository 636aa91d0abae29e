package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

type JobRepository struct {
	db *database.DB
}

func NewJobRepository(db *database.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, title, company, location, salary, description, requirements, benefits,
	type, is_active, published, created_at, updated_at`

func scanJobRow(scanner rowScanner) (*models.Job, error) {
	var job models.Job

	err := scanner.Scan(
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Salary, &job.Description,
		pq.Array(&job.Requirements), pq.Array(&job.Benefits),
		&job.Type, &job.IsActive, &job.Published, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if job.Requirements == nil {
		job.Requirements = []string{}
	}

	return &job, nil
}

func scanJobRows(rows pgx.Rows) ([]*models.Job, error) {
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return jobs, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJobRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByIDs loads every listed job regardless of visibility. Unknown ids are omitted.
func (r *JobRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Job, error) {
	if len(ids) == 0 {
		return []*models.Job{}, nil
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id::text = ANY($1)`

	rows, err := r.db.Pool.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}

	return scanJobRows(rows)
}

// List returns listings newest first. Without IncludeHidden only active, published jobs are returned.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if !filter.IncludeHidden {
		conditions = append(conditions, "is_active = TRUE", "published = TRUE")
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR company ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}

	return scanJobRows(rows)
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	job.ID = uuid.New().String()

	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `
		INSERT INTO jobs (id, title, company, location, salary, description, requirements, benefits,
			type, is_active, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + jobColumns

	var benefits interface{}
	if job.Benefits != nil {
		benefits = pq.Array(job.Benefits)
	}

	requirements := job.Requirements
	if requirements == nil {
		requirements = []string{}
	}

	return scanJobRow(r.db.Pool.QueryRow(ctx, query,
		job.ID, job.Title, job.Company, job.Location, job.Salary, job.Description,
		pq.Array(requirements), benefits,
		job.Type, job.IsActive, job.Published, job.CreatedAt, job.UpdatedAt,
	))
}

// SetActive archives (false) or restores (true) a listing.
func (r *JobRepository) SetActive(ctx context.Context, id string, active bool) (*models.Job, error) {
	query := `UPDATE jobs SET is_active = $1, updated_at = $2 WHERE id = $3 RETURNING ` + jobColumns
	return scanJobRow(r.db.Pool.QueryRow(ctx, query, active, time.Now(), id))
}
