package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, user_id, job_id, reason, comments, status, created_at, reviewed_at, reviewed_by, admin_notes`

func scanReportRow(scanner rowScanner) (*models.ReportedJob, error) {
	var report models.ReportedJob

	err := scanner.Scan(
		&report.ID, &report.UserID, &report.JobID, &report.Reason, &report.Comments, &report.Status,
		&report.CreatedAt, &report.ReviewedAt, &report.ReviewedBy, &report.AdminNotes,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &report, nil
}

func (r *ReportRepository) Create(ctx context.Context, report *models.ReportedJob) (*models.ReportedJob, error) {
	report.ID = uuid.New().String()
	report.CreatedAt = time.Now()
	report.Status = models.ReportStatusPending

	query := `
		INSERT INTO reported_jobs (id, user_id, job_id, reason, comments, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + reportColumns

	return scanReportRow(r.db.Pool.QueryRow(ctx, query,
		report.ID, report.UserID, report.JobID, report.Reason, report.Comments, report.Status, report.CreatedAt,
	))
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportedJob, error) {
	query := `SELECT ` + reportColumns + ` FROM reported_jobs WHERE id = $1`
	return scanReportRow(r.db.Pool.QueryRow(ctx, query, id))
}

// List returns reports newest first; an empty status returns every report.
func (r *ReportRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.ReportedJob, error) {
	query := `
		SELECT ` + reportColumns + ` FROM reported_jobs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.ReportedJob, 0)
	for rows.Next() {
		report, err := scanReportRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reports, nil
}

// MarkReviewed closes the report and, in the same transaction, optionally archives the
// reported job and writes the reporter's notification.
func (r *ReportRepository) MarkReviewed(ctx context.Context, id, adminID string, notes *string, archiveJob bool, notify *models.Notification) (*models.ReportedJob, error) {
	var reviewed *models.ReportedJob

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		reviewed, err = scanReportRow(tx.QueryRow(ctx, `
			UPDATE reported_jobs SET status = $1, reviewed_at = $2, reviewed_by = $3, admin_notes = $4
			WHERE id = $5
			RETURNING `+reportColumns,
			models.ReportStatusReviewed, time.Now(), adminID, notes, id,
		))
		if err != nil {
			return err
		}

		if archiveJob {
			result, err := tx.Exec(ctx, `UPDATE jobs SET is_active = FALSE, updated_at = $1 WHERE id = $2`,
				time.Now(), reviewed.JobID)
			if err != nil {
				return database.MapPostgresError(err)
			}
			if result.RowsAffected() == 0 {
				return models.ErrNotFound
			}
		}

		if notify != nil {
			notify.UserID = reviewed.UserID
			if notify.Data == nil {
				notify.Data = models.NotificationData{}
			}
			notify.Data["reportId"] = reviewed.ID
			notify.Data["jobId"] = reviewed.JobID
			_, err = insertNotification(ctx, tx, notify)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return reviewed, nil
}
