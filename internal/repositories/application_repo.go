package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ApplicationRepository struct {
	db *database.DB
}

func NewApplicationRepository(db *database.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, job_id, user_id, status, applied_at, cover_letter, application_data,
	withdrawn_at, updated_at`

func scanApplicationRow(scanner rowScanner) (*models.Application, error) {
	var app models.Application
	var status string

	err := scanner.Scan(
		&app.ID, &app.JobID, &app.UserID, &status, &app.AppliedAt, &app.CoverLetter,
		&app.ApplicationData, &app.WithdrawnAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	app.Status = models.ApplicationStatus(status)

	return &app, nil
}

func scanApplicationRows(rows pgx.Rows) ([]*models.Application, error) {
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplicationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return apps, nil
}

// CreateWithinQuota inserts app only if the user has filed fewer than limit applications
// in [windowStart, windowEnd). The user row is locked for the duration of the check so
// concurrent applies by the same user are serialised.
func (r *ApplicationRepository) CreateWithinQuota(ctx context.Context, app *models.Application, windowStart, windowEnd time.Time, limit int) (*models.Application, error) {
	app.ID = uuid.New().String()
	app.UpdatedAt = app.AppliedAt
	if app.Status == "" {
		app.Status = models.StatusApplied
	}
	if app.ApplicationData == nil {
		app.ApplicationData = models.ApplicationData{}
	}

	var created *models.Application

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var lockedID string
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, app.UserID).Scan(&lockedID)
		if err != nil {
			return database.MapPostgresError(err)
		}

		var used int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM applications
			WHERE user_id = $1 AND applied_at >= $2 AND applied_at < $3
		`, app.UserID, windowStart, windowEnd).Scan(&used)
		if err != nil {
			return database.MapPostgresError(err)
		}

		if used >= limit {
			return models.ErrQuotaExceeded
		}

		created, err = scanApplicationRow(tx.QueryRow(ctx, `
			INSERT INTO applications (id, job_id, user_id, status, applied_at, cover_letter, application_data, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+applicationColumns,
			app.ID, app.JobID, app.UserID, string(app.Status), app.AppliedAt, app.CoverLetter,
			app.ApplicationData, app.UpdatedAt,
		))
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplicationRow(r.db.Pool.QueryRow(ctx, query, id))
}

// ListByUser returns every application the user has filed, newest first.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 ORDER BY applied_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}

	return scanApplicationRows(rows)
}

// ListAppliedBetween returns the user's applications with applied_at in [start, end).
func (r *ApplicationRepository) ListAppliedBetween(ctx context.Context, userID string, start, end time.Time) ([]*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + ` FROM applications
		WHERE user_id = $1 AND applied_at >= $2 AND applied_at < $3
		ORDER BY applied_at
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}

	return scanApplicationRows(rows)
}

// Withdraw archives the application and stamps withdrawn_at. Already withdrawn rows
// are returned unchanged.
func (r *ApplicationRepository) Withdraw(ctx context.Context, id string, at time.Time) (*models.Application, error) {
	query := `
		UPDATE applications SET status = $1, withdrawn_at = $2, updated_at = $2
		WHERE id = $3 AND withdrawn_at IS NULL
		RETURNING ` + applicationColumns

	app, err := scanApplicationRow(r.db.Pool.QueryRow(ctx, query, string(models.StatusArchived), at, id))
	if errors.Is(err, models.ErrNotFound) {
		return r.GetByID(ctx, id)
	}
	return app, err
}

// UpdateStatus moves the application from -> to. It fails with ErrConflict when the
// stored status no longer matches from. notify, when non-nil, is written in the same
// transaction.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus, notify *models.Notification) (*models.Application, error) {
	var updated *models.Application

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanApplicationRow(tx.QueryRow(ctx, `
			UPDATE applications SET status = $1, updated_at = $2
			WHERE id = $3 AND LOWER(status) = $4
			RETURNING `+applicationColumns,
			string(to), time.Now(), id, string(from),
		))
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrConflict
		}
		if err != nil {
			return err
		}

		if notify != nil {
			_, err = insertNotification(ctx, tx, notify)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
