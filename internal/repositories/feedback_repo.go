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

type FeedbackRepository struct {
	db *database.DB
}

func NewFeedbackRepository(db *database.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

const feedbackColumns = `id, user_id, rating, subject, category, comment, status, admin_response, created_at, updated_at`

func scanFeedbackRow(scanner rowScanner) (*models.Feedback, error) {
	var fb models.Feedback

	err := scanner.Scan(
		&fb.ID, &fb.UserID, &fb.Rating, &fb.Subject, &fb.Category, &fb.Comment, &fb.Status,
		&fb.AdminResponse, &fb.CreatedAt, &fb.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &fb, nil
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {
	fb.ID = uuid.New().String()
	now := time.Now()
	fb.CreatedAt = now
	fb.UpdatedAt = now
	fb.Status = models.FeedbackStatusReceived

	query := `
		INSERT INTO feedback (id, user_id, rating, subject, category, comment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + feedbackColumns

	return scanFeedbackRow(r.db.Pool.QueryRow(ctx, query,
		fb.ID, fb.UserID, fb.Rating, fb.Subject, fb.Category, fb.Comment, fb.Status, fb.CreatedAt, fb.UpdatedAt,
	))
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*models.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE id = $1`
	return scanFeedbackRow(r.db.Pool.QueryRow(ctx, query, id))
}

// List returns feedback newest first; an empty status returns everything.
func (r *FeedbackRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error) {
	query := `
		SELECT ` + feedbackColumns + ` FROM feedback
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Feedback, 0)
	for rows.Next() {
		fb, err := scanFeedbackRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, fb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// Respond updates status and admin response; notify, when non-nil, is written in the same transaction.
func (r *FeedbackRepository) Respond(ctx context.Context, id, status string, response *string, notify *models.Notification) (*models.Feedback, error) {
	var updated *models.Feedback

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanFeedbackRow(tx.QueryRow(ctx, `
			UPDATE feedback SET status = $1, admin_response = COALESCE($2, admin_response), updated_at = $3
			WHERE id = $4
			RETURNING `+feedbackColumns,
			status, response, time.Now(), id,
		))
		if err != nil {
			return err
		}

		if notify != nil && updated.UserID != nil {
			notify.UserID = *updated.UserID
			_, err = insertNotification(ctx, tx, notify)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
