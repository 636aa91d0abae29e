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
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `u.id, u.username, u.email, u.password_hash, u.role, u.timezone,
	u.last_credit_reset, u.banked_credits, rc.code, u.created_at, u.updated_at`

const userFrom = `FROM users u LEFT JOIN referral_codes rc ON rc.user_id = u.id`

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var timezone *string

	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &timezone,
		&user.LastCreditReset, &user.BankedCredits, &user.ReferralCode,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if timezone != nil {
		user.Timezone = *timezone
	}

	return &user, nil
}

// scanUserRows iterates through rows and scans each into User models
func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE u.id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` ` + userFrom + ` WHERE LOWER(u.email) = LOWER($1)`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` ` + userFrom + ` ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

// Register inserts the user and, when referralCode is non-empty, redeems it in the
// same transaction. The returned redemption is nil when no code was applied.
func (r *UserRepository) Register(ctx context.Context, user *models.User, referralCode string) (*models.User, *ReferralRedemption, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := `
		INSERT INTO users (id, username, email, password_hash, role, timezone, banked_credits, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
		RETURNING id, username, email, password_hash, role, timezone, last_credit_reset, banked_credits,
			NULL::varchar, created_at, updated_at
	`

	var created *models.User
	var redemption *ReferralRedemption

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = scanUserRow(tx.QueryRow(ctx, query,
			user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
			nullableString(user.Timezone), user.CreatedAt, user.UpdatedAt,
		))
		if err != nil {
			return err
		}

		if referralCode == "" {
			return nil
		}

		redemption, err = redeemReferral(ctx, tx, referralCode, created.ID)
		if err != nil {
			return err
		}
		if redemption != nil {
			created.BankedCredits = redemption.RefereeBalance
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return created, redemption, nil
}

// UpdateTimezone stores the user's IANA zone; an empty name clears it.
func (r *UserRepository) UpdateTimezone(ctx context.Context, id, timezone string) (*models.User, error) {
	query := `UPDATE users SET timezone = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, nullableString(timezone), time.Now(), id)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return nil, models.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// TouchCreditReset records the start of the user's current quota window.
// The write is skipped when the stored value already matches.
func (r *UserRepository) TouchCreditReset(ctx context.Context, id string, windowStart time.Time) error {
	query := `
		UPDATE users SET last_credit_reset = $1
		WHERE id = $2 AND (last_credit_reset IS NULL OR last_credit_reset <> $1)
	`

	_, err := r.db.Pool.Exec(ctx, query, windowStart, id)
	return database.MapPostgresError(err)
}
