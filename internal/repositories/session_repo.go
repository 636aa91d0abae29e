package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/jobboard/internal/database"
)

type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Revoke adds a session to the revocation list. Revoking twice is a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_sessions (jti, user_id, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING
	`

	_, err := r.db.Pool.Exec(ctx, query, jti, userID, expiresAt, time.Now())
	return database.MapPostgresError(err)
}

// IsRevoked checks if a session is in the revocation list
func (r *SessionRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_sessions WHERE jti = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, jti).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}

	return exists, nil
}

// CleanupExpired removes revocations whose sessions would have expired anyway (call periodically)
func (r *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM revoked_sessions WHERE expires_at < $1`

	result, err := r.db.Pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
