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

type CreditRepository struct {
	db *database.DB
}

func NewCreditRepository(db *database.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func scanCreditTransactionRow(scanner rowScanner) (*models.CreditTransaction, error) {
	var txn models.CreditTransaction

	err := scanner.Scan(
		&txn.ID, &txn.UserID, &txn.Delta, &txn.BalanceAfter, &txn.Reason,
		&txn.ActorID, &txn.Note, &txn.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &txn, nil
}

// applyCreditDelta changes a user's banked credits and writes the ledger row on q.
// The balance update is conditional, so it never drops below zero even under concurrency.
func applyCreditDelta(ctx context.Context, q database.Querier, userID string, delta int, reason string, actorID, note *string) (*models.CreditTransaction, error) {
	now := time.Now()

	var balance int
	err := q.QueryRow(ctx, `
		UPDATE users SET banked_credits = banked_credits + $1, updated_at = $2
		WHERE id = $3 AND banked_credits + $1 >= 0
		RETURNING banked_credits
	`, delta, now, userID).Scan(&balance)

	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return nil, database.MapPostgresError(err)
		}
		if !exists {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrInsufficientCredits
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return scanCreditTransactionRow(q.QueryRow(ctx, `
		INSERT INTO credit_transactions (id, user_id, delta, balance_after, reason, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, delta, balance_after, reason, actor_id, note, created_at
	`, uuid.New().String(), userID, delta, balance, reason, actorID, note, now))
}

// Adjust applies delta to the user's banked credits and records the ledger entry atomically.
func (r *CreditRepository) Adjust(ctx context.Context, userID string, delta int, reason string, actorID, note *string) (*models.CreditTransaction, error) {
	var txn *models.CreditTransaction

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		txn, err = applyCreditDelta(ctx, tx, userID, delta, reason, actorID, note)
		return err
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// ListByUser returns the user's ledger, newest first.
func (r *CreditRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	query := `
		SELECT id, user_id, delta, balance_after, reason, actor_id, note, created_at
		FROM credit_transactions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]*models.CreditTransaction, 0)
	for rows.Next() {
		txn, err := scanCreditTransactionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return txns, nil
}
