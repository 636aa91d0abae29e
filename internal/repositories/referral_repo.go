package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReferralRedemption describes a referral code applied at registration.
type ReferralRedemption struct {
	Code           string
	ReferrerID     string
	RefereeID      string
	RefereeBalance int
	Notification   *models.Notification
}

type ReferralRepository struct {
	db *database.DB
}

func NewReferralRepository(db *database.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func scanReferralCodeRow(scanner rowScanner) (*models.ReferralCode, error) {
	var rc models.ReferralCode

	if err := scanner.Scan(&rc.ID, &rc.UserID, &rc.Code, &rc.UsageCount, &rc.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &rc, nil
}

func (r *ReferralRepository) GetByUserID(ctx context.Context, userID string) (*models.ReferralCode, error) {
	query := `SELECT id, user_id, code, usage_count, created_at FROM referral_codes WHERE user_id = $1`
	return scanReferralCodeRow(r.db.Pool.QueryRow(ctx, query, userID))
}

// InsertIfAbsent stores code for the user unless the user already has one.
// It returns (nil, nil) when another writer won the race for the same user, and
// models.ErrConflict when the code itself collides with another user's code.
func (r *ReferralRepository) InsertIfAbsent(ctx context.Context, userID, code string) (*models.ReferralCode, error) {
	query := `
		INSERT INTO referral_codes (id, user_id, code, usage_count, created_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, code, usage_count, created_at
	`

	rc, err := scanReferralCodeRow(r.db.Pool.QueryRow(ctx, query, uuid.New().String(), userID, code, time.Now()))
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return rc, err
}

// redeemReferral applies code for a newly registered referee on q. Unknown codes and
// self-referrals are ignored and return (nil, nil).
func redeemReferral(ctx context.Context, q database.Querier, code, refereeID string) (*ReferralRedemption, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var referrerID string
	err := q.QueryRow(ctx, `
		UPDATE referral_codes SET usage_count = usage_count + 1
		WHERE code = $1 AND user_id <> $2
		RETURNING user_id
	`, code, refereeID).Scan(&referrerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if _, err := applyCreditDelta(ctx, q, referrerID, models.ReferralBonusCredits, models.CreditReasonReferralBonus, nil, nil); err != nil {
		return nil, err
	}
	refereeTxn, err := applyCreditDelta(ctx, q, refereeID, models.ReferralBonusCredits, models.CreditReasonReferralBonus, nil, nil)
	if err != nil {
		return nil, err
	}

	notification, err := insertNotification(ctx, q, &models.Notification{
		UserID: referrerID,
		Type:   models.NotificationReferralUsed,
		Title:  "Your referral code was used",
		Body:   "Someone joined with your referral code. You both earned bonus credits.",
		Data:   models.NotificationData{"code": code},
	})
	if err != nil {
		return nil, err
	}

	return &ReferralRedemption{
		Code:           code,
		ReferrerID:     referrerID,
		RefereeID:      refereeID,
		RefereeBalance: refereeTxn.BalanceAfter,
		Notification:   notification,
	}, nil
}
