package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/quota"
)

// CreditUserRepository is the user access the credit service needs
type CreditUserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	TouchCreditReset(ctx context.Context, id string, windowStart time.Time) error
}

// WindowApplicationRepository lists applications inside a quota window
type WindowApplicationRepository interface {
	ListAppliedBetween(ctx context.Context, userID string, start, end time.Time) ([]*models.Application, error)
}

// CreditRepository defines banked-credit ledger persistence
type CreditRepository interface {
	Adjust(ctx context.Context, userID string, delta int, reason string, actorID, note *string) (*models.CreditTransaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error)
}

// CreditSummary is what a user sees on the credits view
type CreditSummary struct {
	Quota         quota.Status
	BankedCredits int
}

// CreditService exposes the daily quota and the admin banked-credit ledger
type CreditService struct {
	users      CreditUserRepository
	apps       WindowApplicationRepository
	ledger     CreditRepository
	notifier   Notifier
	defaultLoc *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewCreditService creates a new CreditService
func NewCreditService(users CreditUserRepository, apps WindowApplicationRepository, ledger CreditRepository, notifier Notifier, defaultLoc *time.Location, logger *slog.Logger) *CreditService {
	return &CreditService{
		users:      users,
		apps:       apps,
		ledger:     ledger,
		notifier:   notifier,
		defaultLoc: defaultLoc,
		logger:     logger,
		now:        time.Now,
	}
}

// fallbackLocation prefers the caller's zone over the server default
func fallbackLocation(caller, def *time.Location) *time.Location {
	if caller != nil {
		return caller
	}
	return def
}

// Summary computes the user's remaining daily applications and banked balance.
// callerLoc is the request's zone, used only when the user has none configured.
func (s *CreditService) Summary(ctx context.Context, userID string, callerLoc *time.Location) (*CreditSummary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := s.now()
	loc := quota.ResolveLocation(user.Timezone, fallbackLocation(callerLoc, s.defaultLoc))
	start, end := quota.Window(now, loc)

	apps, err := s.apps.ListAppliedBetween(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("failed to list applications for quota", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	status := quota.Compute(user, apps, now, loc)

	if user.LastCreditReset == nil || !user.LastCreditReset.Equal(status.WindowStart) {
		if err := s.users.TouchCreditReset(ctx, userID, status.WindowStart); err != nil {
			s.logger.Warn("failed to record credit reset", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	return &CreditSummary{Quota: status, BankedCredits: user.BankedCredits}, nil
}

// AdjustBankedCredits applies an admin delta. The balance never drops below zero.
func (s *CreditService) AdjustBankedCredits(ctx context.Context, actorID, userID string, delta int, note string) (*models.CreditTransaction, error) {
	if delta == 0 {
		return nil, models.NewValidationError("delta", "must not be zero")
	}

	note = normalizeText(note)
	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	txn, err := s.ledger.Adjust(ctx, userID, delta, models.CreditReasonAdminAdjustment, &actorID, notePtr)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return nil, models.ErrNotFound
		case errors.Is(err, models.ErrInsufficientCredits):
			s.logger.Info("credit adjustment rejected",
				slog.String("user_id", userID),
				slog.Int("delta", delta))
			return nil, models.ErrInsufficientCredits
		}
		s.logger.Error("failed to adjust credits", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("banked credits adjusted",
		slog.String("user_id", userID),
		slog.String("actor_id", actorID),
		slog.Int("delta", delta),
		slog.Int("balance", txn.BalanceAfter))

	title := fmt.Sprintf("%s added to your balance", pluralCredits(delta))
	if delta < 0 {
		title = fmt.Sprintf("%s removed from your balance", pluralCredits(-delta))
	}
	// Notification failures do not undo the adjustment
	_ = s.notifier.Notify(ctx, &models.Notification{
		UserID: userID,
		Type:   models.NotificationCreditAdjustment,
		Title:  title,
		Body:   note,
		Data:   models.NotificationData{"transactionId": txn.ID},
	})

	return txn, nil
}

// ListTransactions returns the user's ledger newest first
func (s *CreditService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.CreditTransaction, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	txns, err := s.ledger.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list credit transactions", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return txns, nil
}

func pluralCredits(n int) string {
	if n == 1 {
		return "1 credit"
	}
	return fmt.Sprintf("%d credits", n)
}
