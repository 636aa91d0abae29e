package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/pkg/auth"
	"github.com/skip2/go-qrcode"
)

const (
	// ReferralCodeAlphabet omits characters that are easy to misread (0/O, 1/I/L)
	ReferralCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	ReferralCodeLength   = 8

	referralInsertAttempts = 5
	defaultQRSize          = 256
)

// WellFormedReferralCode reports whether code could have been issued by this service
func WellFormedReferralCode(code string) bool {
	if len(code) != ReferralCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(ReferralCodeAlphabet, c) {
			return false
		}
	}
	return true
}

// ReferralRepository defines referral code persistence
type ReferralRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.ReferralCode, error)
	InsertIfAbsent(ctx context.Context, userID, code string) (*models.ReferralCode, error)
}

// ReferralUserRepository is the user access the referral service needs
type ReferralUserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ReferralService issues one stable referral code per user
type ReferralService struct {
	codes    ReferralRepository
	users    ReferralUserRepository
	baseURL  string
	generate func() (string, error)
	logger   *slog.Logger
}

// NewReferralService creates a new ReferralService; baseURL prefixes share links
func NewReferralService(codes ReferralRepository, users ReferralUserRepository, baseURL string, logger *slog.Logger) *ReferralService {
	return &ReferralService{
		codes:   codes,
		users:   users,
		baseURL: baseURL,
		generate: func() (string, error) {
			return auth.GenerateCode(ReferralCodeAlphabet, ReferralCodeLength)
		},
		logger: logger,
	}
}

// EnsureReferralCode returns the user's code, creating it on first use.
// Concurrent callers for the same user all receive the single stored code.
func (s *ReferralService) EnsureReferralCode(ctx context.Context, userID string) (*models.ReferralCode, error) {
	existing, err := s.codes.GetByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to get referral code", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	for attempt := 1; attempt <= referralInsertAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			s.logger.Error("failed to generate referral code", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		created, err := s.codes.InsertIfAbsent(ctx, userID, code)
		switch {
		case err == nil && created != nil:
			s.logger.Info("referral code issued", slog.String("user_id", userID))
			return created, nil
		case err == nil:
			// Another request created the user's code first
			winner, err := s.codes.GetByUserID(ctx, userID)
			if err != nil {
				s.logger.Error("failed to re-read referral code", slog.String("user_id", userID), slog.Any("error", err))
				return nil, models.ErrInternalServer
			}
			return winner, nil
		case errors.Is(err, models.ErrConflict):
			s.logger.Debug("referral code collision, retrying", slog.Int("attempt", attempt))
			continue
		default:
			s.logger.Error("failed to store referral code", slog.String("user_id", userID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	s.logger.Error("exhausted referral code attempts", slog.String("user_id", userID))
	return nil, models.ErrInternalServer
}

// ShareLink is the registration URL carrying code
func (s *ReferralService) ShareLink(code string) string {
	return fmt.Sprintf("%s/register?ref=%s", s.baseURL, url.QueryEscape(code))
}

// QRCode renders the user's share link as a PNG, issuing a code if needed
func (s *ReferralService) QRCode(ctx context.Context, userID string, size int) ([]byte, error) {
	rc, err := s.EnsureReferralCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		size = defaultQRSize
	}

	png, err := qrcode.Encode(s.ShareLink(rc.Code), qrcode.Medium, size)
	if err != nil {
		s.logger.Error("failed to render referral QR code", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return png, nil
}
