package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/repositories"
	"github.com/BradenHooton/jobboard/pkg/logger"
	pkgauth "github.com/BradenHooton/jobboard/pkg/auth"
)

// AuthUserRepository is the user access the auth service needs
type AuthUserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Register(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error)
}

// SessionRepository records logged-out sessions
type SessionRepository interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

// RegisterInput is a new account request
type RegisterInput struct {
	Username     string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required"`
	Timezone     string `json:"timezone" validate:"omitempty,max=64"`
	ReferralCode string `json:"referralCode"`
}

// AuthResult is a signed-in user and their session token
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles registration and cookie sessions
type AuthService struct {
	users    AuthUserRepository
	sessions SessionRepository
	tokens   *auth.TokenManager
	delay    *auth.LoginDelay
	notifier Notifier
	audit    *logger.AuditLogger
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users AuthUserRepository, sessions SessionRepository, tokens *auth.TokenManager, delay *auth.LoginDelay, notifier Notifier, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		delay:    delay,
		notifier: notifier,
		audit:    logger.NewAuditLogger(log),
		logger:   log,
	}
}

// Register creates the account and, when a valid referral code is supplied, credits
// both users in the same transaction. Unknown or self-referral codes are ignored.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Timezone = strings.TrimSpace(input.Timezone)
	input.ReferralCode = strings.ToUpper(strings.TrimSpace(input.ReferralCode))
	if input.ReferralCode != "" && !WellFormedReferralCode(input.ReferralCode) {
		s.logger.Debug("ignoring malformed referral code", slog.Int("length", len(input.ReferralCode)))
		input.ReferralCode = ""
	}

	if err := ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := pkgauth.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError("password", err.Error())
	}
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return nil, models.NewValidationError("timezone", "must be a valid IANA timezone")
		}
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, redemption, err := s.users.Register(ctx, &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Timezone:     input.Timezone,
	}, input.ReferralCode)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.audit.LogAuthAttempt(logger.AuditEvent{EventType: "register", Success: false, FailureReason: "duplicate"})
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to register user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if redemption != nil {
		s.notifier.Evict(redemption.ReferrerID)
		s.logger.Info("referral redeemed",
			slog.String("referrer_id", redemption.ReferrerID),
			slog.String("referee_id", redemption.RefereeID))
	}

	s.audit.LogAuthAttempt(logger.AuditEvent{EventType: "register", UserID: user.ID, Success: true})

	return s.issue(user)
}

// Login verifies credentials. Failures take a uniform minimum time.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	start := time.Now()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user == nil || pkgauth.ComparePassword(user.PasswordHash, password) != nil {
		s.delay.WaitFrom(start, false)
		s.audit.LogAuthAttempt(logger.AuditEvent{
			EventType:     "login",
			Success:       false,
			FailureReason: "invalid_credentials",
			Metadata:      map[string]string{"email": logger.SanitizedEmail(email)},
		})
		return nil, models.ErrUnauthorized
	}

	s.audit.LogAuthAttempt(logger.AuditEvent{EventType: "login", UserID: user.ID, Success: true})
	return s.issue(user)
}

// Logout revokes the session behind token. Missing, invalid or already revoked
// tokens are not errors: logging out always succeeds from the caller's view.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		s.logger.Debug("logout with unusable session", slog.Any("error", err))
		return
	}

	expiresAt := time.Now().Add(s.tokens.SessionTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.sessions.Revoke(ctx, claims.ID, claims.UserID, expiresAt); err != nil {
		s.logger.Error("failed to revoke session", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return
	}

	s.audit.LogAuthAttempt(logger.AuditEvent{EventType: "logout", UserID: claims.UserID, Success: true})
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := s.tokens.GenerateSessionToken(user)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}
