package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/repositories"
	pkgauth "github.com/BradenHooton/jobboard/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Str0ng!Passw0rd"

func newTestAuthService(users *MockUserRepository, sessions *MockSessionRepository, notifier *MockNotifier) (*AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret-with-enough-length", time.Hour)
	return NewAuthService(users, sessions, tokens, auth.NewLoginDelay(0, 0), notifier, newTestLogger()), tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	var stored *models.User
	var gotCode string
	users := &MockUserRepository{
		RegisterFunc: func(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error) {
			user.ID = "user-1"
			stored, gotCode = user, referralCode
			return user, nil, nil
		},
	}
	svc, tokens := newTestAuthService(users, &MockSessionRepository{}, &MockNotifier{})

	result, err := svc.Register(context.Background(), RegisterInput{
		Username: " alice ",
		Email:    "Alice@Example.com",
		Password: testPassword,
		Timezone: "Europe/Berlin",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.Equal(t, "Europe/Berlin", stored.Timezone)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.Empty(t, gotCode)
	assert.NoError(t, pkgauth.ComparePassword(stored.PasswordHash, testPassword))

	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, result.ExpiresAt.After(time.Now()))
}

func TestAuthService_Register_WithReferral(t *testing.T) {
	users := &MockUserRepository{
		RegisterFunc: func(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error) {
			user.ID = "user-2"
			user.BankedCredits = models.ReferralBonusCredits
			return user, &repositories.ReferralRedemption{
				Code:           referralCode,
				ReferrerID:     "user-1",
				RefereeID:      "user-2",
				RefereeBalance: models.ReferralBonusCredits,
			}, nil
		},
	}
	notifier := &MockNotifier{}
	svc, _ := newTestAuthService(users, &MockSessionRepository{}, notifier)

	result, err := svc.Register(context.Background(), RegisterInput{
		Username:     "bob",
		Email:        "bob@example.com",
		Password:     testPassword,
		ReferralCode: "ABCD2345",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ReferralBonusCredits, result.User.BankedCredits)
	assert.Equal(t, []string{"user-1"}, notifier.Evicted)
}

func TestAuthService_Register_MalformedReferralCodeIsIgnored(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"too long", strings.Repeat("X", 17)},
		{"too short", "ABC"},
		{"ambiguous characters", "ABCD0O1I"},
		{"punctuation", "ABCD-234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCode := "unset"
			users := &MockUserRepository{
				RegisterFunc: func(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error) {
					user.ID = "user-3"
					gotCode = referralCode
					return user, nil, nil
				},
			}
			notifier := &MockNotifier{}
			svc, _ := newTestAuthService(users, &MockSessionRepository{}, notifier)

			result, err := svc.Register(context.Background(), RegisterInput{
				Username:     "carol",
				Email:        "carol@example.com",
				Password:     testPassword,
				ReferralCode: tt.code,
			})

			require.NoError(t, err)
			assert.Empty(t, gotCode, "malformed code must not reach redemption")
			assert.Zero(t, result.User.BankedCredits)
			assert.Empty(t, notifier.Evicted)
		})
	}
}

func TestAuthService_Register_ReferralCodeIsNormalised(t *testing.T) {
	var gotCode string
	users := &MockUserRepository{
		RegisterFunc: func(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error) {
			user.ID = "user-4"
			gotCode = referralCode
			return user, nil, nil
		},
	}
	svc, _ := newTestAuthService(users, &MockSessionRepository{}, &MockNotifier{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:     "dave",
		Email:        "dave@example.com",
		Password:     testPassword,
		ReferralCode: " abcd2345 ",
	})

	require.NoError(t, err)
	assert.Equal(t, "ABCD2345", gotCode)
}

func TestAuthService_Register_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		input     RegisterInput
		repoErr   error
		wantField string
		wantErr   error
	}{
		{
			name:      "weak password",
			input:     RegisterInput{Username: "alice", Email: "a@example.com", Password: "password"},
			wantField: "password",
		},
		{
			name:      "bad email",
			input:     RegisterInput{Username: "alice", Email: "not-an-email", Password: testPassword},
			wantField: "email",
		},
		{
			name:      "short username",
			input:     RegisterInput{Username: "al", Email: "a@example.com", Password: testPassword},
			wantField: "username",
		},
		{
			name:      "unknown timezone",
			input:     RegisterInput{Username: "alice", Email: "a@example.com", Password: testPassword, Timezone: "Mars/Olympus"},
			wantField: "timezone",
		},
		{
			name:    "duplicate account",
			input:   RegisterInput{Username: "alice", Email: "a@example.com", Password: testPassword},
			repoErr: models.ErrConflict,
			wantErr: models.ErrConflict,
		},
		{
			name:    "database failure",
			input:   RegisterInput{Username: "alice", Email: "a@example.com", Password: testPassword},
			repoErr: errors.New("connection refused"),
			wantErr: models.ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserRepository{
				RegisterFunc: func(ctx context.Context, user *models.User, referralCode string) (*models.User, *repositories.ReferralRedemption, error) {
					if tt.repoErr != nil {
						return nil, nil, tt.repoErr
					}
					return user, nil, nil
				},
			}
			svc, _ := newTestAuthService(users, &MockSessionRepository{}, &MockNotifier{})

			_, err := svc.Register(context.Background(), tt.input)

			require.Error(t, err)
			if tt.wantField != "" {
				var ve *models.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantField, ve.Field)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := pkgauth.HashPassword(testPassword)
	require.NoError(t, err)

	users := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == "alice@example.com" {
				return NewTestUserWithPassword("user-1", email, "alice", hash), nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc, tokens := newTestAuthService(users, &MockSessionRepository{}, &MockNotifier{})

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "alice@example.com", testPassword)
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, models.RoleUser, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "alice@example.com", "Wr0ng!Password")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestAuthService_Logout(t *testing.T) {
	var revokedJTI, revokedUser string
	var revokedUntil time.Time
	sessions := &MockSessionRepository{
		RevokeFunc: func(ctx context.Context, jti, userID string, expiresAt time.Time) error {
			revokedJTI, revokedUser, revokedUntil = jti, userID, expiresAt
			return nil
		},
	}
	svc, tokens := newTestAuthService(&MockUserRepository{}, sessions, &MockNotifier{})

	token, claims, err := tokens.GenerateSessionToken(NewTestUser("user-1", "a@example.com", "alice"))
	require.NoError(t, err)

	svc.Logout(context.Background(), token)

	assert.Equal(t, claims.ID, revokedJTI)
	assert.Equal(t, "user-1", revokedUser)
	assert.True(t, revokedUntil.Equal(claims.ExpiresAt.Time))
}

func TestAuthService_Logout_WithoutUsableSession(t *testing.T) {
	sessions := &MockSessionRepository{
		RevokeFunc: func(ctx context.Context, jti, userID string, expiresAt time.Time) error {
			t.Fatal("nothing to revoke")
			return nil
		},
	}
	svc, _ := newTestAuthService(&MockUserRepository{}, sessions, &MockNotifier{})

	svc.Logout(context.Background(), "")
	svc.Logout(context.Background(), "not-a-jwt")
}

func TestAuthService_Logout_StoreFailureIsSwallowed(t *testing.T) {
	sessions := &MockSessionRepository{
		RevokeFunc: func(ctx context.Context, jti, userID string, expiresAt time.Time) error {
			return errors.New("database down")
		},
	}
	svc, tokens := newTestAuthService(&MockUserRepository{}, sessions, &MockNotifier{})

	token, _, err := tokens.GenerateSessionToken(NewTestUser("user-1", "a@example.com", "alice"))
	require.NoError(t, err)

	assert.NotPanics(t, func() { svc.Logout(context.Background(), token) })
}

func TestAuthService_Me(t *testing.T) {
	svc, _ := newTestAuthService(usersReturning(NewTestUser("user-1", "a@example.com", "alice")), &MockSessionRepository{}, &MockNotifier{})

	user, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	svc, _ = newTestAuthService(&MockUserRepository{}, &MockSessionRepository{}, &MockNotifier{})
	_, err = svc.Me(context.Background(), "deleted")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
