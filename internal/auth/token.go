package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeSession marks the JWT carried by the session cookie
const TokenTypeSession = "session"

// TokenManager handles session token generation and validation
type TokenManager struct {
	secret     string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, sessionTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     secret,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// SessionTTL is the lifetime of newly issued sessions
func (tm *TokenManager) SessionTTL() time.Duration {
	return tm.sessionTTL
}

// GenerateSessionToken signs a session token for user with a fresh JTI
func (tm *TokenManager) GenerateSessionToken(user *models.User) (string, *models.TokenClaims, error) {
	now := tm.now()

	claims := &models.TokenClaims{
		Type:   TokenTypeSession,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, claims, nil
}

// ValidateToken verifies a token and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	}, jwt.WithTimeFunc(tm.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Type != TokenTypeSession {
		return nil, fmt.Errorf("invalid token type: %q", claims.Type)
	}

	if claims.ID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token: missing identifiers")
	}

	return claims, nil
}
