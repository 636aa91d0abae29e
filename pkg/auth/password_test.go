package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{"valid strong password", "SecureP@ss123", false},
		{"valid with symbols", "MyP@ssw0rd!", false},
		{"too short", "Pass@1", true},
		{"missing uppercase", "securepass@123", true},
		{"missing lowercase", "SECUREPASS@123", true},
		{"missing digit", "SecurePass@xyz", true},
		{"missing special character", "SecurePass123", true},
		{"common password rejected", "password123", true},
		{"too long", "Aa1@" + strings.Repeat("x", MaxPasswordLen), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)

			if tt.shouldFail {
				require.Error(t, err)
				// Specific requirements are never exposed
				assert.Equal(t, "invalid password", err.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	password := "SecureP@ss123"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.NoError(t, ComparePassword(hash, password))
	assert.Error(t, ComparePassword(hash, "WrongPassword123!"))
}

func TestHashPassword_EmptyRejected(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestGenerateCode(t *testing.T) {
	const alphabet = "ABC234"

	code, err := GenerateCode(alphabet, 8)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
	}
}

func TestGenerateCode_InvalidParameters(t *testing.T) {
	_, err := GenerateCode("", 8)
	assert.Error(t, err)

	_, err = GenerateCode("ABC", 0)
	assert.Error(t, err)
}
