package accounts_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestTokenPurposeValid(t *testing.T) {
	tests := []struct {
		purpose accounts.TokenPurpose
		valid   bool
	}{
		{accounts.PurposeResume, true},
		{accounts.PurposeVerifyEmail, true},
		{accounts.PurposeResetPassword, true},
		{accounts.TokenPurpose(""), false},
		{accounts.TokenPurpose("login"), false},
		{accounts.TokenPurpose("Resume"), false},
	}

	for _, tt := range tests {
		t.Run(tt.purpose.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.purpose.Valid())
		})
	}
}

func TestTokenPurposeEmailBound(t *testing.T) {
	assert.False(t, accounts.PurposeResume.EmailBound())
	assert.True(t, accounts.PurposeVerifyEmail.EmailBound())
	assert.True(t, accounts.PurposeResetPassword.EmailBound())
}

func TestTokenClaimsAccessors(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	expires := issued.Add(time.Hour)

	claims := &accounts.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Purpose: accounts.PurposeVerifyEmail,
		Email:   "a@x.com",
	}

	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, issued, claims.IssuedAtTime())
	assert.Equal(t, expires, claims.Expires())

	t.Run("zero times when unset", func(t *testing.T) {
		empty := &accounts.TokenClaims{}
		assert.True(t, empty.Expires().IsZero())
		assert.True(t, empty.IssuedAtTime().IsZero())
	})
}
