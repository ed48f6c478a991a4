package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose names the single action a signed token authorizes. It is a
// closed set: every consumption site matches against it exhaustively, so a
// token issued for one purpose can never drive another operation.
type TokenPurpose string

const (
	// PurposeResume proves an already-authenticated session. Login and every
	// successful token consumption issue a fresh resume token.
	PurposeResume TokenPurpose = "resume"
	// PurposeVerifyEmail authorizes marking the bound email address verified.
	PurposeVerifyEmail TokenPurpose = "verifyEmail"
	// PurposeResetPassword authorizes replacing the stored password hash.
	PurposeResetPassword TokenPurpose = "resetPassword"
)

// Valid reports whether p is one of the known purposes.
func (p TokenPurpose) Valid() bool {
	switch p {
	case PurposeResume, PurposeVerifyEmail, PurposeResetPassword:
		return true
	}
	return false
}

// EmailBound reports whether tokens with this purpose must carry the target
// email address in their claims. A user can hold several addresses; the bound
// address is the only one the token acts on.
func (p TokenPurpose) EmailBound() bool {
	return p == PurposeVerifyEmail || p == PurposeResetPassword
}

func (p TokenPurpose) String() string {
	return string(p)
}

// TokenClaims is the claim set signed inside a token: the subject user id,
// the authorized purpose, and, for email-bound purposes, the target address.
// The signature covers every field; altering any of them invalidates it.
type TokenClaims struct {
	jwt.RegisteredClaims
	Purpose TokenPurpose `json:"purpose,omitempty"`
	Email   string       `json:"email,omitempty"`
}

// UserID returns the subject user id.
func (c *TokenClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the embedded expiry, zero if unset.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAtTime returns the embedded issuance time, zero if unset.
func (c *TokenClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
