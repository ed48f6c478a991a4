package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// Token is the result of issuing: the signed string, its declared expiry,
// and a redacted user summary safe to return to the caller.
type Token struct {
	Value   string       `json:"token"`
	Expires time.Time    `json:"expires"`
	User    *UserSummary `json:"user,omitempty"`
}

// TokenIssuer mints purpose-bound tokens. Issuance has no side effects
// beyond signing; given the same inputs it is deterministic except for the
// embedded issued-at time.
type TokenIssuer struct {
	codec *TokenCodec
	now   func() time.Time
}

// IssuerOption customizes a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithIssuerClock injects a custom clock (useful for tests).
func WithIssuerClock(clock func() time.Time) IssuerOption {
	return func(ti *TokenIssuer) {
		if clock != nil {
			ti.now = clock
		}
	}
}

// NewTokenIssuer creates an issuer on top of the given codec.
func NewTokenIssuer(codec *TokenCodec, opts ...IssuerOption) *TokenIssuer {
	ti := &TokenIssuer{
		codec: codec,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ti)
		}
	}
	return ti
}

// Issue builds the claim set {subject, purpose, email?}, stamps
// expiry = now + ttl, and signs it. Email-bound purposes require the target
// address; the other purposes reject one.
func (ti *TokenIssuer) Issue(user *User, purpose TokenPurpose, ttl time.Duration, email string) (*Token, error) {
	if user == nil {
		return nil, goerrors.New("user is required", goerrors.CategoryBadInput)
	}
	if !purpose.Valid() {
		return nil, goerrors.New("unknown token purpose", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"purpose": purpose.String()})
	}
	if ttl <= 0 {
		return nil, goerrors.New("token TTL must be positive", goerrors.CategoryBadInput)
	}
	if purpose.EmailBound() && email == "" {
		return nil, goerrors.New("purpose requires a bound email", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"purpose": purpose.String()})
	}
	if !purpose.EmailBound() && email != "" {
		return nil, goerrors.New("purpose does not carry an email", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"purpose": purpose.String()})
	}

	issuedAt := ti.now()
	expires := issuedAt.Add(ttl)

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Purpose: purpose,
		Email:   email,
	}

	value, err := ti.codec.SignClaims(claims)
	if err != nil {
		return nil, err
	}

	return &Token{
		Value:   value,
		Expires: expires,
		User:    user.Summary(),
	}, nil
}
