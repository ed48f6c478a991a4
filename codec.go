package accounts

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenCodec signs claim sets into compact, tamper-evident strings and
// parses them back, rejecting forged or expired input. It holds only the
// process-wide signing key: verification is purely computational, with no
// storage round-trip and, by the same token, no revocation list.
type TokenCodec struct {
	signingKey []byte
	logger     Logger
}

// NewTokenCodec creates a codec for the given symmetric signing key.
func NewTokenCodec(signingKey []byte, logger Logger) *TokenCodec {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenCodec{
		signingKey: signingKey,
		logger:     logger,
	}
}

// SignClaims signs the claim set with HS256 using the configured key.
func (tc *TokenCodec) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Validate parses a token string, verifying the signature and the embedded
// expiry. Expired tokens fail with ErrTokenExpired; anything else, including
// any mutation of a previously valid token, fails with a malformed-token
// error. Both stay distinguishable for diagnostics, and both satisfy
// IsAuthFailure for callers that report a single unified failure.
func (tc *TokenCodec) Validate(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("token codec encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		tc.logger.Error("token codec could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
