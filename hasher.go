package accounts

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost is fixed; the sha256 pre-digest bounds the input length so the
// cost factor is the only tuning knob.
const bcryptCost = 10

// Digest applies the deterministic pre-hash used on every plaintext password
// before the slow hash. It turns unbounded-length input into a fixed-length
// hex string, so bcrypt never truncates and hashing and verification stay
// symmetric.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// HashPassword generates a salted bcrypt hash of the pre-digested password.
// The result is self-describing: it embeds the algorithm, cost, and salt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(Digest(password)), bcryptCost)
	return string(h), err
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash using bcrypt's constant-time comparison. A mismatch returns
// ErrMismatchedHashAndPassword; only a malformed stored hash returns any
// other error.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(Digest(password))); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
