package accounts

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	// DefaultResumeTokenTTL is the lifetime of session resume tokens.
	DefaultResumeTokenTTL = 168 * time.Hour
	// DefaultActionTokenTTL is the lifetime of email-bound action tokens
	// (verification, password reset).
	DefaultActionTokenTTL = time.Hour
)

// Config carries the process-wide configuration for an Accounts service.
// It is read at construction and treated as immutable afterwards.
type Config struct {
	// SigningKey is the symmetric secret used to sign and verify tokens.
	SigningKey string
	// BaseURL is the address mailed action links are built against, as
	// BaseURL?<purpose>=<token>.
	BaseURL string
	// RequireEmailVerification blocks login on addresses that have not been
	// verified yet.
	RequireEmailVerification bool
	// ValidateCreate is invoked on account creation before any storage
	// write. Nil selects DefaultValidateCreate.
	ValidateCreate func(in CreateAccountInput) error
	// ResumeTokenTTL overrides DefaultResumeTokenTTL when positive.
	ResumeTokenTTL time.Duration
	// ActionTokenTTL overrides DefaultActionTokenTTL when positive.
	ActionTokenTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.ResumeTokenTTL <= 0 {
		c.ResumeTokenTTL = DefaultResumeTokenTTL
	}
	if c.ActionTokenTTL <= 0 {
		c.ActionTokenTTL = DefaultActionTokenTTL
	}
	if c.ValidateCreate == nil {
		c.ValidateCreate = DefaultValidateCreate
	}
	return c
}

// DefaultValidateCreate checks the email shape when one is given. Identifier
// and password presence are enforced separately by CreateAccount, which
// rejects before this hook runs. Callers wanting stricter rules (password
// length, username shape) replace the hook in Config.
func DefaultValidateCreate(in CreateAccountInput) error {
	return validation.Errors{
		"email":    validation.Validate(in.Email, is.Email),
		"username": validation.Validate(in.Username, validation.Length(0, 254)),
	}.Filter()
}
