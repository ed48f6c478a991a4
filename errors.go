package accounts

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

const (
	// TextCodeTokenExpired marks tokens rejected on the expiry check.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks tokens rejected on the signature or
	// structure check, including any mutation of a previously valid token.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeWrongPurpose marks tokens presented to an operation whose
	// required purpose does not match the signed one.
	TextCodeWrongPurpose = "WRONG_TOKEN_PURPOSE"
)

// ErrMissingIdentifier is returned when account creation has neither a
// username nor an email, or no password.
var ErrMissingIdentifier = goerrors.New("need to set a username or email", goerrors.CategoryBadInput).
	WithTextCode("MISSING_IDENTIFIER").
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateEmail is returned when the email is already registered.
var ErrDuplicateEmail = goerrors.New("user with this email already exists", goerrors.CategoryConflict).
	WithTextCode("DUPLICATE_EMAIL").
	WithCode(goerrors.CodeConflict)

// ErrUserNotFound is returned when no user matches the given id or email.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode("USER_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials is returned on a password mismatch during login.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailNotVerified is returned when login requires a verified email and
// the matched address is not verified.
var ErrEmailNotVerified = goerrors.New("email not verified", goerrors.CategoryAuth).
	WithTextCode("EMAIL_NOT_VERIFIED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when a token's embedded expiry has passed.
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token fails the signature or
// structure check.
var ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrWrongPurpose is returned when a valid token authorizes a different
// action than the one being invoked. The purpose check runs strictly after
// the signature and expiry checks.
var ErrWrongPurpose = goerrors.New("token issued for a different purpose", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongPurpose).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword is the typed mismatch result of
// ComparePasswordAndHash.
var ErrMismatchedHashAndPassword = errors.New("mismatched password and hash")

// IsTokenExpired reports whether err is the expiry half of token
// verification failure.
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenMalformed reports whether err is the signature/structure half of
// token verification failure.
func IsTokenMalformed(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

// IsAuthFailure reports whether err is any token verification failure.
// Callers that must not leak which half of validation failed can report this
// single predicate to untrusted clients; the underlying values stay distinct
// for diagnostics.
func IsAuthFailure(err error) bool {
	return IsTokenExpired(err) || IsTokenMalformed(err) || hasTextCode(err, TextCodeWrongPurpose)
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// isNotFound collapses the storage layer's not-found signals with our own.
func isNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		goerrors.IsNotFound(err) ||
		repository.IsRecordNotFound(err)
}
