package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Accounts orchestrates credential verification and the token lifecycle:
// account creation, login, session resume, email verification, and password
// reset. Each token-consuming operation is a pure transition keyed on the
// presented token's purpose, matched against the operation being invoked.
type Accounts struct {
	store     UserStore
	codec     *TokenCodec
	issuer    *TokenIssuer
	mailer    Mailer
	templates MailTemplates
	cfg       Config
	logger    Logger
}

// NewAccounts returns an Accounts service over the given store. The config
// is copied and treated as immutable; optional collaborators are wired with
// the With* builders.
func NewAccounts(store UserStore, cfg Config) *Accounts {
	cfg = cfg.withDefaults()

	codec := NewTokenCodec([]byte(cfg.SigningKey), defLogger{})

	return &Accounts{
		store:     store,
		codec:     codec,
		issuer:    NewTokenIssuer(codec),
		templates: DefaultMailTemplates(""),
		cfg:       cfg,
		logger:    defLogger{},
	}
}

func (s *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		s.logger = logger
		s.codec = NewTokenCodec([]byte(s.cfg.SigningKey), logger)
		s.issuer = NewTokenIssuer(s.codec)
	}
	return s
}

// WithMailer sets the collaborator that delivers verification and reset
// mails. Without one, the request operations fail.
func (s *Accounts) WithMailer(mailer Mailer) *Accounts {
	s.mailer = mailer
	return s
}

// WithMailTemplates overrides the rendered mail content.
func (s *Accounts) WithMailTemplates(templates MailTemplates) *Accounts {
	if templates.Verification != nil {
		s.templates.Verification = templates.Verification
	}
	if templates.PasswordReset != nil {
		s.templates.PasswordReset = templates.PasswordReset
	}
	return s
}

// WithClock injects a custom issuance clock (useful for tests).
func (s *Accounts) WithClock(clock func() time.Time) *Accounts {
	s.issuer = NewTokenIssuer(s.codec, WithIssuerClock(clock))
	return s
}

// Codec exposes the token codec used by this service.
func (s *Accounts) Codec() *TokenCodec {
	return s.codec
}

// CreateAccountInput carries the attributes for a new account. Either
// Username or Email must be set, along with a password.
type CreateAccountInput struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Profile  Profile  `json:"profile"`
	Roles    []string `json:"roles"`
	// UseHashid derives the user id deterministically from the email
	// instead of generating a random one.
	UseHashid bool `json:"-"`
}

// CreateAccount inserts a new user with a hashed password. It rejects with
// ErrMissingIdentifier before any storage write when neither username nor
// email is given, or the password is empty, and with ErrDuplicateEmail when
// the email is already registered.
func (s *Accounts) CreateAccount(ctx context.Context, in CreateAccountInput) (*User, error) {
	if (in.Username == "" && in.Email == "") || in.Password == "" {
		return nil, ErrMissingIdentifier
	}

	if err := s.cfg.ValidateCreate(in); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid account details")
	}

	if in.Email != "" {
		_, err := s.store.FindByEmail(ctx, in.Email)
		if err == nil {
			return nil, ErrDuplicateEmail
		}
		if !isNotFound(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing email")
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	user := &User{
		Username:     in.Username,
		PasswordHash: hash,
		Profile:      in.Profile,
		Roles:        in.Roles,
	}

	if in.UseHashid && in.Email != "" {
		if id, err := hashid.NewUUID(in.Email); err == nil {
			user.ID = id
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if in.Email != "" {
		user.Emails = []*UserEmail{{
			UserID:  user.ID,
			Address: in.Email,
		}}
	}

	created, err := s.store.Insert(ctx, user)
	if err != nil {
		s.logger.Error("CreateAccount insert error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	return created, nil
}

// CreateAccountAndLogin creates the account and immediately logs it in,
// returning the resume token.
func (s *Accounts) CreateAccountAndLogin(ctx context.Context, in CreateAccountInput) (*Token, error) {
	if _, err := s.CreateAccount(ctx, in); err != nil {
		return nil, err
	}
	return s.Login(ctx, in.Email, in.Password)
}

// Login verifies the email/password pair and issues a resume token. When the
// service requires verified emails, the matched address must be verified.
func (s *Accounts) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			s.logger.Error("Login password mismatch", "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify credentials")
	}

	if s.cfg.RequireEmailVerification {
		record := user.EmailByAddress(email)
		if record == nil || !record.Verified {
			return nil, ErrEmailNotVerified
		}
	}

	return s.issuer.Issue(user, PurposeResume, s.cfg.ResumeTokenTTL, "")
}

// RequestVerification issues a verifyEmail token bound to the address and
// mails it. Send failures surface directly, they are not retried.
func (s *Accounts) RequestVerification(ctx context.Context, email string) error {
	return s.sendActionMail(ctx, email, PurposeVerifyEmail, s.templates.Verification)
}

// Verify consumes a verifyEmail token: it flips the verified flag of the
// bound address only, then issues a fresh resume token. The module keeps no
// consumption store, so a token can re-apply the flag within its lifetime.
func (s *Accounts) Verify(ctx context.Context, rawToken string) (*Token, error) {
	user, claims, err := s.consume(ctx, rawToken, PurposeVerifyEmail)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetEmailVerified(ctx, user.ID.String(), claims.Email); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email as verified")
	}

	if record := user.EmailByAddress(claims.Email); record != nil {
		record.Verified = true
	}

	return s.issuer.Issue(user, PurposeResume, s.cfg.ResumeTokenTTL, "")
}

// Resume consumes a resume token and issues a fresh one, rolling the
// session forward. The user record is resolved fresh from storage, so it
// reflects any change since the previous issuance.
func (s *Accounts) Resume(ctx context.Context, rawToken string) (*Token, error) {
	user, _, err := s.consume(ctx, rawToken, PurposeResume)
	if err != nil {
		return nil, err
	}

	return s.issuer.Issue(user, PurposeResume, s.cfg.ResumeTokenTTL, "")
}

// RequestResetPassword issues a resetPassword token bound to the address
// and mails it.
func (s *Accounts) RequestResetPassword(ctx context.Context, email string) error {
	return s.sendActionMail(ctx, email, PurposeResetPassword, s.templates.PasswordReset)
}

// ResetPassword consumes a resetPassword token, stores the rehashed
// password, and issues a fresh resume token. Concurrent resets for the same
// user are not serialized; the last write wins.
func (s *Accounts) ResetPassword(ctx context.Context, rawToken, newPassword string) (*Token, error) {
	user, _, err := s.consume(ctx, rawToken, PurposeResetPassword)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	if err := s.store.UpdatePasswordHash(ctx, user.ID.String(), hash); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
	}
	user.PasswordHash = hash

	return s.issuer.Issue(user, PurposeResume, s.cfg.ResumeTokenTTL, "")
}

// IdentityFromToken resolves the user behind a resume token. It is best
// effort: any verification failure, wrong purpose, or missing user yields
// (nil, false) and never an error. Authentication at this boundary is
// advisory; downstream authorization is out of scope.
func (s *Accounts) IdentityFromToken(ctx context.Context, rawToken string) (*User, bool) {
	if rawToken == "" {
		return nil, false
	}

	claims, err := s.codec.Validate(rawToken)
	if err != nil {
		s.logger.Debug("IdentityFromToken validation failed", "error", err)
		return nil, false
	}

	if claims.Purpose != PurposeResume {
		return nil, false
	}

	user, err := s.store.FindByID(ctx, claims.UserID())
	if err != nil {
		s.logger.Debug("IdentityFromToken lookup failed", "error", err)
		return nil, false
	}

	return user, true
}

// consume runs the shared consumption path: the codec's signature and expiry
// checks come strictly first, then the purpose check, then the fresh lookup
// of the subject. An expired token of the right purpose is still rejected as
// expired.
func (s *Accounts) consume(ctx context.Context, rawToken string, want TokenPurpose) (*User, *TokenClaims, error) {
	claims, err := s.codec.Validate(rawToken)
	if err != nil {
		return nil, nil, err
	}

	if claims.Purpose != want {
		s.logger.Error("token purpose mismatch", "want", want.String(), "got", claims.Purpose.String())
		return nil, nil, ErrWrongPurpose
	}

	user, err := s.store.FindByID(ctx, claims.UserID())
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up token subject")
	}

	return user, claims, nil
}

func (s *Accounts) sendActionMail(ctx context.Context, email string, purpose TokenPurpose, template MailTemplate) error {
	if s.mailer == nil {
		return goerrors.New("no mailer configured", goerrors.CategoryOperation)
	}

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.issuer.Issue(user, purpose, s.cfg.ActionTokenTTL, email)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s?%s=%s", s.cfg.BaseURL, purpose, token.Value)
	msg := template(TemplateData{URL: url, To: email})
	if msg.To == "" {
		msg.To = email
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("action mail send failed", "purpose", purpose.String(), "error", err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to send mail")
	}

	return nil
}

func (s *Accounts) findByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}
	return user, nil
}
