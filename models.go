package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile holds free-form display attributes for a user.
type Profile map[string]any

// User is the identity record. A user must be created with either a username
// or at least one email, and a non-empty password. The credential block holds
// a single bcrypt hash.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string       `bun:"username,nullzero,unique" json:"username,omitempty"`
	PasswordHash  string       `bun:"password_hash" json:"password_hash,omitempty"`
	Profile       Profile      `bun:"profile" json:"profile,omitempty"`
	Roles         []string     `bun:"roles" json:"roles,omitempty"`
	Emails        []*UserEmail `bun:"rel:has-many,join:id=user_id" json:"emails,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EmailByAddress returns the user's email record for the given address,
// nil when the user does not hold that address.
func (u *User) EmailByAddress(address string) *UserEmail {
	for _, e := range u.Emails {
		if e != nil && e.Address == address {
			return e
		}
	}
	return nil
}

// Summary returns the redacted view of the user that is safe to hand back
// with an issued token. It never includes the credential block.
func (u *User) Summary() *UserSummary {
	s := &UserSummary{
		ID:      u.ID.String(),
		Profile: u.Profile,
		Roles:   u.Roles,
	}
	for _, e := range u.Emails {
		if e == nil {
			continue
		}
		s.Emails = append(s.Emails, EmailStatus{
			Address:  e.Address,
			Verified: e.Verified,
		})
	}
	return s
}

// UserEmail is one of the user's addresses with its verification flag.
// Verification only ever flips the flag of the specific address a
// verifyEmail token was issued for.
type UserEmail struct {
	bun.BaseModel `bun:"table:user_emails,alias:uem"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Address       string     `bun:"address,notnull,unique" json:"address,omitempty"`
	Verified      bool       `bun:"verified" json:"verified"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserSummary is the caller-facing slice of a user returned with tokens.
type UserSummary struct {
	ID      string        `json:"id"`
	Profile Profile       `json:"profile,omitempty"`
	Roles   []string      `json:"roles,omitempty"`
	Emails  []EmailStatus `json:"emails,omitempty"`
}

// EmailStatus mirrors a UserEmail without storage fields.
type EmailStatus struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}
