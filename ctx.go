package accounts

import (
	"context"
	"strings"
)

var userCtxKey = &contextKey{"user"}
var userIDCtxKey = &contextKey{"user_id"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context.
func WithContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithUserID sets the verified user id in the given context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, id)
}

// UserIDFromContext finds the verified user id from the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(userIDCtxKey).(string)
	return raw, ok
}

// ModifyContext injects the identity behind an Authorization-style header
// value into the context. On a valid resume token it sets the verified user
// id and the resolved user; on any failure it returns the context unchanged.
// It never returns an error: authentication at this boundary is optional.
func (s *Accounts) ModifyContext(ctx context.Context, header string) context.Context {
	user, ok := s.IdentityFromToken(ctx, stripAuthScheme(header))
	if !ok {
		return ctx
	}

	ctx = WithUserID(ctx, user.ID.String())
	return WithContext(ctx, user)
}

// stripAuthScheme drops an optional "Bearer " prefix; raw token values pass
// through untouched.
func stripAuthScheme(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
