package accounts

import (
	"github.com/goliatone/go-router"
)

// OptionalAuth returns middleware that resolves the bearer identity from
// the Authorization header into the request context. Requests without a
// valid resume token proceed with no identity set; nothing is rejected at
// this layer.
func OptionalAuth(service *Accounts) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if header := c.GetString(router.HeaderAuthorization, ""); header != "" {
				c.SetContext(service.ModifyContext(c.Context(), header))
			}
			return c.Next()
		}
	}
}
