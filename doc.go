// Package accounts implements a credential and session-token service: it
// creates user accounts, verifies passwords, and issues, validates, and
// rotates time-limited bearer tokens.
//
// Token lifecycle:
//   - Every signed token carries a TokenPurpose (resume, verifyEmail,
//     resetPassword) bound into its claims. Operations match the presented
//     purpose exhaustively after the signature and expiry checks, so a token
//     minted for one action can never drive another.
//   - Resume tokens are long-lived and re-issued on every successful
//     consumption; email-bound tokens are short-lived and act only on the
//     address they were issued for.
//
// Collaborators:
//   - UserStore is the storage boundary. A bun-backed implementation ships
//     with the package, plus a redis read-through cache decoration.
//   - Mailer delivers rendered verification and reset messages; templates
//     substitute ${url} carrying the issued token.
//
// Identity injection is best effort: ModifyContext and OptionalAuth resolve
// a bearer resume token into the request context and swallow every
// verification failure, leaving identity unset.
package accounts
