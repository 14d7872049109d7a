// Package token implements the stateless session-token codec.
//
// A token is a signed JWT carrying exactly four claims: subject, issued-at,
// expiry and a unique token id. Decode verifies the signature and the
// structural shape only — it deliberately does not compare the expiry
// against a clock, because the caller cross-checks all claim fields against
// the persisted session record and applies its own timeout policy.
package token
