// Package session holds the per-account session record and the lockout
// decision logic over it.
//
// # Components
//
//   - [Record] — the persisted per-account row tracking the single active
//     token identity and the consecutive-mismatch history.
//   - Pure transforms ([Mismatched], [Activated], [SignedOut]) — every state
//     transition returns a new Record value so the state machine is testable
//     without a live store.
//   - Policy functions ([TimedOut], [Locked], [ActiveFor]) — pure decisions
//     over a Record and a clock instant.
//
// # Architecture boundaries
//
// This package owns session-record semantics. It does NOT persist records,
// verify passwords, or encode tokens — those responsibilities belong to the
// stores, the password package, and the token package.
//
// # What this package must NOT do
//
//   - Read the wall clock; callers pass `now` explicitly.
//   - Import membergate or any sibling package other than token.
package session
