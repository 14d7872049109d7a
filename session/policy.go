package session

import (
	"time"

	"github.com/membergate/membergate/token"
)

// TimedOut reports whether r carries no live session window: true when
// ExpiresAt is absent or now is past it.
func TimedOut(r Record, now time.Time) bool {
	if r.ExpiresAt == nil {
		return true
	}
	return now.Unix() > *r.ExpiresAt
}

// Locked reports whether the account is inside its lock window. The window
// scales linearly with the mismatch streak: it ends at
// ChallengeAt + window×Mismatch, so every additional failure while locked
// lengthens the wait.
//
// A record at or over the threshold with no challenge instant is treated as
// locked; that state is not reachable through the transforms in this package.
func Locked(r Record, maxMismatch int, window time.Duration, now time.Time) bool {
	if r.Mismatch < maxMismatch {
		return false
	}
	if r.ChallengeAt == nil {
		return true
	}
	unlockAt := r.ChallengeAt.Add(window * time.Duration(r.Mismatch))
	return now.Before(unlockAt)
}

// ActiveFor reports whether claims identify the single currently-valid
// session of r: every token field must equal the corresponding claim, the
// mismatch streak must be clear, and the session window must not have
// elapsed. A superseded token fails the equality check immediately, before
// its own embedded expiry passes.
func ActiveFor(r Record, claims token.Claims, now time.Time) bool {
	if r.TokenID == nil || r.IssuedAt == nil || r.ExpiresAt == nil {
		return false
	}
	if *r.TokenID != claims.TokenID ||
		*r.IssuedAt != claims.IssuedAt ||
		*r.ExpiresAt != claims.ExpiresAt {
		return false
	}
	if r.Mismatch != 0 || r.ChallengeAt != nil {
		return false
	}
	return !TimedOut(r, now)
}
