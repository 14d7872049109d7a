package session

import (
	"time"

	"github.com/membergate/membergate/token"
)

// Record is the persisted session row for a single account. At most one
// Record exists per account; absence means the account has never attempted
// a sign-in.
//
// IssuedAt, ExpiresAt and TokenID are either all set (active session) or all
// nil (no active session). Mismatch only grows on failed verification and
// only resets to zero on a successful sign-in. ChallengeAt anchors the lock
// window and is set whenever Mismatch is raised.
type Record struct {
	Account     string     `json:"account"`
	IssuedAt    *int64     `json:"issued_at,omitempty"`
	ExpiresAt   *int64     `json:"expires_at,omitempty"`
	TokenID     *string    `json:"token_id,omitempty"`
	Mismatch    int        `json:"mismatch"`
	ChallengeAt *time.Time `json:"challenge_at,omitempty"`
	LoginAt     *time.Time `json:"login_at,omitempty"`
	PrevLoginAt *time.Time `json:"prev_login_at,omitempty"`
}

// NewMismatched builds the record created when the very first sign-in
// attempt for an account fails.
func NewMismatched(account string, now time.Time) Record {
	return Record{
		Account:     account,
		Mismatch:    1,
		ChallengeAt: &now,
	}
}

// Mismatched returns r after a failed verification: the mismatch count is
// raised, any active token is fully invalidated, and the challenge instant
// moves to now.
func Mismatched(r Record, now time.Time) Record {
	r.IssuedAt = nil
	r.ExpiresAt = nil
	r.TokenID = nil
	r.Mismatch++
	r.ChallengeAt = &now
	return r
}

// NewActive builds the record created when an account signs in successfully
// for the first time.
func NewActive(claims token.Claims, now time.Time) Record {
	return Record{
		Account:   claims.Subject,
		IssuedAt:  &claims.IssuedAt,
		ExpiresAt: &claims.ExpiresAt,
		TokenID:   &claims.TokenID,
		LoginAt:   &now,
	}
}

// Activated returns r after a successful sign-in: token fields are replaced
// by the fresh claims, the mismatch streak and challenge instant are cleared,
// and the login history shifts.
func Activated(r Record, claims token.Claims, now time.Time) Record {
	r.IssuedAt = &claims.IssuedAt
	r.ExpiresAt = &claims.ExpiresAt
	r.TokenID = &claims.TokenID
	r.Mismatch = 0
	r.ChallengeAt = nil
	r.PrevLoginAt = r.LoginAt
	r.LoginAt = &now
	return r
}

// SignedOut returns r with the token fields cleared. Mismatch count,
// challenge instant and login history are preserved.
func SignedOut(r Record) Record {
	r.IssuedAt = nil
	r.ExpiresAt = nil
	r.TokenID = nil
	return r
}
