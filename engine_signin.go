package membergate

import (
	"context"
	"fmt"
	"time"

	"github.com/membergate/membergate/session"
	"github.com/membergate/membergate/token"
)

// Signin verifies account credentials and, on success, issues a fresh
// session token that supersedes any previously issued one.
//
// The lock window is checked before the password: a locked account returns
// [ErrAccountLocked] whether or not the password is correct, so attempts
// during the window leak nothing about the credential. A failed verification
// raises the persisted mismatch streak and invalidates any active session;
// that write commits even though Signin itself returns
// [ErrInvalidCredentials]. An unknown account returns the same error with no
// record written.
func (e *Engine) Signin(ctx context.Context, account, pass string) (string, error) {
	if err := e.checkReady(); err != nil {
		return "", err
	}

	member, err := e.store.Members().Find(ctx, account)
	if err != nil {
		return "", fmt.Errorf("%w: find member: %v", ErrInternal, err)
	}
	if member == nil {
		e.metricInc(MetricSigninFailure)
		e.emitAudit(ctx, auditEventSignin, account, "", false, ErrInvalidCredentials)
		return "", ErrInvalidCredentials
	}

	rec, err := e.store.Sessions().Find(ctx, account)
	if err != nil {
		return "", fmt.Errorf("%w: find session: %v", ErrInternal, err)
	}

	now := e.now()

	if rec != nil && session.Locked(*rec, e.config.Lockout.MaxMismatch, e.config.Lockout.LockWindow, now) {
		e.metricInc(MetricSigninLocked)
		e.emitAudit(ctx, auditEventSigninLocked, account, "", false, ErrAccountLocked)
		return "", ErrAccountLocked
	}

	ok, err := e.hasher.Verify(pass, member.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("%w: verify password: %v", ErrInternal, err)
	}

	if !ok {
		if err := e.recordMismatch(ctx, account, rec, now); err != nil {
			return "", err
		}
		e.metricInc(MetricSigninFailure)
		e.emitAudit(ctx, auditEventSignin, account, "", false, ErrInvalidCredentials)
		return "", ErrInvalidCredentials
	}

	claims := token.NewClaims(account, e.config.Token.TTL, now)

	tokenStr, err := e.codec.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("%w: encode token: %v", ErrInternal, err)
	}

	rehash := e.rehashFor(member, pass, now)
	superseded := rec != nil && rec.TokenID != nil && !session.TimedOut(*rec, now)

	err = e.store.InTx(ctx, func(tx Store) error {
		if rec == nil {
			if err := tx.Sessions().Create(ctx, session.NewActive(claims, now)); err != nil {
				return err
			}
		} else {
			if err := tx.Sessions().Update(ctx, session.Activated(*rec, claims, now)); err != nil {
				return err
			}
		}
		if rehash != nil {
			return tx.Members().Update(ctx, *rehash)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: persist session: %v", ErrInternal, err)
	}

	if rehash != nil {
		e.metricInc(MetricPasswordRehash)
		e.emitAudit(ctx, auditEventPasswordRehash, account, "", true, nil)
	}
	if superseded {
		e.metricInc(MetricSessionSuperseded)
	}

	e.metricInc(MetricSigninSuccess)
	e.metricInc(MetricSessionIssued)
	e.emitAudit(ctx, auditEventSignin, account, claims.TokenID, true, nil)
	return tokenStr, nil
}

// recordMismatch persists the raised mismatch streak for a failed attempt.
// A first-ever failure creates the record; later failures update it.
func (e *Engine) recordMismatch(ctx context.Context, account string, rec *session.Record, now time.Time) error {
	err := e.store.InTx(ctx, func(tx Store) error {
		if rec == nil {
			return tx.Sessions().Create(ctx, session.NewMismatched(account, now))
		}
		return tx.Sessions().Update(ctx, session.Mismatched(*rec, now))
	})
	if err != nil {
		return fmt.Errorf("%w: persist mismatch: %v", ErrInternal, err)
	}
	return nil
}

// rehashFor returns an updated member carrying a fresh hash of pass when the
// stored hash lags the configured cost parameters, nil otherwise. Errors are
// swallowed: a failed opportunistic rehash never blocks a valid sign-in.
func (e *Engine) rehashFor(member *Member, pass string, now time.Time) *Member {
	if !e.config.Password.RehashOnSignin {
		return nil
	}

	needs, err := e.hasher.NeedsRehash(member.PasswordHash)
	if err != nil || !needs {
		return nil
	}

	hash, err := e.hasher.Hash(pass)
	if err != nil {
		return nil
	}

	updated := *member
	updated.PasswordHash = hash
	updated.UpdatedAt = now
	return &updated
}
