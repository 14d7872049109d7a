package membergate

import (
	"context"
	"fmt"
	"time"

	"github.com/membergate/membergate/session"
)

// Authenticate verifies a session token and resolves it to the member it
// identifies. The token must decode under the engine's key AND match the
// persisted session record exactly: a token superseded by a newer sign-in,
// cleared by a failed attempt or a signout, or past the recorded expiry is
// rejected with [ErrTokenInvalid]. The embedded expiry claim is never
// trusted on its own; the record is the single source of truth.
func (e *Engine) Authenticate(ctx context.Context, tokenStr string) (*AuthMember, error) {
	if err := e.checkReady(); err != nil {
		return nil, err
	}

	start := e.now()
	defer e.observeLatency(MetricAuthenticateLatency, start)

	claims, err := e.codec.Decode(tokenStr)
	if err != nil {
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticate, "", "", false, ErrTokenInvalid)
		return nil, ErrTokenInvalid
	}

	rec, err := e.store.Sessions().Find(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: find session: %v", ErrInternal, err)
	}
	if rec == nil || !session.ActiveFor(*rec, claims, e.now()) {
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticate, claims.Subject, claims.TokenID, false, ErrTokenInvalid)
		return nil, ErrTokenInvalid
	}

	member, err := e.store.Members().Find(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: find member: %v", ErrInternal, err)
	}
	if member == nil {
		// Session row outlived its member record.
		e.metricInc(MetricAuthenticateFailure)
		e.emitAudit(ctx, auditEventAuthenticate, claims.Subject, claims.TokenID, false, ErrTokenInvalid)
		return nil, ErrTokenInvalid
	}

	e.metricInc(MetricAuthenticateSuccess)
	e.emitAudit(ctx, auditEventAuthenticate, claims.Subject, claims.TokenID, true, nil)

	return &AuthMember{
		Account:     member.Account,
		Name:        member.Name,
		Email:       member.Email,
		LoginAt:     cloneTime(rec.LoginAt),
		PrevLoginAt: cloneTime(rec.PrevLoginAt),
	}, nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}
