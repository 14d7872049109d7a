package membergate

import (
	"context"
	"fmt"

	"github.com/membergate/membergate/session"
)

// Signout invalidates the account's active session, if any. The mismatch
// streak, challenge instant and login history on the record survive; only
// the token fields are cleared. Signing out an account with no session, or
// one that never signed in at all, succeeds as a no-op.
func (e *Engine) Signout(ctx context.Context, account string) error {
	if err := e.checkReady(); err != nil {
		return err
	}

	rec, err := e.store.Sessions().Find(ctx, account)
	if err != nil {
		return fmt.Errorf("%w: find session: %v", ErrInternal, err)
	}

	if rec == nil || rec.TokenID == nil {
		e.metricInc(MetricSignout)
		e.emitAudit(ctx, auditEventSignout, account, "", true, nil)
		return nil
	}

	tokenID := *rec.TokenID

	err = e.store.InTx(ctx, func(tx Store) error {
		return tx.Sessions().Update(ctx, session.SignedOut(*rec))
	})
	if err != nil {
		return fmt.Errorf("%w: persist signout: %v", ErrInternal, err)
	}

	e.metricInc(MetricSignout)
	e.emitAudit(ctx, auditEventSignout, account, tokenID, true, nil)
	return nil
}
