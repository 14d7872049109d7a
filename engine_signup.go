package membergate

import (
	"context"
	"errors"
	"fmt"
)

// Signup creates a new member account. The password and its confirmation
// must match exactly, byte for byte, before any hashing happens. Returns
// [ErrCredentialMismatch] when they differ and [ErrDuplicateAccount] when
// the account name is already taken.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) error {
	if err := e.checkReady(); err != nil {
		return err
	}

	if req.Password != req.ConfirmPassword {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignup, req.Account, "", false, ErrCredentialMismatch)
		return ErrCredentialMismatch
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignup, req.Account, "", false, err)
		return fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}

	now := e.now()
	member := Member{
		Account:      req.Account,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.store.Members().Create(ctx, member); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, auditEventSignup, req.Account, "", false, ErrDuplicateAccount)
			return ErrDuplicateAccount
		}
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignup, req.Account, "", false, err)
		return fmt.Errorf("%w: create member: %v", ErrInternal, err)
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignup, req.Account, "", true, nil)
	return nil
}
