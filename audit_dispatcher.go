package membergate

import (
	"context"

	internalaudit "github.com/membergate/membergate/internal/audit"
)

const (
	auditEventSignup         = "signup"
	auditEventSignin         = "signin"
	auditEventSigninLocked   = "signin_locked"
	auditEventAuthenticate   = "authenticate"
	auditEventSignout        = "signout"
	auditEventPasswordRehash = "password_rehash"
)

type auditDispatcher struct {
	inner *internalaudit.Dispatcher
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	inner := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
	if inner == nil {
		return nil
	}
	return &auditDispatcher{inner: inner}
}

func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	d.inner.Emit(ctx, event)
}

func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.inner.Close()
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.inner.Dropped()
}
