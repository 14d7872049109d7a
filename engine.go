package membergate

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/membergate/membergate/password"
	"github.com/membergate/membergate/token"
)

// Engine is the authentication engine: account lifecycle, single-active-
// session tokens, and the graduated lockout state machine, all behind four
// operations. Engines are built with [Builder] and are safe for concurrent
// use.
//
// The engine does not own the [Store] it was built with; callers close the
// store themselves after [Engine.Close].
type Engine struct {
	config  Config
	store   Store
	hasher  *password.Hasher
	codec   *token.Codec
	audit   *auditDispatcher
	metrics *Metrics

	now    func() time.Time
	closed atomic.Bool
}

// Close shuts the engine down. The audit dispatcher is drained and closed;
// in-flight operations finish normally. Close is idempotent.
func (e *Engine) Close() {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters and
// histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped returns how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) checkReady() error {
	if e == nil || e.store == nil || e.hasher == nil || e.codec == nil {
		return ErrEngineNotReady
	}
	if e.closed.Load() {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) observeLatency(id MetricID, start time.Time) {
	e.metrics.Observe(id, e.now().Sub(start))
}

func (e *Engine) emitAudit(ctx context.Context, eventType, account, tokenID string, success bool, opErr error) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.now(),
		EventType: eventType,
		Account:   account,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	e.audit.Emit(ctx, event)
}
