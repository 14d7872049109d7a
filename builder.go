package membergate

import (
	"errors"
	"fmt"
	"time"

	"github.com/membergate/membergate/password"
	"github.com/membergate/membergate/token"
)

// Builder assembles an [Engine] step by step. Zero or more With* calls
// followed by a single Build; a Builder is not safe for concurrent use and
// should not be reused after Build.
type Builder struct {
	config    Config
	configSet bool
	store     Store
	auditSink AuditSink
	now       func() time.Time
}

// New starts a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{}
}

// WithConfig replaces the entire configuration. Call it before the other
// With* methods that refine individual sections.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	b.configSet = true
	return b
}

// WithStore sets the persistence backend. Required.
func (b *Builder) WithStore(s Store) *Builder {
	b.store = s
	return b
}

// WithAuditSink sets the destination for audit events. Without a sink the
// dispatcher falls back to [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetrics toggles counter recording.
func (b *Builder) WithMetrics(enabled bool) *Builder {
	b.ensureConfig()
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency bucket recording. Implies metrics.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.ensureConfig()
	b.config.Metrics.EnableLatencyHistograms = enabled
	if enabled {
		b.config.Metrics.Enabled = true
	}
	return b
}

// WithClock overrides the engine's time source. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the accumulated configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	b.ensureConfig()

	if b.store == nil {
		return nil, errors.New("store is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid password config: %w", err)
	}

	codec, err := token.NewCodec(token.Config{
		SigningMethod: token.SigningMethod(b.config.Token.SigningMethod),
		PrivateKey:    b.config.Token.PrivateKey,
		PublicKey:     b.config.Token.PublicKey,
		Issuer:        b.config.Token.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token config: %w", err)
	}

	sink := b.auditSink
	if sink == nil {
		sink = NoOpSink{}
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		config:  b.config,
		store:   b.store,
		hasher:  hasher,
		codec:   codec,
		audit:   newAuditDispatcher(b.config.Audit, sink),
		metrics: NewMetrics(b.config.Metrics),
		now:     now,
	}, nil
}

func (b *Builder) ensureConfig() {
	if !b.configSet {
		b.config = DefaultConfig()
		b.configSet = true
	}
}
