package membergate

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config is the engine's configuration value object.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Lockout  LockoutConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the session-token codec.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig configures the Argon2id hasher.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	RehashOnSignin bool
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig configures the graduated lockout state machine. An account
// whose consecutive-mismatch count reaches MaxMismatch is rejected until
// challengeAt + LockWindow×mismatch has passed.
type LockoutConfig struct {
	MaxMismatch int
	LockWindow  time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: one-hour sessions, three
// strikes, an eight-hour base lock window, and moderate Argon2id costs.
// Signing key material must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           time.Hour,
			SigningMethod: "hs256",
		},
		Password: PasswordConfig{
			Memory:         64 * 1024,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			RehashOnSignin: true,
		},
		Lockout: LockoutConfig{
			MaxMismatch: 3,
			LockWindow:  8 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the invariants Build relies on.
func (c Config) Validate() error {
	if c.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	switch c.Token.SigningMethod {
	case "hs256", "ed25519":
	default:
		return errors.New("unsupported token signing method")
	}
	if c.Lockout.MaxMismatch <= 0 {
		return errors.New("lockout max mismatch must be positive")
	}
	if c.Lockout.LockWindow <= 0 {
		return errors.New("lockout window must be positive")
	}
	return nil
}

// LoadEnv overlays c with environment-derived values and returns the result.
// Unset or malformed variables leave the corresponding field untouched.
//
//	MEMBERGATE_SESSION_TTL_SECONDS — session token lifetime
//	MEMBERGATE_MAX_MISMATCH       — consecutive failures before lockout
//	MEMBERGATE_LOCK_WINDOW_HOURS  — base lock window
func (c Config) LoadEnv() Config {
	if v, ok := envInt("MEMBERGATE_SESSION_TTL_SECONDS"); ok && v > 0 {
		c.Token.TTL = time.Duration(v) * time.Second
	}
	if v, ok := envInt("MEMBERGATE_MAX_MISMATCH"); ok && v > 0 {
		c.Lockout.MaxMismatch = int(v)
	}
	if v, ok := envInt("MEMBERGATE_LOCK_WINDOW_HOURS"); ok && v > 0 {
		c.Lockout.LockWindow = time.Duration(v) * time.Hour
	}
	return c
}

func envInt(name string) (int64, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cloneConfig(c Config) Config {
	out := c
	out.Token.PrivateKey = cloneBytes(c.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(c.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
