package membergate

import (
	"io"
	"time"

	internalaudit "github.com/membergate/membergate/internal/audit"
)

// SignupRequest is the input for [Engine.Signup]. Account, Password and
// ConfirmPassword are required; Name and Email are optional profile fields.
type SignupRequest struct {
	Account         string
	Password        string
	ConfirmPassword string
	Name            string
	Email           string
}

// AuthMember is the authenticated-identity view returned by
// [Engine.Authenticate]: the member's profile plus the rolling history of
// the two most recent successful sign-ins.
type AuthMember struct {
	Account     string
	Name        string
	Email       string
	LoginAt     *time.Time
	PrevLoginAt *time.Time
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
