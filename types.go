package authkit

import (
	"io"
	"time"

	internalaudit "github.com/zetsy/authkit/internal/audit"
)

// User is the public shape of an account. It never carries the stored
// password hash; engine operations strip credential material before
// returning.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterResult is returned by [Engine.Register]. The tokens are ready to
// hand to the client; the verification mail is dispatched in the background.
type RegisterResult struct {
	User         User   `json:"savedUser"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by [Engine.ValidateAccess]. It identifies the
// subject of a verified access token.
type AuthResult struct {
	UserID string
}

// VerifyEmailResult is returned by [Engine.VerifyEmail]. Already reports
// whether the account was verified before this call; repeated verification
// is not an error.
type VerifyEmailResult struct {
	UserID  string
	Already bool
}

// AuditEvent is the structured record emitted for every engine operation.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's background dispatcher.
// Implementations must be safe for concurrent use.
type AuditSink = internalaudit.Sink

// NoOpSink discards all audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink forwards audit events to a Go channel. When the channel is
// full, Emit blocks until a consumer reads or the dispatcher shuts down.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a channel-backed sink with the given buffer.
// Consume events from [ChannelSink.Events].
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink writes events to w, one JSON object per line. The
// writer is serialized internally.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
