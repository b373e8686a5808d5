// Package live defines the Provider interface for real-time voice backends.
//
// A live provider wraps a speech-to-speech AI service that accepts raw audio
// (and optionally video frames) and returns synthesised audio output in a
// single stateful session. Examples include the Gemini Live API and the
// OpenAI Realtime API.
//
// The central abstraction is SessionHandle: a bidirectional, multiplexed
// channel that carries audio and transcripts concurrently. Sessions are
// long-lived, spanning an entire interview, and every method on the hot path
// must return quickly.
//
// All implementations must be safe for concurrent use.
package live

import (
	"context"
	"errors"
	"time"
)

// ErrSessionClosed is returned by send methods after the session has been
// closed. Callers on the capture hot path treat it as a signal to stop
// forwarding media, not as a failure.
var ErrSessionClosed = errors.New("live: session closed")

// Transcript roles. User entries come from the provider's recognition of the
// candidate's speech; model entries are the interviewer's generated text.
// System entries are injected locally, for example behavioural observations.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// TranscriptItem is a single attributed line of the interview transcript.
type TranscriptItem struct {
	// Role is one of RoleUser, RoleModel or RoleSystem.
	Role string

	// Text is the transcript content.
	Text string

	// Timestamp is when the item was observed locally.
	Timestamp time.Time
}

// SessionConfig is the initial configuration for a new live session.
type SessionConfig struct {
	// Instructions is the system-level prompt defining the interviewer's
	// persona, the interview mode and the candidate context.
	Instructions string

	// Voice selects the synthesised voice, using provider-specific IDs.
	// Empty means the provider default.
	Voice string
}

// Capabilities describes static properties of a live provider. The values
// are assumed constant for the lifetime of the Provider instance.
type Capabilities struct {
	// SupportsVideo indicates whether SendImage delivers frames to the
	// model or returns an error.
	SupportsVideo bool

	// MaxSessionDuration is the provider's hard upper bound on session
	// lifetime. Zero means no documented limit.
	MaxSessionDuration time.Duration

	// Voices lists the voice IDs available for this provider.
	Voices []string
}

// SessionHandle represents an open live session. It is an interface so test
// code can supply mock implementations without a network connection.
//
// Audio I/O is channel-based to keep the caller's media loop non-blocking.
// Callers must call Close when the session is no longer needed.
type SessionHandle interface {
	// SendAudio delivers a raw PCM chunk (16 kHz, s16le, mono) to the
	// provider. Returns ErrSessionClosed after Close.
	SendAudio(chunk []byte) error

	// SendImage delivers a compressed video frame (JPEG bytes) to the
	// provider. Providers without video support return an error; callers
	// sample frames sparsely so a failure here is non-fatal.
	SendImage(jpeg []byte) error

	// SendText injects a text message into the session under the given
	// role. Used for behavioural observations and conversation steering.
	SendText(role, text string) error

	// Audio returns a read-only channel emitting raw PCM chunks of the
	// interviewer's synthesised speech. The channel is closed when the
	// session ends; check Err afterwards. Consumers must drain promptly.
	Audio() <-chan []byte

	// Transcripts returns a read-only channel emitting attributed
	// transcript items for both sides of the conversation. Closed when
	// the session ends.
	Transcripts() <-chan TranscriptItem

	// OnError registers a callback for non-fatal error events surfaced by
	// the provider mid-session. Calling OnError again replaces the
	// previous handler; nil clears it. The handler may be invoked from
	// the session's receive goroutine and must not block.
	OnError(handler func(error))

	// Err returns the error that terminated the session prematurely, or
	// nil if it ended cleanly. Check after the Audio channel closes.
	Err() error

	// Close terminates the session, releases resources and closes the
	// Audio and Transcripts channels. Idempotent.
	Close() error
}

// Provider is the abstraction over any live voice backend.
type Provider interface {
	// Connect establishes a new session with the given configuration.
	// The returned SessionHandle accepts audio immediately. The caller
	// owns the handle and must call Close.
	Connect(ctx context.Context, cfg SessionConfig) (SessionHandle, error)

	// Capabilities returns static metadata about the underlying model.
	Capabilities() Capabilities
}
