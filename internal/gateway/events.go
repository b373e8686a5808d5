package gateway

import "github.com/MuddySheep/AI-Interviewer/internal/report"

// Client event types.
const (
	evAudio = "audio"
	evFrame = "frame"
	evWake  = "wake"
	evEnd   = "end"
)

// Server event types.
const (
	evSession    = "session"
	evTranscript = "transcript"
	evNudge      = "nudge"
	evCountdown  = "countdown"
	evReport     = "report"
	evError      = "error"
)

// clientEvent is a single JSON message from the browser. Audio payloads are
// base64 PCM16 at the client's native capture format; the gateway downmixes
// and resamples to the wire format, so browsers can send 48 kHz stereo as-is.
// Frame payloads are JPEG bytes, either plain base64 or a full data URI.
type clientEvent struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`

	// SampleRate of an audio payload in Hz. Defaults to the wire rate.
	SampleRate int `json:"sampleRate,omitempty"`

	// Channels of an audio payload: 1 (default) or 2, interleaved.
	Channels int `json:"channels,omitempty"`
}

// serverEvent is a single JSON message to the browser. The Type field selects
// which of the remaining fields are populated.
type serverEvent struct {
	Type string `json:"type"`

	// session
	SessionID       string `json:"sessionId,omitempty"`
	Mode            string `json:"mode,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`

	// audio: base64 PCM16 at the playback sample rate.
	Data       string `json:"data,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`

	// transcript
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`

	// nudge: Event is "show" or "hide".
	Event    string `json:"event,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message,omitempty"`

	// countdown
	Seconds int `json:"seconds,omitempty"`

	// report
	Report *report.Report `json:"report,omitempty"`
}
