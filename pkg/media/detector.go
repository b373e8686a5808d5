// Package media covers the video side of an interview session: frame
// transport, landmark-detector guarding, per-session visual statistics and
// bandwidth-conserving frame downsampling.
package media

import (
	"fmt"
	"log/slog"
)

// Result is one frame's worth of behavioural signals from a landmark
// detector.
type Result struct {
	// EyeContactIssue reports that the candidate is not looking at the
	// camera in this frame.
	EyeContactIssue bool

	// PostureIssue reports a posture problem in this frame.
	PostureIssue bool

	// PostureMessage optionally names the specific posture problem.
	PostureMessage string
}

// Detector performs landmark analysis on a single video frame. Timestamps
// are in milliseconds and must be strictly increasing across calls; use
// [Guard] to enforce that contract.
//
// A nil result with a nil error means the detector had no signal for this
// frame.
type Detector interface {
	Analyze(frame []byte, timestampMs int64) (*Result, error)
}

// Guard wraps a Detector and enforces its timestamp protocol: calls with a
// non-positive timestamp or a timestamp not strictly greater than the last
// accepted one return nil without invoking the detector. Detector errors and
// panics are absorbed and also yield nil — the caller treats nil as "no
// signal this tick", never as a session failure. A nil detector disables
// analysis entirely: every call returns nil.
//
// Guard is not safe for concurrent use; the orchestrator calls it from a
// single tick loop.
type Guard struct {
	detector Detector
	lastMs   int64
}

// NewGuard wraps the given detector.
func NewGuard(d Detector) *Guard {
	return &Guard{detector: d}
}

// Analyze validates the timestamp and delegates to the wrapped detector.
func (g *Guard) Analyze(frame []byte, timestampMs int64) (res *Result) {
	if g.detector == nil {
		return nil
	}
	if timestampMs <= 0 || timestampMs <= g.lastMs {
		return nil
	}
	g.lastMs = timestampMs

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("media: detector panicked", "err", fmt.Sprint(r))
			res = nil
		}
	}()

	out, err := g.detector.Analyze(frame, timestampMs)
	if err != nil {
		slog.Debug("media: detector error", "err", err)
		return nil
	}
	return out
}
