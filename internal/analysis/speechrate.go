// Package analysis derives lightweight behavioural signals from the
// candidate's media streams.
//
// The speech-rate analyzer is an amplitude-envelope heuristic: it counts
// rising-edge threshold crossings as a proxy for syllables and classifies the
// rate once per fixed window. It is deliberately approximate; it measures
// cadence, not phonetics.
package analysis

import (
	"time"

	"github.com/MuddySheep/AI-Interviewer/pkg/audio"
)

// Speech-rate tuning. Peaks per second between slowRate and fastRate are
// considered a normal speaking cadence.
const (
	windowDuration = 3 * time.Second
	peakThreshold  = 0.15
	refractory     = 150 * time.Millisecond

	// minPeaks is the minimum evidence required before classifying a
	// window. A near-silent window produces no trigger at all.
	minPeaks = 2

	fastRate = 4.5
	slowRate = 1.5
)

// Trigger is the classification emitted when a speech-rate window closes.
type Trigger int

const (
	// TriggerNone means the window closed with a normal cadence or with
	// insufficient evidence.
	TriggerNone Trigger = iota

	// TriggerTooFast means the candidate is speaking noticeably faster
	// than a comfortable interview pace.
	TriggerTooFast

	// TriggerLowEnergy means sustained speech with very few peaks,
	// reading as hesitant or low-volume delivery.
	TriggerLowEnergy
)

// String returns a short label for logging.
func (t Trigger) String() string {
	switch t {
	case TriggerTooFast:
		return "too-fast"
	case TriggerLowEnergy:
		return "low-energy"
	default:
		return "none"
	}
}

// SpeechRate is a stateful peak detector over a single rolling window.
// It is not safe for concurrent use; the orchestrator feeds it from a single
// capture loop.
type SpeechRate struct {
	sampleRate int
	clock      func() time.Time

	windowStart time.Time
	lastPeak    time.Time
	peakCount   int

	// above tracks whether the previous sample was over the threshold,
	// so a peak is only counted on the rising edge.
	above bool

	started bool
}

// SpeechRateOption configures a SpeechRate analyzer.
type SpeechRateOption func(*SpeechRate)

// WithSpeechRateClock overrides the analyzer's time source. Used in tests.
func WithSpeechRateClock(clock func() time.Time) SpeechRateOption {
	return func(s *SpeechRate) { s.clock = clock }
}

// NewSpeechRate creates an analyzer for mono audio at the given sample rate.
func NewSpeechRate(sampleRate int, opts ...SpeechRateOption) *SpeechRate {
	s := &SpeechRate{
		sampleRate: sampleRate,
		clock:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Analyze processes one captured audio buffer and returns the trigger for
// the window that closed during this call, or TriggerNone.
//
// The caller must skip buffers captured while the interviewer is speaking:
// playback bleed would be counted against the candidate's cadence.
func (s *SpeechRate) Analyze(samples []float32) Trigger {
	now := s.clock()
	if !s.started {
		s.windowStart = now
		s.started = true
	}

	trigger := TriggerNone
	if elapsed := now.Sub(s.windowStart); elapsed > windowDuration {
		trigger = s.classify(elapsed)
		s.peakCount = 0
		s.windowStart = now
	}

	s.detectPeaks(samples, now)
	return trigger
}

// classify turns the finished window's peak count into a trigger.
func (s *SpeechRate) classify(elapsed time.Duration) Trigger {
	if s.peakCount <= minPeaks {
		return TriggerNone
	}
	rate := float64(s.peakCount) / elapsed.Seconds()
	switch {
	case rate > fastRate:
		return TriggerTooFast
	case rate < slowRate:
		return TriggerLowEnergy
	default:
		return TriggerNone
	}
}

// detectPeaks scans the buffer for rising-edge crossings of the amplitude
// threshold. A crossing only counts as a peak if the refractory period has
// passed since the last one, so a single syllable's oscillation is not
// double-counted. Sample positions are mapped onto wall time so the
// refractory period holds within a buffer, not just across buffers.
func (s *SpeechRate) detectPeaks(samples []float32, bufferStart time.Time) {
	for i, v := range samples {
		if v < 0 {
			v = -v
		}
		crossing := v >= peakThreshold && !s.above
		s.above = v >= peakThreshold
		if !crossing {
			continue
		}

		at := bufferStart.Add(audio.Duration(i, s.sampleRate))
		if !s.lastPeak.IsZero() && at.Sub(s.lastPeak) < refractory {
			continue
		}
		s.peakCount++
		s.lastPeak = at
	}
}

// Peaks returns the running peak count of the current window. Exposed for
// diagnostics and tests.
func (s *SpeechRate) Peaks() int { return s.peakCount }
