package analysis_test

import (
	"testing"
	"time"

	"github.com/MuddySheep/AI-Interviewer/internal/analysis"
)

const testRate = 16000

// tickClock returns a clock that the test advances manually.
type tickClock struct {
	now time.Time
}

func newTickClock() *tickClock {
	return &tickClock{now: time.Unix(5000, 0)}
}

func (c *tickClock) Now() time.Time          { return c.now }
func (c *tickClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// buffer builds n samples of near-silence with a short amplitude pulse at
// each given sample offset.
func buffer(n int, pulses ...int) []float32 {
	samples := make([]float32, n)
	for _, at := range pulses {
		for i := at; i < at+20 && i < n; i++ {
			samples[i] = 0.5
		}
	}
	return samples
}

// samplesFor converts a duration to a sample count at the test rate.
func samplesFor(d time.Duration) int {
	return int(d.Seconds() * testRate)
}

func TestSpeechRate_NormalPaceNoTrigger(t *testing.T) {
	clock := newTickClock()
	sr := analysis.NewSpeechRate(testRate, analysis.WithSpeechRateClock(clock.Now))

	// 10 peaks evenly spaced across 3 seconds: one pulse every 300ms.
	bufLen := samplesFor(300 * time.Millisecond)
	for i := 0; i < 10; i++ {
		if trig := sr.Analyze(buffer(bufLen, 0)); trig != analysis.TriggerNone {
			t.Fatalf("buffer %d: unexpected trigger %v", i, trig)
		}
		clock.Advance(300 * time.Millisecond)
	}
	if got := sr.Peaks(); got != 10 {
		t.Fatalf("peak count = %d, want 10", got)
	}

	// Window closes on the next buffer: rate ≈ 10/3s sits inside the
	// normal band, so no trigger fires.
	clock.Advance(100 * time.Millisecond)
	if trig := sr.Analyze(buffer(bufLen)); trig != analysis.TriggerNone {
		t.Errorf("window close: trigger = %v, want none", trig)
	}
	if got := sr.Peaks(); got != 0 {
		t.Errorf("peak count after reset = %d, want 0", got)
	}
}

func TestSpeechRate_TooFastFiresOncePerWindow(t *testing.T) {
	clock := newTickClock()
	sr := analysis.NewSpeechRate(testRate, analysis.WithSpeechRateClock(clock.Now))

	// One pulse every 150ms, exactly at the refractory boundary so every
	// pulse counts: ~6.7 peaks per second, well over the fast bound.
	// Feeding continuously across two window rollovers must fire the
	// trigger exactly once per window.
	bufLen := samplesFor(150 * time.Millisecond)
	fired := 0
	for i := 0; i < 43; i++ {
		if trig := sr.Analyze(buffer(bufLen, 0)); trig == analysis.TriggerTooFast {
			fired++
		} else if trig != analysis.TriggerNone {
			t.Fatalf("buffer %d: unexpected trigger %v", i, trig)
		}
		clock.Advance(150 * time.Millisecond)
	}

	if fired != 2 {
		t.Errorf("too-fast fired %d times across two windows, want 2", fired)
	}
}

func TestSpeechRate_LowEnergyTrigger(t *testing.T) {
	clock := newTickClock()
	sr := analysis.NewSpeechRate(testRate, analysis.WithSpeechRateClock(clock.Now))

	// 4 peaks across ~3.1 seconds: rate ≈ 1.3/s, below the slow bound.
	bufLen := samplesFor(100 * time.Millisecond)
	for i := 0; i <= 30; i++ {
		var buf []float32
		if i%10 == 0 {
			buf = buffer(bufLen, 0)
		} else {
			buf = buffer(bufLen)
		}
		if trig := sr.Analyze(buf); trig != analysis.TriggerNone {
			t.Fatalf("buffer %d: unexpected trigger %v", i, trig)
		}
		clock.Advance(100 * time.Millisecond)
	}

	if trig := sr.Analyze(buffer(bufLen)); trig != analysis.TriggerLowEnergy {
		t.Errorf("window close: trigger = %v, want low-energy", trig)
	}
}

func TestSpeechRate_SilenceNeverTriggers(t *testing.T) {
	clock := newTickClock()
	sr := analysis.NewSpeechRate(testRate, analysis.WithSpeechRateClock(clock.Now))

	bufLen := samplesFor(500 * time.Millisecond)
	for i := 0; i < 20; i++ {
		if trig := sr.Analyze(buffer(bufLen)); trig != analysis.TriggerNone {
			t.Fatalf("buffer %d: silence produced trigger %v", i, trig)
		}
		clock.Advance(500 * time.Millisecond)
	}
}

func TestSpeechRate_FewPeaksBelowEvidenceThreshold(t *testing.T) {
	clock := newTickClock()
	sr := analysis.NewSpeechRate(testRate, analysis.WithSpeechRateClock(clock.Now))

	// Two peaks in a window is not enough evidence to classify, even
	// though the rate would fall below the slow bound.
	bufLen := samplesFor(1500 * time.Millisecond)
	for i := 0; i < 2; i++ {
		sr.Analyze(buffer(bufLen, 0))
		clock.Advance(1500 * time.Millisecond)
	}

	clock.Advance(200 * time.Millisecond)
	if trig := sr.Analyze(buffer(bufLen)); trig != analysis.TriggerNone {
		t.Errorf("trigger = %v, want none with only 2 peaks", trig)
	}
}

func TestSpeechRate_RefractorySuppressesBurst(t *testing.T) {
	clock := newTickClock()
	sr := analysis.NewSpeechRate(testRate, analysis.WithSpeechRateClock(clock.Now))

	// Two crossings 50ms apart inside one buffer count as a single peak.
	bufLen := samplesFor(200 * time.Millisecond)
	sr.Analyze(buffer(bufLen, 0, samplesFor(50*time.Millisecond)))
	if got := sr.Peaks(); got != 1 {
		t.Errorf("peak count = %d, want 1 (second crossing inside refractory)", got)
	}
}
