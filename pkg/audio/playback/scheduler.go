// Package playback schedules synthesised audio segments for gapless output.
//
// Segments arrive as raw PCM16 chunks with arbitrary network jitter. The
// [Scheduler] decodes each chunk and places it on a playback timeline using a
// single monotonic "next start time" cursor: each segment starts at
// max(cursor, now) and the cursor advances by exactly the segment's duration.
// Segments therefore never overlap; when the producer outruns real time they
// queue back-to-back with no silence, and when it lags a gap is tolerated
// rather than corrupting the ordering of later segments.
package playback

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/MuddySheep/AI-Interviewer/pkg/audio"
)

const (
	// SpeakingPulse is how long the speaking indicator stays raised after
	// each enqueue. This is a UI liveness cue, not a precise speaking-state
	// signal: it is independent of the segment's actual duration.
	SpeakingPulse = 200 * time.Millisecond

	// defaultQueueCap is the initial capacity hint for the segment queue.
	defaultQueueCap = 16
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("playback: scheduler closed")

// ErrEmptySegment is returned when a chunk decodes to no playable samples.
// The cursor is not advanced for a dropped segment — a gap in audio is
// preferable to corrupting subsequent scheduling.
var ErrEmptySegment = errors.New("playback: segment decodes to no samples")

// Segment is a decoded audio chunk placed on the playback timeline.
type Segment struct {
	// Samples are normalised amplitudes at [Segment.SampleRate].
	Samples []float32

	// SampleRate is fixed at the scheduler's configured rate.
	SampleRate int

	// Start is the scheduled output time.
	Start time.Time

	// Duration is len(Samples)/SampleRate.
	Duration time.Duration
}

// Clock returns the current time. Injected in tests for determinism.
type Clock func() time.Time

// Option configures a [Scheduler] during construction.
type Option func(*Scheduler)

// WithClock overrides the scheduler's time source. Primarily used in tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithSampleRate overrides the decode sample rate. The default is
// [audio.PlaybackSampleRate].
func WithSampleRate(rate int) Option {
	return func(s *Scheduler) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// Scheduler decodes incoming raw audio chunks and delivers them to the
// output callback at their scheduled start times, in enqueue order.
//
// All exported methods are safe for concurrent use.
type Scheduler struct {
	output     func(Segment) // called sequentially from the dispatch goroutine
	sampleRate int
	clock      Clock

	mu            sync.Mutex
	cursor        time.Time // next available start time; never decreases
	speakingUntil time.Time
	queue         []Segment
	inFlight      bool
	closed        bool

	notify chan struct{}
	done   chan struct{}
	idle   *sync.Cond // signalled when the queue drains
}

// New creates a [Scheduler] that delivers segments to the output callback.
// The scheduler starts a background dispatch goroutine immediately.
//
// output must not be nil; it is called sequentially and must not block for
// extended periods. Call [Scheduler.Close] to stop the goroutine.
func New(output func(Segment), opts ...Option) *Scheduler {
	s := &Scheduler{
		output:     output,
		sampleRate: audio.PlaybackSampleRate,
		clock:      time.Now,
		queue:      make([]Segment, 0, defaultQueueCap),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.idle = sync.NewCond(&s.mu)
	go s.dispatch()
	return s
}

// Enqueue decodes raw PCM16 bytes and schedules them on the playback
// timeline. The segment's start is max(cursor, now); the cursor advances by
// the segment's duration. Enqueue also raises the speaking indicator for
// [SpeakingPulse].
//
// Undecodable chunks are dropped without advancing the cursor and the error
// is returned for the caller to log.
func (s *Scheduler) Enqueue(raw []byte) error {
	samples := audio.DecodePCM16(raw)
	if len(samples) == 0 {
		return ErrEmptySegment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	now := s.clock()
	start := s.cursor
	if now.After(start) {
		start = now
	}
	dur := audio.Duration(len(samples), s.sampleRate)

	s.queue = append(s.queue, Segment{
		Samples:    samples,
		SampleRate: s.sampleRate,
		Start:      start,
		Duration:   dur,
	})
	s.cursor = start.Add(dur)
	s.speakingUntil = now.Add(SpeakingPulse)

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Speaking reports whether the speaking indicator is currently raised. The
// indicator is a fixed-duration pulse per enqueue (see [SpeakingPulse]) and
// deliberately does not track actual segment playback duration.
func (s *Scheduler) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock().Before(s.speakingUntil)
}

// Pending returns the number of segments scheduled but not yet delivered.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush blocks until all queued segments have been delivered or the
// scheduler is closed. Used during session teardown and in tests.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for (len(s.queue) > 0 || s.inFlight) && !s.closed {
		s.idle.Wait()
	}
}

// Close stops the dispatch goroutine and drops any undelivered segments.
// Close is idempotent.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	dropped := len(s.queue)
	s.queue = nil
	s.idle.Broadcast()
	s.mu.Unlock()

	if dropped > 0 {
		slog.Debug("playback: dropping undelivered segments on close", "count", dropped)
	}
	close(s.done)
	return nil
}

// dispatch delivers queued segments to the output callback at their
// scheduled start times. It runs until Close.
func (s *Scheduler) dispatch() {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}

		for {
			seg, ok := s.pop()
			if !ok {
				break
			}

			// Wait until the segment's scheduled start.
			if wait := seg.Start.Sub(s.clock()); wait > 0 {
				timer.Reset(wait)
				select {
				case <-s.done:
					if !timer.Stop() {
						<-timer.C
					}
					return
				case <-timer.C:
				}
			}

			s.output(seg)

			s.mu.Lock()
			s.inFlight = false
			if len(s.queue) == 0 {
				s.idle.Broadcast()
			}
			s.mu.Unlock()
		}
	}
}

// pop removes and returns the head of the queue.
func (s *Scheduler) pop() (Segment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Segment{}, false
	}
	seg := s.queue[0]
	s.queue = s.queue[1:]
	s.inFlight = true
	return seg, true
}
