// Package mock provides test doubles for the media package interfaces.
package mock

import (
	"sync"

	"github.com/MuddySheep/AI-Interviewer/pkg/media"
)

// Detector is a configurable media.Detector test double.
type Detector struct {
	mu sync.Mutex

	// Result is returned by every Analyze call.
	Result *media.Result

	// Err, if non-nil, is returned by every Analyze call.
	Err error

	// Panic, if true, makes Analyze panic. Used to exercise guard
	// recovery.
	Panic bool

	// Calls records the timestamps of every Analyze invocation.
	Calls []int64
}

// Analyze records the call and returns Result, Err.
func (d *Detector) Analyze(_ []byte, timestampMs int64) (*media.Result, error) {
	d.mu.Lock()
	d.Calls = append(d.Calls, timestampMs)
	d.mu.Unlock()
	if d.Panic {
		panic("detector failure")
	}
	return d.Result, d.Err
}

// CallCount returns the number of Analyze invocations. Thread-safe.
func (d *Detector) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

var _ media.Detector = (*Detector)(nil)

// Capture is a scriptable media.Capture test double. Tests feed AudioCh and
// set frames; the orchestrator consumes them as it would real capture.
type Capture struct {
	mu sync.Mutex

	// AudioCh is the channel returned by Audio(). Callers own this
	// channel and close it to end the capture stream.
	AudioCh chan []float32

	frame []byte

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int
}

// NewCapture returns a Capture with a buffered audio channel.
func NewCapture() *Capture {
	return &Capture{AudioCh: make(chan []float32, 64)}
}

// Audio returns AudioCh.
func (c *Capture) Audio() <-chan []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.AudioCh
}

// SetFrame sets the frame returned by LatestFrame.
func (c *Capture) SetFrame(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
}

// LatestFrame returns the most recently set frame.
func (c *Capture) LatestFrame() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame == nil {
		return nil, false
	}
	return c.frame, true
}

// Close records the call and returns CloseErr.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CloseCallCount++
	return c.CloseErr
}

var _ media.Capture = (*Capture)(nil)
