package gateway

import (
	"log/slog"
	"sync"

	"github.com/MuddySheep/AI-Interviewer/pkg/media"
)

// audioBuffer is the number of microphone chunks held before the socket read
// loop starts dropping. At typical browser chunk sizes this is a few seconds
// of audio.
const audioBuffer = 64

var _ media.Capture = (*socketCapture)(nil)

// socketCapture adapts one browser WebSocket into the capture interface the
// interview session consumes. The socket read loop pushes decoded audio and
// frames in; the session pulls them out.
type socketCapture struct {
	audioCh chan []float32

	mu     sync.Mutex
	frame  []byte
	closed bool
}

func newSocketCapture() *socketCapture {
	return &socketCapture{audioCh: make(chan []float32, audioBuffer)}
}

func (c *socketCapture) Audio() <-chan []float32 { return c.audioCh }

func (c *socketCapture) LatestFrame() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame, c.frame != nil
}

// pushAudio hands a decoded microphone chunk to the session. When the session
// is not draining fast enough the chunk is dropped rather than stalling the
// socket read loop.
func (c *socketCapture) pushAudio(samples []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.audioCh <- samples:
	default:
		slog.Debug("gateway: audio chunk dropped, session not draining")
	}
}

// setFrame stores the most recent camera frame. Frames are latest-wins.
func (c *socketCapture) setFrame(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.frame = frame
}

// Close ends the audio stream. Idempotent; called by the session during
// teardown and by the socket handler when the browser disconnects.
func (c *socketCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.audioCh)
	return nil
}
