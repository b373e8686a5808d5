package media

// Capture abstracts the candidate-side media devices for one session. The
// production implementation bridges a browser over a WebSocket; tests use
// the mock package.
//
// Implementations own the underlying hardware or transport handles and
// release them on Close.
type Capture interface {
	// Audio returns the stream of captured microphone buffers as mono
	// float samples at the wire sample rate. Buffers arrive in capture
	// order. The channel is closed when the capture side ends.
	Audio() <-chan []float32

	// LatestFrame returns the most recent camera frame as JPEG bytes,
	// or false if no frame has arrived yet. Frames are latest-wins: the
	// tick loop polls this instead of consuming a backlog.
	LatestFrame() ([]byte, bool)

	// Close releases all capture resources. Idempotent.
	Close() error
}
