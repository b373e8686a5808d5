package interview

import (
	"sync"

	"github.com/MuddySheep/AI-Interviewer/pkg/audio"
)

// recorder accumulates the candidate's raw PCM16 audio for the session
// recording artifact. It is deliberately forgiving: if no audio was ever
// captured, Finalize returns nil and the session end proceeds without an
// artifact.
type recorder struct {
	mu  sync.Mutex
	pcm []byte
}

func (r *recorder) append(chunk []byte) {
	r.mu.Lock()
	r.pcm = append(r.pcm, chunk...)
	r.mu.Unlock()
}

// Finalize wraps the accumulated PCM in a WAV container, or returns nil when
// nothing was recorded.
func (r *recorder) Finalize() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pcm) == 0 {
		return nil
	}
	return audio.EncodeWAV(r.pcm, audio.WireSampleRate)
}
