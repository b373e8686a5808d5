package interview

import (
	"math"
	"time"

	"github.com/MuddySheep/AI-Interviewer/pkg/audio"
)

const (
	// wakeToneDuration is the length of the synthetic tone sent right after
	// the live session opens. The remote voice-activity detector does not
	// trigger on silence, so without this the interviewer never starts
	// speaking.
	wakeToneDuration = 200 * time.Millisecond

	wakeToneFreq      = 440.0
	wakeToneAmplitude = 0.1
)

// wakeTone synthesises a short low-amplitude sine at the wire sample rate,
// already PCM16-encoded for transmission.
func wakeTone() []byte {
	n := int(audio.WireSampleRate * wakeToneDuration.Seconds())
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(wakeToneAmplitude * math.Sin(2*math.Pi*wakeToneFreq*float64(i)/audio.WireSampleRate))
	}
	return audio.EncodePCM16(samples)
}
