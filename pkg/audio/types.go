// Package audio provides the PCM sample codec, transport encoding, and frame
// types shared by the capture, streaming, and playback stages of the
// interview pipeline.
//
// All PCM data in this package is 16-bit signed little-endian. Float samples
// are normalised amplitudes in [-1, 1].
package audio

import "time"

// Standard sample rates used on the two legs of the remote protocol.
const (
	// WireSampleRate is the sample rate of audio sent to the remote
	// conversational endpoint (PCM16 mono).
	WireSampleRate = 16000

	// PlaybackSampleRate is the sample rate of synthesised audio received
	// from the remote endpoint (PCM16 mono).
	PlaybackSampleRate = 24000
)

// Frame represents a single buffer of audio flowing through the pipeline.
// Frames are the atomic unit of audio transport — produced by the capture
// tap, analysed for speech cadence, converted, and forwarded to the remote
// session.
type Frame struct {
	// Data is PCM16 little-endian audio.
	Data []byte

	// SampleRate in Hz (e.g., 48000 for browser capture, 16000 on the wire).
	SampleRate int

	// Channels: 1 for mono, 2 for interleaved stereo.
	Channels int

	// Timestamp marks when this frame was captured, relative to session start.
	Timestamp time.Duration
}

// Duration returns the playback length of the frame, or zero for malformed
// frames.
func (f Frame) Duration() time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	samples := len(f.Data) / 2 / f.Channels
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate)
}

// Duration returns the playback length of sampleCount mono samples at the
// given rate.
func Duration(sampleCount, sampleRate int) time.Duration {
	if sampleRate <= 0 || sampleCount <= 0 {
		return 0
	}
	return time.Duration(sampleCount) * time.Second / time.Duration(sampleRate)
}
