package audio_test

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/MuddySheep/AI-Interviewer/pkg/audio"
)

// samplesToBytes converts a slice of int16 samples to little-endian bytes.
func samplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func TestEncodePCM16_Empty(t *testing.T) {
	out := audio.EncodePCM16(nil)
	if len(out) != 0 {
		t.Fatalf("empty input should yield empty output, got %d bytes", len(out))
	}
}

func TestEncodePCM16_Clamping(t *testing.T) {
	out := audio.EncodePCM16([]float32{2.0, -2.0, 1.0, -1.0})
	got := []int16{
		int16(binary.LittleEndian.Uint16(out[0:])),
		int16(binary.LittleEndian.Uint16(out[2:])),
		int16(binary.LittleEndian.Uint16(out[4:])),
		int16(binary.LittleEndian.Uint16(out[6:])),
	}
	want := []int16{32767, -32768, 32767, -32768}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPCM16_RoundTrip(t *testing.T) {
	in := make([]float32, 1000)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) / 50.0))
	}

	out := audio.DecodePCM16(audio.EncodePCM16(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got %d, want %d", len(out), len(in))
	}

	const maxErr = 1.0 / 32768
	for i := range in {
		if diff := math.Abs(float64(out[i] - in[i])); diff > maxErr {
			t.Fatalf("sample %d: round-trip error %.6f exceeds %.6f (in=%.6f out=%.6f)",
				i, diff, maxErr, in[i], out[i])
		}
	}
}

func TestDecodePCM16_OddTrailingByte(t *testing.T) {
	out := audio.DecodePCM16([]byte{0x00, 0x40, 0xFF})
	if len(out) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(out))
	}
	if out[0] != 0.5 {
		t.Errorf("got %f, want 0.5", out[0])
	}
}

func TestChunk_RoundTripAllByteValues(t *testing.T) {
	in := make([]byte, 256)
	for i := range in {
		in[i] = byte(i)
	}

	decoded, err := audio.DecodeChunk(audio.EncodeChunk(in))
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	if len(decoded) != len(in) {
		t.Fatalf("length mismatch: got %d, want %d", len(decoded), len(in))
	}
	for i := range in {
		if decoded[i] != in[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, decoded[i], in[i])
		}
	}
}

func TestDecodeChunk_Malformed(t *testing.T) {
	if _, err := audio.DecodeChunk("not!!valid!!base64"); err == nil {
		t.Fatal("expected error for malformed transport encoding")
	}
}

func TestFrameDuration(t *testing.T) {
	f := audio.Frame{
		Data:       make([]byte, 24000*2), // 1 second of mono 24 kHz
		SampleRate: 24000,
		Channels:   1,
	}
	if got := f.Duration(); got != time.Second {
		t.Errorf("got %v, want 1s", got)
	}

	var zero audio.Frame
	if got := zero.Duration(); got != 0 {
		t.Errorf("zero frame duration: got %v, want 0", got)
	}
}

func TestDuration(t *testing.T) {
	if got := audio.Duration(12000, 24000); got != 500*time.Millisecond {
		t.Errorf("got %v, want 500ms", got)
	}
	if got := audio.Duration(100, 0); got != 0 {
		t.Errorf("invalid rate: got %v, want 0", got)
	}
}

func TestEncodeWAV_Header(t *testing.T) {
	pcm := samplesToBytes([]int16{1, 2, 3, 4})
	wav := audio.EncodeWAV(pcm, 24000)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("total size: got %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 24000 {
		t.Errorf("sample rate: got %d, want 24000", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != uint32(len(pcm)) {
		t.Errorf("data size: got %d, want %d", size, len(pcm))
	}
}
