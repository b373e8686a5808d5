package audio

import "encoding/base64"

// EncodePCM16 converts normalised float32 samples to PCM16 little-endian
// bytes. Samples are clamped to [-1, 1]. Negative samples scale by 32768 and
// non-negative samples by 32767 so that +1.0 cannot overflow int16.
// An empty input yields an empty output.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// DecodePCM16 converts PCM16 little-endian bytes to normalised float32
// samples in [-1, 1). Values are divided by 32768. A trailing odd byte is
// ignored.
func DecodePCM16(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := range n {
		v := int16(data[i*2]) | int16(data[i*2+1])<<8
		out[i] = float32(v) / 32768
	}
	return out
}

// EncodeChunk encodes raw bytes for text-safe transport. The encoding is
// lossless for all byte sequences.
func EncodeChunk(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeChunk reverses [EncodeChunk].
func DecodeChunk(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
