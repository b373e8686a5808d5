package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
)

// downsampleQuality is the JPEG quality for frames forwarded to the remote
// endpoint. Low quality is fine: the model reads coarse body language, not
// detail.
const downsampleQuality = 60

// StripDataURI decodes a browser-supplied frame string into raw bytes,
// removing a leading data-URI prefix ("data:image/jpeg;base64,...") when
// present. Plain base64 input is accepted as-is.
func StripDataURI(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		_, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, fmt.Errorf("media: malformed data URI")
		}
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("media: decode frame: %w", err)
	}
	return data, nil
}

// Downsample re-encodes a JPEG frame at reduced resolution so that its
// longest side is at most maxDim pixels. Frames already small enough are
// re-encoded at the reduced quality only.
func Downsample(frame []byte, maxDim int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	scale := 1.0
	if longest := max(w, h); longest > maxDim {
		scale = float64(maxDim) / float64(longest)
	}
	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	// Nearest-neighbour is good enough for a thumbnail-scale frame and
	// avoids pulling in an image-processing dependency for one resize.
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		sy := bounds.Min.Y + y*h/dh
		for x := 0; x < dw; x++ {
			sx := bounds.Min.X + x*w/dw
			dst.Set(x, y, src.At(sx, sy))
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: downsampleQuality}); err != nil {
		return nil, fmt.Errorf("media: encode image: %w", err)
	}
	return buf.Bytes(), nil
}
