package media_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"strings"
	"testing"

	"github.com/MuddySheep/AI-Interviewer/pkg/media"
	"github.com/MuddySheep/AI-Interviewer/pkg/media/mock"
)

// testJPEG encodes a solid-colour test image of the given size.
func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

// ── Guard ──────────────────────────────────────────────────────────────────────

func TestGuard_RejectsNonIncreasingTimestamps(t *testing.T) {
	det := &mock.Detector{Result: &media.Result{}}
	g := media.NewGuard(det)

	if res := g.Analyze(nil, 100); res == nil {
		t.Fatal("first call with valid timestamp returned nil")
	}
	// Equal and earlier timestamps are rejected without reaching the
	// detector.
	if res := g.Analyze(nil, 100); res != nil {
		t.Error("equal timestamp should return nil")
	}
	if res := g.Analyze(nil, 50); res != nil {
		t.Error("earlier timestamp should return nil")
	}
	if got := det.CallCount(); got != 1 {
		t.Errorf("detector invoked %d times, want 1", got)
	}

	if res := g.Analyze(nil, 101); res == nil {
		t.Error("later timestamp should pass the guard")
	}
}

func TestGuard_RejectsNonPositiveTimestamps(t *testing.T) {
	det := &mock.Detector{Result: &media.Result{}}
	g := media.NewGuard(det)

	if res := g.Analyze(nil, 0); res != nil {
		t.Error("zero timestamp should return nil")
	}
	if res := g.Analyze(nil, -5); res != nil {
		t.Error("negative timestamp should return nil")
	}
	if got := det.CallCount(); got != 0 {
		t.Errorf("detector invoked %d times, want 0", got)
	}
}

func TestGuard_AbsorbsDetectorPanic(t *testing.T) {
	det := &mock.Detector{Panic: true}
	g := media.NewGuard(det)

	if res := g.Analyze(nil, 10); res != nil {
		t.Error("panicking detector should yield nil")
	}
	// The guard stays usable after a panic.
	det.Panic = false
	det.Result = &media.Result{PostureIssue: true}
	res := g.Analyze(nil, 20)
	if res == nil || !res.PostureIssue {
		t.Errorf("result after recovery = %+v", res)
	}
}

func TestGuard_NilDetectorDisablesAnalysis(t *testing.T) {
	// A session configured without a landmark detector must skip visual
	// analysis cleanly, not fall into the panic-recovery path on every frame.
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	g := media.NewGuard(nil)
	for ts := int64(100); ts <= 1000; ts += 100 {
		if res := g.Analyze([]byte("frame"), ts); res != nil {
			t.Fatalf("Analyze with no detector = %+v, want nil", res)
		}
	}
	if strings.Contains(logs.String(), "panicked") {
		t.Errorf("nil detector reached the panic-recovery path:\n%s", logs.String())
	}
}

// ── Stats ──────────────────────────────────────────────────────────────────────

func TestStats_ZeroFramesSummary(t *testing.T) {
	var s media.Stats
	summary := s.Summary()
	if !strings.Contains(summary, "no video data") {
		t.Errorf("zero-frame summary = %q; want a no-data statement", summary)
	}
	if strings.Contains(summary, "NaN") || strings.Contains(summary, "%!") {
		t.Errorf("zero-frame summary contains formatting artifacts: %q", summary)
	}
	if s.EyeContactPercent() != 0 || s.GoodPosturePercent() != 0 {
		t.Error("percentages with zero frames should be 0")
	}
}

func TestStats_RecordAndPercentages(t *testing.T) {
	var s media.Stats
	s.Record(&media.Result{})                                        // good frame
	s.Record(&media.Result{EyeContactIssue: true})                   // looked away
	s.Record(&media.Result{EyeContactIssue: true, PostureIssue: true}) // both issues
	s.Record(nil)                                                    // no signal, not counted

	if s.TotalFrames != 3 {
		t.Fatalf("TotalFrames = %d, want 3", s.TotalFrames)
	}
	if got := s.EyeContactPercent(); got < 33 || got > 34 {
		t.Errorf("EyeContactPercent = %.2f, want ~33.3", got)
	}
	if got := s.GoodPosturePercent(); got < 66 || got > 67 {
		t.Errorf("GoodPosturePercent = %.2f, want ~66.7", got)
	}
	if !strings.Contains(s.Summary(), "3 frames analyzed") {
		t.Errorf("summary = %q", s.Summary())
	}
}

// ── StripDataURI ───────────────────────────────────────────────────────────────

func TestStripDataURI(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01}
	encoded := base64.StdEncoding.EncodeToString(raw)

	got, err := media.StripDataURI("data:image/jpeg;base64," + encoded)
	if err != nil {
		t.Fatalf("StripDataURI with prefix: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("decoded = %v, want %v", got, raw)
	}

	// Plain base64 without a prefix is accepted too.
	got, err = media.StripDataURI(encoded)
	if err != nil {
		t.Fatalf("StripDataURI without prefix: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("decoded = %v, want %v", got, raw)
	}

	if _, err := media.StripDataURI("data:image/jpeg;base64"); err == nil {
		t.Error("malformed data URI should return an error")
	}
	if _, err := media.StripDataURI("not base64!!"); err == nil {
		t.Error("invalid base64 should return an error")
	}
}

// ── Downsample ─────────────────────────────────────────────────────────────────

func TestDownsample_ShrinksLargeFrame(t *testing.T) {
	frame := testJPEG(t, 640, 480)

	out, err := media.Downsample(frame, 160)
	if err != nil {
		t.Fatalf("Downsample: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode downsampled frame: %v", err)
	}
	if cfg.Width != 160 || cfg.Height != 120 {
		t.Errorf("downsampled size = %dx%d, want 160x120", cfg.Width, cfg.Height)
	}
	if len(out) >= len(frame) {
		t.Errorf("downsampled frame (%d bytes) not smaller than original (%d bytes)", len(out), len(frame))
	}
}

func TestDownsample_SmallFrameKeepsSize(t *testing.T) {
	frame := testJPEG(t, 100, 80)

	out, err := media.Downsample(frame, 160)
	if err != nil {
		t.Fatalf("Downsample: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode downsampled frame: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 80 {
		t.Errorf("size = %dx%d, want 100x80 unchanged", cfg.Width, cfg.Height)
	}
}

func TestDownsample_RejectsGarbage(t *testing.T) {
	if _, err := media.Downsample([]byte("not an image"), 160); err == nil {
		t.Error("garbage input should return an error")
	}
}
