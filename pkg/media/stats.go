package media

import "fmt"

// Stats accumulates per-frame visual counters over a session. Counters are
// only mutated from the orchestrator's tick loop and read at session end, so
// no locking is needed.
type Stats struct {
	TotalFrames       int
	EyeContactFrames  int
	GoodPostureFrames int
}

// Record updates the counters with one analyzed frame's result.
func (s *Stats) Record(r *Result) {
	if r == nil {
		return
	}
	s.TotalFrames++
	if !r.EyeContactIssue {
		s.EyeContactFrames++
	}
	if !r.PostureIssue {
		s.GoodPostureFrames++
	}
}

// EyeContactPercent returns the share of frames with eye contact, or 0 when
// no frames were analyzed.
func (s *Stats) EyeContactPercent() float64 {
	if s.TotalFrames == 0 {
		return 0
	}
	return 100 * float64(s.EyeContactFrames) / float64(s.TotalFrames)
}

// GoodPosturePercent returns the share of frames with good posture, or 0
// when no frames were analyzed.
func (s *Stats) GoodPosturePercent() float64 {
	if s.TotalFrames == 0 {
		return 0
	}
	return 100 * float64(s.GoodPostureFrames) / float64(s.TotalFrames)
}

// Summary renders the counters as a short human-readable note for the
// transcript. With zero analyzed frames it states that no visual data is
// available instead of reporting percentages.
func (s *Stats) Summary() string {
	if s.TotalFrames == 0 {
		return "Visual analysis summary: no video data was captured during this session."
	}
	return fmt.Sprintf(
		"Visual analysis summary: eye contact maintained in %.0f%% of frames, good posture in %.0f%% of frames (%d frames analyzed).",
		s.EyeContactPercent(), s.GoodPosturePercent(), s.TotalFrames,
	)
}
