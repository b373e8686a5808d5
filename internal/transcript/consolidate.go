// Package transcript post-processes the raw transcript stream of a live
// session.
//
// Realtime providers emit transcription in fragments: a single spoken
// sentence arrives as several partial items with the same role ("Tell me",
// " about", " yourself."). Stored verbatim these fragments make the
// transcript hard to read and waste report-generation context. Consolidate
// merges runs of same-role fragments back into whole utterances.
package transcript

import (
	"strings"

	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
)

// Consolidate merges consecutive same-role items into single utterances and
// drops items that are empty after trimming. Fragments are joined verbatim
// because providers include their own spacing; only the merged result is
// trimmed. Each merged item keeps the timestamp of its first fragment.
//
// The input slice is not modified. An empty input yields a nil result.
func Consolidate(items []live.TranscriptItem) []live.TranscriptItem {
	var out []live.TranscriptItem

	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == item.Role {
			out[n-1].Text += item.Text
			continue
		}
		out = append(out, item)
	}

	for i := range out {
		out[i].Text = strings.TrimSpace(out[i].Text)
	}
	return out
}
