package transcript_test

import (
	"testing"
	"time"

	"github.com/MuddySheep/AI-Interviewer/internal/transcript"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
)

func item(role, text string, sec int) live.TranscriptItem {
	return live.TranscriptItem{
		Role:      role,
		Text:      text,
		Timestamp: time.Date(2025, 6, 1, 10, 0, sec, 0, time.UTC),
	}
}

func TestConsolidate_MergesSameRoleFragments(t *testing.T) {
	in := []live.TranscriptItem{
		item(live.RoleModel, "Tell me", 0),
		item(live.RoleModel, " about", 1),
		item(live.RoleModel, " yourself.", 2),
		item(live.RoleUser, "I build", 3),
		item(live.RoleUser, " backend systems.", 4),
	}

	out := transcript.Consolidate(in)
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(out), out)
	}
	if out[0].Text != "Tell me about yourself." {
		t.Errorf("merged model text = %q", out[0].Text)
	}
	if out[1].Text != "I build backend systems." {
		t.Errorf("merged user text = %q", out[1].Text)
	}
	// Merged items keep the timestamp of their first fragment.
	if !out[0].Timestamp.Equal(in[0].Timestamp) {
		t.Errorf("timestamp = %v, want %v", out[0].Timestamp, in[0].Timestamp)
	}
}

func TestConsolidate_AlternatingRolesStaySeparate(t *testing.T) {
	in := []live.TranscriptItem{
		item(live.RoleModel, "Question one?", 0),
		item(live.RoleUser, "Answer one.", 1),
		item(live.RoleModel, "Question two?", 2),
	}

	out := transcript.Consolidate(in)
	if len(out) != 3 {
		t.Fatalf("got %d items, want 3", len(out))
	}
}

func TestConsolidate_DropsBlankFragments(t *testing.T) {
	in := []live.TranscriptItem{
		item(live.RoleUser, "  ", 0),
		item(live.RoleUser, "Hello.", 1),
		item(live.RoleModel, "\n", 2),
	}

	out := transcript.Consolidate(in)
	if len(out) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(out), out)
	}
	if out[0].Text != "Hello." {
		t.Errorf("text = %q", out[0].Text)
	}
}

func TestConsolidate_BlankBetweenFragmentsDoesNotSplit(t *testing.T) {
	in := []live.TranscriptItem{
		item(live.RoleUser, "First half", 0),
		item(live.RoleUser, "   ", 1),
		item(live.RoleUser, " second half.", 2),
	}

	out := transcript.Consolidate(in)
	if len(out) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(out), out)
	}
	if out[0].Text != "First half second half." {
		t.Errorf("text = %q", out[0].Text)
	}
}

func TestConsolidate_Empty(t *testing.T) {
	if out := transcript.Consolidate(nil); out != nil {
		t.Errorf("Consolidate(nil) = %+v, want nil", out)
	}
}

func TestConsolidate_DoesNotModifyInput(t *testing.T) {
	in := []live.TranscriptItem{
		item(live.RoleUser, "one", 0),
		item(live.RoleUser, " two", 1),
	}
	transcript.Consolidate(in)
	if in[0].Text != "one" {
		t.Errorf("input mutated: %q", in[0].Text)
	}
}
