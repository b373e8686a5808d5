package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MuddySheep/AI-Interviewer/internal/report"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm/mock"
)

func sampleTranscript() []live.TranscriptItem {
	now := time.Now()
	return []live.TranscriptItem{
		{Role: live.RoleModel, Text: "Tell me about yourself.", Timestamp: now},
		{Role: live.RoleUser, Text: "I am a backend engineer with five years of experience.", Timestamp: now},
		{Role: live.RoleSystem, Text: "Visual analysis summary: eye contact maintained in 80% of frames, good posture in 90% of frames (40 frames analyzed).", Timestamp: now},
	}
}

const validReply = `{
  "overall": 72,
  "dimensions": {
    "communication": 70, "technicalKnowledge": 75, "problemSolving": 68,
    "culturalFit": 71, "confidence": 66, "clarity": 74, "structure": 69,
    "relevance": 77, "enthusiasm": 65, "professionalism": 80, "activeListening": 73
  },
  "strengths": ["Clear introduction"],
  "improvements": ["More concrete examples"],
  "suggestions": ["Use the STAR structure"],
  "summary": "A solid performance with room to grow."
}`

func TestGenerate_ParsesModelReply(t *testing.T) {
	p := &mock.Provider{Response: &llm.CompletionResponse{Content: validReply}}
	g := report.NewLLMGenerator(p)

	rep, err := g.Generate(context.Background(), sampleTranscript(), report.Config{
		Mode:           "technical",
		JobDescription: "Backend engineer",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.Overall != 72 {
		t.Errorf("Overall = %v, want 72", rep.Overall)
	}
	if rep.Dimensions.Professionalism != 80 {
		t.Errorf("Professionalism = %v, want 80", rep.Dimensions.Professionalism)
	}
	if rep.Fallback {
		t.Error("parsed report marked as fallback")
	}

	// The request carried the transcript with speaker attribution and the
	// session context.
	if p.CallCount() != 1 {
		t.Fatalf("Complete called %d times, want 1", p.CallCount())
	}
	input := p.CompleteCalls[0].Messages[0].Content
	for _, want := range []string{"[interviewer]", "[candidate]", "[system]", "Interview mode: technical", "Backend engineer"} {
		if !strings.Contains(input, want) {
			t.Errorf("request input missing %q", want)
		}
	}
}

func TestGenerate_ExtractsFencedJSON(t *testing.T) {
	fenced := "Here is the evaluation:\n```json\n" + validReply + "\n```\nGood luck!"
	p := &mock.Provider{Response: &llm.CompletionResponse{Content: fenced}}
	g := report.NewLLMGenerator(p)

	rep, err := g.Generate(context.Background(), sampleTranscript(), report.Config{})
	if err != nil {
		t.Fatalf("Generate with fenced reply: %v", err)
	}
	if rep.Summary != "A solid performance with room to grow." {
		t.Errorf("Summary = %q", rep.Summary)
	}
}

func TestGenerate_ClampsOutOfRangeScores(t *testing.T) {
	reply := `{"overall": 250, "dimensions": {"communication": -20}, "summary": "x"}`
	p := &mock.Provider{Response: &llm.CompletionResponse{Content: reply}}
	g := report.NewLLMGenerator(p)

	rep, err := g.Generate(context.Background(), sampleTranscript(), report.Config{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.Overall != report.MaxScore {
		t.Errorf("Overall = %v, want clamped to %d", rep.Overall, report.MaxScore)
	}
	if rep.Dimensions.Communication != report.MinScore {
		t.Errorf("Communication = %v, want clamped to %d", rep.Dimensions.Communication, report.MinScore)
	}
}

func TestGenerate_Errors(t *testing.T) {
	g := report.NewLLMGenerator(&mock.Provider{CompleteErr: errors.New("backend down")})
	if _, err := g.Generate(context.Background(), sampleTranscript(), report.Config{}); err == nil {
		t.Error("provider failure should surface as an error")
	}

	g = report.NewLLMGenerator(&mock.Provider{Response: &llm.CompletionResponse{Content: "no json here"}})
	if _, err := g.Generate(context.Background(), sampleTranscript(), report.Config{}); err == nil {
		t.Error("unparseable reply should surface as an error")
	}

	g = report.NewLLMGenerator(&mock.Provider{Response: &llm.CompletionResponse{Content: validReply}})
	if _, err := g.Generate(context.Background(), nil, report.Config{}); err == nil {
		t.Error("empty transcript should surface as an error")
	}
}

func TestFallback_StructurallyValid(t *testing.T) {
	rep := report.Fallback()

	if !rep.Fallback {
		t.Error("fallback report not marked as such")
	}
	if rep.Summary == "" {
		t.Error("fallback summary empty")
	}
	if len(rep.Strengths) == 0 || len(rep.Improvements) == 0 || len(rep.Suggestions) == 0 {
		t.Error("fallback lists must all be populated")
	}
	if rep.Overall < report.MinScore || rep.Overall > report.MaxScore {
		t.Errorf("fallback overall %v out of range", rep.Overall)
	}
}
