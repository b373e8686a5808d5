package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm"
)

// generation tuning. Low temperature keeps scoring consistent between runs
// on the same transcript.
const (
	genTemperature = 0.2
	genMaxTokens   = 2048
)

const systemPrompt = `You are an experienced interview coach. You will receive the full transcript of a mock job interview. Evaluate the candidate's performance and respond with ONLY a JSON object, no prose, matching exactly this shape:

{
  "overall": <0-100>,
  "dimensions": {
    "communication": <0-100>,
    "technicalKnowledge": <0-100>,
    "problemSolving": <0-100>,
    "culturalFit": <0-100>,
    "confidence": <0-100>,
    "clarity": <0-100>,
    "structure": <0-100>,
    "relevance": <0-100>,
    "enthusiasm": <0-100>,
    "professionalism": <0-100>,
    "activeListening": <0-100>
  },
  "strengths": ["..."],
  "improvements": ["..."],
  "suggestions": ["..."],
  "summary": "..."
}

Transcript lines marked [system] contain measured visual statistics (eye contact, posture); weight them into the relevant dimensions. Base every judgement on the transcript only.`

// LLMGenerator implements Generator on top of an llm.Provider.
type LLMGenerator struct {
	provider llm.Provider
}

var _ Generator = (*LLMGenerator)(nil)

// NewLLMGenerator creates a generator backed by the given provider.
func NewLLMGenerator(p llm.Provider) *LLMGenerator {
	return &LLMGenerator{provider: p}
}

// Generate renders the transcript, requests an evaluation and parses the
// model's JSON reply into a Report. Scores are clamped to the valid range.
func (g *LLMGenerator) Generate(ctx context.Context, transcript []live.TranscriptItem, cfg Config) (*Report, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("report: empty transcript")
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: renderInput(transcript, cfg)},
		},
		Temperature: genTemperature,
		MaxTokens:   genMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("report: completion: %w", err)
	}

	rep, err := parseReport(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("report: parse response: %w", err)
	}
	rep.Clamp()
	return rep, nil
}

// renderInput flattens the session context and transcript into the user
// message for the evaluation request.
func renderInput(transcript []live.TranscriptItem, cfg Config) string {
	var b strings.Builder
	if cfg.Mode != "" {
		fmt.Fprintf(&b, "Interview mode: %s\n", cfg.Mode)
	}
	if cfg.JobDescription != "" {
		fmt.Fprintf(&b, "Job description: %s\n", cfg.JobDescription)
	}
	b.WriteString("\nTranscript:\n")
	for _, item := range transcript {
		speaker := "candidate"
		switch item.Role {
		case live.RoleModel:
			speaker = "interviewer"
		case live.RoleSystem:
			speaker = "system"
		}
		fmt.Fprintf(&b, "[%s] %s\n", speaker, item.Text)
	}
	return b.String()
}

// parseReport extracts the JSON object from a model reply. Models sometimes
// wrap the object in code fences or a sentence; everything outside the
// outermost braces is ignored.
func parseReport(content string) (*Report, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var rep Report
	if err := json.Unmarshal([]byte(content[start:end+1]), &rep); err != nil {
		return nil, err
	}
	if rep.Summary == "" {
		return nil, fmt.Errorf("reply missing summary")
	}
	return &rep, nil
}
