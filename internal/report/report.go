// Package report turns a finished interview transcript into a structured
// performance report.
//
// Generation is best-effort: if the backing model fails or returns something
// unusable, callers substitute [Fallback] so the candidate always reaches a
// result, never an error screen.
package report

import (
	"context"

	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
)

// Score bounds. All scores, overall and per dimension, live on this scale.
const (
	MinScore = 0
	MaxScore = 100
)

// Dimensions are the named sub-scores of a report.
type Dimensions struct {
	Communication      float64 `json:"communication"`
	TechnicalKnowledge float64 `json:"technicalKnowledge"`
	ProblemSolving     float64 `json:"problemSolving"`
	CulturalFit        float64 `json:"culturalFit"`
	Confidence         float64 `json:"confidence"`
	Clarity            float64 `json:"clarity"`
	Structure          float64 `json:"structure"`
	Relevance          float64 `json:"relevance"`
	Enthusiasm         float64 `json:"enthusiasm"`
	Professionalism    float64 `json:"professionalism"`
	ActiveListening    float64 `json:"activeListening"`
}

// Report is the structured outcome of an interview session.
type Report struct {
	Overall    float64    `json:"overall"`
	Dimensions Dimensions `json:"dimensions"`

	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Suggestions  []string `json:"suggestions"`

	Summary string `json:"summary"`

	// Fallback marks a report substituted after a generation failure.
	Fallback bool `json:"fallback,omitempty"`
}

// Config carries the session context the generator may reference.
type Config struct {
	Mode           string
	JobDescription string
}

// Generator produces a Report from a transcript.
type Generator interface {
	Generate(ctx context.Context, transcript []live.TranscriptItem, cfg Config) (*Report, error)
}

// Clamp bounds every score to the valid range in place.
func (r *Report) Clamp() {
	r.Overall = clampScore(r.Overall)
	d := &r.Dimensions
	for _, s := range []*float64{
		&d.Communication, &d.TechnicalKnowledge, &d.ProblemSolving,
		&d.CulturalFit, &d.Confidence, &d.Clarity, &d.Structure,
		&d.Relevance, &d.Enthusiasm, &d.Professionalism, &d.ActiveListening,
	} {
		*s = clampScore(*s)
	}
}

func clampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Fallback returns a structurally valid neutral report used when generation
// fails. Every list is populated so downstream rendering never deals with
// missing sections.
func Fallback() *Report {
	const neutral = 50
	return &Report{
		Overall: neutral,
		Dimensions: Dimensions{
			Communication:      neutral,
			TechnicalKnowledge: neutral,
			ProblemSolving:     neutral,
			CulturalFit:        neutral,
			Confidence:         neutral,
			Clarity:            neutral,
			Structure:          neutral,
			Relevance:          neutral,
			Enthusiasm:         neutral,
			Professionalism:    neutral,
			ActiveListening:    neutral,
		},
		Strengths:    []string{"You completed the full interview session."},
		Improvements: []string{"Automated scoring was unavailable for this session."},
		Suggestions:  []string{"Review the transcript yourself and note answers you would improve."},
		Summary:      "The detailed performance report could not be generated for this session. The transcript is available for self-review.",
		Fallback:     true,
	}
}
