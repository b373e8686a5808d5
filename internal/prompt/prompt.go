// Package prompt assembles the system instructions that shape the remote
// interviewer's behaviour for a session.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects the interview style.
type Mode string

const (
	ModeHR         Mode = "hr"
	ModeTechnical  Mode = "technical"
	ModeBehavioral Mode = "behavioral"
)

// Valid reports whether m is a known interview mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeHR, ModeTechnical, ModeBehavioral:
		return true
	}
	return false
}

// maxResumeRunes bounds the resume excerpt included in the instructions so a
// long document cannot crowd out the rest of the prompt.
const maxResumeRunes = 500

const baseInstructions = `You are a professional job interviewer conducting a live, spoken mock interview. Address the candidate directly and naturally, one question at a time, and keep each question concise. React to the candidate's answers with brief follow-ups before moving on. Infer the role title from the job description below and refer to it by name. Stay in character as the interviewer for the entire session.`

var modeInstructions = map[Mode]string{
	ModeHR:         `Focus on motivation, career history, salary expectations, availability and culture fit. Keep the tone friendly and conversational.`,
	ModeTechnical:  `Focus on technical depth: probe the candidate's understanding of the technologies and methods the role requires, ask them to reason through problems aloud, and follow up on vague answers.`,
	ModeBehavioral: `Focus on past behaviour: ask for concrete examples of situations the candidate handled, using questions in the form "tell me about a time when". Probe for the candidate's specific role and the outcome.`,
}

// noResumeClause is appended when no resume is supplied, so the model does
// not invent a background for the candidate.
const noResumeClause = `No resume was provided. Do not invent or assume any facts about the candidate's background, employers or education; ask the candidate instead.`

// Params are the runtime inputs to instruction assembly.
type Params struct {
	Mode           Mode
	JobDescription string

	// Resume is an optional plain-text resume excerpt. It is truncated
	// to a bounded length before inclusion.
	Resume string
}

// Build assembles the full system instructions for a session.
func Build(p Params) string {
	var b strings.Builder
	b.WriteString(baseInstructions)
	b.WriteString("\n\n")

	if mode, ok := modeInstructions[p.Mode]; ok {
		b.WriteString(mode)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Job description:\n%s\n\n", strings.TrimSpace(p.JobDescription))

	if resume := strings.TrimSpace(p.Resume); resume != "" {
		fmt.Fprintf(&b, "Candidate resume excerpt:\n%s\n", Truncate(resume, maxResumeRunes))
	} else {
		b.WriteString(noResumeClause)
		b.WriteString("\n")
	}

	return b.String()
}

// Truncate bounds s to at most n runes, appending an ellipsis when content
// was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
