package resilience

import (
	"context"

	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm"
)

// LLMFallback implements [llm.Provider] with automatic failover across
// multiple text-completion backends. Each backend has its own breaker; when
// the primary fails or its breaker is open, the next healthy fallback is
// tried. Used for the report path so a flaky primary does not cost the
// candidate their evaluation.
type LLMFallback struct {
	chain *Chain[llm.Provider]
}

var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates an [LLMFallback] with primary as the preferred
// backend.
func NewLLMFallback(primary llm.Provider, name string, cfg BreakerConfig) *LLMFallback {
	return &LLMFallback{chain: NewChain(primary, name, cfg)}
}

// AddFallback registers an additional backend, tried after the primary.
func (f *LLMFallback) AddFallback(name string, provider llm.Provider) {
	f.chain.Add(name, provider)
}

// Complete sends req to the first healthy backend and returns its response.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return Run(f.chain, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}
