// Package mock provides a test double for the llm package interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm"
)

// Provider is a configurable llm.Provider test double.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Complete. If nil, a response with empty
	// content is returned.
	Response *llm.CompletionResponse

	// CompleteErr, if non-nil, is returned as the error from Complete.
	CompleteErr error

	// CompleteCalls records every request passed to Complete in order.
	CompleteCalls []llm.CompletionRequest
}

// Complete records the call and returns Response, CompleteErr.
func (p *Provider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = append(p.CompleteCalls, req)
	if p.CompleteErr != nil {
		return nil, p.CompleteErr
	}
	if p.Response != nil {
		return p.Response, nil
	}
	return &llm.CompletionResponse{}, nil
}

// CallCount returns the number of Complete invocations. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.CompleteCalls)
}

var _ llm.Provider = (*Provider)(nil)
