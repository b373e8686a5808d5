package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory has
// been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions for each
// provider type. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	live   map[string]func(ProviderEntry) (live.Provider, error)
	report map[string]func(ProviderEntry) (llm.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		live:   make(map[string]func(ProviderEntry) (live.Provider, error)),
		report: make(map[string]func(ProviderEntry) (llm.Provider, error)),
	}
}

// RegisterLive registers a realtime speech provider factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterLive(name string, factory func(ProviderEntry) (live.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[name] = factory
}

// RegisterReport registers a report LLM provider factory under name.
func (r *Registry) RegisterReport(name string, factory func(ProviderEntry) (llm.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report[name] = factory
}

// CreateLive instantiates a realtime speech provider using the factory
// registered under entry.Name.
// Returns [ErrProviderNotRegistered] if no factory has been registered for that name.
func (r *Registry) CreateLive(entry ProviderEntry) (live.Provider, error) {
	r.mu.RLock()
	factory, ok := r.live[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: live/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateReport instantiates a report LLM provider using the factory registered under entry.Name.
func (r *Registry) CreateReport(entry ProviderEntry) (llm.Provider, error) {
	r.mu.RLock()
	factory, ok := r.report[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: report/%q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}
