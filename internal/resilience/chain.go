package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every entry in a [Chain] fails or has an
// open breaker.
var ErrAllFailed = errors.New("resilience: all providers failed")

// chainEntry pairs a provider value with its dedicated breaker.
type chainEntry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Chain composes a primary and zero or more fallback instances of the same
// provider type. Each entry has its own [Breaker]; when the primary fails or
// its breaker is open, the next healthy entry is tried in registration
// order.
//
// Chain is safe for concurrent use after construction.
type Chain[T any] struct {
	entries []chainEntry[T]
	cfg     BreakerConfig
}

// NewChain creates a [Chain] with primary as the first entry. The breaker
// config is shared by all entries; the Name field is replaced per entry.
func NewChain[T any](primary T, name string, cfg BreakerConfig) *Chain[T] {
	c := &Chain[T]{cfg: cfg}
	c.Add(name, primary)
	return c
}

// Add appends a fallback. Fallbacks are tried in the order added, after the
// primary. Not safe to call concurrently with Run.
func (c *Chain[T]) Add(name string, value T) {
	cfg := c.cfg
	cfg.Name = name
	c.entries = append(c.entries, chainEntry[T]{
		name:    name,
		value:   value,
		breaker: NewBreaker(cfg),
	})
}

// Len returns the number of entries, primary included.
func (c *Chain[T]) Len() int { return len(c.entries) }

// Run tries fn against each entry in order until one succeeds. Entries with
// open breakers are skipped. Returns [ErrAllFailed] wrapped with the last
// error when every entry fails. This is a package-level function because Go
// does not support method-level type parameters.
func Run[T any, R any](c *Chain[T], fn func(T) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for i := range c.entries {
		entry := &c.entries[i]
		var result R
		err := entry.breaker.Execute(func() error {
			var innerErr error
			result, innerErr = fn(entry.value)
			return innerErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrOpen) {
			slog.Debug("skipping provider, breaker open", "provider", entry.name)
		} else {
			slog.Warn("provider failed, trying next", "provider", entry.name, "err", err)
		}
	}
	return zero, fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
}
