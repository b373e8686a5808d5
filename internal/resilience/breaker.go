// Package resilience provides circuit breaking and failover for the
// interviewer's remote backends.
//
// The report path is the main consumer: evaluation requests go to hosted
// LLMs that fail in bursts, and a [Chain] of providers with per-entry
// [Breaker] state lets a flaky primary be bypassed in favour of a healthy
// fallback instead of failing the candidate's report outright.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Execute] while the breaker is open and the
// reset timeout has not yet elapsed.
var ErrOpen = errors.New("resilience: breaker open")

// State is the operating mode of a [Breaker].
type State int

const (
	// StateClosed forwards all calls.
	StateClosed State = iota

	// StateOpen rejects calls with [ErrOpen] until the reset timeout
	// elapses.
	StateOpen

	// StateHalfOpen allows a single probe call. Success closes the
	// breaker, failure re-opens it.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds tuning knobs for a [Breaker]. Zero values are replaced
// with defaults.
type BreakerConfig struct {
	// Name labels the breaker in log messages.
	Name string

	// MaxFailures is the number of consecutive failures before the
	// breaker opens. Default: 3.
	MaxFailures int

	// ResetTimeout is how long the breaker stays open before allowing a
	// probe call. Default: 30s.
	ResetTimeout time.Duration
}

// BreakerOption configures a [Breaker] at construction.
type BreakerOption func(*Breaker)

// WithBreakerClock overrides the breaker's time source. Primarily used in
// tests.
func WithBreakerClock(clock func() time.Time) BreakerOption {
	return func(b *Breaker) { b.clock = clock }
}

// Breaker is a three-state circuit breaker (closed, open, half-open).
type Breaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	clock        func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probing     bool
}

// NewBreaker creates a [Breaker] from cfg.
func NewBreaker(cfg BreakerConfig, opts ...BreakerOption) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	b := &Breaker{
		name:         cfg.Name,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		clock:        time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Execute runs fn if the breaker allows it. In the open state it returns
// [ErrOpen] without calling fn; after the reset timeout a single probe call
// is let through.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case StateOpen:
		if b.clock().Sub(b.lastFailure) < b.resetTimeout {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.probing = true
		slog.Info("breaker probing", "name", b.name)
	case StateHalfOpen:
		if b.probing {
			// A probe is already in flight.
			b.mu.Unlock()
			return ErrOpen
		}
		b.probing = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if err != nil {
		b.fail()
	} else {
		b.succeed()
	}
	return err
}

// fail updates failure accounting. Must be called with b.mu held.
func (b *Breaker) fail() {
	b.lastFailure = b.clock()

	if b.state == StateHalfOpen {
		b.state = StateOpen
		slog.Warn("breaker re-opened after failed probe", "name", b.name)
		return
	}

	b.failures++
	if b.failures >= b.maxFailures {
		b.state = StateOpen
		slog.Warn("breaker opened", "name", b.name, "consecutive_failures", b.failures)
	}
}

// succeed resets the breaker. Must be called with b.mu held.
func (b *Breaker) succeed() {
	if b.state == StateHalfOpen {
		slog.Info("breaker closed after successful probe", "name", b.name)
	}
	b.state = StateClosed
	b.failures = 0
}

// State returns the breaker's current state. An elapsed reset timeout is
// reported as [StateHalfOpen]; the actual transition happens on the next
// [Breaker.Execute] call.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.clock().Sub(b.lastFailure) >= b.resetTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to closed, clearing failure counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.probing = false
}
