package resilience_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MuddySheep/AI-Interviewer/internal/resilience"
)

var errBackend = errors.New("backend unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newBreaker(clock *fakeClock) *resilience.Breaker {
	return resilience.NewBreaker(resilience.BreakerConfig{
		Name:         "test",
		MaxFailures:  3,
		ResetTimeout: 30 * time.Second,
	}, resilience.WithBreakerClock(clock.Now))
}

func fail() error    { return errBackend }
func succeed() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := newBreaker(newFakeClock())

	for range 3 {
		if err := b.Execute(fail); !errors.Is(err, errBackend) {
			t.Fatalf("Execute = %v, want backend error", err)
		}
	}
	if b.State() != resilience.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Execute(succeed); !errors.Is(err, resilience.ErrOpen) {
		t.Errorf("Execute while open = %v, want ErrOpen", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := newBreaker(newFakeClock())

	b.Execute(fail)
	b.Execute(fail)
	b.Execute(succeed)
	b.Execute(fail)
	b.Execute(fail)

	if b.State() != resilience.StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreaker_ProbeClosesAfterTimeout(t *testing.T) {
	clock := newFakeClock()
	b := newBreaker(clock)

	for range 3 {
		b.Execute(fail)
	}
	clock.Advance(31 * time.Second)

	if b.State() != resilience.StateHalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}
	if err := b.Execute(succeed); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if b.State() != resilience.StateClosed {
		t.Errorf("state after probe = %v, want closed", b.State())
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	clock := newFakeClock()
	b := newBreaker(clock)

	for range 3 {
		b.Execute(fail)
	}
	clock.Advance(31 * time.Second)

	if err := b.Execute(fail); !errors.Is(err, errBackend) {
		t.Fatalf("probe = %v, want backend error", err)
	}
	if b.State() != resilience.StateOpen {
		t.Errorf("state after failed probe = %v, want open", b.State())
	}
	if err := b.Execute(succeed); !errors.Is(err, resilience.ErrOpen) {
		t.Errorf("Execute after failed probe = %v, want ErrOpen", err)
	}
}

func TestBreaker_ResetForcesClosed(t *testing.T) {
	b := newBreaker(newFakeClock())

	for range 3 {
		b.Execute(fail)
	}
	b.Reset()

	if b.State() != resilience.StateClosed {
		t.Fatalf("state after Reset = %v, want closed", b.State())
	}
	if err := b.Execute(succeed); err != nil {
		t.Errorf("Execute after Reset = %v", err)
	}
}

func TestState_String(t *testing.T) {
	cases := map[resilience.State]string{
		resilience.StateClosed:   "closed",
		resilience.StateOpen:     "open",
		resilience.StateHalfOpen: "half-open",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
