// Package nudge manages transient coaching advisories shown to the candidate
// during an interview.
//
// Advisories are heavily rate-limited so they coach rather than distract: at
// most one is visible at any instant, each category has a long cooldown, and
// every advisory removes itself after a short display period.
package nudge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Category identifies the behavioural signal an advisory addresses.
type Category string

const (
	CategoryPosture    Category = "posture"
	CategoryEyeContact Category = "eye-contact"
	CategoryAudio      Category = "audio"
	CategoryGeneral    Category = "general"
)

const (
	// displayDuration is how long an admitted advisory stays active.
	displayDuration = 5 * time.Second

	// categoryCooldown is the minimum gap between two advisories of the
	// same category.
	categoryCooldown = 30 * time.Second
)

// Nudge is a single active advisory.
type Nudge struct {
	ID        string
	Category  Category
	Message   string
	CreatedAt time.Time
}

// Manager admits, displays and expires advisories. All methods are safe for
// concurrent use.
type Manager struct {
	clock   func() time.Time
	onShow  func(Nudge)
	onHide  func(Nudge)
	display time.Duration

	mu        sync.Mutex
	active    *Nudge
	lastFired map[Category]time.Time
	expiry    *time.Timer
	closed    bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the manager's time source. Used in tests. The display
// expiry timer still runs on real time.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithCallbacks registers display callbacks. onShow fires when an advisory
// is admitted, onHide when it expires or the manager closes. Either may be
// nil. Callbacks run outside the manager's lock but must still be quick.
func WithCallbacks(onShow, onHide func(Nudge)) Option {
	return func(m *Manager) {
		m.onShow = onShow
		m.onHide = onHide
	}
}

// WithDisplayDuration overrides how long an advisory stays active. Used in
// tests to avoid waiting out the real display period.
func WithDisplayDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.display = d
		}
	}
}

// NewManager creates an advisory manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		clock:     time.Now,
		display:   displayDuration,
		lastFired: make(map[Category]time.Time),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Offer applies the admission rule for a new advisory and returns the
// admitted Nudge, or nil if it was rejected. Rejected advisories are
// dropped, never queued.
func (m *Manager) Offer(cat Category, message string) *Nudge {
	m.mu.Lock()

	if m.closed || m.active != nil {
		m.mu.Unlock()
		return nil
	}

	now := m.clock()
	if last, ok := m.lastFired[cat]; ok && now.Sub(last) < categoryCooldown {
		m.mu.Unlock()
		return nil
	}

	n := &Nudge{
		ID:        uuid.NewString(),
		Category:  cat,
		Message:   message,
		CreatedAt: now,
	}
	m.active = n
	m.lastFired[cat] = now
	m.expiry = time.AfterFunc(m.display, func() { m.expire(n.ID) })

	show := m.onShow
	m.mu.Unlock()

	slog.Debug("nudge admitted", "category", cat, "id", n.ID)
	if show != nil {
		show(*n)
	}
	return n
}

// Active returns a copy of the currently displayed advisory, or nil.
func (m *Manager) Active() *Nudge {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	n := *m.active
	return &n
}

// expire removes the advisory with the given ID if it is still active.
func (m *Manager) expire(id string) {
	m.mu.Lock()
	if m.closed || m.active == nil || m.active.ID != id {
		m.mu.Unlock()
		return
	}
	n := *m.active
	m.active = nil
	m.expiry = nil
	hide := m.onHide
	m.mu.Unlock()

	if hide != nil {
		hide(n)
	}
}

// Close stops the expiry timer and clears any active advisory so nothing
// fires after teardown. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.expiry != nil {
		m.expiry.Stop()
		m.expiry = nil
	}
	var n *Nudge
	if m.active != nil {
		cp := *m.active
		n = &cp
		m.active = nil
	}
	hide := m.onHide
	m.mu.Unlock()

	if n != nil && hide != nil {
		hide(*n)
	}
}
