package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MuddySheep/AI-Interviewer/internal/interview"
	"github.com/MuddySheep/AI-Interviewer/internal/report"
	"github.com/MuddySheep/AI-Interviewer/pkg/media"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
)

// SessionInfo holds metadata about an active interview session.
type SessionInfo struct {
	// SessionID is the unique identifier for this session.
	SessionID string

	// Mode is the interview style the session runs in.
	Mode string

	// StartedAt is when the session was started.
	StartedAt time.Time

	// RemoteAddr is the address of the browser client driving the session.
	RemoteAddr string
}

// Manager owns the lifecycle of interview sessions. Only one session can be
// active at a time (enforced by mutex). All exported methods are safe for
// concurrent use.
type Manager struct {
	mu      sync.Mutex
	active  bool
	info    SessionInfo
	session *interview.Session

	// Dependencies injected at construction.
	provider  live.Provider
	detector  media.Detector
	generator report.Generator

	recordingsDir string
	sessionOpts   []interview.Option
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRecordingsDir enables persisting each session's WAV recording and
// report JSON under dir.
func WithRecordingsDir(dir string) ManagerOption {
	return func(m *Manager) { m.recordingsDir = dir }
}

// WithSessionOptions passes extra options to every started session.
// Primarily used in tests to inject clocks and seeds.
func WithSessionOptions(opts ...interview.Option) ManagerOption {
	return func(m *Manager) { m.sessionOpts = append(m.sessionOpts, opts...) }
}

// NewManager creates a Manager with the given collaborators. The generator
// may be nil; sessions then always finish with the fallback report.
func NewManager(provider live.Provider, detector media.Detector, generator report.Generator, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider:  provider,
		detector:  detector,
		generator: generator,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start begins a new interview session for the given capture source.
//
// Returns an error if a session is already active.
func (m *Manager) Start(ctx context.Context, capture media.Capture, cfg interview.Config, remoteAddr string) (*interview.Session, SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return nil, SessionInfo{}, fmt.Errorf("gateway: a session is already active (id=%s)", m.info.SessionID)
	}

	info := SessionInfo{
		SessionID:  "interview-" + uuid.NewString(),
		Mode:       string(cfg.Mode),
		StartedAt:  time.Now().UTC(),
		RemoteAddr: remoteAddr,
	}

	sess, err := interview.Start(ctx, m.provider, capture, m.detector, m.generator, cfg, m.sessionOpts...)
	if err != nil {
		return nil, SessionInfo{}, fmt.Errorf("gateway: start session: %w", err)
	}

	m.active = true
	m.info = info
	m.session = sess

	// Release the active slot once the session ends, whether through Stop,
	// the socket handler, or the countdown expiring on its own.
	go func() {
		<-sess.Done()
		m.finish(info, sess)
	}()

	slog.Info("session started",
		"session_id", info.SessionID,
		"mode", info.Mode,
		"remote_addr", remoteAddr,
	)

	return sess, info, nil
}

// Stop ends the active session and returns its result.
//
// Returns an error if no session is active.
func (m *Manager) Stop(ctx context.Context) (*interview.Result, error) {
	m.mu.Lock()
	sess := m.session
	id := m.info.SessionID
	m.mu.Unlock()

	if sess == nil {
		return nil, fmt.Errorf("gateway: no active session to stop")
	}

	res := sess.End(ctx)
	slog.Info("session stopped", "session_id", id)
	return res, nil
}

// IsActive reports whether a session is currently running.
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Info returns metadata about the active session.
// Returns zero value if no session is active.
func (m *Manager) Info() SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// finish persists session artifacts and clears the active slot. Only clears
// when the finished session is still the registered one.
func (m *Manager) finish(info SessionInfo, sess *interview.Session) {
	res := sess.End(context.Background())
	m.persist(info, res)

	m.mu.Lock()
	if m.info.SessionID == info.SessionID {
		m.active = false
		m.session = nil
		m.info = SessionInfo{}
	}
	m.mu.Unlock()
}

// persist writes the recording and report to the recordings directory.
// Best-effort: failures are logged, never surfaced to the candidate.
func (m *Manager) persist(info SessionInfo, res *interview.Result) {
	if m.recordingsDir == "" || res == nil {
		return
	}
	if err := os.MkdirAll(m.recordingsDir, 0o755); err != nil {
		slog.Warn("recordings dir unavailable", "dir", m.recordingsDir, "err", err)
		return
	}

	if res.Recording != nil {
		path := filepath.Join(m.recordingsDir, info.SessionID+".wav")
		if err := os.WriteFile(path, res.Recording, 0o644); err != nil {
			slog.Warn("recording write failed", "path", path, "err", err)
		}
	}

	if res.Report != nil {
		data, err := json.MarshalIndent(res.Report, "", "  ")
		if err == nil {
			path := filepath.Join(m.recordingsDir, info.SessionID+"-report.json")
			err = os.WriteFile(path, data, 0o644)
		}
		if err != nil {
			slog.Warn("report write failed", "session_id", info.SessionID, "err", err)
		}
	}
}
