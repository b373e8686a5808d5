// Package mock provides test doubles for the live package interfaces.
//
// Use Provider to verify Connect calls and feed controlled sessions. Use
// Session to drive the bidirectional audio/transcript streams and inspect
// which methods were invoked by the orchestrator.
//
// Example:
//
//	sess := &mock.Session{
//	    AudioCh:       make(chan []byte, 8),
//	    TranscriptsCh: make(chan live.TranscriptItem, 4),
//	}
//	p := &mock.Provider{Session: sess}
//	handle, _ := p.Connect(ctx, cfg)
package mock

import (
	"context"
	"sync"

	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
)

// ConnectCall records a single invocation of Provider.Connect.
type ConnectCall struct {
	// Ctx is the context passed to Connect.
	Ctx context.Context
	// Cfg is the SessionConfig passed to Connect.
	Cfg live.SessionConfig
}

// Provider is a mock implementation of live.Provider.
type Provider struct {
	mu sync.Mutex

	// Session is the SessionHandle returned by Connect. If nil, Connect
	// returns a new default Session with buffered channels.
	Session live.SessionHandle

	// ConnectErr, if non-nil, is returned as the error from Connect.
	ConnectErr error

	// ProviderCapabilities is returned by Capabilities.
	ProviderCapabilities live.Capabilities

	// ConnectCalls records every call to Connect in order.
	ConnectCalls []ConnectCall

	// CapabilitiesCallCount is the number of times Capabilities was called.
	CapabilitiesCallCount int
}

// Connect records the call and returns Session, ConnectErr.
func (p *Provider) Connect(ctx context.Context, cfg live.SessionConfig) (live.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConnectCalls = append(p.ConnectCalls, ConnectCall{Ctx: ctx, Cfg: cfg})
	if p.ConnectErr != nil {
		return nil, p.ConnectErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	return NewSession(), nil
}

// Capabilities records the call and returns ProviderCapabilities.
func (p *Provider) Capabilities() live.Capabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CapabilitiesCallCount++
	return p.ProviderCapabilities
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConnectCalls = nil
	p.CapabilitiesCallCount = 0
}

// Ensure Provider implements live.Provider at compile time.
var _ live.Provider = (*Provider)(nil)

// SendTextCall records a single invocation of Session.SendText.
type SendTextCall struct {
	// Role is the role passed to SendText.
	Role string
	// Text is the text passed to SendText.
	Text string
}

// Session is a mock implementation of live.SessionHandle.
// Callers should pre-populate AudioCh and TranscriptsCh, then close them to
// signal end-of-session.
type Session struct {
	mu sync.Mutex

	// AudioCh is the channel returned by Audio(). Callers own this channel.
	AudioCh chan []byte

	// TranscriptsCh is the channel returned by Transcripts(). Callers own
	// this channel.
	TranscriptsCh chan live.TranscriptItem

	// errorHandler is the currently registered OnError handler.
	errorHandler func(error)

	// --- Configurable errors ---

	// SendAudioErr, if non-nil, is returned by every SendAudio call.
	SendAudioErr error

	// SendImageErr, if non-nil, is returned by every SendImage call.
	SendImageErr error

	// SendTextErr, if non-nil, is returned by every SendText call.
	SendTextErr error

	// ErrVal is returned by Err.
	ErrVal error

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// --- Call records ---

	// SendAudioCalls records a copy of every chunk passed to SendAudio.
	SendAudioCalls [][]byte

	// SendImageCalls records a copy of every frame passed to SendImage.
	SendImageCalls [][]byte

	// SendTextCalls records every call to SendText in order.
	SendTextCalls []SendTextCall

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int

	// OnErrorSetCount is the number of times OnError was called.
	OnErrorSetCount int
}

// NewSession returns a Session with buffered channels ready for use.
func NewSession() *Session {
	return &Session{
		AudioCh:       make(chan []byte, 64),
		TranscriptsCh: make(chan live.TranscriptItem, 16),
	}
}

// SendAudio records the call and returns SendAudioErr.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	s.SendAudioCalls = append(s.SendAudioCalls, cp)
	return s.SendAudioErr
}

// SendImage records the call and returns SendImageErr.
func (s *Session) SendImage(jpeg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(jpeg))
	copy(cp, jpeg)
	s.SendImageCalls = append(s.SendImageCalls, cp)
	return s.SendImageErr
}

// SendText records the call and returns SendTextErr.
func (s *Session) SendText(role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SendTextCalls = append(s.SendTextCalls, SendTextCall{Role: role, Text: text})
	return s.SendTextErr
}

// Audio returns AudioCh.
func (s *Session) Audio() <-chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AudioCh
}

// Transcripts returns TranscriptsCh.
func (s *Session) Transcripts() <-chan live.TranscriptItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TranscriptsCh
}

// OnError stores the handler and increments OnErrorSetCount.
func (s *Session) OnError(handler func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorHandler = handler
	s.OnErrorSetCount++
}

// ErrorHandler returns the currently registered OnError handler. Thread-safe.
// Useful in tests to drive non-fatal provider errors.
func (s *Session) ErrorHandler() func(error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorHandler
}

// Err returns ErrVal.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ErrVal
}

// Close records the call and returns CloseErr.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCallCount++
	return s.CloseErr
}

// CloseCount returns the number of Close calls. Thread-safe.
func (s *Session) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CloseCallCount
}

// AudioSent returns a snapshot of all chunks passed to SendAudio. Thread-safe.
func (s *Session) AudioSent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.SendAudioCalls))
	copy(out, s.SendAudioCalls)
	return out
}

// TextsSent returns a snapshot of all SendText calls. Thread-safe.
func (s *Session) TextsSent() []SendTextCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SendTextCall, len(s.SendTextCalls))
	copy(out, s.SendTextCalls)
	return out
}

// ImagesSent returns a snapshot of all frames passed to SendImage. Thread-safe.
func (s *Session) ImagesSent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.SendImageCalls))
	copy(out, s.SendImageCalls)
	return out
}

// ResetCalls clears all recorded calls. Thread-safe.
func (s *Session) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SendAudioCalls = nil
	s.SendImageCalls = nil
	s.SendTextCalls = nil
	s.CloseCallCount = 0
	s.OnErrorSetCount = 0
}

// Ensure Session implements live.SessionHandle at compile time.
var _ live.SessionHandle = (*Session)(nil)
