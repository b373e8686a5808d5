// Package gateway bridges browser clients to the interview pipeline over a
// WebSocket. Each connection carries JSON events both ways: the browser sends
// microphone audio, camera frames and control events; the server sends
// interviewer audio, transcript items, nudges, the countdown and the final
// report. The package also assembles the HTTP surface: health endpoints,
// Prometheus metrics and the socket itself behind the observability
// middleware.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MuddySheep/AI-Interviewer/internal/health"
	"github.com/MuddySheep/AI-Interviewer/internal/interview"
	"github.com/MuddySheep/AI-Interviewer/internal/nudge"
	"github.com/MuddySheep/AI-Interviewer/internal/observe"
	"github.com/MuddySheep/AI-Interviewer/pkg/audio"
	"github.com/MuddySheep/AI-Interviewer/pkg/audio/playback"
	"github.com/MuddySheep/AI-Interviewer/pkg/media"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
)

// outBuffer is the number of pending server events per socket before sends
// start dropping.
const outBuffer = 256

// writeTimeout bounds a single WebSocket write.
const writeTimeout = 5 * time.Second

// ServerConfig holds all dependencies for a [Server].
type ServerConfig struct {
	Manager *Manager

	// Interview is the per-session default configuration. The gateway fills
	// in the Output, OnTranscript and nudge callbacks for each socket.
	Interview interview.Config

	// Health serves /healthz and /readyz. Created empty when nil.
	Health *health.Handler

	// Metrics backs the HTTP middleware. Defaults to [observe.DefaultMetrics].
	Metrics *observe.Metrics
}

// Server exposes the interview gateway over HTTP.
type Server struct {
	manager   *Manager
	interview interview.Config
	health    *health.Handler
	metrics   *observe.Metrics
}

// NewServer creates a Server with the given dependencies.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		manager:   cfg.Manager,
		interview: cfg.Interview,
		health:    cfg.Health,
		metrics:   cfg.Metrics,
	}
	if s.health == nil {
		s.health = health.New()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the full HTTP surface: health endpoints, /metrics and the
// /ws session socket, all behind the observability middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", s.handleSocket)
	return observe.Middleware(s.metrics)(mux)
}

// handleSocket upgrades the connection and runs one interview session over
// it. The handler blocks for the lifetime of the session; when the browser
// disconnects, sends an end event, or the countdown expires, the session is
// ended and the final report pushed before closing.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The browser client is typically served from its own dev origin.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("websocket accept failed", "err", err)
		return
	}

	sk := newSocket(conn)
	capture := newSocketCapture()

	cfg := s.interview
	cfg.Output = func(seg playback.Segment) {
		sk.send(serverEvent{
			Type:       evAudio,
			Data:       audio.EncodeChunk(audio.EncodePCM16(seg.Samples)),
			DurationMs: seg.Duration.Milliseconds(),
		})
	}
	cfg.OnTranscript = func(item live.TranscriptItem) {
		sk.send(serverEvent{Type: evTranscript, Role: item.Role, Text: item.Text})
	}
	cfg.NudgeOptions = append(cfg.NudgeOptions, nudge.WithCallbacks(
		func(n nudge.Nudge) {
			sk.send(serverEvent{Type: evNudge, Event: "show", Category: string(n.Category), Message: n.Message})
		},
		func(n nudge.Nudge) {
			sk.send(serverEvent{Type: evNudge, Event: "hide", Category: string(n.Category)})
		},
	))

	sess, info, err := s.manager.Start(r.Context(), capture, cfg, r.RemoteAddr)
	if err != nil {
		slog.Warn("session rejected", "remote_addr", r.RemoteAddr, "err", err)
		writeEvent(r.Context(), conn, serverEvent{Type: evError, Message: err.Error()})
		conn.Close(websocket.StatusPolicyViolation, "session already active")
		return
	}

	sk.send(serverEvent{
		Type:            evSession,
		SessionID:       info.SessionID,
		Mode:            info.Mode,
		DurationSeconds: int(sess.Remaining() / time.Second),
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sk.writeLoop()
	}()
	go func() {
		defer wg.Done()
		countdownLoop(sk, sess)
	}()

	// A session that ends on its own (countdown expiry) must unblock the
	// read below.
	readCtx, cancelRead := context.WithCancel(r.Context())
	defer cancelRead()
	go func() {
		select {
		case <-sess.Done():
			cancelRead()
		case <-readCtx.Done():
		}
	}()

	s.readLoop(readCtx, conn, capture, sess)

	res := sess.End(context.Background())
	sk.send(serverEvent{Type: evReport, Report: res.Report})
	sk.closeOut()
	wg.Wait()

	conn.Close(websocket.StatusNormalClosure, "interview complete")
	capture.Close()
}

// readLoop consumes client events until the browser disconnects, sends an
// end event, or ctx is cancelled. Malformed events are skipped.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, capture *socketCapture, sess *interview.Session) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}

		switch ev.Type {
		case evAudio:
			pcm, err := audio.DecodeChunk(ev.Data)
			if err != nil {
				slog.Debug("bad audio payload", "err", err)
				continue
			}
			frame := audio.Frame{
				Data:       pcm,
				SampleRate: ev.SampleRate,
				Channels:   ev.Channels,
			}
			if frame.SampleRate <= 0 {
				frame.SampleRate = audio.WireSampleRate
			}
			if frame.Channels <= 0 {
				frame.Channels = 1
			}
			capture.pushAudio(audio.DecodePCM16(audio.ToWire(frame)))

		case evFrame:
			frame, err := media.StripDataURI(ev.Data)
			if err != nil {
				slog.Debug("bad frame payload", "err", err)
				continue
			}
			capture.setFrame(frame)

		case evWake:
			if err := sess.Wake(); err != nil {
				slog.Debug("wake failed", "err", err)
			}

		case evEnd:
			return

		default:
			slog.Debug("unknown client event", "type", ev.Type)
		}
	}
}

// countdownLoop pushes the remaining whole seconds once per second until the
// session ends.
func countdownLoop(sk *socket, sess *interview.Session) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-sess.Done():
			return
		case <-ticker.C:
			secs := int(sess.Remaining() / time.Second)
			if secs != last {
				last = secs
				sk.send(serverEvent{Type: evCountdown, Seconds: secs})
			}
		}
	}
}

// socket serialises server events onto one WebSocket connection. Events are
// produced by several goroutines (playback output, transcripts, nudge timers,
// the countdown); a single write loop drains them in order.
type socket struct {
	conn *websocket.Conn

	mu     sync.Mutex
	out    chan serverEvent
	closed bool
}

func newSocket(conn *websocket.Conn) *socket {
	return &socket{conn: conn, out: make(chan serverEvent, outBuffer)}
}

// send queues an event for delivery. Events are dropped when the socket is
// closed or the browser cannot keep up.
func (k *socket) send(ev serverEvent) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	select {
	case k.out <- ev:
	default:
		slog.Debug("server event dropped, client not draining", "type", ev.Type)
	}
}

// closeOut stops accepting events. The write loop drains what is already
// queued and exits.
func (k *socket) closeOut() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	k.closed = true
	close(k.out)
}

// writeLoop drains queued events onto the connection until closeOut. Write
// failures drain the remaining queue without blocking producers.
func (k *socket) writeLoop() {
	for ev := range k.out {
		if err := writeEvent(context.Background(), k.conn, ev); err != nil {
			slog.Debug("socket write failed", "type", ev.Type, "err", err)
		}
	}
}

// writeEvent marshals ev and writes it as a single text frame.
func writeEvent(ctx context.Context, conn *websocket.Conn, ev serverEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
