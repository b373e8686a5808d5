// Package interview orchestrates a single mock-interview session: it wires
// the capture stream, speech-rate analysis, playback scheduling, visual
// analysis and nudge advisories around one live provider session, owns the
// countdown, and assembles the final transcript, recording and report.
package interview

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/MuddySheep/AI-Interviewer/internal/analysis"
	"github.com/MuddySheep/AI-Interviewer/internal/nudge"
	"github.com/MuddySheep/AI-Interviewer/internal/observe"
	"github.com/MuddySheep/AI-Interviewer/internal/prompt"
	"github.com/MuddySheep/AI-Interviewer/internal/report"
	"github.com/MuddySheep/AI-Interviewer/internal/transcript"
	"github.com/MuddySheep/AI-Interviewer/pkg/audio"
	"github.com/MuddySheep/AI-Interviewer/pkg/audio/playback"
	"github.com/MuddySheep/AI-Interviewer/pkg/media"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
)

const (
	// defaultTick is the cadence of the polling loop driving visual
	// analysis, frame sampling and the countdown.
	defaultTick = 100 * time.Millisecond

	defaultDuration        = 15 * time.Minute
	defaultFrameSampleRate = 0.02
	defaultFrameMaxDim     = 512
)

// Advisory messages shown to the candidate.
const (
	msgEyeContact = "Try to look into the camera more often."
	msgPosture    = "Check your posture and sit upright."
	msgTooFast    = "You are speaking quite fast. Try to slow down a little."
	msgLowEnergy  = "You sound hesitant. Speak with a bit more energy."
)

// Config carries the per-session interview parameters.
type Config struct {
	Mode           prompt.Mode
	JobDescription string

	// Resume is the candidate's plain-text resume. May be empty.
	Resume string

	// Voice is the provider-specific interviewer voice ID.
	Voice string

	// Duration is the interview length. Defaults to 15 minutes.
	Duration time.Duration

	// FrameSampleRate is the per-tick probability of forwarding the latest
	// camera frame to the live provider. Defaults to 0.02.
	FrameSampleRate float64

	// FrameMaxDim is the longest side frames are downscaled to before
	// forwarding. Defaults to 512.
	FrameMaxDim int

	// Output receives scheduled playback segments for delivery to the
	// candidate's speaker path. May be nil.
	Output func(playback.Segment)

	// OnTranscript observes each transcript item as it is recorded. May be
	// nil. Called from the session's transcript goroutine; keep it fast.
	OnTranscript func(live.TranscriptItem)

	// NudgeOptions are passed through to the advisory manager, letting the
	// caller observe show/hide events.
	NudgeOptions []nudge.Option
}

// Result is everything a finished session hands to the caller.
type Result struct {
	Transcript []live.TranscriptItem
	Report     *report.Report

	// Recording is a WAV container of the candidate's audio, or nil when
	// nothing was captured.
	Recording []byte

	Stats media.Stats
}

// Option configures a [Session] at start time.
type Option func(*Session)

// WithClock overrides the session's time source. Primarily used in tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithTick overrides the polling cadence. Useful in tests to keep suites fast.
func WithTick(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithSeed makes the frame-sampling Bernoulli draw deterministic.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.sampler = rand.New(rand.NewPCG(uint64(seed), uint64(seed))) }
}

// WithMetrics overrides the metrics sink. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// Session is one running interview. Create it with [Start]; it drives its
// loops on background goroutines until the countdown expires or [Session.End]
// is called.
type Session struct {
	cfg       Config
	clock     func() time.Time
	tick      time.Duration
	sampler   *rand.Rand
	metrics   *observe.Metrics
	generator report.Generator

	handle  live.SessionHandle
	capture media.Capture
	guard   *media.Guard

	scheduler *playback.Scheduler
	analyzer  *analysis.SpeechRate
	nudges    *nudge.Manager
	rec       recorder

	// stats is mutated only by the tick loop and read after it has stopped.
	stats media.Stats

	startedAt   time.Time
	nextSecond  time.Duration
	secondsLeft int

	mu         sync.Mutex
	transcript []live.TranscriptItem
	eyeWarning bool

	done    chan struct{}
	endedCh chan struct{}
	endOnce sync.Once
	wg      sync.WaitGroup
	result  *Result
}

// Start connects to the live provider with the assembled interviewer
// instructions, sends the wake tone, and launches the session loops.
//
// The wake tone is sent immediately after the channel opens: the remote
// voice-activity detector does not trigger on silence, so the interviewer
// would otherwise wait for the candidate to speak first.
func Start(ctx context.Context, provider live.Provider, capture media.Capture, detector media.Detector, generator report.Generator, cfg Config, opts ...Option) (*Session, error) {
	if cfg.Duration <= 0 {
		cfg.Duration = defaultDuration
	}
	if cfg.FrameSampleRate <= 0 {
		cfg.FrameSampleRate = defaultFrameSampleRate
	}
	if cfg.FrameMaxDim <= 0 {
		cfg.FrameMaxDim = defaultFrameMaxDim
	}
	if !cfg.Mode.Valid() {
		cfg.Mode = prompt.ModeHR
	}

	s := &Session{
		cfg:       cfg,
		clock:     time.Now,
		tick:      defaultTick,
		generator: generator,
		capture:   capture,
		guard:     media.NewGuard(detector),
		done:      make(chan struct{}),
		endedCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sampler == nil {
		s.sampler = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	instructions := prompt.Build(prompt.Params{
		Mode:           cfg.Mode,
		JobDescription: cfg.JobDescription,
		Resume:         cfg.Resume,
	})

	handle, err := provider.Connect(ctx, live.SessionConfig{
		Instructions: instructions,
		Voice:        cfg.Voice,
	})
	if err != nil {
		return nil, err
	}
	s.handle = handle

	handle.OnError(func(err error) {
		slog.Warn("live session error", "err", err)
		s.metrics.RecordProviderError(context.Background(), "live", "session")
	})

	nudgeOpts := append([]nudge.Option{nudge.WithClock(s.clock)}, cfg.NudgeOptions...)
	s.nudges = nudge.NewManager(nudgeOpts...)
	s.analyzer = analysis.NewSpeechRate(audio.WireSampleRate, analysis.WithSpeechRateClock(s.clock))
	s.scheduler = playback.New(func(seg playback.Segment) {
		if cfg.Output != nil {
			cfg.Output(seg)
		}
	}, playback.WithClock(playback.Clock(s.clock)))

	s.startedAt = s.clock()
	s.nextSecond = time.Second
	s.secondsLeft = int(cfg.Duration / time.Second)

	if err := handle.SendAudio(wakeTone()); err != nil {
		slog.Warn("wake tone send failed", "err", err)
	}

	s.metrics.ActiveSessions.Add(ctx, 1)

	s.wg.Add(4)
	go s.captureLoop()
	go s.playbackLoop()
	go s.transcriptLoop()
	go s.tickLoop()

	slog.Info("interview started",
		"mode", cfg.Mode,
		"duration", cfg.Duration,
		"voice", cfg.Voice,
	)
	return s, nil
}

// Wake re-sends the synthetic wake tone. The candidate can trigger this when
// the interviewer has gone quiet mid-session.
func (s *Session) Wake() error {
	return s.handle.SendAudio(wakeTone())
}

// ActiveNudge returns the advisory currently shown, or nil.
func (s *Session) ActiveNudge() *nudge.Nudge {
	return s.nudges.Active()
}

// EyeContactWarning reports the persistent eye-contact flag from the most
// recent analysed frame.
func (s *Session) EyeContactWarning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eyeWarning
}

// Remaining returns the countdown state in whole seconds.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.secondsLeft) * time.Second
}

// Done is closed once the session has fully ended and its result is
// available.
func (s *Session) Done() <-chan struct{} {
	return s.endedCh
}

// captureLoop forwards microphone buffers to the live session, feeds the
// speech-rate analyzer while the interviewer is not speaking, and accumulates
// the recording. Send failures are best-effort drops, never queued.
func (s *Session) captureLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case samples, ok := <-s.capture.Audio():
			if !ok {
				return
			}
			if !s.scheduler.Speaking() {
				s.handleTrigger(s.analyzer.Analyze(samples))
			}
			pcm := audio.EncodePCM16(samples)
			s.rec.append(pcm)
			if err := s.handle.SendAudio(pcm); err != nil {
				if !errors.Is(err, live.ErrSessionClosed) {
					slog.Debug("audio chunk dropped", "err", err)
				}
				continue
			}
			s.metrics.AudioChunksSent.Add(context.Background(), 1)
		}
	}
}

// playbackLoop schedules inbound interviewer audio. Undecodable chunks are
// dropped without advancing the playback cursor.
func (s *Session) playbackLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case chunk, ok := <-s.handle.Audio():
			if !ok {
				return
			}
			if err := s.scheduler.Enqueue(chunk); err != nil {
				slog.Debug("playback chunk dropped", "err", err)
				continue
			}
			s.metrics.PlaybackSegments.Add(context.Background(), 1)
		}
	}
}

// transcriptLoop appends transcript items in arrival order.
func (s *Session) transcriptLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case item, ok := <-s.handle.Transcripts():
			if !ok {
				return
			}
			s.mu.Lock()
			s.transcript = append(s.transcript, item)
			s.mu.Unlock()
			if s.cfg.OnTranscript != nil {
				s.cfg.OnTranscript(item)
			}
			s.metrics.RecordTranscriptItem(context.Background(), string(item.Role))
		}
	}
}

// tickLoop runs the fixed-cadence polling work: visual analysis, frame
// sampling and the countdown.
func (s *Session) tickLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if expired := s.tickOnce(); expired {
				go s.End(context.Background())
				return
			}
		}
	}
}

// tickOnce performs one polling turn and reports whether the countdown
// reached zero.
func (s *Session) tickOnce() bool {
	ctx := context.Background()
	now := s.clock()

	if frame, ok := s.capture.LatestFrame(); ok {
		ts := now.Sub(s.startedAt).Milliseconds()
		res := s.guard.Analyze(frame, ts)
		s.stats.Record(res)
		if res != nil {
			s.metrics.RecordFrameAnalyzed(ctx, "ok")
			s.mu.Lock()
			s.eyeWarning = res.EyeContactIssue
			s.mu.Unlock()
			if res.EyeContactIssue {
				s.offer(nudge.CategoryEyeContact, msgEyeContact)
			}
			if res.PostureIssue {
				msg := res.PostureMessage
				if msg == "" {
					msg = msgPosture
				}
				s.offer(nudge.CategoryPosture, msg)
			}
		} else {
			s.metrics.RecordFrameAnalyzed(ctx, "rejected")
		}

		// Forward a downsampled frame occasionally so the interviewer can
		// reference what it sees without burning bandwidth on every tick.
		if s.sampler.Float64() < s.cfg.FrameSampleRate {
			if down, err := media.Downsample(frame, s.cfg.FrameMaxDim); err != nil {
				slog.Debug("frame downsample failed", "err", err)
			} else if err := s.handle.SendImage(down); err == nil {
				s.metrics.FramesSampled.Add(ctx, 1)
			}
		}
	}

	// Countdown: decrement once per elapsed wall-clock second.
	s.mu.Lock()
	elapsed := now.Sub(s.startedAt)
	for s.secondsLeft > 0 && elapsed >= s.nextSecond {
		s.secondsLeft--
		s.nextSecond += time.Second
	}
	expired := s.secondsLeft == 0
	s.mu.Unlock()
	return expired
}

// handleTrigger converts a speech-rate classification into an advisory.
func (s *Session) handleTrigger(t analysis.Trigger) {
	switch t {
	case analysis.TriggerTooFast:
		s.offer(nudge.CategoryAudio, msgTooFast)
	case analysis.TriggerLowEnergy:
		s.offer(nudge.CategoryAudio, msgLowEnergy)
	}
}

func (s *Session) offer(cat nudge.Category, msg string) {
	outcome := "suppressed"
	if s.nudges.Offer(cat, msg) != nil {
		outcome = "shown"
		// Tell the interviewer too, so it can weave the coaching point into
		// the conversation instead of talking past it.
		observation := "Behavioural observation: the candidate was just shown this coaching advisory: " + msg
		if err := s.handle.SendText(live.RoleSystem, observation); err != nil && !errors.Is(err, live.ErrSessionClosed) {
			slog.Debug("observation send failed", "err", err)
		}
	}
	s.metrics.RecordNudge(context.Background(), string(cat), outcome)
}

// End tears the session down and returns its result. It is idempotent;
// concurrent and repeated calls all return the same result. The countdown
// reaching zero calls End internally.
//
// Teardown order follows the resource chain: polling and capture loops first,
// then the capture devices, the playback side, and finally the remote
// channel. Each step is best-effort; a failure never prevents the later
// steps.
func (s *Session) End(ctx context.Context) *Result {
	s.endOnce.Do(func() { s.end(ctx) })
	<-s.endedCh
	return s.result
}

func (s *Session) end(ctx context.Context) {
	close(s.done)

	if err := s.capture.Close(); err != nil {
		slog.Warn("capture close failed", "err", err)
	}
	if err := s.scheduler.Close(); err != nil && !errors.Is(err, playback.ErrClosed) {
		slog.Warn("scheduler close failed", "err", err)
	}
	if err := s.handle.Close(); err != nil {
		slog.Warn("live session close failed", "err", err)
	}
	s.nudges.Close()

	// The receive loops may have exited on the done signal with items still
	// buffered; drain so the provider's reader goroutines are never blocked.
	go audio.Drain(s.handle.Audio())
	go audio.Drain(s.handle.Transcripts())

	s.wg.Wait()

	ended := s.clock()
	s.metrics.ActiveSessions.Add(ctx, -1)
	s.metrics.SessionDuration.Record(ctx, ended.Sub(s.startedAt).Seconds())

	// Providers deliver transcription in fragments; merge them back into
	// whole utterances before anything downstream sees them. The report
	// generator never sees raw video; the aggregated visual summary rides
	// along as a system-authored transcript item instead.
	s.mu.Lock()
	items := append(transcript.Consolidate(s.transcript), live.TranscriptItem{
		Role:      live.RoleSystem,
		Text:      s.stats.Summary(),
		Timestamp: ended,
	})
	s.transcript = items
	s.mu.Unlock()

	rep := s.generateReport(ctx, items)

	s.result = &Result{
		Transcript: items,
		Report:     rep,
		Recording:  s.rec.Finalize(),
		Stats:      s.stats,
	}
	close(s.endedCh)

	slog.Info("interview ended",
		"transcript_items", len(items),
		"recorded", s.result.Recording != nil,
		"fallback_report", rep.Fallback,
	)
}

// generateReport asks the report collaborator for an evaluation and
// substitutes the neutral fallback on any failure so the candidate always
// reaches a result.
func (s *Session) generateReport(ctx context.Context, transcript []live.TranscriptItem) *report.Report {
	if s.generator == nil {
		return report.Fallback()
	}
	start := time.Now()
	rep, err := s.generator.Generate(ctx, transcript, report.Config{
		Mode:           string(s.cfg.Mode),
		JobDescription: s.cfg.JobDescription,
	})
	s.metrics.ReportDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		slog.Warn("report generation failed, substituting fallback", "err", err)
		s.metrics.RecordProviderError(ctx, "report", "llm")
		return report.Fallback()
	}
	return rep
}
