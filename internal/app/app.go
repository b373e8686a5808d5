// Package app wires all interviewer subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithManager, WithMetrics). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MuddySheep/AI-Interviewer/internal/config"
	"github.com/MuddySheep/AI-Interviewer/internal/gateway"
	"github.com/MuddySheep/AI-Interviewer/internal/health"
	"github.com/MuddySheep/AI-Interviewer/internal/interview"
	"github.com/MuddySheep/AI-Interviewer/internal/observe"
	"github.com/MuddySheep/AI-Interviewer/internal/report"
	"github.com/MuddySheep/AI-Interviewer/pkg/media"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm"
)

const (
	defaultListenAddr = ":8080"
	shutdownTimeout   = 10 * time.Second
)

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by main.go via the config registry.
type Providers struct {
	// Live carries the realtime interview conversation. Required.
	Live live.Provider

	// Report generates the post-interview evaluation. Optional; sessions
	// fall back to a neutral report when nil.
	Report llm.Provider

	// Detector analyses camera frames for behavioural signals. Optional;
	// visual analysis is disabled when nil.
	Detector media.Detector
}

// App owns all subsystem lifetimes and serves the interview gateway.
type App struct {
	cfg       *config.Config
	providers *Providers

	manager *gateway.Manager
	metrics *observe.Metrics
	srv     *http.Server

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithManager injects a session manager instead of creating one from config.
func WithManager(m *gateway.Manager) Option {
	return func(a *App) { a.manager = m }
}

// WithMetrics injects a metrics sink instead of the process default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry). Use Option
// functions to inject test doubles for any subsystem.
func New(cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.Live == nil {
		return nil, fmt.Errorf("app: a live provider is required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	var generator report.Generator
	if providers.Report != nil {
		generator = report.NewLLMGenerator(providers.Report)
	} else {
		slog.Warn("no report provider configured, sessions finish with the fallback report")
	}

	if a.manager == nil {
		a.manager = gateway.NewManager(providers.Live, providers.Detector, generator,
			gateway.WithRecordingsDir(cfg.Media.RecordingsDir),
		)
	}

	server := gateway.NewServer(gateway.ServerConfig{
		Manager:   a.manager,
		Interview: a.interviewDefaults(),
		Health:    health.New(health.LiveProviderChecker(providers.Live)),
		Metrics:   a.metrics,
	})

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = defaultListenAddr
	}
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// interviewDefaults maps the static config onto the per-session interview
// parameters. The resume file is read once at startup.
func (a *App) interviewDefaults() interview.Config {
	icfg := interview.Config{
		Mode:            a.cfg.Interview.Mode,
		JobDescription:  a.cfg.Interview.JobDescription,
		Voice:           a.cfg.Providers.Live.Voice,
		Duration:        a.cfg.Interview.Duration.Std(),
		FrameSampleRate: a.cfg.Media.FrameSampleRate,
		FrameMaxDim:     a.cfg.Media.FrameMaxDim,
	}

	if path := a.cfg.Interview.ResumeFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("resume file unreadable, interviewing without it", "path", path, "err", err)
		} else {
			icfg.Resume = string(data)
		}
	}

	return icfg
}

// Manager returns the session manager. Useful for admin surfaces and tests.
func (a *App) Manager() *gateway.Manager {
	return a.manager
}

// Run serves the gateway until ctx is cancelled, then shuts down gracefully.
// Returns nil on a clean shutdown.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", a.srv.Addr, "tls", a.cfg.Server.TLS != nil)
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown ends any active session and stops the HTTP server. It respects
// the context deadline; remaining work is abandoned when ctx expires.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down")

		// End the active interview first so its report and recording are
		// persisted before the sockets go away.
		if a.manager.IsActive() {
			if _, err := a.manager.Stop(ctx); err != nil {
				slog.Warn("session stop error during shutdown", "err", err)
			}
		}

		if err := a.srv.Shutdown(ctx); err != nil {
			shutdownErr = err
			return
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
