// Command interviewer is the main entry point for the AI mock-interview
// server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MuddySheep/AI-Interviewer/internal/app"
	"github.com/MuddySheep/AI-Interviewer/internal/config"
	"github.com/MuddySheep/AI-Interviewer/internal/observe"
	"github.com/MuddySheep/AI-Interviewer/internal/resilience"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/live"
	geminilive "github.com/MuddySheep/AI-Interviewer/pkg/provider/live/gemini"
	livemock "github.com/MuddySheep/AI-Interviewer/pkg/provider/live/mock"
	oailive "github.com/MuddySheep/AI-Interviewer/pkg/provider/live/openai"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm"
	"github.com/MuddySheep/AI-Interviewer/pkg/provider/llm/anyllm"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "interviewer: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "interviewer: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(slogLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("interviewer starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "interviewer",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	// Log level changes apply immediately; interview and media changes need
	// a restart and are only announced.
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if diff.LogLevelChanged {
			level.Set(slogLevel(diff.NewLogLevel))
			slog.Info("log level updated", "level", diff.NewLogLevel)
		}
		if diff.InterviewChanged || diff.MediaChanged {
			slog.Info("interview settings changed on disk, restart to apply")
		}
	})
	if err != nil {
		slog.Warn("config watcher unavailable", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(cfg, providers)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Live ──────────────────────────────────────────────────────────────────

	reg.RegisterLive("gemini-live", func(entry config.ProviderEntry) (live.Provider, error) {
		var opts []geminilive.Option
		if entry.Model != "" {
			opts = append(opts, geminilive.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, geminilive.WithBaseURL(entry.BaseURL))
		}
		return geminilive.New(entry.APIKey, opts...), nil
	})

	reg.RegisterLive("openai-realtime", func(entry config.ProviderEntry) (live.Provider, error) {
		var opts []oailive.Option
		if entry.Model != "" {
			opts = append(opts, oailive.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, oailive.WithBaseURL(entry.BaseURL))
		}
		return oailive.New(entry.APIKey, opts...), nil
	})

	// mock runs the full pipeline without a remote model. Useful for client
	// development and demos.
	reg.RegisterLive("mock", func(_ config.ProviderEntry) (live.Provider, error) {
		return &livemock.Provider{
			Session:              livemock.NewSession(),
			ProviderCapabilities: live.Capabilities{Voices: []string{"mock"}},
		}, nil
	})

	// ── Report ────────────────────────────────────────────────────────────────
	// Hosted LLM backends share the same pattern: optional APIKey + BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterReport(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterReport("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})
}

// buildProviders instantiates the providers named in cfg using the registry
// and returns them in an [app.Providers] struct for the application to consume.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, error) {
	ps := &app.Providers{}

	name := cfg.Providers.Live.Name
	p, err := reg.CreateLive(cfg.Providers.Live)
	if err != nil {
		return nil, fmt.Errorf("create live provider %q: %w", name, err)
	}
	ps.Live = p
	slog.Info("provider created", "kind", "live", "name", name, "voices", len(p.Capabilities().Voices))

	if name := cfg.Providers.Report.Name; name != "" {
		p, err := reg.CreateReport(cfg.Providers.Report)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Warn("unknown report provider — sessions will use the fallback report", "name", name)
		} else if err != nil {
			return nil, fmt.Errorf("create report provider %q: %w", name, err)
		} else {
			ps.Report = buildReportChain(cfg, reg, p)
			slog.Info("provider created", "kind", "report", "name", name)
		}
	}

	return ps, nil
}

// buildReportChain wraps the primary report provider in a failover chain when
// fallbacks are configured. Providers that cannot be constructed are skipped
// with a warning so one bad entry does not take the whole chain down.
func buildReportChain(cfg *config.Config, reg *config.Registry, primary llm.Provider) llm.Provider {
	if len(cfg.Providers.ReportFallbacks) == 0 {
		return primary
	}

	chain := resilience.NewLLMFallback(primary, cfg.Providers.Report.Name, resilience.BreakerConfig{
		Name: "report",
	})
	for _, entry := range cfg.Providers.ReportFallbacks {
		p, err := reg.CreateReport(entry)
		if err != nil {
			slog.Warn("skipping report fallback provider", "name", entry.Name, "err", err)
			continue
		}
		chain.AddFallback(entry.Name, p)
		slog.Info("provider created", "kind", "report-fallback", "name", entry.Name)
	}
	return chain
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       Interviewer — startup summary   ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("Live", cfg.Providers.Live.Name, cfg.Providers.Live.Model)
	printProvider("Report", cfg.Providers.Report.Name, cfg.Providers.Report.Model)
	fmt.Printf("║  Mode            : %-19s ║\n", cfg.Interview.Mode)
	fmt.Printf("║  Duration        : %-19s ║\n", cfg.Interview.Duration)
	if cfg.Media.RecordingsDir != "" {
		fmt.Printf("║  Recordings      : %-19s ║\n", trim(cfg.Media.RecordingsDir))
	}
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, trim(value))
}

func trim(value string) string {
	if len(value) > 19 {
		return value[:16] + "…"
	}
	return value
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
