package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/MuddySheep/AI-Interviewer/internal/config"
	"github.com/MuddySheep/AI-Interviewer/internal/prompt"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":9090"
  log_level: debug
providers:
  live:
    name: gemini-live
    api_key: test-key
    voice: Puck
  report:
    name: openai
    model: gpt-4o
interview:
  mode: technical
  duration: 30m
  job_description: "Senior Go engineer"
media:
  frame_max_dim: 256
  frame_sample_rate: 0.05
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want %q", cfg.Server.ListenAddr, ":9090")
	}
	if cfg.Providers.Live.Voice != "Puck" {
		t.Errorf("live voice = %q, want %q", cfg.Providers.Live.Voice, "Puck")
	}
	if cfg.Interview.Mode != prompt.ModeTechnical {
		t.Errorf("mode = %q, want %q", cfg.Interview.Mode, prompt.ModeTechnical)
	}
	if cfg.Interview.Duration.Std() != 30*time.Minute {
		t.Errorf("duration = %s, want 30m", cfg.Interview.Duration)
	}
	if cfg.Media.FrameMaxDim != 256 {
		t.Errorf("frame_max_dim = %d, want 256", cfg.Media.FrameMaxDim)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  live:
    name: mock
    flavour: spicy
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate_MissingLiveProvider(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":8080"
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing live provider, got nil")
	}
	if !strings.Contains(err.Error(), "providers.live.name") {
		t.Errorf("error should mention providers.live.name, got: %v", err)
	}
}

func TestLoadFromReader_ReportFallbacks(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  live:
    name: mock
  report:
    name: openai
    model: gpt-4o
  report_fallbacks:
    - name: anthropic
      model: claude-sonnet-4-20250514
    - name: ollama
      base_url: http://localhost:11434
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers.ReportFallbacks) != 2 {
		t.Fatalf("report_fallbacks len = %d, want 2", len(cfg.Providers.ReportFallbacks))
	}
	if cfg.Providers.ReportFallbacks[0].Name != "anthropic" {
		t.Errorf("fallback[0].Name = %q, want %q", cfg.Providers.ReportFallbacks[0].Name, "anthropic")
	}
	if cfg.Providers.ReportFallbacks[1].BaseURL != "http://localhost:11434" {
		t.Errorf("fallback[1].BaseURL = %q", cfg.Providers.ReportFallbacks[1].BaseURL)
	}
}

func TestValidate_FallbacksRequirePrimaryReport(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  live:
    name: mock
  report_fallbacks:
    - name: anthropic
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for fallbacks without a primary report provider, got nil")
	}
	if !strings.Contains(err.Error(), "report_fallbacks") {
		t.Errorf("error should mention report_fallbacks, got: %v", err)
	}
}

func TestValidate_FallbackNameRequired(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  live:
    name: mock
  report:
    name: openai
  report_fallbacks:
    - model: gpt-4o-mini
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for fallback without a name, got nil")
	}
	if !strings.Contains(err.Error(), "report_fallbacks[0].name") {
		t.Errorf("error should mention report_fallbacks[0].name, got: %v", err)
	}
}

func TestLoadFromReader_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_INTERVIEWER_KEY", "sk-secret")
	yaml := `
providers:
  live:
    name: gemini-live
    api_key: "${TEST_INTERVIEWER_KEY}"
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Providers.Live.APIKey != "sk-secret" {
		t.Errorf("api_key = %q, want %q", cfg.Providers.Live.APIKey, "sk-secret")
	}
}

func TestValidate_InvalidMode(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  live:
    name: mock
interview:
  mode: casual
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid interview mode, got nil")
	}
	if !strings.Contains(err.Error(), "interview.mode") {
		t.Errorf("error should mention interview.mode, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  log_level: loud
providers:
  live:
    name: mock
media:
  frame_sample_rate: 1.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
	if !strings.Contains(errStr, "frame_sample_rate") {
		t.Errorf("error should mention frame_sample_rate, got: %v", err)
	}
}

func TestDuration_ParsesGoSyntax(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  live:
    name: mock
interview:
  duration: 1h15m
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Interview.Duration.Std(); got != 75*time.Minute {
		t.Errorf("duration = %s, want 1h15m", got)
	}
}

func TestDuration_RejectsGarbage(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  live:
    name: mock
interview:
  duration: soonish
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unparseable duration, got nil")
	}
}

func TestValidProviderNames(t *testing.T) {
	t.Parallel()
	if len(config.ValidProviderNames) == 0 {
		t.Fatal("ValidProviderNames should not be empty")
	}
	liveNames := config.ValidProviderNames["live"]
	if len(liveNames) == 0 {
		t.Fatal("ValidProviderNames[\"live\"] should not be empty")
	}
	found := false
	for _, n := range liveNames {
		if n == "gemini-live" {
			found = true
			break
		}
	}
	if !found {
		t.Error("ValidProviderNames[\"live\"] should contain \"gemini-live\"")
	}
}
