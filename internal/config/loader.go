package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"live":   {"gemini-live", "openai-realtime", "mock"},
	"report": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
// References of the form ${VAR} are replaced with the value of the
// environment variable VAR before decoding, so API keys can stay out of
// the config file.
func LoadFromReader(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	expanded := os.Expand(string(raw), func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		slog.Warn("config references an unset environment variable", "var", name)
		return ""
	})

	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("live", cfg.Providers.Live.Name)
	validateProviderName("report", cfg.Providers.Report.Name)
	for i, entry := range cfg.Providers.ReportFallbacks {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("providers.report_fallbacks[%d].name is required", i))
			continue
		}
		validateProviderName("report", entry.Name)
	}

	if cfg.Providers.Live.Name == "" {
		errs = append(errs, errors.New("providers.live.name is required"))
	}
	if cfg.Providers.Report.Name == "" {
		if len(cfg.Providers.ReportFallbacks) > 0 {
			errs = append(errs, errors.New("providers.report_fallbacks requires providers.report to be set"))
		} else {
			slog.Warn("providers.report is not configured; sessions will end with a fallback report")
		}
	}

	// Interview defaults
	if cfg.Interview.Mode != "" && !cfg.Interview.Mode.Valid() {
		errs = append(errs, fmt.Errorf("interview.mode %q is invalid; valid values: hr, technical, behavioral", cfg.Interview.Mode))
	}
	if cfg.Interview.Duration < 0 {
		errs = append(errs, fmt.Errorf("interview.duration %s must not be negative", cfg.Interview.Duration.Std()))
	}
	if cfg.Interview.ResumeFile != "" {
		if _, err := os.Stat(cfg.Interview.ResumeFile); err != nil {
			slog.Warn("interview.resume_file is not readable; interviews will run without a resume",
				"path", cfg.Interview.ResumeFile, "err", err)
		}
	}

	// Media
	if cfg.Media.FrameMaxDim < 0 {
		errs = append(errs, fmt.Errorf("media.frame_max_dim %d must not be negative", cfg.Media.FrameMaxDim))
	}
	if cfg.Media.FrameSampleRate < 0 || cfg.Media.FrameSampleRate > 1 {
		errs = append(errs, fmt.Errorf("media.frame_sample_rate %.3f is out of range [0, 1]", cfg.Media.FrameSampleRate))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
