// Package config provides the configuration schema, loader, and provider
// registry for the AI interviewer server.
package config

import (
	"fmt"
	"time"

	"github.com/MuddySheep/AI-Interviewer/internal/prompt"
	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity for the interviewer server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration wraps [time.Duration] so YAML values can be written in Go
// duration syntax (e.g., "15m", "1h30m") as well as plain nanosecond ints.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*d = Duration(time.Duration(v))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration value %v (want a string like \"15m\")", raw)
	}
	return nil
}

// Std returns d as a standard [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config is the root configuration structure for the interviewer server.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Interview InterviewConfig `yaml:"interview"`
	Media     MediaConfig     `yaml:"media"`
}

// ServerConfig holds network and logging settings for the interviewer server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// stage. Each field selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	// Live selects the realtime speech provider carrying the interview
	// conversation (e.g., "gemini-live", "openai-realtime").
	Live ProviderEntry `yaml:"live"`

	// Report selects the text LLM provider used to generate the
	// post-interview evaluation report.
	Report ProviderEntry `yaml:"report"`

	// ReportFallbacks lists additional text LLM providers tried in order when
	// the primary report provider fails. Each failing provider is skipped by
	// a circuit breaker until it recovers.
	ReportFallbacks []ProviderEntry `yaml:"report_fallbacks"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "gemini-live", "openai").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o").
	Model string `yaml:"model"`

	// Voice selects the spoken voice for realtime providers (e.g., "Puck").
	// Ignored by text-only providers.
	Voice string `yaml:"voice"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// InterviewConfig holds the default interview parameters applied when a
// client does not override them at session start.
type InterviewConfig struct {
	// Mode selects the interview style. One of "hr", "technical", "behavioral".
	Mode prompt.Mode `yaml:"mode"`

	// Duration is the interview length. Sessions end when the countdown
	// reaches zero. Defaults to 15 minutes when zero.
	Duration Duration `yaml:"duration"`

	// JobDescription is the free-text description of the role the candidate
	// is interviewing for. Injected into the interviewer's instructions.
	JobDescription string `yaml:"job_description"`

	// ResumeFile is a path to a plain-text resume read at session start.
	// When empty the interviewer is told no resume is available.
	ResumeFile string `yaml:"resume_file"`
}

// MediaConfig holds settings for video frame capture and visual analysis.
type MediaConfig struct {
	// FrameMaxDim is the longest side, in pixels, that captured frames are
	// downscaled to before being sent to the live provider. Defaults to 512.
	FrameMaxDim int `yaml:"frame_max_dim"`

	// FrameSampleRate is the per-tick probability of forwarding the latest
	// frame to the live provider, in [0, 1]. Defaults to 0.02.
	FrameSampleRate float64 `yaml:"frame_sample_rate"`

	// RecordingsDir is where per-session WAV recordings are written.
	// Recording is disabled when empty.
	RecordingsDir string `yaml:"recordings_dir"`
}
