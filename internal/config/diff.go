package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; provider and
// server changes require a restart and are not reported here.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// InterviewChanged is true if any of the interview defaults below changed.
	// New sessions pick up the changed defaults; running sessions are unaffected.
	InterviewChanged      bool
	ModeChanged           bool
	DurationChanged       bool
	JobDescriptionChanged bool
	ResumeFileChanged     bool

	MediaChanged bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	// Log level
	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	// Interview defaults
	if old.Interview.Mode != new.Interview.Mode {
		d.ModeChanged = true
	}
	if old.Interview.Duration != new.Interview.Duration {
		d.DurationChanged = true
	}
	if old.Interview.JobDescription != new.Interview.JobDescription {
		d.JobDescriptionChanged = true
	}
	if old.Interview.ResumeFile != new.Interview.ResumeFile {
		d.ResumeFileChanged = true
	}
	d.InterviewChanged = d.ModeChanged || d.DurationChanged || d.JobDescriptionChanged || d.ResumeFileChanged

	if old.Media != new.Media {
		d.MediaChanged = true
	}

	return d
}
