package ustar

import "log/slog"

// extractConfig holds configuration for Extract.
type extractConfig struct {
	logger        *slog.Logger
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithOverwrite controls whether existing files are replaced.
// Overwriting is on by default, so a name archived twice ends up with the
// content of its last entry.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// ExtractWithPreserveMode applies permission modes from the archive.
// By default, modes are not preserved (files use umask defaults).
func ExtractWithPreserveMode(preserve bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.preserveMode = preserve
	}
}

// ExtractWithPreserveTimes applies modification times from the archive.
// By default, times are not preserved (files use current time).
func ExtractWithPreserveTimes(preserve bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.preserveTimes = preserve
	}
}

// ExtractWithLogger sets the logger for extraction diagnostics.
// If not set, logging is disabled.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = logger
	}
}
