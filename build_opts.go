package ustar

import "log/slog"

// OwnerResolver maps numeric owner and group IDs to names.
// Implementations must be safe for concurrent calls when Build runs with
// more than one worker.
type OwnerResolver interface {
	UserName(uid uint32) (string, bool)
	GroupName(gid uint32) (string, bool)
}

// buildConfig holds configuration for Build.
type buildConfig struct {
	logger   *slog.Logger
	workers  int
	resolver OwnerResolver
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithBuildLogger sets the logger for build diagnostics.
// If not set, logging is disabled.
func WithBuildLogger(logger *slog.Logger) BuildOption {
	return func(cfg *buildConfig) {
		cfg.logger = logger
	}
}

// WithWorkers sets the number of workers encoding entries in parallel.
// Values < 0 force serial processing. Zero uses automatic heuristics.
// Values > 0 force a specific worker count.
func WithWorkers(n int) BuildOption {
	return func(cfg *buildConfig) {
		cfg.workers = n
	}
}

// WithOwnerResolver sets how owner and group names are looked up for
// entries that do not carry them. The default consults the host user
// database. Names that cannot be resolved are recorded as UnknownOwner.
func WithOwnerResolver(r OwnerResolver) BuildOption {
	return func(cfg *buildConfig) {
		cfg.resolver = r
	}
}
