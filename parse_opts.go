package ustar

import "log/slog"

// parseConfig holds configuration for Parse.
type parseConfig struct {
	logger         *slog.Logger
	verifyChecksum bool
	maxEntries     int
}

// ParseOption configures Parse and ReadArchive.
type ParseOption func(*parseConfig)

// WithLogger sets the logger for parse diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) ParseOption {
	return func(cfg *parseConfig) {
		cfg.logger = logger
	}
}

// WithVerifyChecksum rejects headers whose stored checksum does not match
// their contents. Verification is off by default, so corrupted headers with
// otherwise valid fields are accepted.
func WithVerifyChecksum(enabled bool) ParseOption {
	return func(cfg *parseConfig) {
		cfg.verifyChecksum = enabled
	}
}

// WithMaxEntries limits the number of entries Parse accepts; archives with
// more fail with ErrTooManyEntries. Values <= 0 mean no limit, which is the
// default.
func WithMaxEntries(n int) ParseOption {
	return func(cfg *parseConfig) {
		cfg.maxEntries = max(n, 0)
	}
}
