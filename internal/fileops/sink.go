// Package fileops writes extracted entries beneath a destination root.
package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Sink writes files, directories, and symlinks inside an os.Root, so no
// entry can be created outside of it.
//
// Regular files are written to a temporary file in the same directory,
// then renamed to the final path. This ensures that partially written files
// are never visible at the final path.
type Sink struct {
	root          *os.Root
	overwrite     bool
	preserveMode  bool
	preserveTimes bool
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithOverwrite allows replacing existing files and symlinks.
func WithOverwrite(overwrite bool) SinkOption {
	return func(s *Sink) {
		s.overwrite = overwrite
	}
}

// WithPreserveMode applies permission modes from the archive.
// By default, modes are not preserved (files use umask defaults).
func WithPreserveMode(preserve bool) SinkOption {
	return func(s *Sink) {
		s.preserveMode = preserve
	}
}

// WithPreserveTimes applies modification times from the archive.
// By default, times are not preserved (files use current time).
func WithPreserveTimes(preserve bool) SinkOption {
	return func(s *Sink) {
		s.preserveTimes = preserve
	}
}

// NewSink creates a Sink that writes beneath root.
func NewSink(root *os.Root, opts ...SinkOption) *Sink {
	s := &Sink{root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// exists reports whether name is present, without following symlinks.
func (s *Sink) exists(name string) bool {
	_, err := s.root.Lstat(name)
	return err == nil
}

// WriteFile writes content to name. It reports false when the file already
// exists and overwrite is disabled.
func (s *Sink) WriteFile(name string, content []byte, mode fs.FileMode, mtime time.Time) (bool, error) {
	if !s.overwrite && s.exists(name) {
		return false, nil
	}
	dir := filepath.Dir(name)
	if err := s.root.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	tempPath := filepath.Join(dir, ".ustar-"+uuid.NewString())
	f, err := s.root.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = s.root.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return false, fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = s.root.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return false, fmt.Errorf("close temp file: %w", err)
	}

	if err := s.applyMetadata(tempPath, mode, mtime); err != nil {
		_ = s.root.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return false, err
	}

	if err := s.root.Rename(tempPath, name); err != nil {
		_ = s.root.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return false, fmt.Errorf("rename to %s: %w", name, err)
	}
	return true, nil
}

// Mkdir creates the directory name and any missing parents with owner
// write access, so later entries can be written inside it. The archived
// mode and modification time are applied by FinishDir once its contents
// are in place.
func (s *Sink) Mkdir(name string) error {
	if err := s.root.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", name, err)
	}
	return nil
}

// FinishDir applies the preserved mode and modification time to the
// directory name. Call it after every entry inside name has been written,
// deepest directories first.
func (s *Sink) FinishDir(name string, mode fs.FileMode, mtime time.Time) error {
	if s.preserveMode {
		if err := s.root.Chmod(name, mode.Perm()); err != nil {
			return fmt.Errorf("chmod %s: %w", name, err)
		}
	}
	return s.SetTimes(name, mtime)
}

// Symlink creates name pointing at target. It reports false when name
// already exists and overwrite is disabled.
func (s *Sink) Symlink(name, target string) (bool, error) {
	if s.exists(name) {
		if !s.overwrite {
			return false, nil
		}
		if err := s.root.Remove(name); err != nil {
			return false, fmt.Errorf("replace %s: %w", name, err)
		}
	}
	dir := filepath.Dir(name)
	if err := s.root.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := s.root.Symlink(target, name); err != nil {
		return false, fmt.Errorf("symlink %s: %w", name, err)
	}
	return true, nil
}

// SetTimes applies mtime to name when times are preserved.
func (s *Sink) SetTimes(name string, mtime time.Time) error {
	if !s.preserveTimes {
		return nil
	}
	if err := s.root.Chtimes(name, mtime, mtime); err != nil {
		return fmt.Errorf("chtimes %s: %w", name, err)
	}
	return nil
}

func (s *Sink) applyMetadata(name string, mode fs.FileMode, mtime time.Time) error {
	if s.preserveMode {
		if err := s.root.Chmod(name, mode.Perm()); err != nil {
			return fmt.Errorf("chmod: %w", err)
		}
	}
	return s.SetTimes(name, mtime)
}
