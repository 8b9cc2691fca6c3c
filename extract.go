package ustar

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/meigma/ustar/internal/fileops"
	"github.com/meigma/ustar/internal/pathutil"
)

// Extract writes the archive's entries beneath destDir, creating it if needed.
//
// Entries are applied in archive order, so later entries with the same name
// replace earlier ones unless overwriting is disabled. Every name is checked
// before anything is written; a name that would resolve outside destDir fails
// the whole extraction with ErrUnsafePath. Entries naming the root itself,
// such as "./", are skipped.
//
// Writes go through an os.Root opened on destDir, so symlinks created by
// earlier entries cannot redirect later writes outside of it.
func (a *Archive) Extract(destDir string, opts ...ExtractOption) error {
	cfg := extractConfig{overwrite: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	x := &extractor{cfg: cfg, logger: cfg.logger}
	return x.extract(a, destDir)
}

// extractor holds state for a single Extract call.
type extractor struct {
	cfg    extractConfig
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (x *extractor) log() *slog.Logger {
	if x.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return x.logger
}

// pendingDir is a directory whose mode and time are applied after its
// contents.
type pendingDir struct {
	path  string
	mode  fs.FileMode
	mtime time.Time
}

func (x *extractor) extract(a *Archive, destDir string) error {
	paths := make([]string, len(a.entries))
	for i := range a.entries {
		name := a.entries[i].Header.Name
		if pathutil.Normalize(name) == "." {
			continue
		}
		local, ok := pathutil.LocalPath(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnsafePath, name)
		}
		paths[i] = local
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer root.Close()

	sink := fileops.NewSink(root,
		fileops.WithOverwrite(x.cfg.overwrite),
		fileops.WithPreserveMode(x.cfg.preserveMode),
		fileops.WithPreserveTimes(x.cfg.preserveTimes),
	)

	var dirs []pendingDir
	var written, skipped int
	for i := range a.entries {
		local := paths[i]
		if local == "" {
			continue
		}
		e := &a.entries[i]
		ok, err := x.apply(sink, e, local)
		if err != nil {
			return err
		}
		if e.Header.Type == TypeDirectory {
			dirs = append(dirs, pendingDir{path: local, mode: e.Header.FileMode(), mtime: e.Header.Modified()})
		}
		if ok {
			written++
		} else {
			skipped++
			x.log().Debug("entry exists, skipped", "name", e.Header.Name)
		}
	}

	// Children change their parent's mtime and a read-only mode would block
	// them, so directories are finished last and deepest first.
	for _, d := range slices.Backward(dirs) {
		if err := sink.FinishDir(d.path, d.mode, d.mtime); err != nil {
			return err
		}
	}

	x.log().Debug("archive extracted",
		"dest", destDir,
		"written", written,
		"skipped", skipped)
	return nil
}

func (x *extractor) apply(sink *fileops.Sink, e *Entry, local string) (bool, error) {
	h := &e.Header
	switch h.Type {
	case TypeDirectory:
		if err := sink.Mkdir(local); err != nil {
			return false, err
		}
		return true, nil
	case TypeSymlink:
		return sink.Symlink(local, h.LinkTarget)
	default:
		if e.Truncated() {
			x.log().Warn("entry truncated",
				"name", h.Name,
				"size", h.Size,
				"available", len(e.Content()))
		}
		return sink.WriteFile(local, e.Content(), h.FileMode(), h.Modified())
	}
}
