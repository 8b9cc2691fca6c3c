package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/karrick/godirwalk"

	"github.com/meigma/ustar"
	"github.com/meigma/ustar/internal/pathutil"
)

func (r *runner) create(ctx context.Context) error {
	var entries []ustar.FileEntry
	for _, src := range r.cfg.Sources {
		added, err := r.collect(ctx, src)
		if err != nil {
			return err
		}
		entries = append(entries, added...)
	}

	buf, err := ustar.Build(entries, ustar.WithBuildLogger(r.libraryLogger()))
	if err != nil {
		return err
	}
	if err := r.writeArchive(buf); err != nil {
		return err
	}
	r.log.Info().
		Str("archive", r.cfg.ArchivePath).
		Int("entries", len(entries)).
		Str("size", units.HumanSize(float64(len(buf)))).
		Msg("created")
	return nil
}

// collect returns the entries for src. Directories are walked recursively in
// lexical order without following symlinks. Special files are skipped with a
// warning.
func (r *runner) collect(ctx context.Context, src string) ([]ustar.FileEntry, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !info.IsDir() {
		e, ok, err := r.entry(src)
		if err != nil || !ok {
			return nil, err
		}
		return []ustar.FileEntry{e}, nil
	}

	var entries []ustar.FileEntry
	err = godirwalk.Walk(src, &godirwalk.Options{
		Callback: func(path string, _ *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, ok, err := r.entry(path)
			if err != nil {
				return err
			}
			if ok {
				entries = append(entries, e)
			}
			return nil
		},
		FollowSymbolicLinks: false,
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// entry reads one file. ok is false for file types that cannot be archived.
func (r *runner) entry(path string) (ustar.FileEntry, bool, error) {
	e, err := ustar.FileEntryFromPath(path, "")
	if errors.Is(err, ustar.ErrUnsupportedType) {
		r.log.Warn().Str("path", path).Msg("skipping unsupported file type")
		return ustar.FileEntry{}, false, nil
	}
	if err != nil {
		return ustar.FileEntry{}, false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if _, trimmed := pathutil.ArchiveNameTrimmed(path); trimmed {
		r.log.Warn().Str("path", path).Str("name", e.Path).Msg("removing leading ../ from member name")
	}
	r.log.Debug().Str("path", path).Str("name", e.Path).Msg("add")
	return e, true, nil
}

func (r *runner) writeArchive(buf []byte) error {
	if r.cfg.ArchivePath == stdio {
		return writeAll(r.streams.Out, buf)
	}
	f, err := os.Create(r.cfg.ArchivePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := writeAll(f, buf); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func writeAll(w io.Writer, buf []byte) error {
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
