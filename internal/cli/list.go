package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/meigma/ustar"
)

// readArchive loads and parses the archive named by the config.
func (r *runner) readArchive(ctx context.Context) (*ustar.Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var src io.Reader = r.streams.In
	name := "stdin"
	if r.cfg.ArchivePath != "" && r.cfg.ArchivePath != stdio {
		f, err := os.Open(r.cfg.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		defer f.Close()
		src = f
		name = r.cfg.ArchivePath
	}

	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, name, err)
	}
	a, err := ustar.Parse(buf, ustar.WithLogger(r.libraryLogger()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !a.Terminated() {
		r.log.Warn().Str("archive", name).Msg("archive has no end-of-archive marker")
	}
	if ev := r.log.Debug(); ev.Enabled() {
		ev.Str("archive", name).
			Int("entries", a.Len()).
			Str("digest", a.Digest().String()).
			Msg("archive loaded")
	}
	return a, nil
}

func (r *runner) list(ctx context.Context) error {
	a, err := r.readArchive(ctx)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(r.streams.Out)
	for _, e := range a.All() {
		if r.cfg.Verbose {
			_, err = fmt.Fprintln(w, longListing(&e.Header))
		} else {
			_, err = fmt.Fprintln(w, e.Header.Name)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// longListing formats h like "tar -tv":
//
//	-rw-r--r-- alice/staff        5 2024-01-02 03:04 dir/a.txt
func longListing(h *ustar.Header) string {
	line := fmt.Sprintf("%s %s/%s %8d %s %s",
		modeString(h),
		h.Uname, h.Gname,
		h.Size,
		h.Modified().UTC().Format("2006-01-02 15:04"),
		h.Name)
	if h.Type == ustar.TypeSymlink {
		line += " -> " + h.LinkTarget
	}
	return line
}

// modeString renders the type and permission bits as ls does.
func modeString(h *ustar.Header) string {
	var kind byte = '-'
	switch h.Type {
	case ustar.TypeDirectory:
		kind = 'd'
	case ustar.TypeSymlink:
		kind = 'l'
	}
	perm := []byte(h.FileMode().Perm().String()) // "-rwxr-xr-x"
	perm[0] = kind
	return string(perm)
}
