package ustar

import (
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/ustar/internal/platform"
	"github.com/meigma/ustar/internal/sizing"
)

// parallelMinEntries is the entry count below which automatic worker
// selection stays serial.
const parallelMinEntries = 256

var defaultResolver = &platform.SystemResolver{}

// Metadata describes a filesystem entry to be archived.
type Metadata struct {
	// Type is the entry kind.
	Type TypeFlag

	// Mode holds the permission bits. Setuid, setgid, and sticky bits are
	// kept; file type bits are ignored in favor of Type.
	Mode fs.FileMode

	// UID and GID are the numeric owner and group IDs.
	UID uint32
	GID uint32

	// ModTime is the modification time. Times before the Unix epoch are
	// recorded as zero.
	ModTime time.Time

	// LinkTarget is the symlink target. Only used when Type is TypeSymlink.
	LinkTarget string

	// Uname and Gname override owner and group name resolution when set.
	Uname string
	Gname string
}

// FileEntry is one input to Build: an archive name, its metadata, and its
// content. Content is only written for regular files.
type FileEntry struct {
	Path    string
	Meta    Metadata
	Content []byte
}

// size returns the number of content bytes written for e.
func (e *FileEntry) size() uint64 {
	if e.Meta.Type != TypeRegular {
		return 0
	}
	return uint64(len(e.Content))
}

// Build serializes entries, in order, into a complete archive.
//
// Each entry becomes a header block followed by its content split into
// 512-byte blocks, the last one zero padded. Two zero blocks are always
// appended, so the result length is a multiple of BlockSize.
//
// Entries are independent; with more than one worker their headers are
// encoded in parallel, and the output order still follows the input.
func Build(entries []FileEntry, opts ...BuildOption) ([]byte, error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.resolver == nil {
		cfg.resolver = defaultResolver
	}

	b := &builder{cfg: cfg, logger: cfg.logger}
	return b.build(entries)
}

// builder holds state for a single Build call.
type builder struct {
	cfg    buildConfig
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (b *builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

func (b *builder) build(entries []FileEntry) ([]byte, error) {
	offsets, total, err := layout(entries)
	if err != nil {
		return nil, err
	}
	out := make([]byte, total)

	errs := make([]error, len(entries))
	encode := func(i int) {
		errs[i] = b.encodeEntry(out[offsets[i]:], &entries[i])
	}

	workers := b.workers(len(entries))
	if workers <= 1 {
		for i := range entries {
			encode(i)
			if errs[i] != nil {
				break
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range entries {
			g.Go(func() error {
				encode(i)
				return nil
			})
		}
		_ = g.Wait() // errors are collected per entry
	}
	for _, entryErr := range errs {
		if entryErr != nil {
			return nil, entryErr
		}
	}

	b.log().Debug("archive built",
		"entries", len(entries),
		"bytes", len(out),
		"workers", workers,
		"digest", lazyDigest(out))
	return out, nil
}

// workers returns the effective worker count for n entries.
func (b *builder) workers(n int) int {
	switch {
	case b.cfg.workers < 0:
		return 1
	case b.cfg.workers > 0:
		return b.cfg.workers
	case n < parallelMinEntries:
		return 1
	default:
		return runtime.GOMAXPROCS(0)
	}
}

// layout computes the offset of each entry's header block and the total
// archive size including the terminator.
func layout(entries []FileEntry) (offsets []int, total int, err error) {
	offsets = make([]int, len(entries))
	var pos uint64
	for i := range entries {
		padded, ok := sizing.RoundUp(entries[i].size(), BlockSize)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrFieldOverflow, entries[i].Path)
		}
		off, err := sizing.ToInt(pos, ErrFieldOverflow)
		if err != nil {
			return nil, 0, err
		}
		offsets[i] = off
		next, ok := sizing.AddUint64(pos, BlockSize)
		if ok {
			next, ok = sizing.AddUint64(next, padded)
		}
		if !ok {
			return nil, 0, ErrFieldOverflow
		}
		pos = next
	}
	end, ok := sizing.AddUint64(pos, terminatorBlocks*BlockSize)
	if !ok {
		return nil, 0, ErrFieldOverflow
	}
	total, err = sizing.ToInt(end, ErrFieldOverflow)
	if err != nil {
		return nil, 0, err
	}
	return offsets, total, nil
}

// encodeEntry writes the header block and content of e at the start of dst.
func (b *builder) encodeEntry(dst []byte, e *FileEntry) error {
	h, err := b.header(e)
	if err != nil {
		return err
	}
	if _, err := EncodeHeader(dst, h); err != nil {
		return err
	}
	if h.Size > 0 {
		copy(dst[BlockSize:], e.Content)
	}
	return nil
}

// header builds the header record for e, resolving owner names.
func (b *builder) header(e *FileEntry) (Header, error) {
	if e.Path == "" {
		return Header{}, &HeaderError{Offset: -1, Field: fieldName.name, Err: ErrEmptyName}
	}
	h := Header{
		Name:    e.Path,
		Size:    e.size(),
		Mode:    modeBits(e.Meta.Mode),
		UID:     e.Meta.UID,
		GID:     e.Meta.GID,
		ModTime: unixSeconds(e.Meta.ModTime),
		Type:    e.Meta.Type,
		Uname:   e.Meta.Uname,
		Gname:   e.Meta.Gname,
	}
	if h.Type == TypeSymlink {
		h.LinkTarget = e.Meta.LinkTarget
	}
	if h.Uname == "" {
		h.Uname = resolveName(b.cfg.resolver.UserName, h.UID)
	}
	if h.Gname == "" {
		h.Gname = resolveName(b.cfg.resolver.GroupName, h.GID)
	}
	return h, nil
}

func resolveName(lookup func(uint32) (string, bool), id uint32) string {
	if name, ok := lookup(id); ok && name != "" {
		return name
	}
	return UnknownOwner
}

// modeBits converts an fs.FileMode to USTAR permission bits.
func modeBits(mode fs.FileMode) uint32 {
	bits := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		bits |= 0o4000
	}
	if mode&fs.ModeSetgid != 0 {
		bits |= 0o2000
	}
	if mode&fs.ModeSticky != 0 {
		bits |= 0o1000
	}
	return bits
}

func unixSeconds(t time.Time) uint64 {
	if t.IsZero() || t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix()) //nolint:gosec // checked non-negative above
}
