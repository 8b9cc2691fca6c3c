package ustar

import (
	_ "crypto/sha256" // registers digest.Canonical
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/opencontainers/go-digest"
)

// Entry is an archived file: its header plus a view of its content inside the
// archive buffer.
type Entry struct {
	// Header is the decoded header block.
	Header Header

	// HeaderOffset is the byte offset of the header block in the archive.
	HeaderOffset int64

	// DataOffset is the byte offset of the first data block.
	DataOffset int64

	length int
	arena  []byte
}

// Content returns the entry content without padding. The slice aliases the
// archive buffer and must not be modified.
func (e *Entry) Content() []byte {
	end := e.DataOffset + int64(e.length)
	return e.arena[e.DataOffset:end:end]
}

// Truncated reports whether the archive ended before all of the entry's data
// blocks, in which case Content is shorter than Header.Size.
func (e *Entry) Truncated() bool {
	return uint64(e.length) < e.Header.Size //nolint:gosec // length is non-negative
}

// DataBlocks yields the entry's data blocks, including the zero padding of
// the final block.
func (e *Entry) DataBlocks() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		padded := e.length + (BlockSize-e.length%BlockSize)%BlockSize
		data := e.arena[e.DataOffset : e.DataOffset+int64(padded)]
		for _, block := range Blocks(data) {
			if !yield(block) {
				return
			}
		}
	}
}

// Digest returns the sha256 digest of the entry content.
func (e *Entry) Digest() digest.Digest {
	return digest.FromBytes(e.Content())
}

// lazyDigest logs the digest of its bytes, computed only when a record is
// actually emitted.
type lazyDigest []byte

func (b lazyDigest) LogValue() slog.Value {
	return slog.StringValue(digest.FromBytes(b).String())
}

// Archive is a parsed archive. It owns the buffer its entries point into.
type Archive struct {
	buf        []byte
	entries    []Entry
	terminated bool
}

// Parse reads every entry in buf.
//
// Blocks are consumed until two consecutive zero blocks appear at a header
// position or the buffer runs out; a trailing partial block is ignored. An
// archive without a terminator still yields its last entry.
//
// Parse fails only when a header cannot be decoded (ErrMalformedHeader), when
// checksum verification is enabled and fails (ErrChecksumMismatch), or when
// an entry limit is set and exceeded (ErrTooManyEntries). No entries are
// returned on failure.
//
// buf must not be modified while the returned Archive is in use.
func Parse(buf []byte, opts ...ParseOption) (*Archive, error) {
	cfg := parseConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &parser{cfg: cfg, logger: cfg.logger}
	return p.parse(buf)
}

// ReadArchive reads r to EOF and parses the result.
func ReadArchive(r io.Reader, opts ...ParseOption) (*Archive, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Parse(buf, opts...)
}

// Entries returns the entries in archive order. The slice is shared and must
// not be modified.
func (a *Archive) Entries() []Entry {
	return a.entries
}

// All yields each entry with its index.
func (a *Archive) All() iter.Seq2[int, *Entry] {
	return func(yield func(int, *Entry) bool) {
		for i := range a.entries {
			if !yield(i, &a.entries[i]) {
				return
			}
		}
	}
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Names returns the entry names in archive order. Duplicates are kept.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i := range a.entries {
		names[i] = a.entries[i].Header.Name
	}
	return names
}

// Terminated reports whether the archive ended with the two-block terminator.
func (a *Archive) Terminated() bool {
	return a.terminated
}

// Bytes returns the buffer the archive was parsed from.
func (a *Archive) Bytes() []byte {
	return a.buf
}

// Digest returns the sha256 digest of the whole archive buffer.
func (a *Archive) Digest() digest.Digest {
	return digest.FromBytes(a.buf)
}

// parser holds state for a single Parse call.
type parser struct {
	cfg    parseConfig
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (p *parser) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

func (p *parser) parse(buf []byte) (*Archive, error) {
	a := &Archive{buf: buf}
	if rem := len(buf) % BlockSize; rem != 0 {
		p.log().Debug("ignoring partial trailing block", "bytes", rem)
	}

	sc := newScanner(buf)
	for {
		block, off, ok := sc.next()
		if !ok {
			break
		}
		if p.cfg.maxEntries > 0 && len(a.entries) >= p.cfg.maxEntries {
			return nil, fmt.Errorf("%w: limit %d", ErrTooManyEntries, p.cfg.maxEntries)
		}

		entry, err := p.entry(sc, block, off)
		if err != nil {
			p.log().Debug("header rejected", "offset", off, "error", err)
			return nil, err
		}
		entry.arena = buf
		a.entries = append(a.entries, entry)
	}

	a.terminated = sc.terminated()
	if !a.terminated {
		p.log().Debug("archive has no terminator", "entries", len(a.entries))
	}
	p.log().Debug("archive parsed", "entries", len(a.entries), "bytes", len(buf))
	return a, nil
}

// entry decodes the header in block and consumes its data blocks.
func (p *parser) entry(sc *scanner, block []byte, off int) (Entry, error) {
	h, err := decodeHeader(block, int64(off))
	if err != nil {
		return Entry{}, err
	}
	if p.cfg.verifyChecksum {
		if sum := ComputeChecksum(block); sum != h.Checksum {
			return Entry{}, &HeaderError{
				Offset: int64(off),
				Name:   h.Name,
				Field:  fieldChecksum.name,
				Err:    fmt.Errorf("%w: stored %o, computed %o", ErrChecksumMismatch, h.Checksum, sum),
			}
		}
	}

	dataOff := sc.offset()
	taken := sc.skip(blockCount(h.Size))
	length := min(h.Size, uint64(taken)) //nolint:gosec // taken is non-negative
	if length < h.Size {
		p.log().Debug("entry truncated", "name", h.Name, "size", h.Size, "available", length)
	}

	return Entry{
		Header:       h,
		HeaderOffset: int64(off),
		DataOffset:   int64(dataOff),
		length:       int(length), //nolint:gosec // bounded by buffer length
	}, nil
}
