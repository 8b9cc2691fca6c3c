package ustar

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/meigma/ustar/internal/octal"
)

// UnknownOwner is recorded for owners and groups whose names cannot be resolved.
const UnknownOwner = "Unknown"

const (
	magic          = "ustar\x00"
	version        = "00"
	devPlaceholder = "0000000\x00"
	typeFlagOffset = 156
)

// field is a fixed byte range of a header block.
type field struct {
	name string
	off  int
	size int
}

func (f field) of(block []byte) []byte {
	return block[f.off : f.off+f.size]
}

// Header block layout. The size field spans 11 digits plus a terminator.
var (
	fieldName     = field{"name", 0, 100}
	fieldMode     = field{"mode", 100, 8}
	fieldUID      = field{"uid", 108, 8}
	fieldGID      = field{"gid", 116, 8}
	fieldSize     = field{"size", 124, 12}
	fieldModTime  = field{"mtime", 136, 12}
	fieldChecksum = field{"chksum", 148, 8}
	fieldLinkname = field{"linkname", 157, 100}
	fieldMagic    = field{"magic", 257, 6}
	fieldVersion  = field{"version", 263, 2}
	fieldUname    = field{"uname", 265, 32}
	fieldGname    = field{"gname", 297, 32}
	fieldDevMajor = field{"devmajor", 329, 8}
	fieldDevMinor = field{"devminor", 337, 8}
)

// Header is the decoded form of a 512-byte header block.
type Header struct {
	// Name is the entry path inside the archive.
	Name string

	// Size is the content length in bytes. Zero for directories and symlinks.
	Size uint64

	// Mode holds the permission bits (including setuid, setgid, and sticky).
	Mode uint32

	// UID and GID are the numeric owner and group IDs.
	UID uint32
	GID uint32

	// Uname and Gname are the owner and group names.
	Uname string
	Gname string

	// ModTime is the modification time in seconds since the Unix epoch.
	ModTime uint64

	// Checksum is the header checksum as stored in (or written to) the block.
	Checksum uint32

	// Type is the entry kind.
	Type TypeFlag

	// LinkTarget is the symlink target. Empty for other types.
	LinkTarget string
}

// Modified returns ModTime as a time.Time.
func (h *Header) Modified() time.Time {
	return time.Unix(int64(h.ModTime), 0) //nolint:gosec // 11 octal digits fit int64
}

// FileMode returns the permission and type bits of h as an fs.FileMode.
func (h *Header) FileMode() fs.FileMode {
	mode := fs.FileMode(h.Mode & 0o777)
	if h.Mode&0o4000 != 0 {
		mode |= fs.ModeSetuid
	}
	if h.Mode&0o2000 != 0 {
		mode |= fs.ModeSetgid
	}
	if h.Mode&0o1000 != 0 {
		mode |= fs.ModeSticky
	}
	return mode | h.Type.FileMode()
}

// DecodeHeader parses a header block.
//
// The size and modification time fields must hold octal text; anything else
// fails with ErrMalformedHeader. The mode, ownership, and checksum fields
// decode as zero when they are not octal. The stored checksum is not
// verified; see ComputeChecksum.
func DecodeHeader(block []byte) (Header, error) {
	return decodeHeader(block, -1)
}

func decodeHeader(block []byte, offset int64) (Header, error) {
	if len(block) < BlockSize {
		return Header{}, &HeaderError{
			Offset: offset,
			Field:  "block",
			Err:    fmt.Errorf("%w: short block (%d bytes)", ErrMalformedHeader, len(block)),
		}
	}

	h := Header{
		Name:       decodeString(fieldName.of(block)),
		Mode:       uint32(octal.ParseLenient(fieldMode.of(block))),    //nolint:gosec // field holds at most 7 digits
		UID:        uint32(octal.ParseLenient(fieldUID.of(block))),     //nolint:gosec // field holds at most 7 digits
		GID:        uint32(octal.ParseLenient(fieldGID.of(block))),     //nolint:gosec // field holds at most 7 digits
		Checksum:   uint32(octal.ParseLenient(fieldChecksum.of(block))), //nolint:gosec // field holds at most 8 digits
		Type:       ParseTypeFlag(block[typeFlagOffset]),
		LinkTarget: decodeString(fieldLinkname.of(block)),
		Uname:      decodeString(fieldUname.of(block)),
		Gname:      decodeString(fieldGname.of(block)),
	}

	size, err := octal.Parse(fieldSize.of(block))
	if err != nil {
		return Header{}, malformed(block, offset, h.Name, fieldSize, err)
	}
	h.Size = size

	mtime, err := octal.Parse(fieldModTime.of(block))
	if err != nil {
		return Header{}, malformed(block, offset, h.Name, fieldModTime, err)
	}
	h.ModTime = mtime

	return h, nil
}

func malformed(block []byte, offset int64, name string, f field, err error) error {
	return &HeaderError{
		Offset: offset,
		Name:   name,
		Field:  f.name,
		Err:    fmt.Errorf("%w: %q: %w", ErrMalformedHeader, octal.Trim(f.of(block)), err),
	}
}

// decodeString converts a NUL-padded field to text, replacing invalid UTF-8.
func decodeString(b []byte) string {
	return strings.ToValidUTF8(string(bytes.Trim(b, "\x00")), "\uFFFD")
}

// Encode returns h serialized as a 512-byte header block.
func (h Header) Encode() ([]byte, error) {
	block := make([]byte, BlockSize)
	if _, err := EncodeHeader(block, h); err != nil {
		return nil, err
	}
	return block, nil
}

// EncodeHeader writes h into the first BlockSize bytes of dst and returns the
// checksum it computed. The stored Checksum of h is ignored.
//
// Name and LinkTarget must fit in 100 bytes. Uname and Gname are truncated to
// 32 bytes. LinkTarget is only written for symlinks.
func EncodeHeader(dst []byte, h Header) (uint32, error) {
	if len(dst) < BlockSize {
		return 0, fmt.Errorf("ustar: encode buffer too small (%d bytes)", len(dst))
	}
	block := dst[:BlockSize]
	clear(block)

	if err := putString(block, fieldName, h.Name); err != nil {
		return 0, encodeError(h, fieldName, err)
	}
	numbers := []struct {
		f field
		v uint64
	}{
		{fieldMode, uint64(h.Mode)},
		{fieldUID, uint64(h.UID)},
		{fieldGID, uint64(h.GID)},
		{fieldSize, h.Size},
		{fieldModTime, h.ModTime},
	}
	for _, n := range numbers {
		if err := octal.Put(n.f.of(block), n.v); err != nil {
			return 0, encodeError(h, n.f, fmt.Errorf("%w: %d", ErrFieldOverflow, n.v))
		}
	}

	block[typeFlagOffset] = h.Type.Byte()
	if h.Type == TypeSymlink {
		if err := putString(block, fieldLinkname, h.LinkTarget); err != nil {
			return 0, encodeError(h, fieldLinkname, err)
		}
	}

	copy(fieldMagic.of(block), magic)
	copy(fieldVersion.of(block), version)
	copy(fieldUname.of(block), truncateUTF8(h.Uname, fieldUname.size))
	copy(fieldGname.of(block), truncateUTF8(h.Gname, fieldGname.size))
	copy(fieldDevMajor.of(block), devPlaceholder)
	copy(fieldDevMinor.of(block), devPlaceholder)

	sum := ComputeChecksum(block)
	// A sum of 512 bytes fits in 6 octal digits.
	_ = octal.PutUnpadded(fieldChecksum.of(block), uint64(sum))
	return sum, nil
}

func encodeError(h Header, f field, err error) error {
	return &HeaderError{Offset: -1, Name: h.Name, Field: f.name, Err: err}
}

func putString(block []byte, f field, s string) error {
	if len(s) > f.size {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrNameTooLong, len(s), f.size)
	}
	copy(f.of(block), s)
	return nil
}

// truncateUTF8 shortens s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// ComputeChecksum returns the header checksum of block: the unsigned sum of
// all 512 bytes with the checksum field counted as eight ASCII spaces.
// block must hold at least BlockSize bytes.
func ComputeChecksum(block []byte) uint32 {
	var sum uint32
	for i, b := range block[:BlockSize] {
		if i >= fieldChecksum.off && i < fieldChecksum.off+fieldChecksum.size {
			b = ' '
		}
		sum += uint32(b)
	}
	return sum
}
