package ustar

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive operations.
var (
	// ErrMalformedHeader is returned when a header block cannot be decoded,
	// for example when its size field is not octal text.
	ErrMalformedHeader = errors.New("ustar: malformed header")

	// ErrChecksumMismatch is returned when checksum verification is enabled
	// and a header's stored checksum does not match its contents.
	ErrChecksumMismatch = errors.New("ustar: checksum mismatch")

	// ErrNameTooLong is returned when a name or link target does not fit its
	// 100-byte header field.
	ErrNameTooLong = errors.New("ustar: name too long")

	// ErrEmptyName is returned when an entry to be archived has no name.
	ErrEmptyName = errors.New("ustar: empty entry name")

	// ErrFieldOverflow is returned when a numeric value needs more octal
	// digits than its header field holds.
	ErrFieldOverflow = errors.New("ustar: numeric field overflow")

	// ErrTooManyEntries is returned when an archive holds more entries than
	// the configured limit.
	ErrTooManyEntries = errors.New("ustar: too many entries")

	// ErrUnsupportedType is returned when an entry's file type cannot be
	// represented in the archive (devices, sockets, pipes).
	ErrUnsupportedType = errors.New("ustar: unsupported file type")

	// ErrUnsafePath is returned by Extract for entry names that would resolve
	// outside the destination directory.
	ErrUnsafePath = errors.New("ustar: unsafe entry path")
)

// HeaderError describes a header that could not be decoded or encoded.
type HeaderError struct {
	// Offset is the byte offset of the header block within the archive,
	// or -1 when not known.
	Offset int64

	// Name is the entry name, when known.
	Name string

	// Field is the header field at fault.
	Field string

	// Err is the underlying error.
	Err error
}

func (e *HeaderError) Error() string {
	where := "header"
	if e.Offset >= 0 {
		where = fmt.Sprintf("header at offset %d", e.Offset)
	}
	if e.Name != "" {
		where += fmt.Sprintf(" (%s)", e.Name)
	}
	return fmt.Sprintf("%s: field %s: %v", where, e.Field, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}
