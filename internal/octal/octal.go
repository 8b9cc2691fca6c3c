// Package octal encodes and decodes the fixed-width ASCII octal fields used
// in USTAR headers.
package octal

import (
	"errors"
	"strconv"
)

// ErrInvalid is returned when a field does not hold octal text.
var ErrInvalid = errors.New("invalid octal field")

// ErrOverflow is returned when a value needs more digits than a field holds.
var ErrOverflow = errors.New("octal field overflow")

// Trim strips leading and trailing ASCII whitespace and NUL bytes.
func Trim(b []byte) []byte {
	for len(b) > 0 && isPad(b[0]) {
		b = b[1:]
	}
	for len(b) > 0 && isPad(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}

func isPad(c byte) bool {
	switch c {
	case 0, ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Parse decodes a NUL or space padded octal field.
// An empty field is reported as ErrInvalid.
func Parse(b []byte) (uint64, error) {
	text := Trim(b)
	if len(text) == 0 {
		return 0, ErrInvalid
	}
	v, err := strconv.ParseUint(string(text), 8, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, ErrOverflow
		}
		return 0, ErrInvalid
	}
	return v, nil
}

// ParseLenient decodes like Parse but reports empty or malformed fields as zero.
func ParseLenient(b []byte) uint64 {
	v, err := Parse(b)
	if err != nil {
		return 0
	}
	return v
}

// Put writes v into dst as zero-padded octal digits followed by a single NUL,
// using every byte of dst. A value needing more than len(dst)-1 digits
// returns ErrOverflow and leaves dst untouched.
func Put(dst []byte, v uint64) error {
	digits := len(dst) - 1
	if digits <= 0 {
		return ErrOverflow
	}
	if v > MaxValue(digits) {
		return ErrOverflow
	}
	s := strconv.FormatUint(v, 8)
	i := 0
	for ; i < digits-len(s); i++ {
		dst[i] = '0'
	}
	copy(dst[i:], s)
	dst[digits] = 0
	return nil
}

// PutUnpadded writes v as octal digits at the start of dst and fills the
// remainder with NUL bytes.
func PutUnpadded(dst []byte, v uint64) error {
	s := strconv.FormatUint(v, 8)
	if len(s) > len(dst) {
		return ErrOverflow
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}

// MaxValue returns the largest value representable with the given number of
// octal digits.
func MaxValue(digits int) uint64 {
	if digits >= 22 {
		return ^uint64(0)
	}
	return 1<<(3*uint(digits)) - 1
}
