package ustar

import "io/fs"

// TypeFlag identifies the kind of entry stored in a header.
type TypeFlag uint8

const (
	// TypeRegular is a regular file, stored as '0'. Unknown flags read as
	// regular files.
	TypeRegular TypeFlag = iota
	// TypeSymlink is a symbolic link, stored as '2'. Its target is in
	// Header.LinkTarget and it has no content.
	TypeSymlink
	// TypeDirectory is a directory, stored as '5'. It has no content.
	TypeDirectory
)

// Byte returns the on-disk type flag character.
func (t TypeFlag) Byte() byte {
	switch t {
	case TypeSymlink:
		return '2'
	case TypeDirectory:
		return '5'
	default:
		return '0'
	}
}

// String returns the human-readable name of the type.
func (t TypeFlag) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeSymlink:
		return "symlink"
	case TypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// FileMode returns the fs.FileMode type bits for t.
func (t TypeFlag) FileMode() fs.FileMode {
	switch t {
	case TypeSymlink:
		return fs.ModeSymlink
	case TypeDirectory:
		return fs.ModeDir
	default:
		return 0
	}
}

// ParseTypeFlag converts an on-disk type flag character. Anything other than
// a symlink or directory flag is treated as a regular file.
func ParseTypeFlag(c byte) TypeFlag {
	switch c {
	case '2':
		return TypeSymlink
	case '5':
		return TypeDirectory
	default:
		return TypeRegular
	}
}

// TypeFromMode maps fs.FileMode type bits to a TypeFlag.
// Devices, pipes, sockets, and other special files report ok=false.
func TypeFromMode(mode fs.FileMode) (t TypeFlag, ok bool) {
	switch {
	case mode.IsRegular():
		return TypeRegular, true
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink, true
	case mode.IsDir():
		return TypeDirectory, true
	default:
		return TypeRegular, false
	}
}
