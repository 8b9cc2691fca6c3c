// Package ustar reads and writes POSIX USTAR tape archives held entirely in
// memory.
//
// An archive is a sequence of 512-byte blocks. Each entry is a header block
// followed by its content, padded with zeros to the block boundary, and the
// archive ends with two all-zero blocks.
//
// # Reading
//
// Parse splits a buffer into blocks and returns an [Archive] whose entries are
// views into that buffer:
//
//	a, err := ustar.Parse(data)
//	if err != nil {
//	    return err
//	}
//	for _, e := range a.Entries() {
//	    fmt.Println(e.Header.Name, len(e.Content()))
//	}
//
// Entry content is never copied; it remains valid as long as the buffer passed
// to Parse is not modified.
//
// # Writing
//
// Build serializes entries in order and appends the terminator:
//
//	data, err := ustar.Build([]ustar.FileEntry{
//	    {Path: "hello.txt", Meta: ustar.Metadata{Mode: 0o644}, Content: []byte("hi\n")},
//	})
//
// [FileEntryFromPath] collects metadata and content for a path on disk.
//
// # Extracting
//
// [Archive.Extract] writes entries beneath a destination directory. Names that
// would resolve outside of it are rejected before anything is written.
//
// Long names (PAX and GNU extensions), compression, sparse files, and
// multi-volume archives are not supported.
package ustar
