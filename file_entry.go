package ustar

import (
	"fmt"
	"os"

	"github.com/meigma/ustar/internal/pathutil"
	"github.com/meigma/ustar/internal/platform"
)

// FileEntryFromPath collects metadata and content for the file at path
// without following symlinks.
//
// name is the entry name inside the archive; when empty it is derived from
// path (slash-separated, leading "/" and "./" removed). Regular file content
// is read fully into memory. A symlink whose target cannot be read is recorded
// with an empty target. Devices, pipes, and sockets return ErrUnsupportedType.
func FileEntryFromPath(path, name string) (FileEntry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileEntry{}, err
	}

	typ, ok := TypeFromMode(info.Mode())
	if !ok {
		return FileEntry{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, path, info.Mode().Type())
	}
	if name == "" {
		name = pathutil.ArchiveName(path)
	}

	owner, _ := platform.OwnerOf(info)
	entry := FileEntry{
		Path: name,
		Meta: Metadata{
			Type:    typ,
			Mode:    info.Mode(),
			UID:     owner.UID,
			GID:     owner.GID,
			ModTime: info.ModTime(),
		},
	}

	switch typ {
	case TypeRegular:
		content, err := os.ReadFile(path)
		if err != nil {
			return FileEntry{}, err
		}
		entry.Content = content
	case TypeSymlink:
		if target, err := os.Readlink(path); err == nil {
			entry.Meta.LinkTarget = target
		}
	}
	return entry, nil
}
