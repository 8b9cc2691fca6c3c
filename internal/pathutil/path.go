// Package pathutil converts between host paths and slash-separated archive names.
package pathutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Normalize converts a slash-separated path to fs.ValidPath form where possible.
//
// It performs the following transformations:
//   - Strips leading slashes: "/etc/nginx" → "etc/nginx"
//   - Strips trailing slashes: "etc/nginx/" → "etc/nginx"
//   - Collapses consecutive slashes and "." elements: "etc//./nginx" → "etc/nginx"
//   - Converts empty string to root: "" → "."
//
// ".." elements are preserved so callers can reject them.
func Normalize(p string) string {
	parts := strings.Split(p, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return "."
	}
	return strings.Join(result, "/")
}

// ArchiveName returns the archive name for a host path: slash-separated,
// relative, without a volume name, and without leading ".." elements.
func ArchiveName(hostPath string) string {
	name, _ := ArchiveNameTrimmed(hostPath)
	return name
}

// ArchiveNameTrimmed is ArchiveName that also reports whether leading ".."
// elements were removed, as in "../x" -> "x".
func ArchiveNameTrimmed(hostPath string) (name string, trimmed bool) {
	p := filepath.ToSlash(strings.TrimPrefix(hostPath, filepath.VolumeName(hostPath)))
	return TrimParents(Normalize(p))
}

// TrimParents removes leading ".." elements from a normalized name.
// A name made only of ".." elements becomes ".".
func TrimParents(name string) (string, bool) {
	trimmed := false
	for name == ".." || strings.HasPrefix(name, "../") {
		name = strings.TrimPrefix(strings.TrimPrefix(name, ".."), "/")
		trimmed = true
	}
	if name == "" {
		name = "."
	}
	return name, trimmed
}

// LocalPath converts an archive name to a relative host path for extraction.
// It returns false for names that would escape the destination, such as
// those containing ".." elements, and for the root itself.
func LocalPath(name string) (string, bool) {
	p := Normalize(name)
	if p == "." || !fs.ValidPath(p) {
		return "", false
	}
	return filepath.FromSlash(p), true
}
