// Package platform isolates host-specific file ownership and user database
// access.
package platform

// Owner is the numeric owner and group of a file.
type Owner struct {
	UID uint32
	GID uint32
}
