//go:build !unix

package platform

import "io/fs"

// OwnerOf reports no owner; ownership is not exposed as numeric IDs here.
func OwnerOf(fs.FileInfo) (Owner, bool) {
	return Owner{}, false
}
