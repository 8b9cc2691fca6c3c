//go:build unix

package platform

import (
	"io/fs"
	"syscall"
)

// OwnerOf returns the owner recorded in info. ok is false when info does
// not come from a stat call, in which case the zero Owner is returned.
func OwnerOf(info fs.FileInfo) (owner Owner, ok bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Owner{}, false
	}
	return Owner{UID: st.Uid, GID: st.Gid}, true
}
