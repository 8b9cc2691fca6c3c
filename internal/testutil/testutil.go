// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// MockResolver implements a concurrency-safe owner resolver for tests.
// IDs without a registered name report not found.
type MockResolver struct {
	mu     sync.RWMutex
	users  map[uint32]string
	groups map[uint32]string
	calls  int
}

// NewMockResolver constructs an empty resolver. Every lookup misses until
// names are registered.
func NewMockResolver() *MockResolver {
	return &MockResolver{
		users:  make(map[uint32]string),
		groups: make(map[uint32]string),
	}
}

// SetUser registers a user name.
func (r *MockResolver) SetUser(uid uint32, name string) *MockResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[uid] = name
	return r
}

// SetGroup registers a group name.
func (r *MockResolver) SetGroup(gid uint32, name string) *MockResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[gid] = name
	return r
}

// UserName returns the registered user name for uid.
func (r *MockResolver) UserName(uid uint32) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	name, ok := r.users[uid]
	return name, ok
}

// GroupName returns the registered group name for gid.
func (r *MockResolver) GroupName(gid uint32) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	name, ok := r.groups[gid]
	return name, ok
}

// Calls returns the number of lookups made so far.
func (r *MockResolver) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}

// CreateTestFiles writes files (slash-separated relative path to content)
// beneath dir, creating parent directories as needed.
func CreateTestFiles(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
	}
}

// ZeroBlocks returns n zeroed 512-byte blocks.
func ZeroBlocks(n int) []byte {
	return make([]byte, n*512)
}
