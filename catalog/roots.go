package catalog

import (
	"fmt"
	"sync"
)

// RootStore holds the versioned catalog root the engine verifies against.
//
// The root is read-mostly: rotation happens through an out-of-band
// administrative process, and every reader observes a single consistent
// (root, version) pair per call.
type RootStore interface {
	// Current returns the active catalog root and its version.
	Current() (root []byte, version uint64, err error)

	// Rotate installs a new catalog root and returns its version.
	// Versions are assigned monotonically starting at 1.
	Rotate(newRoot []byte) (uint64, error)

	// RootAt retrieves a historical root by version.
	RootAt(version uint64) ([]byte, error)
}

// MemRootStore is an in-memory implementation of RootStore for testing.
type MemRootStore struct {
	mu    sync.RWMutex
	roots [][]byte // roots[i] is version i+1
}

// NewMemRootStore creates a new in-memory root store.
func NewMemRootStore() *MemRootStore {
	return &MemRootStore{}
}

// Compile-time interface check.
var _ RootStore = (*MemRootStore)(nil)

// Current returns the active catalog root and its version.
func (s *MemRootStore) Current() ([]byte, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.roots) == 0 {
		return nil, 0, ErrNoRoot
	}
	root := make([]byte, HashSize)
	copy(root, s.roots[len(s.roots)-1])
	return root, uint64(len(s.roots)), nil
}

// Rotate installs a new catalog root and returns its version.
func (s *MemRootStore) Rotate(newRoot []byte) (uint64, error) {
	if len(newRoot) != HashSize {
		return 0, fmt.Errorf("%w: root must be %d bytes", ErrInvalidDigest, HashSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root := make([]byte, HashSize)
	copy(root, newRoot)
	s.roots = append(s.roots, root)
	return uint64(len(s.roots)), nil
}

// RootAt retrieves a historical root by version.
func (s *MemRootStore) RootAt(version uint64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 || version > uint64(len(s.roots)) {
		return nil, ErrNoRoot
	}
	root := make([]byte, HashSize)
	copy(root, s.roots[version-1])
	return root, nil
}
