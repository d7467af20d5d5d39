package catalog

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketRoots = []byte("catalog_roots")

// BoltRootStore persists catalog roots in bbolt, keyed by version so the
// full rotation history stays queryable.
type BoltRootStore struct {
	db      *bbolt.DB
	ownedDB bool
}

// Compile-time interface check.
var _ RootStore = (*BoltRootStore)(nil)

// NewBoltRootStore creates a root store on an already-open database.
func NewBoltRootStore(db *bbolt.DB) (*BoltRootStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db", ErrNilParam)
	}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRoots)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: create roots bucket: %w", err)
	}
	return &BoltRootStore{db: db}, nil
}

// OpenBoltRootStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltRootStore(dbPath string) (*BoltRootStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("catalog: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: open bolt db: %w", err)
	}
	s, err := NewBoltRootStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownedDB = true
	return s, nil
}

// Close closes the underlying database if this store opened it.
func (s *BoltRootStore) Close() error {
	if s.ownedDB {
		return s.db.Close()
	}
	return nil
}

// versionKey encodes a root version as an 8-byte big-endian key for sorted storage.
func versionKey(v uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, v)
	return k
}

// Current returns the active catalog root and its version.
func (s *BoltRootStore) Current() ([]byte, uint64, error) {
	var (
		root    []byte
		version uint64
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRoots).Cursor()
		k, v := c.Last()
		if k == nil {
			return ErrNoRoot
		}
		version = binary.BigEndian.Uint64(k)
		root = make([]byte, HashSize)
		copy(root, v)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return root, version, nil
}

// Rotate installs a new catalog root and returns its version.
func (s *BoltRootStore) Rotate(newRoot []byte) (uint64, error) {
	if len(newRoot) != HashSize {
		return 0, fmt.Errorf("%w: root must be %d bytes", ErrInvalidDigest, HashSize)
	}

	var version uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRoots)
		c := b.Cursor()
		if k, _ := c.Last(); k != nil {
			version = binary.BigEndian.Uint64(k)
		}
		version++

		root := make([]byte, HashSize)
		copy(root, newRoot)
		return b.Put(versionKey(version), root)
	})
	if err != nil {
		return 0, fmt.Errorf("catalog: rotate root: %w", err)
	}
	return version, nil
}

// RootAt retrieves a historical root by version.
func (s *BoltRootStore) RootAt(version uint64) ([]byte, error) {
	var root []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketRoots).Get(versionKey(version))
		if v == nil {
			return ErrNoRoot
		}
		root = make([]byte, HashSize)
		copy(root, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}
