package policy

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketPolicies = []byte("policies")

// BoltRegistry persists purchase policies in bbolt, keyed by course id.
type BoltRegistry struct {
	db      *bbolt.DB
	ownedDB bool
}

// Compile-time interface check.
var _ Registry = (*BoltRegistry)(nil)

// NewBoltRegistry creates a registry on an already-open database.
func NewBoltRegistry(db *bbolt.DB) (*BoltRegistry, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db", ErrNilParam)
	}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPolicies)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("policy: create policies bucket: %w", err)
	}
	return &BoltRegistry{db: db}, nil
}

// OpenBoltRegistry opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltRegistry(dbPath string) (*BoltRegistry, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("policy: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("policy: open bolt db: %w", err)
	}
	r, err := NewBoltRegistry(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	r.ownedDB = true
	return r, nil
}

// Close closes the underlying database if this registry opened it.
func (r *BoltRegistry) Close() error {
	if r.ownedDB {
		return r.db.Close()
	}
	return nil
}

// Required returns the policy for the course.
func (r *BoltRegistry) Required(courseID [CourseIDSize]byte) (*Policy, error) {
	var pol Policy
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPolicies).Get(courseID[:])
		if data == nil {
			return ErrUnknownCourse
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&pol); err != nil {
			return fmt.Errorf("policy: decode policy: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pol, nil
}

// Set installs or replaces the policy for a course.
func (r *BoltRegistry) Set(courseID [CourseIDSize]byte, pol *Policy) error {
	if err := validatePolicy(pol); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(pol); err != nil {
		return fmt.Errorf("policy: encode policy: %w", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketPolicies).Put(courseID[:], buf.Bytes()); err != nil {
			return fmt.Errorf("policy: put policy: %w", err)
		}
		return nil
	})
}

// Remove deletes the policy for a course.
func (r *BoltRegistry) Remove(courseID [CourseIDSize]byte) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPolicies)
		if b.Get(courseID[:]) == nil {
			return ErrUnknownCourse
		}
		if err := b.Delete(courseID[:]); err != nil {
			return fmt.Errorf("policy: delete policy: %w", err)
		}
		return nil
	})
}
