package ledger

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"
)

var bucketPurchases = []byte("purchases")

// BoltLedger persists purchase records in bbolt.
//
// Reservations are deliberately kept in memory only: a reservation marks a
// settlement in flight within this process, and a crashed settlement must
// not leave the pair permanently claimed after restart.
type BoltLedger struct {
	db      *bbolt.DB
	ownedDB bool

	mu       sync.Mutex
	reserved map[string]struct{}
}

// Compile-time interface check.
var _ Ledger = (*BoltLedger)(nil)

// NewBoltLedger creates a ledger on an already-open database.
func NewBoltLedger(db *bbolt.DB) (*BoltLedger, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db", ErrNilParam)
	}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPurchases)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: create purchases bucket: %w", err)
	}
	return &BoltLedger{
		db:       db,
		reserved: make(map[string]struct{}),
	}, nil
}

// OpenBoltLedger opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltLedger(dbPath string) (*BoltLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}
	l, err := NewBoltLedger(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	l.ownedDB = true
	return l, nil
}

// Close closes the underlying database if this ledger opened it.
func (l *BoltLedger) Close() error {
	if l.ownedDB {
		return l.db.Close()
	}
	return nil
}

// encodeRecord serializes a purchase record using gob encoding.
func encodeRecord(rec *PurchaseRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeRecord deserializes gob-encoded data into a purchase record.
func decodeRecord(data []byte, rec *PurchaseRecord) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(rec)
}

// HasPurchased reports whether a record exists for the pair.
func (l *BoltLedger) HasPurchased(courseID, buyerID [IDSize]byte) (bool, error) {
	var ok bool
	err := l.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketPurchases).Get([]byte(pairKey(courseID, buyerID))) != nil
		return nil
	})
	return ok, err
}

// Get retrieves the record for the pair.
func (l *BoltLedger) Get(courseID, buyerID [IDSize]byte) (*PurchaseRecord, error) {
	var rec PurchaseRecord
	err := l.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPurchases).Get([]byte(pairKey(courseID, buyerID)))
		if data == nil {
			return ErrNotFound
		}
		if err := decodeRecord(data, &rec); err != nil {
			return fmt.Errorf("ledger: decode record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Record inserts a record in one step.
func (l *BoltLedger) Record(rec *PurchaseRecord) error {
	if rec == nil {
		return ErrNilParam
	}

	key := pairKey(rec.CourseID, rec.BuyerID)

	l.mu.Lock()
	if _, pending := l.reserved[key]; pending {
		l.mu.Unlock()
		return ErrAlreadyReserved
	}
	// Hold the reservation across the write so a concurrent Reserve
	// cannot slip in between the existence check and the insert.
	l.reserved[key] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.reserved, key)
		l.mu.Unlock()
	}()

	return l.put(key, rec)
}

// Reserve claims the pair for an in-flight settlement.
func (l *BoltLedger) Reserve(courseID, buyerID [IDSize]byte) error {
	key := pairKey(courseID, buyerID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, pending := l.reserved[key]; pending {
		return ErrAlreadyReserved
	}

	var exists bool
	err := l.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketPurchases).Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger: check existing record: %w", err)
	}
	if exists {
		return ErrAlreadyPurchased
	}

	l.reserved[key] = struct{}{}
	return nil
}

// Commit turns a reservation into a durable record.
func (l *BoltLedger) Commit(rec *PurchaseRecord) error {
	if rec == nil {
		return ErrNilParam
	}

	key := pairKey(rec.CourseID, rec.BuyerID)

	l.mu.Lock()
	if _, pending := l.reserved[key]; !pending {
		l.mu.Unlock()
		return ErrNotReserved
	}
	l.mu.Unlock()

	if err := l.put(key, rec); err != nil {
		return err
	}

	l.mu.Lock()
	delete(l.reserved, key)
	l.mu.Unlock()
	return nil
}

// Release drops a reservation after a failed settlement.
func (l *BoltLedger) Release(courseID, buyerID [IDSize]byte) error {
	key := pairKey(courseID, buyerID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, pending := l.reserved[key]; !pending {
		return ErrNotReserved
	}

	delete(l.reserved, key)
	return nil
}

// put writes the record under key, failing if one already exists.
func (l *BoltLedger) put(key string, rec *PurchaseRecord) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPurchases)
		if b.Get([]byte(key)) != nil {
			return ErrAlreadyPurchased
		}
		data, err := encodeRecord(rec)
		if err != nil {
			return fmt.Errorf("ledger: encode record: %w", err)
		}
		if err := b.Put([]byte(key), data); err != nil {
			return fmt.Errorf("ledger: put record: %w", err)
		}
		return nil
	})
}

// ListByBuyer returns all records for a buyer.
func (l *BoltLedger) ListByBuyer(buyerID [IDSize]byte) ([]*PurchaseRecord, error) {
	var out []*PurchaseRecord
	err := l.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPurchases).ForEach(func(k, v []byte) error {
			var rec PurchaseRecord
			if err := decodeRecord(v, &rec); err != nil {
				return fmt.Errorf("ledger: decode record in list: %w", err)
			}
			if rec.BuyerID == buyerID {
				out = append(out, &rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
