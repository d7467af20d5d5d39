// Package ledger implements the append-only purchase ledger: a durable
// mapping from (course, buyer) to a purchase record with at-most-once
// insert semantics.
//
// The ledger is the single point of mutual exclusion for concurrent
// purchase attempts on the same pair. Reserve/Commit/Release form the
// two-phase protocol that lets the settlement engine place the external
// funds transfer between the reservation and the irrevocable write.
package ledger

import "sync"

// IDSize is the width of course and buyer identifiers.
const IDSize = 32

// PurchaseRecord is the durable evidence of one settled purchase.
// Records are created exactly once per (course, buyer) pair and never
// mutated or deleted afterward.
type PurchaseRecord struct {
	CourseID    [IDSize]byte
	BuyerID     [IDSize]byte
	Amount      uint64   // Amount actually paid and forwarded
	Asset       [32]byte // Asset the payment was made in
	RootVersion uint64   // Catalog root version the proof verified against
	Timestamp   int64    // Unix seconds at commit time
	TransferID  string   // Payment channel transfer identifier
}

// Ledger persists purchase records with compare-and-insert semantics:
// under concurrent attempts for the same pair exactly one caller wins.
type Ledger interface {
	// HasPurchased reports whether a record exists for the pair.
	HasPurchased(courseID, buyerID [IDSize]byte) (bool, error)

	// Get retrieves the record for the pair, or ErrNotFound.
	Get(courseID, buyerID [IDSize]byte) (*PurchaseRecord, error)

	// Record inserts a record in one step. Fails with ErrAlreadyPurchased
	// if the pair is already recorded, ErrAlreadyReserved if a settlement
	// for it is in flight.
	Record(rec *PurchaseRecord) error

	// Reserve claims the pair for an in-flight settlement. Exactly one
	// concurrent caller succeeds; losers observe ErrAlreadyReserved or
	// ErrAlreadyPurchased.
	Reserve(courseID, buyerID [IDSize]byte) error

	// Commit turns a reservation into a durable record. Fails with
	// ErrNotReserved if Reserve was not called first.
	Commit(rec *PurchaseRecord) error

	// Release drops a reservation after a failed settlement.
	Release(courseID, buyerID [IDSize]byte) error

	// ListByBuyer returns all records for a buyer, for reporting collaborators.
	ListByBuyer(buyerID [IDSize]byte) ([]*PurchaseRecord, error)
}

// pairKey builds the composite (course, buyer) map key.
func pairKey(courseID, buyerID [IDSize]byte) string {
	k := make([]byte, 2*IDSize)
	copy(k[:IDSize], courseID[:])
	copy(k[IDSize:], buyerID[:])
	return string(k)
}

// MemLedger is an in-memory implementation of Ledger for testing.
type MemLedger struct {
	mu       sync.RWMutex
	records  map[string]*PurchaseRecord
	reserved map[string]struct{}
}

// NewMemLedger creates a new in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{
		records:  make(map[string]*PurchaseRecord),
		reserved: make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ Ledger = (*MemLedger)(nil)

// HasPurchased reports whether a record exists for the pair.
func (l *MemLedger) HasPurchased(courseID, buyerID [IDSize]byte) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.records[pairKey(courseID, buyerID)]
	return ok, nil
}

// Get retrieves the record for the pair.
func (l *MemLedger) Get(courseID, buyerID [IDSize]byte) (*PurchaseRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[pairKey(courseID, buyerID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// Record inserts a record in one step.
func (l *MemLedger) Record(rec *PurchaseRecord) error {
	if rec == nil {
		return ErrNilParam
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := pairKey(rec.CourseID, rec.BuyerID)
	if _, exists := l.records[key]; exists {
		return ErrAlreadyPurchased
	}
	if _, pending := l.reserved[key]; pending {
		return ErrAlreadyReserved
	}

	cp := *rec
	l.records[key] = &cp
	return nil
}

// Reserve claims the pair for an in-flight settlement.
func (l *MemLedger) Reserve(courseID, buyerID [IDSize]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := pairKey(courseID, buyerID)
	if _, exists := l.records[key]; exists {
		return ErrAlreadyPurchased
	}
	if _, pending := l.reserved[key]; pending {
		return ErrAlreadyReserved
	}

	l.reserved[key] = struct{}{}
	return nil
}

// Commit turns a reservation into a durable record.
func (l *MemLedger) Commit(rec *PurchaseRecord) error {
	if rec == nil {
		return ErrNilParam
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := pairKey(rec.CourseID, rec.BuyerID)
	if _, pending := l.reserved[key]; !pending {
		return ErrNotReserved
	}

	cp := *rec
	l.records[key] = &cp
	delete(l.reserved, key)
	return nil
}

// Release drops a reservation after a failed settlement.
func (l *MemLedger) Release(courseID, buyerID [IDSize]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := pairKey(courseID, buyerID)
	if _, pending := l.reserved[key]; !pending {
		return ErrNotReserved
	}

	delete(l.reserved, key)
	return nil
}

// ListByBuyer returns all records for a buyer.
func (l *MemLedger) ListByBuyer(buyerID [IDSize]byte) ([]*PurchaseRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*PurchaseRecord
	for _, rec := range l.records {
		if rec.BuyerID == buyerID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}
