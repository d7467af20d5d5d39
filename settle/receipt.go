package settle

import "github.com/coursemarket/libcoursemarket-go/policy"

// Receipt is returned to the buyer after a committed settlement.
type Receipt struct {
	CourseID    [32]byte
	BuyerID     [32]byte
	Amount      uint64 // Full amount forwarded to the payee
	Asset       policy.AssetID
	Payee       string
	TransferID  string
	RootVersion uint64 // Catalog root version the proof verified against
	Timestamp   int64  // Unix seconds
}

// Event is the record emitted to the event sink when a settlement
// commits. It references the ledger's purchase record; it does not own it.
type Event struct {
	CourseID   [32]byte
	BuyerID    [32]byte
	Amount     uint64
	Asset      policy.AssetID
	TransferID string
	Timestamp  int64
}

// EventSink receives settlement events. Sinks are called synchronously
// after commit; a slow sink delays the caller, not the settlement.
type EventSink func(ev *Event)
