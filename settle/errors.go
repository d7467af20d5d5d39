package settle

import "errors"

var (
	// ErrInvalidProof indicates the Merkle inclusion proof did not verify
	// against the active catalog root.
	ErrInvalidProof = errors.New("settle: invalid catalog inclusion proof")

	// ErrUnknownCourse indicates no purchase policy exists for a course
	// whose proof verified. This is catalog/policy desynchronization and
	// should be surfaced as an operational alert, never treated as free.
	ErrUnknownCourse = errors.New("settle: no policy for proven course")

	// ErrPaymentRejected indicates the offer failed policy validation.
	// The wrapped cause carries the reason (wrong asset, insufficient
	// amount, overpayment).
	ErrPaymentRejected = errors.New("settle: payment rejected")

	// ErrAlreadyPurchased indicates the buyer already owns the course, or
	// a settlement for the same pair is in flight. Idempotent signal, not
	// a fault.
	ErrAlreadyPurchased = errors.New("settle: already purchased")

	// ErrTransferFailed indicates the payment channel failed to move
	// funds. May be transient; the engine performs no automatic retry
	// since retrying a transfer without idempotency keys risks double
	// payment.
	ErrTransferFailed = errors.New("settle: funds transfer failed")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("settle: required parameter is nil")
)
