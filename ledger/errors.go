package ledger

import "errors"

var (
	// ErrAlreadyPurchased indicates a purchase record already exists for
	// the (course, buyer) pair.
	ErrAlreadyPurchased = errors.New("ledger: course already purchased by buyer")

	// ErrAlreadyReserved indicates a settlement for the pair is in flight.
	ErrAlreadyReserved = errors.New("ledger: purchase already reserved")

	// ErrNotReserved indicates a commit or release without a prior reservation.
	ErrNotReserved = errors.New("ledger: purchase not reserved")

	// ErrNotFound indicates no purchase record exists for the pair.
	ErrNotFound = errors.New("ledger: purchase record not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("ledger: required parameter is nil")
)
