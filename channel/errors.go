package channel

import "errors"

var (
	// ErrUnsupportedAsset indicates the channel cannot move the requested asset.
	ErrUnsupportedAsset = errors.New("channel: unsupported asset")

	// ErrInvalidPayee indicates the payee is neither a valid address nor a
	// resolvable handle.
	ErrInvalidPayee = errors.New("channel: invalid payee")

	// ErrInsufficientFunds indicates the funding source cannot cover the
	// transfer amount plus fees.
	ErrInsufficientFunds = errors.New("channel: insufficient funds")

	// ErrSigningFailed indicates the payment transaction could not be signed.
	ErrSigningFailed = errors.New("channel: transaction signing failed")

	// ErrBroadcastFailed indicates the payment transaction was not accepted
	// by the network.
	ErrBroadcastFailed = errors.New("channel: broadcast failed")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("channel: required parameter is nil")
)
