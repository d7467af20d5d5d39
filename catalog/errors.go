package catalog

import "errors"

var (
	// ErrInvalidDigest indicates a digest is not exactly HashSize bytes.
	ErrInvalidDigest = errors.New("catalog: invalid digest size")

	// ErrProofDepthMismatch indicates the proof length disagrees with the
	// catalog's fixed depth.
	ErrProofDepthMismatch = errors.New("catalog: proof depth mismatch")

	// ErrEmptyCatalog indicates a tree was requested over zero leaves.
	ErrEmptyCatalog = errors.New("catalog: empty leaf set")

	// ErrIndexOutOfRange indicates a proof was requested for a leaf index
	// beyond the leaf set.
	ErrIndexOutOfRange = errors.New("catalog: leaf index out of range")

	// ErrNoRoot indicates no catalog root has been published yet.
	ErrNoRoot = errors.New("catalog: no root published")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("catalog: required parameter is nil")
)
