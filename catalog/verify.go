package catalog

import (
	"crypto/subtle"
	"fmt"
)

// Proof is a Merkle inclusion proof for a single course identifier.
//
// Nodes holds the sibling digests bottom-up; the left/right position of
// each sibling is encoded by the bits of LeafIndex, lowest bit first.
// Proofs are supplied fresh on every purchase attempt and never persisted.
type Proof struct {
	LeafIndex uint32   // Position of the leaf in the committed catalog
	Nodes     [][]byte // Sibling digests, bottom-up
}

// VerifyInclusion reports whether leaf is committed under root by the proof.
//
// An empty proof is valid only for a single-leaf catalog, i.e. when the
// leaf itself equals the root. The final digest comparison is constant
// time so verification leaks nothing beyond the boolean result.
func VerifyInclusion(leaf []byte, proof *Proof, root []byte) (bool, error) {
	if proof == nil {
		return false, fmt.Errorf("%w: proof", ErrNilParam)
	}
	if len(leaf) != HashSize {
		return false, fmt.Errorf("%w: leaf must be %d bytes", ErrInvalidDigest, HashSize)
	}
	if len(root) != HashSize {
		return false, fmt.Errorf("%w: root must be %d bytes", ErrInvalidDigest, HashSize)
	}
	for i, node := range proof.Nodes {
		if len(node) != HashSize {
			return false, fmt.Errorf("%w: proof node %d must be %d bytes", ErrInvalidDigest, i, HashSize)
		}
	}

	computed := ComputeRoot(leaf, proof.LeafIndex, proof.Nodes)
	if computed == nil {
		return false, fmt.Errorf("%w: failed to compute root", ErrInvalidDigest)
	}

	return subtle.ConstantTimeCompare(computed, root) == 1, nil
}

// VerifyInclusionDepth is VerifyInclusion for catalogs of a known fixed
// depth. A proof whose length disagrees with depth is rejected before the
// fold is attempted, so malformed proofs can never be accepted.
func VerifyInclusionDepth(leaf []byte, proof *Proof, root []byte, depth int) (bool, error) {
	if proof == nil {
		return false, fmt.Errorf("%w: proof", ErrNilParam)
	}
	if len(proof.Nodes) != depth {
		return false, fmt.Errorf("%w: proof has %d nodes, catalog depth is %d",
			ErrProofDepthMismatch, len(proof.Nodes), depth)
	}
	return VerifyInclusion(leaf, proof, root)
}
