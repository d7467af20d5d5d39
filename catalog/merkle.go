// Package catalog implements the committed course catalog: the hash
// primitive, Merkle tree construction, inclusion proof verification,
// and the versioned catalog root state.
//
// The catalog itself (the full set of course identifiers) is never held
// by the settlement engine. Only its Merkle root is stored; callers prove
// membership of individual course identifiers with inclusion proofs.
package catalog

import (
	"crypto/sha256"
	"fmt"
)

// HashSize is the width of every digest in the catalog tree.
const HashSize = 32

// HashLeaf hashes arbitrary bytes into a leaf digest.
func HashLeaf(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// Combine hashes an ordered pair of child digests into their parent digest.
// Order-sensitive: Combine(a, b) and Combine(b, a) differ in general.
func Combine(left, right []byte) []byte {
	combined := make([]byte, 2*HashSize)
	copy(combined[:HashSize], left)
	copy(combined[HashSize:], right)
	h := sha256.Sum256(combined)
	return h[:]
}

// ComputeRoot recomputes the catalog root from a leaf digest, its index
// position among the leaves, and the proof sibling nodes (bottom-up).
//
// Algorithm:
//
//	hash = leaf
//	for i, node in nodes:
//	    if bit i of index is 0:  hash = Combine(hash, node)
//	    else:                    hash = Combine(node, hash)
func ComputeRoot(leaf []byte, index uint32, nodes [][]byte) []byte {
	if len(leaf) != HashSize {
		return nil
	}

	hash := make([]byte, HashSize)
	copy(hash, leaf)

	for i, node := range nodes {
		if len(node) != HashSize {
			return nil
		}
		if (index>>uint(i))&1 == 0 {
			// Running digest is the left child.
			hash = Combine(hash, node)
		} else {
			// Running digest is the right child.
			hash = Combine(node, hash)
		}
	}

	return hash
}

// BuildTree builds a full Merkle tree from leaf digests.
// Returns all tree levels, where level 0 is the leaves and the last level
// holds the single root digest. Odd levels are padded by duplicating the
// last element.
func BuildTree(leaves [][]byte) ([][][]byte, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyCatalog
	}

	level := make([][]byte, len(leaves))
	for i, l := range leaves {
		if len(l) != HashSize {
			return nil, fmt.Errorf("%w: leaf %d has %d bytes", ErrInvalidDigest, i, len(l))
		}
		level[i] = make([]byte, HashSize)
		copy(level[i], l)
	}

	levels := [][][]byte{level}
	for len(level) > 1 {
		if len(level)%2 != 0 {
			dup := make([]byte, HashSize)
			copy(dup, level[len(level)-1])
			level = append(level, dup)
			levels[len(levels)-1] = level
		}

		nextLevel := make([][]byte, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			nextLevel[i/2] = Combine(level[i], level[i+1])
		}
		levels = append(levels, nextLevel)
		level = nextLevel
	}

	return levels, nil
}

// BuildProof constructs the inclusion proof for the leaf at the given index.
// The returned proof verifies against the root produced by BuildTree on the
// same leaf set.
func BuildProof(leaves [][]byte, index uint32) (*Proof, error) {
	if int(index) >= len(leaves) {
		return nil, fmt.Errorf("%w: index %d, %d leaves", ErrIndexOutOfRange, index, len(leaves))
	}

	levels, err := BuildTree(leaves)
	if err != nil {
		return nil, err
	}

	proof := &Proof{LeafIndex: index}
	pos := index
	// Walk every level below the root, collecting the sibling at each step.
	for _, level := range levels[:len(levels)-1] {
		sibling := pos ^ 1
		node := make([]byte, HashSize)
		copy(node, level[sibling])
		proof.Nodes = append(proof.Nodes, node)
		pos >>= 1
	}

	return proof, nil
}

// ComputeRootFromLeaves computes the catalog root committing to the full
// leaf set. Used by the catalog publication collaborator and by tests.
func ComputeRootFromLeaves(leaves [][]byte) ([]byte, error) {
	levels, err := BuildTree(leaves)
	if err != nil {
		return nil, err
	}
	return levels[len(levels)-1][0], nil
}
