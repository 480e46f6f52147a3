package merkle

import (
	"github.com/NethermindEth/fix-descriptor/pkg/crypto"
	"github.com/NethermindEth/fix-descriptor/pkg/metrics"
)

// Tree is a balanced binary Merkle tree over a fixed set of leaf hashes,
// using odd-node promotion: a lone right-most node at any level advances to
// the next level unhashed rather than being paired with itself. This is
// deliberately incompatible with implementations (e.g. OpenZeppelin's
// default) that duplicate-hash the lone node.
type Tree struct {
	levels [][][]byte // levels[0] is the leaf level; the last level holds the root.
}

// Build constructs a Tree from leaf hashes in canonical (PathCBOR-sorted)
// order. The root of an empty tree is the zero hash; the root of a
// one-leaf tree is that leaf hash unchanged.
func Build(leafHashes [][]byte) *Tree {
	defer metrics.Default.MerkleBuildLatency.Start()()

	level := make([][]byte, len(leafHashes))
	copy(level, leafHashes)
	levels := [][][]byte{level}

	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		i := 0
		for i+1 < len(level) {
			next = append(next, crypto.Keccak256(level[i], level[i+1]))
			i += 2
		}
		if i < len(level) {
			next = append(next, level[i])
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels}
}

// Root returns the tree's root hash.
func (t *Tree) Root() []byte {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return make([]byte, crypto.HashSize)
	}
	return top[0]
}

// NumLeaves returns the number of leaves the tree was built from.
func (t *Tree) NumLeaves() int {
	return len(t.levels[0])
}

// Prove returns the inclusion proof for leaf index i: an ordered sequence
// of sibling hashes and, for each, whether i's node is the right child at
// that level (direction bit). A level where i's node was promoted without a
// sibling contributes nothing to the proof.
func (t *Tree) Prove(i int) (proof [][]byte, directions []bool, err error) {
	if i < 0 || i >= len(t.levels[0]) {
		return nil, nil, ErrIndexOutOfRange
	}

	for level := 0; level < len(t.levels)-1; level++ {
		cur := t.levels[level]
		sibling := i ^ 1
		if sibling < len(cur) {
			proof = append(proof, cur[sibling])
			directions = append(directions, i&1 == 1)
		}
		i >>= 1
	}
	metrics.Default.ProofsGenerated.Inc()
	return proof, directions, nil
}
