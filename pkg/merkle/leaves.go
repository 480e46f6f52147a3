// Package merkle enumerates the scalar leaves of a FIX descriptor, builds
// the odd-node-promoted binary Merkle tree over them, and generates and
// verifies per-leaf inclusion proofs.
package merkle

import (
	"bytes"
	"sort"

	"github.com/NethermindEth/fix-descriptor/pkg/cbor"
	"github.com/NethermindEth/fix-descriptor/pkg/crypto"
	"github.com/NethermindEth/fix-descriptor/pkg/fix"
	"github.com/NethermindEth/fix-descriptor/pkg/metrics"
)

// pathSeparator is the ASCII '=' byte placed between a leaf's encoded path
// and its value before hashing.
const pathSeparator = 0x3D

// Leaf is one scalar occurrence of a descriptor: its tag/index path, the
// canonical CBOR encoding of that path, the raw value, and the precomputed
// leaf hash.
type Leaf struct {
	Path     []int
	PathCBOR []byte
	Value    []byte
	LeafHash []byte
}

// EnumerateLeaves walks desc and returns one Leaf per scalar occurrence,
// including every occurrence inside nested repeating groups, sorted by
// PathCBOR ascending (lexicographic byte comparison). That order is the
// canonical leaf index consumed by Build.
func EnumerateLeaves(desc *fix.Descriptor) ([]Leaf, error) {
	var leaves []Leaf
	if err := walk(desc, nil, &leaves); err != nil {
		return nil, err
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i].PathCBOR, leaves[j].PathCBOR) < 0
	})
	metrics.Default.LeavesEnumerated.Add(int64(len(leaves)))
	return leaves, nil
}

func walk(desc *fix.Descriptor, prefix []int, out *[]Leaf) error {
	for _, tag := range desc.Tags() {
		node, _ := desc.Get(tag)
		if node.IsGroup() {
			for i, entry := range node.Group {
				childPrefix := append(append([]int(nil), prefix...), tag, i)
				if err := walk(entry, childPrefix, out); err != nil {
					return err
				}
			}
			continue
		}
		if len(node.Scalar) == 0 {
			continue
		}
		path := append(append([]int(nil), prefix...), tag)
		pathCBOR, err := cbor.EncodePath(path)
		if err != nil {
			return err
		}
		leafHash := crypto.Keccak256(pathCBOR, []byte{pathSeparator}, node.Scalar)
		*out = append(*out, Leaf{
			Path:     path,
			PathCBOR: pathCBOR,
			Value:    node.Scalar,
			LeafHash: leafHash,
		})
	}
	return nil
}
