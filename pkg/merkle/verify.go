package merkle

import (
	"github.com/NethermindEth/fix-descriptor/pkg/crypto"
	"github.com/NethermindEth/fix-descriptor/pkg/metrics"
)

// Verify recomputes a leaf's hash from its path, value, and walks proof
// against root, mirroring the on-chain verifier bit for bit. It never
// returns an error for a corrupt proof: any mismatch, including a
// malformed path or a proof/directions length mismatch, simply yields
// false.
func Verify(root []byte, pathCBOR []byte, value []byte, proof [][]byte, directions []bool) bool {
	metrics.Default.ProofsVerified.Inc()
	if len(proof) != len(directions) {
		metrics.Default.ProofsFailed.Inc()
		return false
	}

	node := crypto.Keccak256(pathCBOR, []byte{pathSeparator}, value)
	for i, sibling := range proof {
		if directions[i] {
			node = crypto.Keccak256(sibling, node)
		} else {
			node = crypto.Keccak256(node, sibling)
		}
	}
	ok := bytesEqual(node, root)
	if !ok {
		metrics.Default.ProofsFailed.Inc()
	}
	return ok
}

// VerifyLeaf is a convenience wrapper over Verify taking a Leaf directly.
func VerifyLeaf(root []byte, leaf Leaf, proof [][]byte, directions []bool) bool {
	return Verify(root, leaf.PathCBOR, leaf.Value, proof, directions)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
