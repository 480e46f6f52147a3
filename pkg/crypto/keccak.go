// Package crypto provides the single hash primitive the rest of the
// toolchain depends on: legacy Keccak-256, exactly as used on-chain.
// SHA3-256 (the standardized, differently-padded variant) is deliberately
// not used anywhere in this repository.
package crypto

import "golang.org/x/crypto/sha3"

// HashSize is the length in bytes of a Keccak-256 digest.
const HashSize = 32

// Hash is a 32-byte Keccak-256 digest.
type Hash [HashSize]byte

// Keccak256 hashes the concatenation of all given byte slices using legacy
// Keccak-256 (pre-FIPS padding, not SHA3-256).
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash hashes the concatenation of all given byte slices and
// returns the result as a Hash.
func Keccak256Hash(data ...[]byte) Hash {
	var h Hash
	copy(h[:], Keccak256(data...))
	return h
}

// BytesToHash left-truncates or zero-pads b to fit in a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashSize {
		b = b[len(b)-HashSize:]
	}
	copy(h[HashSize-len(b):], b)
	return h
}
