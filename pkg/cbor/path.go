// Package cbor implements the one canonicalization point the on-chain
// verifier depends on bit-for-bit: deterministic CBOR (RFC 8949) encoding
// of a Merkle leaf path, restricted to the unsigned-integer-array subset.
// Encoding is hand-rolled rather than delegated to a general CBOR library
// because the contract requires the single smallest-form encoding for
// every integer and array header -- see DESIGN.md for why a general
// encoder's "canonical mode" is not a substitute.
package cbor

import "errors"

// ErrNegativePath is returned when a path element is negative.
var ErrNegativePath = errors.New("cbor: negative integer in path")

// majorArray is the CBOR major type 4 (array) tag, shifted into the top
// three bits of the initial byte.
const majorArray = 0x80

// majorUint is the CBOR major type 0 (unsigned integer) tag. It is zero,
// so small integers need no OR with it, but it documents the encoding.
const majorUint = 0x00

// EncodePath canonically encodes a sequence of non-negative integers as a
// CBOR definite-length array of unsigned integers, using the smallest
// encoding for the array header and for each element.
func EncodePath(path []int) ([]byte, error) {
	for _, v := range path {
		if v < 0 {
			return nil, ErrNegativePath
		}
	}

	out := make([]byte, 0, 1+len(path)*5)
	out = appendArrayHeader(out, len(path))
	for _, v := range path {
		out = appendUint(out, uint64(v))
	}
	return out, nil
}

func appendArrayHeader(out []byte, n int) []byte {
	switch {
	case n < 24:
		return append(out, majorArray|byte(n))
	case n < 256:
		return append(out, majorArray|24, byte(n))
	default: // n < 65536; longer paths are never produced
		return append(out, majorArray|25, byte(n>>8), byte(n))
	}
}

func appendUint(out []byte, n uint64) []byte {
	switch {
	case n < 24:
		return append(out, majorUint|byte(n))
	case n < 256:
		return append(out, 0x18, byte(n))
	case n < 65536:
		return append(out, 0x19, byte(n>>8), byte(n))
	default: // fits in uint32 per the contract; larger paths are not produced
		return append(out, 0x1A, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}
