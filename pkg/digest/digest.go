package digest

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Size is the fixed length of a Digest in bytes.
const Size = 32

// Digest is an opaque 256-bit content identity computed by BLAKE3/256 over
// a canonical byte encoding. Equality is byte equality; ordering is
// lexicographic.
type Digest [Size]byte

// Zero is the all-zero digest, used as a sentinel for "no value".
var Zero Digest

// Sum computes the digest of data.
func Sum(data []byte) Digest {
	var d Digest
	h := blake3.Sum256(data)
	copy(d[:], h[:])
	return d
}

// FromBytes validates and wraps a 32-byte slice as a Digest.
func FromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != Size {
		return d, fmt.Errorf("digest: expected %d bytes, got %d", Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Zero
}

// Bytes returns the digest's underlying bytes as a new slice.
func (d Digest) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, d[:])
	return out
}

// Compare returns -1, 0 or 1 per lexicographic byte ordering, matching
// the §3 invariant that Digest ordering is lexicographic.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// String renders the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Concat hashes the concatenation of parts, each terminated by a 0x00
// separator byte — the construction used by both path-signature (order
// sensitive) and class-signature (order insensitive, parts pre-sorted by
// the caller) in pkg/fingerprint.
func Concat(parts ...[]byte) Digest {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.Write(p)
		buf.WriteByte(0x00)
	}
	return Sum(buf.Bytes())
}
