package fingerprint

import (
	"sort"

	"github.com/fcdb-io/fcdb/pkg/digest"
)

// PathSig computes the order-sensitive path signature: the digest of
// segments concatenated in the given order, each 0x00-terminated.
// Permuting segments changes the result.
func PathSig(segments ...string) digest.Digest {
	parts := make([][]byte, len(segments))
	for i, s := range segments {
		parts[i] = []byte(s)
	}
	return digest.Concat(parts...)
}

// ClassSig computes the order-insensitive class signature: classes
// are sorted before being concatenated, so any permutation of the
// input yields the same digest.
func ClassSig(classes ...string) digest.Digest {
	sorted := append([]string(nil), classes...)
	sort.Strings(sorted)

	parts := make([][]byte, len(sorted))
	for i, s := range sorted {
		parts[i] = []byte(s)
	}
	return digest.Concat(parts...)
}
