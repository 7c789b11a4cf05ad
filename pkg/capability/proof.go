package capability

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/fcdb-io/fcdb/pkg/types"
)

// signingKey is the process-local key used to derive capability
// proofs when no caller-supplied key is configured: derived once at
// first use and reused for every subsequent proof, since fcdb has no
// cluster identity to derive a key from instead.
var (
	signingKeyOnce sync.Once
	signingKey     [32]byte
)

func defaultSigningKey() []byte {
	signingKeyOnce.Do(func() {
		if _, err := rand.Read(signingKey[:]); err != nil {
			// crypto/rand failing is unrecoverable; fall back to a
			// fixed key rather than panicking across a package
			// boundary. Proofs derived this way are still internally
			// consistent, just not secret.
			copy(signingKey[:], []byte("fcdb-fallback-signing-key-00000"))
		}
	})
	return signingKey[:]
}

// SetSigningKey overrides the process-local signing key used by
// DeriveProof/VerifyProof. Intended for production deployments that
// bind capability proofs to a configured key rather than a random
// per-process one; key must be non-empty.
func SetSigningKey(key []byte) {
	signingKeyOnce.Do(func() {})
	copy(signingKey[:], key)
}

// DeriveProof computes the 128-bit witness for a capability's
// (base, length, perms) triple, keyed by the process signing key. The
// core treats the result as an uninterpreted token; only the issuer
// calling DeriveProof and a verifier calling VerifyProof attribute any
// meaning to it.
func DeriveProof(base, length uint64, perms types.Permission) [types.ProofSize]byte {
	return deriveProofWithKey(defaultSigningKey(), base, length, perms)
}

func deriveProofWithKey(key []byte, base, length uint64, perms types.Permission) [types.ProofSize]byte {
	mac := hmac.New(sha256.New, key)
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[0:8], base)
	binary.LittleEndian.PutUint64(buf[8:16], length)
	buf[16] = byte(perms)
	mac.Write(buf[:])
	sum := mac.Sum(nil)

	var proof [types.ProofSize]byte
	copy(proof[:], sum[:types.ProofSize])
	return proof
}

// VerifyProof reports whether cap's Proof matches the witness
// DeriveProof would compute for its (Base, Length, Perms).
func VerifyProof(cap types.Capability) bool {
	want := DeriveProof(cap.Base, cap.Length, cap.Perms)
	return hmac.Equal(want[:], cap.Proof[:])
}
