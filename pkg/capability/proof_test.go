package capability

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestDeriveProofDeterministic(t *testing.T) {
	key := []byte("test-key-0123456789012345678901")
	a := deriveProofWithKey(key, 10, 20, types.PermRead)
	b := deriveProofWithKey(key, 10, 20, types.PermRead)
	assert.Equal(t, a, b)
}

func TestDeriveProofSensitiveToInputs(t *testing.T) {
	key := []byte("test-key-0123456789012345678901")
	base := deriveProofWithKey(key, 10, 20, types.PermRead)

	assert.NotEqual(t, base, deriveProofWithKey(key, 11, 20, types.PermRead))
	assert.NotEqual(t, base, deriveProofWithKey(key, 10, 21, types.PermRead))
	assert.NotEqual(t, base, deriveProofWithKey(key, 10, 20, types.PermWrite))
}

func TestVerifyProofRoundTrip(t *testing.T) {
	cap := types.Capability{Base: 5, Length: 15, Perms: types.PermRead | types.PermWrite}
	cap.Proof = DeriveProof(cap.Base, cap.Length, cap.Perms)
	assert.True(t, VerifyProof(cap))

	cap.Perms = types.PermRead
	assert.False(t, VerifyProof(cap), "changing perms without re-deriving must fail verification")
}
