package capability

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantCheckRevoke(t *testing.T) {
	lm := NewLeaseManager()
	l := lm.Grant(1, "alice", types.PermRead|types.PermWrite, 1000, false)

	got, err := lm.Check(l.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Holder)

	lm.Revoke(l.ID)
	_, err = lm.Check(l.ID, 500)
	assert.True(t, fcdberr.Is(err, fcdberr.KindNotFound))
}

func TestCheckExpiredLeavesLeaseInPlace(t *testing.T) {
	lm := NewLeaseManager()
	l := lm.Grant(1, "alice", types.PermRead, 100, false)

	_, err := lm.Check(l.ID, 200)
	assert.True(t, fcdberr.Is(err, fcdberr.KindAuthority))

	// Expired lease must still be revocable.
	lm.Revoke(l.ID)
	_, err = lm.Check(l.ID, 200)
	assert.True(t, fcdberr.Is(err, fcdberr.KindNotFound))
}

func TestRenewRequiresAutoRenew(t *testing.T) {
	lm := NewLeaseManager()
	l := lm.Grant(1, "alice", types.PermRead, 100, false)

	err := lm.Renew(l.ID, 500)
	assert.True(t, fcdberr.Is(err, fcdberr.KindAuthority))

	l2 := lm.Grant(2, "bob", types.PermRead, 100, true)
	require.NoError(t, lm.Renew(l2.ID, 900))
	got, err := lm.Check(l2.ID, 800)
	require.NoError(t, err)
	assert.EqualValues(t, 900, got.ExpiresAt)
}

func TestCleanupExpired(t *testing.T) {
	lm := NewLeaseManager()
	lm.Grant(1, "alice", types.PermRead, 100, false)
	live := lm.Grant(2, "bob", types.PermRead, 10000, false)

	lm.CleanupExpired(200)

	_, err := lm.Check(live.ID, 200)
	assert.NoError(t, err)
	assert.Len(t, lm.leases, 1)
}
