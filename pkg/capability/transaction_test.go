package capability

import (
	"testing"
	"time"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestCheckWritePermOwnedAndBorrowed(t *testing.T) {
	txn := NewTransaction(1, "alice")
	owned := digest.Sum([]byte("owned"))
	borrowed := digest.Sum([]byte("borrowed"))

	txn.AddOwned(owned, types.Capability{Perms: types.PermWrite}, nil)
	txn.AddBorrowed(borrowed, types.Capability{Perms: types.PermRead}, nil)

	assert.True(t, txn.CheckWritePerm(owned))
	assert.False(t, txn.CheckWritePerm(borrowed))
	assert.False(t, txn.CheckWritePerm(digest.Sum([]byte("unknown"))))
}

func TestIsExpired(t *testing.T) {
	txn := NewTransaction(1, "alice")
	txn.Timeout = 10 * time.Millisecond
	assert.False(t, txn.IsExpired())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, txn.IsExpired())
}

func TestReleaseAllReleasesEveryHandle(t *testing.T) {
	reg := NewRegistry()
	txn := NewTransaction(1, "alice")
	d := digest.Sum([]byte("res"))
	cap := types.Capability{Perms: types.PermRead}

	h, err := reg.Acquire(d, cap, SharedBorrow)
	assert.NoError(t, err)
	txn.AddBorrowed(d, cap, h)

	txn.ReleaseAll(reg)

	// Resource must be free: an exclusive acquire now succeeds.
	h2, err := reg.Acquire(d, cap, Owned)
	assert.NoError(t, err)
	reg.Release(h2)
}
