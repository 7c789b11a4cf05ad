package executor

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireExclusiveRequiresWritePermission(t *testing.T) {
	rm := NewResourceManager()
	d := digest.Sum([]byte("read-only"))
	rm.RegisterResource(d, types.Capability{Base: 0, Length: 10, Perms: types.PermRead})

	txn := rm.BeginTransaction("alice")
	_, err := rm.AcquireExclusive(d, txn)

	require.Error(t, err)
	assert.True(t, fcdberr.Is(err, fcdberr.KindAuthority))
}

func TestAcquireExclusiveSucceedsWithWritePermission(t *testing.T) {
	rm := NewResourceManager()
	d := digest.Sum([]byte("writable"))
	rm.RegisterResource(d, types.Capability{Base: 0, Length: 10, Perms: types.PermRead | types.PermWrite})

	txn := rm.BeginTransaction("alice")
	h, err := rm.AcquireExclusive(d, txn)

	require.NoError(t, err)
	assert.True(t, h.Cap.Perms.Has(types.PermWrite))
}

func TestAcquireExclusiveConflictsWithExistingSharedHolder(t *testing.T) {
	rm := NewResourceManager()
	d := digest.Sum([]byte("contended"))
	rm.RegisterResource(d, types.Capability{Base: 0, Length: 10, Perms: types.PermRead | types.PermWrite})

	reader := rm.BeginTransaction("alice")
	_, err := rm.AcquireShared(d, reader)
	require.NoError(t, err)

	writer := rm.BeginTransaction("bob")
	_, err = rm.AcquireExclusive(d, writer)
	assert.True(t, fcdberr.Is(err, fcdberr.KindAuthority))
}

func TestCommitReleasesHandlesAllowingFutureAcquisition(t *testing.T) {
	rm := NewResourceManager()
	d := digest.Sum([]byte("released"))
	rm.RegisterResource(d, types.Capability{Base: 0, Length: 10, Perms: types.PermRead | types.PermWrite})

	txn := rm.BeginTransaction("alice")
	_, err := rm.AcquireExclusive(d, txn)
	require.NoError(t, err)
	require.NoError(t, rm.Commit(txn))

	next := rm.BeginTransaction("bob")
	_, err = rm.AcquireExclusive(d, next)
	assert.NoError(t, err)
}

func TestBeginTransactionAssignsIncreasingIDs(t *testing.T) {
	rm := NewResourceManager()
	a := rm.BeginTransaction("alice")
	b := rm.BeginTransaction("bob")
	assert.Less(t, a.ID, b.ID)
}
