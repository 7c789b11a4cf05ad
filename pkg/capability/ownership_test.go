package capability

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedBorrowsStack(t *testing.T) {
	r := NewRegistry()
	d := digest.Sum([]byte("res"))
	cap := types.Capability{Base: 0, Length: 1, Perms: types.PermRead}

	h1, err := r.Acquire(d, cap, SharedBorrow)
	require.NoError(t, err)
	h2, err := r.Acquire(d, cap, SharedBorrow)
	require.NoError(t, err)

	r.Release(h1)
	r.Release(h2)

	h3, err := r.Acquire(d, cap, Owned)
	require.NoError(t, err, "resource must be free after all shared borrows release")
	r.Release(h3)
}

func TestMutBorrowExcludesOthers(t *testing.T) {
	r := NewRegistry()
	d := digest.Sum([]byte("res"))
	cap := types.Capability{Base: 0, Length: 1, Perms: types.PermWrite}

	h, err := r.Acquire(d, cap, MutBorrow)
	require.NoError(t, err)

	_, err = r.Acquire(d, cap, SharedBorrow)
	require.Error(t, err)
	assert.True(t, fcdberr.Is(err, fcdberr.KindAuthority))

	r.Release(h)
	h2, err := r.Acquire(d, cap, SharedBorrow)
	require.NoError(t, err)
	r.Release(h2)
}

func TestOwnedExcludesEverything(t *testing.T) {
	r := NewRegistry()
	d := digest.Sum([]byte("res"))
	cap := types.Capability{Base: 0, Length: 1}

	h, err := r.Acquire(d, cap, Owned)
	require.NoError(t, err)

	_, err = r.Acquire(d, cap, Owned)
	assert.Error(t, err)

	r.Release(h)
}
