package fingerprint

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(tag string) types.QueryKey {
	return NewKey(PathSig(tag), ClassSig(tag), types.Timestamp(1), 0, 1, 0)
}

func TestManifestDiffAddUpdateRemove(t *testing.T) {
	m := NewManifest(0)
	q1 := key("q1")
	q2 := key("q2")

	d1 := digest.Sum([]byte("d1"))
	m.Insert(q1, d1, types.Timestamp(1))

	d1prime := digest.Sum([]byte("d1-updated"))
	d2 := digest.Sum([]byte("d2"))
	proposed := map[types.QueryKey]digest.Digest{
		q1: d1prime,
		q2: d2,
	}
	diff := m.Propose(proposed, types.Timestamp(2))

	require.Len(t, diff.Updated, 1)
	assert.Equal(t, d1prime, diff.Updated[q1].ResultDigest)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, d2, diff.Added[q2].ResultDigest)
	assert.Empty(t, diff.Removed)

	m.Apply(diff)

	got1, ok := m.Resolve(q1, types.Timestamp(3))
	require.True(t, ok)
	assert.Equal(t, d1prime, got1)

	got2, ok := m.Resolve(q2, types.Timestamp(3))
	require.True(t, ok)
	assert.Equal(t, d2, got2)

	removeDiff := m.Propose(map[types.QueryKey]digest.Digest{q2: d2}, types.Timestamp(4))
	assert.Equal(t, []types.QueryKey{q1}, removeDiff.Removed)

	m.Apply(removeDiff)
	_, ok = m.Resolve(q1, types.Timestamp(5))
	assert.False(t, ok)
}

func TestManifestResolveAbsentIsMiss(t *testing.T) {
	m := NewManifest(0)
	_, ok := m.Resolve(key("missing"), types.Timestamp(1))
	assert.False(t, ok)
}

func TestManifestEvictsLeastRecentlyUsedOnOverflow(t *testing.T) {
	m := NewManifest(2)

	m.Insert(key("a"), digest.Sum([]byte("a")), types.Timestamp(1))
	m.Insert(key("b"), digest.Sum([]byte("b")), types.Timestamp(2))

	// touch "a" so it is more recently used than "b"
	_, ok := m.Resolve(key("a"), types.Timestamp(3))
	require.True(t, ok)

	m.Insert(key("c"), digest.Sum([]byte("c")), types.Timestamp(4))

	assert.Equal(t, 2, m.Len())
	_, ok = m.Resolve(key("b"), types.Timestamp(5))
	assert.False(t, ok, "least-recently-used entry should have been evicted")

	_, ok = m.Resolve(key("a"), types.Timestamp(5))
	assert.True(t, ok)
	_, ok = m.Resolve(key("c"), types.Timestamp(5))
	assert.True(t, ok)
}

func TestManifestVersionAdvancesMonotonically(t *testing.T) {
	m := NewManifest(0)
	assert.Equal(t, uint64(0), m.Version())

	m.Insert(key("a"), digest.Sum([]byte("a")), types.Timestamp(1))
	assert.Equal(t, uint64(1), m.Version())

	m.Insert(key("b"), digest.Sum([]byte("b")), types.Timestamp(2))
	assert.Equal(t, uint64(2), m.Version())

	require.Len(t, m.Log(), 2)
}
