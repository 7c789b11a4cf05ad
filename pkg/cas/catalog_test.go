package cas

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogPutListRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cat, err := openCatalog(dir)
	require.NoError(t, err)
	defer cat.Close()

	p1 := types.Pack{ID: 1, Band: types.BandSmall, Size: 100, ObjectCount: 3, CreatedAt: types.Timestamp(1)}
	p2 := types.Pack{ID: 2, Band: types.BandBlob, Size: 200, ObjectCount: 7, CreatedAt: types.Timestamp(2)}

	require.NoError(t, cat.put(p1))
	require.NoError(t, cat.put(p2))

	packs, err := cat.list()
	require.NoError(t, err)
	require.Len(t, packs, 2)

	byID := make(map[uint32]types.Pack)
	for _, p := range packs {
		byID[p.ID] = p
	}
	assert.Equal(t, p1, byID[1])
	assert.Equal(t, p2, byID[2])
}

func TestCatalogPutOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	cat, err := openCatalog(dir)
	require.NoError(t, err)
	defer cat.Close()

	p := types.Pack{ID: 1, Band: types.BandSmall, Size: 10}
	require.NoError(t, cat.put(p))

	sealedAt := types.Timestamp(99)
	p.SealedAt = &sealedAt
	p.Size = 999
	require.NoError(t, cat.put(p))

	packs, err := cat.list()
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, uint64(999), packs[0].Size)
	require.NotNil(t, packs[0].SealedAt)
	assert.Equal(t, types.Timestamp(99), *packs[0].SealedAt)
}

func TestCatalogReopenPersists(t *testing.T) {
	dir := t.TempDir()
	cat, err := openCatalog(dir)
	require.NoError(t, err)

	require.NoError(t, cat.put(types.Pack{ID: 5, Band: types.BandIndex}))
	require.NoError(t, cat.Close())

	reopened, err := openCatalog(dir)
	require.NoError(t, err)
	defer reopened.Close()

	packs, err := reopened.list()
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, uint32(5), packs[0].ID)
}
