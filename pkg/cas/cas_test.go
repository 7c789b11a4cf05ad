package cas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCAS(t *testing.T, opts Options) *PackCAS {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(dir, opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCAS(t, Options{})
	data := []byte("hello, fcdb")

	d, err := c.Put(data, 1, types.BandSmall)
	require.NoError(t, err)

	got, err := c.Get(d)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.True(t, c.Exists(d))
}

func TestPutIsIdempotentByDigest(t *testing.T) {
	c := openTestCAS(t, Options{})
	data := []byte("deduplicate me")

	d1, err := c.Put(data, 1, types.BandSmall)
	require.NoError(t, err)
	d2, err := c.Put(data, 1, types.BandSmall)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	packs, err := c.catalog.list()
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, uint64(1), packs[0].ObjectCount, "second Put of identical data must not re-append")
}

func TestGetUnknownDigestIsNotFound(t *testing.T) {
	c := openTestCAS(t, Options{})
	unknown := digest.Sum([]byte("never written"))

	_, err := c.Get(unknown)
	require.Error(t, err)
	assert.True(t, fcdberr.Is(err, fcdberr.KindNotFound))
	assert.False(t, c.Exists(unknown))
}

func TestVerifyOnReadDetectsCorruptedPackBytes(t *testing.T) {
	c := openTestCAS(t, Options{VerifyOnRead: true})
	data := []byte("integrity matters")

	d, err := c.Put(data, 1, types.BandSmall)
	require.NoError(t, err)

	w := c.writers[types.BandSmall]
	require.NotNil(t, w)
	packPath := filepath.Join(c.baseDir, packFileName(w.packID))

	raw, err := os.ReadFile(packPath)
	require.NoError(t, err)
	raw[0] ^= 0xFF
	require.NoError(t, os.WriteFile(packPath, raw, 0o644))

	c.readersMu.Lock()
	if r, ok := c.readers[w.packID]; ok {
		r.Close()
		delete(c.readers, w.packID)
	}
	c.readersMu.Unlock()

	_, err = c.Get(d)
	require.Error(t, err)
	assert.True(t, fcdberr.Is(err, fcdberr.KindIntegrity))
}

func TestCorruptedCIRRecordIsQuarantined(t *testing.T) {
	c := openTestCAS(t, Options{})
	d, err := c.Put([]byte("some content"), 1, types.BandSmall)
	require.NoError(t, err)

	recOffset, ok := c.lookupIndex(d)
	require.True(t, ok)

	buf := make([]byte, recordSize)
	_, err = c.cidxFile.ReadAt(buf, recOffset)
	require.NoError(t, err)
	buf[offPackID] ^= 0xFF
	_, err = c.cidxFile.WriteAt(buf, recOffset)
	require.NoError(t, err)

	_, err = c.Get(d)
	require.Error(t, err)
	assert.True(t, fcdberr.Is(err, fcdberr.KindIntegrity))
}

func TestReopenRebuildsIndexAndBloomFromCidx(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, Options{})
	require.NoError(t, err)

	d, err := c.Put([]byte("survives a restart"), 1, types.BandSmall)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	reopened, err := Open(dir, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.Exists(d))
	got, err := reopened.Get(d)
	require.NoError(t, err)
	assert.Equal(t, []byte("survives a restart"), got)
}

func TestDifferentBandsUseSeparateWriters(t *testing.T) {
	c := openTestCAS(t, Options{})

	d1, err := c.Put([]byte("small object"), 1, types.BandSmall)
	require.NoError(t, err)
	d2, err := c.Put([]byte("blob object"), 2, types.BandBlob)
	require.NoError(t, err)

	wSmall := c.writers[types.BandSmall]
	wBlob := c.writers[types.BandBlob]
	require.NotNil(t, wSmall)
	require.NotNil(t, wBlob)
	assert.NotEqual(t, wSmall.packID, wBlob.packID)

	got1, err := c.Get(d1)
	require.NoError(t, err)
	assert.Equal(t, []byte("small object"), got1)

	got2, err := c.Get(d2)
	require.NoError(t, err)
	assert.Equal(t, []byte("blob object"), got2)
}

func TestPutAtPackCapRotatesAndFailsCapacity(t *testing.T) {
	c := openTestCAS(t, Options{})

	_, err := c.Put([]byte("seed"), 1, types.BandSmall)
	require.NoError(t, err)

	w := c.writers[types.BandSmall]
	require.NotNil(t, w)
	sealedPackID := w.packID
	w.offset = PackSizeMax - 1

	_, err = c.Put([]byte("too big to fit before the cap"), 1, types.BandSmall)
	require.Error(t, err)
	assert.True(t, fcdberr.Is(err, fcdberr.KindCapacity))
	assert.Nil(t, c.writers[types.BandSmall], "a write crossing the cap must rotate out the old writer")

	d, err := c.Put([]byte("retry lands on the rotated writer"), 1, types.BandSmall)
	require.NoError(t, err)
	newWriter := c.writers[types.BandSmall]
	require.NotNil(t, newWriter)
	assert.NotEqual(t, sealedPackID, newWriter.packID)

	got, err := c.Get(d)
	require.NoError(t, err)
	assert.Equal(t, []byte("retry lands on the rotated writer"), got)
}

func TestStatsReportsPerBandPackCountAndBytes(t *testing.T) {
	c := openTestCAS(t, Options{})

	_, err := c.Put([]byte("small object"), 1, types.BandSmall)
	require.NoError(t, err)
	_, err = c.Put([]byte("blob object"), 2, types.BandBlob)
	require.NoError(t, err)

	stats := c.Stats()
	require.Contains(t, stats, types.BandSmall)
	require.Contains(t, stats, types.BandBlob)
	assert.EqualValues(t, 1, stats[types.BandSmall].PackCount)
	assert.EqualValues(t, len("small object"), stats[types.BandSmall].Bytes)
}
