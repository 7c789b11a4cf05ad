package cas

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/stretchr/testify/assert"
)

func TestBloomSoundness(t *testing.T) {
	h := newBloomHierarchy()
	known := digest.Sum([]byte("known"))
	unknown := digest.Sum([]byte("unknown"))

	h.insert(known, 1, 0x0100, 0)

	assert.True(t, h.globalContains(known))
	assert.False(t, h.globalContains(unknown), "Bloom false negatives are forbidden")
}

func TestMayContainNarrowsByPackAndShard(t *testing.T) {
	h := newBloomHierarchy()
	d := digest.Sum([]byte("x"))
	h.insert(d, 5, 0x0200, 42)

	packID := uint32(5)
	assert.True(t, h.mayContain(d, &packID, nil))

	otherPack := uint32(6)
	assert.False(t, h.mayContain(d, &otherPack, nil))
}

func TestRedistributeReplaysAllEntries(t *testing.T) {
	h := newBloomHierarchy()
	var entries []bloomEntry
	for i := 0; i < 50; i++ {
		d := digest.Sum([]byte{byte(i)})
		entries = append(entries, bloomEntry{digest: d, packID: uint32(i % 3), typePart: 1, timeBucket: 0})
	}

	h.redistribute(entries)

	for _, e := range entries {
		assert.True(t, h.globalContains(e.digest))
	}
}
