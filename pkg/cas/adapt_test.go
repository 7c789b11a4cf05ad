package cas

import (
	"testing"
	"time"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedistributeBloomReplaysEveryStoredDigest(t *testing.T) {
	c := openTestCAS(t, Options{})

	digests := make([][]byte, 0, 10)
	for i := 0; i < 10; i++ {
		data := []byte{byte(i), byte(i), byte(i)}
		d, err := c.Put(data, uint8(i%3), types.BandSmall)
		require.NoError(t, err)
		digests = append(digests, d.Bytes())
	}

	c.redistributeBloom()

	for _, d := range digests {
		dd, err := digest.FromBytes(d)
		require.NoError(t, err)
		assert.True(t, c.bloom.globalContains(dd))
	}
}

func TestBloomAdaptorRunsOnInterval(t *testing.T) {
	c := openTestCAS(t, Options{})
	_, err := c.Put([]byte("adapt me"), 1, types.BandSmall)
	require.NoError(t, err)

	before := c.bloom.global

	adaptor := NewBloomAdaptor(c, 10*time.Millisecond)
	adaptor.Start()
	defer adaptor.Stop()

	require.Eventually(t, func() bool {
		c.bloom.mu.RLock()
		defer c.bloom.mu.RUnlock()
		return c.bloom.global != before
	}, time.Second, 5*time.Millisecond, "expected redistribution to replace the global filter")
}
