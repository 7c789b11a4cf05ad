package cas

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/stretchr/testify/assert"
)

func TestRecordRoundTrip(t *testing.T) {
	d := digest.Sum([]byte("payload"))
	rec := newRecord(d, 7, 1024, 256, 1, 0)

	buf := encodeRecord(rec)
	assert.Len(t, buf, recordSize)

	decoded := decodeRecord(buf[:])
	assert.Equal(t, rec.Digest, decoded.Digest)
	assert.Equal(t, rec.PackID, decoded.PackID)
	assert.Equal(t, rec.Offset, decoded.Offset)
	assert.Equal(t, rec.Length, decoded.Length)
	assert.Equal(t, rec.Kind, decoded.Kind)
	assert.Equal(t, rec.Flags, decoded.Flags)
	assert.Equal(t, rec.CRC, decoded.CRC)
	assert.True(t, verifyCRC(decoded))
}

func TestVerifyCRCDetectsCorruption(t *testing.T) {
	d := digest.Sum([]byte("payload"))
	rec := newRecord(d, 1, 0, 10, 0, 0)
	buf := encodeRecord(rec)

	buf[offPackID] ^= 0xFF // flip a byte inside the checksummed region
	corrupted := decodeRecord(buf[:])
	assert.False(t, verifyCRC(corrupted))
}
