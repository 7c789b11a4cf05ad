package cas

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// recordSize is the fixed on-disk length of one CIR, matching
// types.CIRSize: digest[32] | pack_id u32 | offset u64 | length u32 |
// kind u8 | flags u8 | crc32 u32 | pad[10].
const recordSize = types.CIRSize

const (
	offDigest = 0
	offPackID = 32
	offOffset = 36
	offLength = 44
	offKind   = 48
	offFlags  = 49
	offCRC    = 50
	offPad    = 54
)

// newRecord builds a ContentIndexRecord and computes its CRC over
// every other field so corruption of any byte is detectable on load.
func newRecord(d digest.Digest, packID uint32, offset uint64, length uint32, kind, flags uint8) types.ContentIndexRecord {
	rec := types.ContentIndexRecord{
		Digest: d,
		PackID: packID,
		Offset: offset,
		Length: length,
		Kind:   kind,
		Flags:  flags,
	}
	rec.CRC = crcOf(rec)
	return rec
}

func crcOf(rec types.ContentIndexRecord) uint32 {
	h := crc32.NewIEEE()
	h.Write(rec.Digest.Bytes())

	var packIDBuf [4]byte
	binary.LittleEndian.PutUint32(packIDBuf[:], rec.PackID)
	h.Write(packIDBuf[:])

	var offsetBuf [8]byte
	binary.LittleEndian.PutUint64(offsetBuf[:], rec.Offset)
	h.Write(offsetBuf[:])

	var lengthBuf [4]byte
	binary.LittleEndian.PutUint32(lengthBuf[:], rec.Length)
	h.Write(lengthBuf[:])

	h.Write([]byte{rec.Kind, rec.Flags})
	return h.Sum32()
}

// verifyCRC reports whether rec's stored CRC matches a freshly
// computed one.
func verifyCRC(rec types.ContentIndexRecord) bool {
	return crcOf(rec) == rec.CRC
}

// encodeRecord serializes rec into its 64-byte little-endian layout.
func encodeRecord(rec types.ContentIndexRecord) [recordSize]byte {
	var buf [recordSize]byte
	copy(buf[offDigest:offDigest+digest.Size], rec.Digest.Bytes())
	binary.LittleEndian.PutUint32(buf[offPackID:], rec.PackID)
	binary.LittleEndian.PutUint64(buf[offOffset:], rec.Offset)
	binary.LittleEndian.PutUint32(buf[offLength:], rec.Length)
	buf[offKind] = rec.Kind
	buf[offFlags] = rec.Flags
	binary.LittleEndian.PutUint32(buf[offCRC:], rec.CRC)
	// remaining offPad..recordSize bytes are zero padding.
	return buf
}

// decodeRecord parses a 64-byte buffer into a ContentIndexRecord.
// Callers must check verifyCRC separately; a bad CRC does not stop
// decodeRecord from returning a value, it only renders the record
// untrustworthy.
func decodeRecord(buf []byte) types.ContentIndexRecord {
	var rec types.ContentIndexRecord
	d, _ := digest.FromBytes(buf[offDigest : offDigest+digest.Size])
	rec.Digest = d
	rec.PackID = binary.LittleEndian.Uint32(buf[offPackID:])
	rec.Offset = binary.LittleEndian.Uint64(buf[offOffset:])
	rec.Length = binary.LittleEndian.Uint32(buf[offLength:])
	rec.Kind = buf[offKind]
	rec.Flags = buf[offFlags]
	rec.CRC = binary.LittleEndian.Uint32(buf[offCRC:])
	return rec
}
