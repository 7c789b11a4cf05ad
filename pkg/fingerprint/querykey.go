package fingerprint

import (
	"encoding/binary"

	"github.com/fcdb-io/fcdb/pkg/types"
)

// NewKey assembles a QueryKey from already-computed signatures plus
// the remaining cache-key components.
func NewKey(pathSig, classSig [32]byte, asOf types.Timestamp, capBase, capLength uint64, typePart uint16) types.QueryKey {
	return types.QueryKey{
		PathSig:         pathSig,
		ClassSig:        classSig,
		AsOf:            asOf,
		CapRegionBase:   capBase,
		CapRegionLength: capLength,
		TypePart:        typePart,
	}
}

// Encode serializes a QueryKey per the persistence layout:
// path_sig[32] | class_sig[32] | as_of u64 | cap_base u64 | cap_end u64 |
// type_part u16. Note cap_end, not cap_length, is persisted — the wire
// form stores the region's bounds, matching the original's (base, end)
// tuple, while types.QueryKey keeps (base, length) in memory.
func Encode(q types.QueryKey) []byte {
	buf := make([]byte, 32+32+8+8+8+2)
	off := 0
	copy(buf[off:], q.PathSig[:])
	off += 32
	copy(buf[off:], q.ClassSig[:])
	off += 32
	binary.LittleEndian.PutUint64(buf[off:], uint64(q.AsOf))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], q.CapRegionBase)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], q.CapRegionBase+q.CapRegionLength)
	off += 8
	binary.LittleEndian.PutUint16(buf[off:], q.TypePart)
	return buf
}

// decodeKey parses a 90-byte buffer produced by Encode back into a
// QueryKey, recovering CapRegionLength from the persisted (base, end)
// bounds.
func decodeKey(buf []byte) types.QueryKey {
	var q types.QueryKey
	off := 0
	copy(q.PathSig[:], buf[off:off+32])
	off += 32
	copy(q.ClassSig[:], buf[off:off+32])
	off += 32
	q.AsOf = types.Timestamp(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	base := binary.LittleEndian.Uint64(buf[off:])
	off += 8
	end := binary.LittleEndian.Uint64(buf[off:])
	off += 8
	q.CapRegionBase = base
	q.CapRegionLength = end - base
	q.TypePart = binary.LittleEndian.Uint16(buf[off:])
	return q
}
