package fingerprint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// entrySize is the encoded length of one (QueryKey, ManifestEntry)
// pair: Q || result digest[32] || last_access u64 || access_count u64.
const entrySize = 90 + digest.Size + 8 + 8

// encodeDiff serializes diff per the manifest log layout:
// version u64 | ts u64 | n_add u32 | entries[] | n_remove u32 |
// qkeys[] | n_update u32 | pairs[]. Added/updated entries share the
// same (Q, D, last_access, access_count) shape; removed keys are bare
// QueryKeys.
func encodeDiff(diff types.ManifestDiff) []byte {
	buf := make([]byte, 0, 8+8+4+len(diff.Added)*entrySize+4+len(diff.Removed)*90+4+len(diff.Updated)*entrySize)

	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], diff.Version)
	buf = append(buf, hdr[:]...)
	binary.LittleEndian.PutUint64(hdr[:], uint64(diff.Stamp))
	buf = append(buf, hdr[:]...)

	buf = appendU32(buf, uint32(len(diff.Added)))
	for _, q := range sortedKeys(diff.Added) {
		buf = appendEntry(buf, q, diff.Added[q])
	}

	buf = appendU32(buf, uint32(len(diff.Removed)))
	for _, q := range diff.Removed {
		buf = append(buf, Encode(q)...)
	}

	buf = appendU32(buf, uint32(len(diff.Updated)))
	for _, q := range sortedKeys(diff.Updated) {
		buf = appendEntry(buf, q, diff.Updated[q])
	}

	return buf
}

func appendEntry(buf []byte, q types.QueryKey, e types.ManifestEntry) []byte {
	buf = append(buf, Encode(q)...)
	buf = append(buf, e.ResultDigest.Bytes()...)
	var u [8]byte
	binary.LittleEndian.PutUint64(u[:], uint64(e.LastAccess))
	buf = append(buf, u[:]...)
	binary.LittleEndian.PutUint64(u[:], e.AccessCount)
	buf = append(buf, u[:]...)
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// decodeDiff parses a buffer produced by encodeDiff.
func decodeDiff(buf []byte) (types.ManifestDiff, error) {
	var diff types.ManifestDiff
	r := &byteReader{buf: buf}

	version, err := r.u64()
	if err != nil {
		return diff, fmt.Errorf("fingerprint: decode diff version: %w", err)
	}
	stamp, err := r.u64()
	if err != nil {
		return diff, fmt.Errorf("fingerprint: decode diff stamp: %w", err)
	}
	diff.Version = version
	diff.Stamp = types.Timestamp(stamp)

	nAdd, err := r.u32()
	if err != nil {
		return diff, fmt.Errorf("fingerprint: decode n_add: %w", err)
	}
	diff.Added = make(map[types.QueryKey]types.ManifestEntry, nAdd)
	for i := uint32(0); i < nAdd; i++ {
		q, e, err := r.entry()
		if err != nil {
			return diff, fmt.Errorf("fingerprint: decode added entry %d: %w", i, err)
		}
		diff.Added[q] = e
	}

	nRemove, err := r.u32()
	if err != nil {
		return diff, fmt.Errorf("fingerprint: decode n_remove: %w", err)
	}
	for i := uint32(0); i < nRemove; i++ {
		q, err := r.queryKey()
		if err != nil {
			return diff, fmt.Errorf("fingerprint: decode removed key %d: %w", i, err)
		}
		diff.Removed = append(diff.Removed, q)
	}

	nUpdate, err := r.u32()
	if err != nil {
		return diff, fmt.Errorf("fingerprint: decode n_update: %w", err)
	}
	diff.Updated = make(map[types.QueryKey]types.ManifestEntry, nUpdate)
	for i := uint32(0); i < nUpdate; i++ {
		q, e, err := r.entry()
		if err != nil {
			return diff, fmt.Errorf("fingerprint: decode updated entry %d: %w", i, err)
		}
		diff.Updated[q] = e
	}

	return diff, nil
}

type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) take(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *byteReader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) queryKey() (types.QueryKey, error) {
	b, err := r.take(90)
	if err != nil {
		return types.QueryKey{}, err
	}
	return decodeKey(b), nil
}

func (r *byteReader) entry() (types.QueryKey, types.ManifestEntry, error) {
	q, err := r.queryKey()
	if err != nil {
		return types.QueryKey{}, types.ManifestEntry{}, err
	}
	dBytes, err := r.take(digest.Size)
	if err != nil {
		return types.QueryKey{}, types.ManifestEntry{}, err
	}
	d, err := digest.FromBytes(dBytes)
	if err != nil {
		return types.QueryKey{}, types.ManifestEntry{}, err
	}
	lastAccess, err := r.u64()
	if err != nil {
		return types.QueryKey{}, types.ManifestEntry{}, err
	}
	accessCount, err := r.u64()
	if err != nil {
		return types.QueryKey{}, types.ManifestEntry{}, err
	}
	return q, types.ManifestEntry{
		ResultDigest: d,
		LastAccess:   types.Timestamp(lastAccess),
		AccessCount:  accessCount,
	}, nil
}

// sortedKeys orders a manifest-entry map's keys for deterministic
// encoding: by path signature, then class signature, then as-of
// timestamp, breaking any remaining tie on the cap region and then the
// type part. Encoding order has no effect on
// decoded content, only on byte-for-byte reproducibility of the log.
func sortedKeys(m map[types.QueryKey]types.ManifestEntry) []types.QueryKey {
	keys := make([]types.QueryKey, 0, len(m))
	for q := range m {
		keys = append(keys, q)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0; j-- {
			if !keyLess(keys[j], keys[j-1]) {
				break
			}
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func keyLess(a, b types.QueryKey) bool {
	if c := a.PathSig.Compare(b.PathSig); c != 0 {
		return c < 0
	}
	if c := a.ClassSig.Compare(b.ClassSig); c != 0 {
		return c < 0
	}
	if a.AsOf != b.AsOf {
		return a.AsOf < b.AsOf
	}
	if a.CapRegionBase != b.CapRegionBase {
		return a.CapRegionBase < b.CapRegionBase
	}
	if a.CapRegionLength != b.CapRegionLength {
		return a.CapRegionLength < b.CapRegionLength
	}
	return a.TypePart < b.TypePart
}

// appendLogRecord writes one length-prefixed diff to w: a u32 byte
// count followed by the encoded diff.
func appendLogRecord(w io.Writer, diff types.ManifestDiff) error {
	buf := encodeDiff(diff)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(buf)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

// readLogRecords parses every length-prefixed diff in r in order.
func readLogRecords(r io.Reader) ([]types.ManifestDiff, error) {
	br := bufio.NewReader(r)
	var diffs []types.ManifestDiff
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			if err == io.EOF {
				break
			}
			return diffs, fmt.Errorf("fingerprint: read manifest log record length: %w", err)
		}
		n := binary.LittleEndian.Uint32(lenBuf[:])
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return diffs, fmt.Errorf("fingerprint: read manifest log record: %w", err)
		}
		diff, err := decodeDiff(buf)
		if err != nil {
			return diffs, err
		}
		diffs = append(diffs, diff)
	}
	return diffs, nil
}
