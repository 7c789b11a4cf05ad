package digest

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// AppendUvarint appends the varint encoding of v to buf and returns the
// extended slice. Used throughout the on-disk formats (§6) wherever a
// length-prefixed field needs compact packing.
func AppendUvarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

// ReadUvarint reads a varint-encoded uint64 from r.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, fmt.Errorf("digest: read varint: %w", err)
	}
	return v, nil
}

// NewByteReader wraps an io.Reader so it satisfies io.ByteReader, which is
// what ReadUvarint requires — callers reading a length-prefixed stream
// (manifest diffs, cidx scans) pass the file handle through once.
func NewByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}
