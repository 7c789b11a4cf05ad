// Package cas implements the pack-file content-addressable store: an
// append-only object log partitioned into pack files by band (small,
// index, blob), a fixed-width content-index record (CIR) for each stored
// object, a three-level Bloom filter hierarchy for fast existence
// checks, and a bbolt-backed catalog of pack metadata.
//
// Lookup is CIR-directed: an in-memory digest-to-CIR-offset index is
// rebuilt from cidx.dat at open, so Get never scans a pack file to
// find its data.
package cas
