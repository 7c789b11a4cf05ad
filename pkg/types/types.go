package types

import (
	"time"

	"github.com/fcdb-io/fcdb/pkg/digest"
)

// Rid is a resource ID: a dense identifier assigned to a node at
// creation and never reused.
type Rid uint64

// LabelID identifies an edge type.
type LabelID uint32

// Timestamp is microseconds since the Unix epoch, the unit used for
// both the content timeline and as-of query semantics.
type Timestamp uint64

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp(time.Now().UnixMicro())
}

// TimelineEntry is one version of a Node's content, valid from T until
// superseded by the next later entry.
type TimelineEntry struct {
	T      Timestamp
	Digest digest.Digest
}

// Node is a Rid's current content digest plus its append-only
// timeline of prior versions. Timeline entries are never rewritten;
// UpdateNode appends.
type Node struct {
	Rid      Rid
	Current  digest.Digest
	Timeline []TimelineEntry
}

// Edge is a directed, labeled relationship between two resources.
// DeletedAt is nil while the edge is live; once set, traversal must
// skip it per the as-of rules in pkg/graph.
type Edge struct {
	From       Rid
	To         Rid
	Label      LabelID
	Properties digest.Digest
	CreatedAt  Timestamp
	DeletedAt  *Timestamp
}

// AdjEntry is one forward- or reverse-adjacency entry stored against a
// Rid. Forward entries point at Edge.To; reverse entries (stored
// against Edge.To) point back at Edge.From.
type AdjEntry struct {
	Target     Rid
	Label      LabelID
	Properties digest.Digest
	Timestamp  Timestamp
	DeletedAt  *Timestamp
}

// Posting is one (term, position) occurrence of a token in a node's
// text content, produced by whitespace tokenization and case folding.
type Posting struct {
	Term      string
	Rid       Rid
	Positions []uint32
	Timestamp Timestamp
}

// Band classifies objects by size/role so the CAS can route them to
// pack files sized appropriately for their access pattern.
type Band uint8

const (
	BandSmall Band = iota // payloads under 4KiB
	BandIndex             // index structures (CIR-adjacent metadata)
	BandBlob              // large blobs, 4KiB and over
)

func (b Band) String() string {
	switch b {
	case BandSmall:
		return "small"
	case BandIndex:
		return "index"
	case BandBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// Pack is the metadata record for one append-only pack file.
type Pack struct {
	ID          uint32
	Band        Band
	Size        uint64
	ObjectCount uint64
	CreatedAt   Timestamp
	SealedAt    *Timestamp
}

// Sealed reports whether the pack has been closed for writing.
func (p Pack) Sealed() bool {
	return p.SealedAt != nil
}

// CIRSize is the fixed on-disk length of a ContentIndexRecord.
const CIRSize = 64

// ContentIndexRecord is the 64-byte fixed-width record mapping a
// digest to its pack location: digest(32) | pack_id(4) | offset(8) |
// length(4) | kind(1) | flags(1) | crc32(4) | pad(10). The CRC covers
// every other field; pkg/cas computes and verifies it on encode/decode.
type ContentIndexRecord struct {
	Digest digest.Digest
	PackID uint32
	Offset uint64
	Length uint32
	Kind   uint8
	Flags  uint8
	CRC    uint32
}

// QueryKey is the five-component query fingerprint used as a manifest
// cache key: two keys compare equal iff all five components do (the
// cap region's base and length together form one).
type QueryKey struct {
	PathSig         digest.Digest
	ClassSig        digest.Digest
	AsOf            Timestamp
	CapRegionBase   uint64
	CapRegionLength uint64
	TypePart        uint16
}

// ManifestEntry is the live, cached result associated with a QueryKey.
// LastAccess and AccessCount drive the manifest's LRU/LFU eviction
// policy and are persisted alongside the result digest (spec §6).
type ManifestEntry struct {
	ResultDigest digest.Digest
	Version      uint64
	UpdatedAt    Timestamp
	LastAccess   Timestamp
	AccessCount  uint64
}

// ManifestDiff is one atomically-applied step in the manifest's
// append-only diff log: the set of keys added, removed, or updated
// (by digest inequality) since the previous version.
type ManifestDiff struct {
	Version uint64
	Stamp   Timestamp
	Added   map[QueryKey]ManifestEntry
	Removed []QueryKey
	Updated map[QueryKey]ManifestEntry
}

// Permission is a bitmask of operations a Capability authorizes.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
	PermDerive
	PermDelegate
)

// Has reports whether perm is a subset of p.
func (p Permission) Has(perm Permission) bool {
	return p&perm == perm
}

// ProofSize is the length of a Capability's opaque witness.
const ProofSize = 16

// Capability describes authority over the half-open resource range
// [Base, Base+Length) with the given permission bits. Proof is a
// 128-bit opaque witness — the core never interprets it, only
// pkg/capability/proof.go derives and checks it.
type Capability struct {
	Base   uint64
	Length uint64
	Perms  Permission
	Proof  [ProofSize]byte
}

// End returns the exclusive upper bound of the capability's range.
func (c Capability) End() uint64 {
	return c.Base + c.Length
}
