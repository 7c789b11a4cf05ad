package cas

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fcdb-io/fcdb/pkg/digest"
)

// Default Bloom sizing: per-level false-positive targets and expected
// item counts. The 40/40/20 memory split below is applied only when the
// hierarchy is redistributed.
const (
	globalFPRate = 1e-6
	packFPRate   = 1e-7
	shardFPRate  = 1e-8

	globalExpectedItems = 1_000_000
	packExpectedItems   = 100_000
	shardExpectedItems  = 10_000
)

// shardKey identifies one shard-level filter by (type-part, time
// bucket), where the bucket is a coarse window of timestamps.
type shardKey struct {
	typePart   uint16
	timeBucket uint64
}

// bloomHierarchy is the three-level Bloom filter system: a global
// filter checked first, a per-pack filter for a known pack ID, and a
// per-shard filter keyed by (type-part, time-bucket). A digest is
// considered present only when every filter consulted says yes; Bloom
// filters never produce false negatives, so a "no" at any level is
// authoritative.
type bloomHierarchy struct {
	mu     sync.RWMutex
	global *bloom.BloomFilter
	pack   map[uint32]*bloom.BloomFilter
	shard  map[shardKey]*bloom.BloomFilter

	globalFP uint64
	packFP   uint64
	shardFP  uint64

	globalFPRate float64
	packFPRate   float64
	shardFPRate  float64
}

// newBloomHierarchy builds the default hierarchy, sized to the fixed
// 1e-6/1e-7/1e-8 false-positive targets.
func newBloomHierarchy() *bloomHierarchy {
	return newBloomHierarchyWithRates(globalFPRate, packFPRate, shardFPRate)
}

// newBloomHierarchyWithRates builds a hierarchy targeting caller-chosen
// false-positive rates at each level (wired from pkg/config's Bloom
// settings). A zero rate falls back to the package default for that
// level.
func newBloomHierarchyWithRates(globalRate, packRate, shardRate float64) *bloomHierarchy {
	if globalRate == 0 {
		globalRate = globalFPRate
	}
	if packRate == 0 {
		packRate = packFPRate
	}
	if shardRate == 0 {
		shardRate = shardFPRate
	}
	return &bloomHierarchy{
		global:       bloom.NewWithEstimates(globalExpectedItems, globalRate),
		pack:         make(map[uint32]*bloom.BloomFilter),
		shard:        make(map[shardKey]*bloom.BloomFilter),
		globalFPRate: globalRate,
		packFPRate:   packRate,
		shardFPRate:  shardRate,
	}
}

// insert records d as present at packID, classified under (typePart,
// timeBucket).
func (b *bloomHierarchy) insert(d digest.Digest, packID uint32, typePart uint16, timeBucket uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bytes := d.Bytes()
	b.global.Add(bytes)

	pf, ok := b.pack[packID]
	if !ok {
		pf = bloom.NewWithEstimates(packExpectedItems, b.packFPRate)
		b.pack[packID] = pf
	}
	pf.Add(bytes)

	sk := shardKey{typePart: typePart, timeBucket: timeBucket}
	sf, ok := b.shard[sk]
	if !ok {
		sf = bloom.NewWithEstimates(shardExpectedItems, b.shardFPRate)
		b.shard[sk] = sf
	}
	sf.Add(bytes)
}

// mayContain consults the global filter, and optionally the pack and
// shard filters when the caller knows which to check. A false return
// at any level is authoritative (no CIR lookup needed); a true return
// must still be confirmed by a CIR lookup.
func (b *bloomHierarchy) mayContain(d digest.Digest, packID *uint32, shard *shardKey) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bytes := d.Bytes()
	if !b.global.Test(bytes) {
		return false
	}

	if packID != nil {
		if pf, ok := b.pack[*packID]; ok && !pf.Test(bytes) {
			return false
		}
	}
	if shard != nil {
		if sf, ok := b.shard[*shard]; ok && !sf.Test(bytes) {
			return false
		}
	}
	return true
}

// globalContains is the fast existence check used by Get/Exists: a
// false here is authoritative and short-circuits any CIR lookup.
func (b *bloomHierarchy) globalContains(d digest.Digest) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.global.Test(d.Bytes())
}

// recordFalsePositive increments the false-positive counter for the
// given level, feeding the adaptation policy's redistribution
// decision.
func (b *bloomHierarchy) recordFalsePositive(level string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch level {
	case "global":
		b.globalFP++
	case "pack":
		b.packFP++
	case "shard":
		b.shardFP++
	}
}

// entry is one (digest, pack, shard) triple replayed into a rebuilt
// filter set during redistribution.
type bloomEntry struct {
	digest     digest.Digest
	packID     uint32
	typePart   uint16
	timeBucket uint64
}

// redistribute rebuilds all three filter levels sized to the fixed
// 40/40/20 memory split over the current total item count, then
// replays every known digest so the rehash loses no entries. Bloom
// false negatives never occur regardless of sizing, so this is always
// sound — redistribution only ever changes the false-positive rate
// going forward.
func (b *bloomHierarchy) redistribute(entries []bloomEntry) {
	globalItems := bloomItemEstimate(len(entries), 0.4, globalExpectedItems)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.global = bloom.NewWithEstimates(globalItems, b.globalFPRate)
	b.pack = make(map[uint32]*bloom.BloomFilter)
	b.shard = make(map[shardKey]*bloom.BloomFilter)
	b.globalFP, b.packFP, b.shardFP = 0, 0, 0

	for _, e := range entries {
		bytes := e.digest.Bytes()
		b.global.Add(bytes)

		pf, ok := b.pack[e.packID]
		if !ok {
			packItems := bloomItemEstimate(len(entries), 0.4, packExpectedItems)
			pf = bloom.NewWithEstimates(packItems, b.packFPRate)
			b.pack[e.packID] = pf
		}
		pf.Add(bytes)

		sk := shardKey{typePart: e.typePart, timeBucket: e.timeBucket}
		sf, ok := b.shard[sk]
		if !ok {
			shardItems := bloomItemEstimate(len(entries), 0.2, shardExpectedItems)
			sf = bloom.NewWithEstimates(shardItems, b.shardFPRate)
			b.shard[sk] = sf
		}
		sf.Add(bytes)
	}
}

func bloomItemEstimate(total int, fraction float64, floor uint) uint {
	n := uint(float64(total) * fraction)
	if n < floor {
		return floor
	}
	return n
}
