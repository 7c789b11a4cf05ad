package planner

import (
	"sync"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// DefaultSnapshotCapacity bounds the snapshot-memoization map.
const DefaultSnapshotCapacity = 16

// SnapshotManager maintains a bounded T -> Digest map of popular
// as-of snapshots with an access-count histogram, evicting the
// least-accessed entry on overflow.
type SnapshotManager struct {
	mu          sync.Mutex
	capacity    int
	digests     map[types.Timestamp]digest.Digest
	accessCount map[types.Timestamp]uint64
}

// NewSnapshotManager constructs a SnapshotManager with the given
// capacity. A capacity of 0 uses DefaultSnapshotCapacity.
func NewSnapshotManager(capacity int) *SnapshotManager {
	if capacity <= 0 {
		capacity = DefaultSnapshotCapacity
	}
	return &SnapshotManager{
		capacity:    capacity,
		digests:     make(map[types.Timestamp]digest.Digest),
		accessCount: make(map[types.Timestamp]uint64),
	}
}

// Create records a snapshot digest at ts, evicting the least-accessed
// existing entry if the map is already at capacity.
func (m *SnapshotManager) Create(ts types.Timestamp, d digest.Digest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.digests[ts]; !exists && len(m.digests) >= m.capacity {
		m.evictLeastAccessedLocked()
	}
	m.digests[ts] = d
	if _, ok := m.accessCount[ts]; !ok {
		m.accessCount[ts] = 0
	}
}

// Get returns the snapshot with the largest recorded timestamp <= asOf,
// bumping its access count on a hit.
func (m *SnapshotManager) Get(asOf types.Timestamp) (digest.Digest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best types.Timestamp
	found := false
	for ts := range m.digests {
		if ts > asOf {
			continue
		}
		if !found || ts > best {
			best, found = ts, true
		}
	}
	if !found {
		return digest.Zero, false
	}

	m.accessCount[best]++
	return m.digests[best], true
}

// PopularTimestamps returns up to n timestamps ordered by descending
// access count, ties broken by descending timestamp.
func (m *SnapshotManager) PopularTimestamps(n int) []types.Timestamp {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]types.Timestamp, 0, len(m.digests))
	for ts := range m.digests {
		all = append(all, ts)
	}
	sortByAccessDesc(all, m.accessCount)

	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

func sortByAccessDesc(ts []types.Timestamp, access map[types.Timestamp]uint64) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0; j-- {
			a, b := ts[j-1], ts[j]
			if access[a] < access[b] || (access[a] == access[b] && a < b) {
				ts[j-1], ts[j] = ts[j], ts[j-1]
			} else {
				break
			}
		}
	}
}

// evictLeastAccessedLocked drops the entry with the smallest access
// count, breaking ties toward the smallest timestamp. Caller must
// hold m.mu.
func (m *SnapshotManager) evictLeastAccessedLocked() {
	var victim types.Timestamp
	first := true
	for ts := range m.digests {
		count := m.accessCount[ts]
		if first || count < m.accessCount[victim] || (count == m.accessCount[victim] && ts < victim) {
			victim, first = ts, false
		}
	}
	delete(m.digests, victim)
	delete(m.accessCount, victim)
}
