package fingerprint

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/events"
	"github.com/fcdb-io/fcdb/pkg/log"
	"github.com/fcdb-io/fcdb/pkg/metrics"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// ManifestLogFile is the manifest diff log's file name under a
// store's data directory.
const ManifestLogFile = "manifest.log"

// DefaultCapacity bounds the live manifest. Apply (and so Insert)
// admits new entries first, then evicts least-recently/least-frequently
// used entries until the table is back within capacity. Resolve never
// evicts.
const DefaultCapacity = 10_000

// Manifest is the single-writer, multi-reader Q -> ManifestEntry
// cache. Diffs are generated by comparing a proposed table against
// the live one and applied atomically; readers see a point-in-time
// snapshot under the shared lock.
type Manifest struct {
	mu       sync.RWMutex
	live     map[types.QueryKey]types.ManifestEntry
	version  uint64
	capacity int
	log      []types.ManifestDiff

	logFile *os.File
	broker  *events.Broker
}

// NewManifest constructs an empty Manifest with the given eviction
// capacity. A capacity of 0 uses DefaultCapacity.
func NewManifest(capacity int) *Manifest {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manifest{
		live:     make(map[types.QueryKey]types.ManifestEntry),
		capacity: capacity,
	}
}

// OpenLog attaches dataDir/manifest.log as this manifest's persisted
// diff log: any diff already on disk is replayed into the live table
// in version order, then every subsequent Apply appends its diff to
// the file. Calling OpenLog twice, or on a manifest with diffs already
// applied in memory, is not supported.
func (m *Manifest) OpenLog(dataDir string) error {
	path := filepath.Join(dataDir, ManifestLogFile)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("fingerprint: open manifest log: %w", err)
	}

	diffs, err := readLogRecords(f)
	if err != nil {
		f.Close()
		return err
	}

	m.mu.Lock()
	for _, diff := range diffs {
		m.applyLocked(diff)
	}
	m.logFile = f
	m.mu.Unlock()

	return nil
}

// CloseLog closes the manifest log file, if one is open.
func (m *Manifest) CloseLog() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logFile == nil {
		return nil
	}
	err := m.logFile.Close()
	m.logFile = nil
	return err
}

// SetBroker attaches the event broker manifest evictions are
// announced on. A nil broker (the default) makes publish a no-op.
func (m *Manifest) SetBroker(b *events.Broker) {
	m.broker = b
}

func (m *Manifest) publish(typ events.EventType, message string, meta map[string]string) {
	if m.broker == nil {
		return
	}
	m.broker.Publish(&events.Event{Type: typ, Message: message, Metadata: meta})
}

// Resolve looks up Q, bumping its LastAccess/AccessCount on a hit.
// Absence means compute-and-insert is the caller's responsibility.
func (m *Manifest) Resolve(q types.QueryKey, now types.Timestamp) (digest.Digest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live[q]
	if !ok {
		metrics.ManifestMissesTotal.Inc()
		return digest.Zero, false
	}
	entry.LastAccess = now
	entry.AccessCount++
	m.live[q] = entry
	metrics.ManifestHitsTotal.Inc()
	return entry.ResultDigest, true
}

// Propose compares a proposed table against the live table and
// returns the ManifestDiff that would transform live into proposed:
// keys only in proposed are additions, keys only in live are
// removals, and keys in both with a different result-digest are
// updates. Stats fields (LastAccess/AccessCount) do not factor into
// the update comparison — only ResultDigest inequality does.
func (m *Manifest) Propose(proposed map[types.QueryKey]digest.Digest, now types.Timestamp) types.ManifestDiff {
	m.mu.RLock()
	defer m.mu.RUnlock()

	diff := types.ManifestDiff{
		Version: m.version + 1,
		Stamp:   now,
		Added:   make(map[types.QueryKey]types.ManifestEntry),
		Updated: make(map[types.QueryKey]types.ManifestEntry),
	}

	for q, d := range proposed {
		existing, ok := m.live[q]
		switch {
		case !ok:
			diff.Added[q] = types.ManifestEntry{
				ResultDigest: d, Version: diff.Version, UpdatedAt: now,
				LastAccess: now, AccessCount: 1,
			}
		case existing.ResultDigest != d:
			diff.Updated[q] = types.ManifestEntry{
				ResultDigest: d,
				Version:      diff.Version,
				UpdatedAt:    now,
				LastAccess:   existing.LastAccess,
				AccessCount:  existing.AccessCount,
			}
		}
	}
	for q := range m.live {
		if _, ok := proposed[q]; !ok {
			diff.Removed = append(diff.Removed, q)
		}
	}

	return diff
}

// Apply applies a diff atomically: added and updated entries are
// written, removed keys are deleted, and the manifest's version
// advances to diff.Version. Applying evicts as needed to respect the
// capacity bound after admitting new entries. If a log file is
// attached via OpenLog, the diff is appended to it before the
// in-memory table is mutated.
func (m *Manifest) Apply(diff types.ManifestDiff) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logFile != nil {
		if err := appendLogRecord(m.logFile, diff); err != nil {
			log.Logger.Warn().Err(err).Uint64("version", diff.Version).Msg("failed to append manifest diff to log")
		}
	}
	m.applyLocked(diff)
}

// applyLocked mutates the live table per diff without touching the
// log file. Caller must hold mu.
func (m *Manifest) applyLocked(diff types.ManifestDiff) {
	for _, q := range diff.Removed {
		delete(m.live, q)
	}
	for q, e := range diff.Added {
		m.live[q] = e
	}
	for q, e := range diff.Updated {
		m.live[q] = e
	}
	m.version = diff.Version
	m.log = append(m.log, diff)

	m.evictLocked()
}

// Insert is a convenience for the common single-entry case: propose a
// one-key table change and apply the resulting diff in one step.
func (m *Manifest) Insert(q types.QueryKey, result digest.Digest, now types.Timestamp) {
	m.mu.RLock()
	proposed := make(map[types.QueryKey]digest.Digest, len(m.live)+1)
	for k, e := range m.live {
		proposed[k] = e.ResultDigest
	}
	proposed[q] = result
	m.mu.RUnlock()

	diff := m.Propose(proposed, now)
	m.Apply(diff)
}

// evictLocked drops the least-recently/least-frequently used entries
// until the live table is back within capacity. Caller must hold mu.
func (m *Manifest) evictLocked() {
	for len(m.live) > m.capacity {
		var victim types.QueryKey
		var victimEntry types.ManifestEntry
		first := true
		for q, e := range m.live {
			if first || lessEligible(e, victimEntry) {
				victim, victimEntry = q, e
				first = false
			}
		}
		delete(m.live, victim)
		metrics.ManifestEvictionsTotal.Inc()
		m.publish(events.EventManifestEvicted, "manifest entry evicted", nil)
	}
	metrics.ManifestSize.Set(float64(len(m.live)))
}

// lessEligible reports whether a is a better eviction candidate than
// b: older last-access first, then fewer accesses as a tiebreak.
func lessEligible(a, b types.ManifestEntry) bool {
	if a.LastAccess != b.LastAccess {
		return a.LastAccess < b.LastAccess
	}
	return a.AccessCount < b.AccessCount
}

// Version returns the manifest's current diff version.
func (m *Manifest) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Len returns the number of live entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

// Log returns every diff applied so far, in version order.
func (m *Manifest) Log() []types.ManifestDiff {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.ManifestDiff, len(m.log))
	copy(out, m.log)
	return out
}
