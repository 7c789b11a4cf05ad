package capability

import (
	"sync"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// TraceCapacity bounds the audit tracer's ring buffer.
const TraceCapacity = 1000

// TraceEntry is one recorded capability-checked operation.
type TraceEntry struct {
	Timestamp types.Timestamp
	Operation string
	Actor     string
	Resource  digest.Digest
	Cap       types.Capability
	Success   bool
	Details   string
}

// Tracer is a bounded, thread-safe audit log of capability-checked
// operations. Once it holds TraceCapacity entries, the oldest is
// dropped as new ones are recorded.
type Tracer struct {
	mu      sync.Mutex
	entries []TraceEntry
}

// NewTracer returns an empty audit tracer.
func NewTracer() *Tracer {
	return &Tracer{entries: make([]TraceEntry, 0, TraceCapacity)}
}

// Record appends an entry, evicting the oldest if the buffer is full.
func (tr *Tracer) Record(e TraceEntry) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if len(tr.entries) >= TraceCapacity {
		copy(tr.entries, tr.entries[1:])
		tr.entries = tr.entries[:len(tr.entries)-1]
	}
	tr.entries = append(tr.entries, e)
}

// ForResource returns every recorded entry touching resource, in
// recording order.
func (tr *Tracer) ForResource(resource digest.Digest) []TraceEntry {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	var out []TraceEntry
	for _, e := range tr.entries {
		if e.Resource == resource {
			out = append(out, e)
		}
	}
	return out
}

// ForActor returns every recorded entry attributed to actor, in
// recording order.
func (tr *Tracer) ForActor(actor string) []TraceEntry {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	var out []TraceEntry
	for _, e := range tr.entries {
		if e.Actor == actor {
			out = append(out, e)
		}
	}
	return out
}
