package capability

import (
	"sync"
	"time"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// DefaultTimeout is the transaction timeout used when none is
// configured (spec default: 5 seconds).
const DefaultTimeout = 5 * time.Second

// resourceGrant records one resource's capability and the digest it
// was acquired under, regardless of whether it was owned or borrowed.
type resourceGrant struct {
	resource digest.Digest
	cap      types.Capability
}

// Transaction tracks the resources a single logical operation has
// acquired, so commit/abort can release them uniformly and so
// CheckWritePerm can answer without a second lookup against the
// registry.
type Transaction struct {
	ID      uint64
	Actor   string
	Timeout time.Duration

	mu       sync.Mutex
	start    time.Time
	owned    []resourceGrant
	borrowed []resourceGrant
	handles  []*Handle
}

// NewTransaction starts a transaction clock running now.
func NewTransaction(id uint64, actor string) *Transaction {
	return &Transaction{
		ID:      id,
		Actor:   actor,
		Timeout: DefaultTimeout,
		start:   time.Now(),
	}
}

// IsExpired reports whether the transaction has exceeded its timeout.
func (t *Transaction) IsExpired() bool {
	return time.Since(t.start) > t.Timeout
}

// AddOwned records resource as owned by this transaction.
func (t *Transaction) AddOwned(resource digest.Digest, cap types.Capability, h *Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.owned = append(t.owned, resourceGrant{resource: resource, cap: cap})
	if h != nil {
		t.handles = append(t.handles, h)
	}
}

// AddBorrowed records resource as borrowed by this transaction.
func (t *Transaction) AddBorrowed(resource digest.Digest, cap types.Capability, h *Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.borrowed = append(t.borrowed, resourceGrant{resource: resource, cap: cap})
	if h != nil {
		t.handles = append(t.handles, h)
	}
}

// CheckWritePerm reports whether the transaction holds WRITE on
// target, checking owned resources before borrowed ones.
func (t *Transaction) CheckWritePerm(target digest.Digest) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, g := range t.owned {
		if g.resource == target {
			return g.cap.Perms.Has(types.PermWrite)
		}
	}
	for _, g := range t.borrowed {
		if g.resource == target {
			return g.cap.Perms.Has(types.PermWrite)
		}
	}
	return false
}

// ReleaseAll releases every handle this transaction acquired through a
// Registry, in acquisition order. Safe to call more than once.
func (t *Transaction) ReleaseAll(reg *Registry) {
	t.mu.Lock()
	handles := t.handles
	t.handles = nil
	t.mu.Unlock()

	for _, h := range handles {
		reg.Release(h)
	}
}
