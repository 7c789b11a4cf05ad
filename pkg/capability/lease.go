package capability

import (
	"fmt"
	"sync"

	"github.com/fcdb-io/fcdb/pkg/events"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/google/uuid"
)

// Lease is a time-bounded grant: ⟨LeaseID, Resource, Holder,
// Permissions, ExpiresAt, AutoRenew⟩.
type Lease struct {
	ID        string
	Resource  uint64
	Holder    string
	Perms     types.Permission
	ExpiresAt types.Timestamp
	AutoRenew bool
}

// LeaseManager grants, checks, revokes and renews Leases. Grounded on
// the same map-of-ID-to-struct-behind-a-mutex shape as a join-token
// manager, generalized from role strings to permission bitmasks.
type LeaseManager struct {
	mu     sync.RWMutex
	leases map[string]*Lease

	broker *events.Broker
}

// NewLeaseManager returns an empty lease manager.
func NewLeaseManager() *LeaseManager {
	return &LeaseManager{leases: make(map[string]*Lease)}
}

// SetBroker attaches the event broker lease expirations are announced
// on. A nil broker (the default) makes publish a no-op.
func (lm *LeaseManager) SetBroker(b *events.Broker) {
	lm.broker = b
}

func (lm *LeaseManager) publish(typ events.EventType, message string, meta map[string]string) {
	if lm.broker == nil {
		return
	}
	lm.broker.Publish(&events.Event{Type: typ, Message: message, Metadata: meta})
}

// Grant issues a new lease and returns it; the lease's ID field is its
// identifier.
func (lm *LeaseManager) Grant(resource uint64, holder string, perms types.Permission, expiresAt types.Timestamp, autoRenew bool) *Lease {
	l := &Lease{
		ID:        uuid.NewString(),
		Resource:  resource,
		Holder:    holder,
		Perms:     perms,
		ExpiresAt: expiresAt,
		AutoRenew: autoRenew,
	}

	lm.mu.Lock()
	lm.leases[l.ID] = l
	lm.mu.Unlock()

	return l
}

// Check returns the lease for leaseID if it exists and has not
// expired as of now. An expired lease is left in place — check does
// not revoke it — so a subsequent Revoke still succeeds.
func (lm *LeaseManager) Check(leaseID string, now types.Timestamp) (*Lease, error) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	l, ok := lm.leases[leaseID]
	if !ok {
		return nil, fcdberr.New(fcdberr.KindNotFound, "capability.LeaseManager.Check", nil)
	}
	if now > l.ExpiresAt {
		return nil, fcdberr.New(fcdberr.KindAuthority, "capability.LeaseManager.Check", errLeaseExpired)
	}
	clone := *l
	return &clone, nil
}

// Revoke removes a lease unconditionally, expired or not.
func (lm *LeaseManager) Revoke(leaseID string) {
	lm.mu.Lock()
	delete(lm.leases, leaseID)
	lm.mu.Unlock()
}

// Renew extends a lease's expiry, succeeding only when the lease has
// AutoRenew set.
func (lm *LeaseManager) Renew(leaseID string, newExpiry types.Timestamp) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.leases[leaseID]
	if !ok {
		return fcdberr.New(fcdberr.KindNotFound, "capability.LeaseManager.Renew", nil)
	}
	if !l.AutoRenew {
		return fcdberr.New(fcdberr.KindAuthority, "capability.LeaseManager.Renew", errNoAutoRenew)
	}
	l.ExpiresAt = newExpiry
	return nil
}

// CleanupExpired removes every lease whose expiry has passed as of
// now, run periodically to bound lease table growth.
func (lm *LeaseManager) CleanupExpired(now types.Timestamp) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	for id, l := range lm.leases {
		if now > l.ExpiresAt {
			delete(lm.leases, id)
			lm.publish(events.EventLeaseExpired, fmt.Sprintf("lease %s expired", id), map[string]string{"lease_id": id, "holder": l.Holder})
		}
	}
}

var (
	errLeaseExpired = leaseError("lease expired")
	errNoAutoRenew  = leaseError("lease does not permit auto-renew")
)

type leaseError string

func (e leaseError) Error() string { return string(e) }
