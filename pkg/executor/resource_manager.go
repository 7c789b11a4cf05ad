package executor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fcdb-io/fcdb/pkg/capability"
	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// ResourceManager tracks the capability each resource digest was
// registered under and hands out ownership-checked handles against
// it, generalizing the original registry-plus-transaction-counter
// shape into a reusable component separate from SafeExecutor itself.
type ResourceManager struct {
	registry *capability.Registry
	timeout  time.Duration

	nextTxnID atomic.Uint64

	mu        sync.RWMutex
	resources map[digest.Digest]types.Capability
}

// NewResourceManager returns an empty resource manager whose
// transactions use capability.DefaultTimeout.
func NewResourceManager() *ResourceManager {
	return NewResourceManagerWithTimeout(capability.DefaultTimeout)
}

// NewResourceManagerWithTimeout returns an empty resource manager whose
// transactions expire after timeout (wired from pkg/config's
// TxnTimeout).
func NewResourceManagerWithTimeout(timeout time.Duration) *ResourceManager {
	return &ResourceManager{
		registry:  capability.NewRegistry(),
		timeout:   timeout,
		resources: make(map[digest.Digest]types.Capability),
	}
}

// RegisterResource associates resource with the capability that
// governs access to it. Re-registering overwrites the prior capability.
func (rm *ResourceManager) RegisterResource(resource digest.Digest, cap types.Capability) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.resources[resource] = cap
}

func (rm *ResourceManager) capabilityFor(resource digest.Digest) (types.Capability, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	cap, ok := rm.resources[resource]
	return cap, ok
}

// BeginTransaction allocates a monotonically increasing transaction ID
// and starts its timeout clock.
func (rm *ResourceManager) BeginTransaction(actor string) *capability.Transaction {
	id := rm.nextTxnID.Add(1)
	txn := capability.NewTransaction(id, actor)
	txn.Timeout = rm.timeout
	return txn
}

// AcquireShared grants txn a shared-borrow handle over resource,
// failing with KindNotFound if resource was never registered or
// KindAuthority if another transaction already holds it exclusively.
func (rm *ResourceManager) AcquireShared(resource digest.Digest, txn *capability.Transaction) (*capability.Handle, error) {
	cap, ok := rm.capabilityFor(resource)
	if !ok {
		return nil, fcdberr.New(fcdberr.KindNotFound, "executor.AcquireShared", nil)
	}

	h, err := rm.registry.Acquire(resource, cap, capability.SharedBorrow)
	if err != nil {
		return nil, fcdberr.New(fcdberr.KindAuthority, "executor.AcquireShared", err)
	}
	txn.AddBorrowed(resource, cap, h)
	return h, nil
}

// AcquireExclusive grants txn a mut-borrow handle over resource,
// requiring the resource's capability to carry WRITE.
func (rm *ResourceManager) AcquireExclusive(resource digest.Digest, txn *capability.Transaction) (*capability.Handle, error) {
	cap, ok := rm.capabilityFor(resource)
	if !ok {
		return nil, fcdberr.New(fcdberr.KindNotFound, "executor.AcquireExclusive", nil)
	}
	if !capability.HasPerm(cap, types.PermWrite) {
		return nil, fcdberr.New(fcdberr.KindAuthority, "executor.AcquireExclusive", errNoWritePerm)
	}

	h, err := rm.registry.Acquire(resource, cap, capability.MutBorrow)
	if err != nil {
		return nil, fcdberr.New(fcdberr.KindAuthority, "executor.AcquireExclusive", err)
	}
	txn.AddBorrowed(resource, cap, h)
	return h, nil
}

// Commit validates txn has not expired and releases every handle it
// holds. A transaction that has timed out is rejected rather than
// committed, mirroring the original's expiry check ahead of ownership
// validation.
func (rm *ResourceManager) Commit(txn *capability.Transaction) error {
	if txn.IsExpired() {
		return fcdberr.New(fcdberr.KindTransaction, "executor.Commit", errTransactionExpired)
	}
	txn.ReleaseAll(rm.registry)
	return nil
}

// Abort releases every handle txn holds unconditionally. It never
// fails: resources are always returned even from an expired or
// partially-completed transaction.
func (rm *ResourceManager) Abort(txn *capability.Transaction) {
	txn.ReleaseAll(rm.registry)
}

var (
	errNoWritePerm        = executorError("capability does not grant WRITE")
	errTransactionExpired = executorError("transaction expired before commit")
)

type executorError string

func (e executorError) Error() string { return string(e) }
