package capability

import (
	"fmt"
	"sync"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// Mode distinguishes the three ways a handle to a (Capability, Digest)
// pair may be held at any one time.
type Mode int

const (
	// Owned grants a single exclusive writer; no other handle to the
	// same resource may exist concurrently.
	Owned Mode = iota
	// SharedBorrow grants any number of concurrent readers and
	// forbids a writer.
	SharedBorrow
	// MutBorrow grants exactly one writer and forbids readers.
	MutBorrow
)

func (m Mode) String() string {
	switch m {
	case Owned:
		return "owned"
	case SharedBorrow:
		return "shared_borrow"
	case MutBorrow:
		return "mut_borrow"
	default:
		return "unknown"
	}
}

// Handle is a scoped grant of access to a resource named by Digest
// under Cap, held in Mode. Handles are created by a Registry and
// released through Registry.Release, which keeps a holder count per
// resource rather than tracking individual handles: releasing a handle
// whose resource is no longer held is a no-op, and releasing the same
// handle twice while other shared holders remain is not detected.
type Handle struct {
	Resource digest.Digest
	Cap      types.Capability
	Mode     Mode
}

// Registry tracks which mode each resource is currently held in so
// that acquisition can forbid outliving a borrow beyond its owner:
// a resource already SharedBorrow-ed rejects MutBorrow and Owned
// requests, and vice versa. Acquisition is lexically scoped by the
// caller — acquire at block entry, release at every exit.
type Registry struct {
	mu   sync.Mutex
	held map[digest.Digest]*state
}

type state struct {
	mode   Mode
	owners int // count of SharedBorrow holders, or 1 for Owned/MutBorrow
}

// NewRegistry returns an empty ownership registry.
func NewRegistry() *Registry {
	return &Registry{held: make(map[digest.Digest]*state)}
}

// Acquire grants a Handle in the requested mode, or returns an
// Authority error if doing so would violate the ownership discipline.
func (r *Registry) Acquire(resource digest.Digest, cap types.Capability, mode Mode) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, exists := r.held[resource]
	if !exists {
		r.held[resource] = &state{mode: mode, owners: 1}
		return &Handle{Resource: resource, Cap: cap, Mode: mode}, nil
	}

	switch mode {
	case SharedBorrow:
		if st.mode != SharedBorrow {
			return nil, fcdberr.New(fcdberr.KindAuthority, "capability.Acquire",
				errAlreadyHeld(resource, st.mode, mode))
		}
		st.owners++
	case Owned, MutBorrow:
		return nil, fcdberr.New(fcdberr.KindAuthority, "capability.Acquire",
			errAlreadyHeld(resource, st.mode, mode))
	}

	return &Handle{Resource: resource, Cap: cap, Mode: mode}, nil
}

// Release returns a Handle to the registry, clearing the resource's
// state once its last holder releases.
func (r *Registry) Release(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, exists := r.held[h.Resource]
	if !exists {
		return
	}
	st.owners--
	if st.owners <= 0 {
		delete(r.held, h.Resource)
	}
}

func errAlreadyHeld(resource digest.Digest, held, want Mode) error {
	return fmt.Errorf("resource %s held as %s, cannot acquire as %s", resource, held, want)
}
