package capability

import "github.com/fcdb-io/fcdb/pkg/types"

// Meet computes the greatest lower bound of two capabilities: the
// intersection of their address ranges and the AND of their permission
// bits. Capabilities never compose by join — widening authority by
// combining two capabilities is not a supported operation anywhere in
// this package.
func Meet(a, b types.Capability) types.Capability {
	base := a.Base
	if b.Base > base {
		base = b.Base
	}
	end := a.End()
	if b.End() < end {
		end = b.End()
	}
	length := uint64(0)
	if end > base {
		length = end - base
	}
	return types.Capability{
		Base:   base,
		Length: length,
		Perms:  a.Perms & b.Perms,
		Proof:  a.Proof,
	}
}

// Covers reports whether c's range fully contains [base, base+length).
func Covers(c types.Capability, base, length uint64) bool {
	return base >= c.Base && base+length <= c.End()
}

// HasPerm reports whether c carries every bit set in want.
func HasPerm(c types.Capability, want types.Permission) bool {
	return c.Perms.Has(want)
}
