// Package capability implements the capability-and-ownership discipline
// that brackets every mutating or reading transaction: meet-only
// capability composition, lexically-scoped ownership (owned /
// shared-borrowed / mut-borrowed), a capability functor for composing
// derived capabilities, a time-bounded lease manager, and a bounded
// audit tracer.
//
// The core never interprets a Capability's Proof beyond comparing it
// where callers ask — derivation and verification live in proof.go and
// are the concern of whoever issues capabilities, not of the graph
// store or executor that merely checks permission bits.
package capability
