// Package fingerprint computes the composite query identity used to
// memoize results: an order-sensitive path signature, an
// order-insensitive class signature, and the five-component QueryKey
// built from them. It also maintains the Manifest — the live
// Q -> ManifestEntry cache backed by an append-only diff log — and
// the trace normal form used to collapse equivalent write sequences
// onto the same cache key.
package fingerprint
