// Package digest computes the 256-bit content digest that names every
// object in the pack CAS, plus the varint helpers used by the on-disk
// wire formats elsewhere in fcdb.
//
// Digest is opaque and self-describing: two byte slices hash to the same
// Digest iff they are equal (modulo hash collision), and Digests order
// lexicographically so they can be used as B-tree-like map keys without a
// secondary comparator.
package digest
