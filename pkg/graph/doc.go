// Package graph implements types.GraphStore over a pkg/cas.PackCAS:
// node create/update/get with an append-only per-Rid timeline, forward
// and reverse adjacency with soft-deleted edges honored at traversal
// time, whitespace-tokenized case-folded text postings, and a
// breadth-first Traverse bounded by depth, label filter, and as-of
// timestamp.
package graph
