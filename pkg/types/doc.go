/*
Package types defines the core data structures shared across fcdb.

This package contains the domain model every other package builds on:
resource identity (Rid, LabelID, Timestamp), the temporal node/edge graph,
the pack-file CAS catalog, the query fingerprint and manifest cache, and
the capability tuple that gates access to all of it. These types are the
wire formats and in-memory shapes passed between pkg/cas, pkg/graph,
pkg/fingerprint, pkg/planner, pkg/capability and pkg/executor.

# Core Types

Resource identity:
  - Rid: resource ID, a dense u64 assigned at node creation
  - LabelID: edge-type identifier
  - Timestamp: microseconds since epoch, used for both the content
    timeline and query as-of semantics

Graph:
  - Node: a Rid's current digest plus its append-only timeline
  - Edge / AdjEntry: forward and reverse adjacency entries, each
    carrying an optional DeletedAt for soft deletion
  - Posting: a single (term, Rid, position) entry in the text index

Storage:
  - Pack / Band: pack-file metadata and size/role band classification
  - ContentIndexRecord: the 64-byte fixed-layout CIR persisted in cidx.dat

Query:
  - QueryKey: the five-component fingerprint identifying a query shape
  - ManifestEntry / ManifestDiff: cached result and the diff log that
    keeps the manifest's cache coherent with the graph

Security:
  - Capability: the (base, length, permission-mask, proof) tuple that
    gates every operation below it

# Consumer interfaces

GraphStore, SafeExecutor and Planner are the stable contracts an
external front-end (a query language, an HTTP handler) would be built
against; this repository both defines and implements them.
*/
package types
