/*
Package metrics provides Prometheus metrics collection and exposition for fcdb.

The metrics package defines and registers all fcdb metrics using the
Prometheus client library, giving observability into pack-file storage
growth, Bloom filter accuracy, graph size, planner behavior, and
transaction outcomes. Metrics are exposed via an HTTP endpoint for
scraping by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Categories               │          │
	│  │                                              │          │
	│  │  CAS: packs, bytes, put/get duration        │          │
	│  │  Bloom: false positives, redistributions    │          │
	│  │  Graph: nodes, edges, traverse/search time  │          │
	│  │  Manifest: hits, misses, evictions, size    │          │
	│  │  Planner: plan selections, exploration      │          │
	│  │  Executor: txn outcomes, duration, leases   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint               │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Metric Registry:
  - Global Prometheus DefaultRegistry
  - All metrics registered at package init
  - Thread-safe for concurrent updates

Gauge Metrics:
  - Instant value that can go up or down
  - Examples: pack count, node count, manifest size
  - Operations: Set, Inc, Dec, Add, Sub

Counter Metrics:
  - Monotonically increasing value
  - Examples: Bloom false positives, manifest evictions
  - Operations: Inc, Add (cannot decrease)

Histogram Metrics:
  - Distribution of observed values
  - Default Prometheus buckets
  - Examples: CAS put/get duration, traverse duration, txn duration

Timer Helper:
  - Convenience wrapper for timing operations
  - Start timer, observe duration to histogram
  - Supports label values for histogram vectors

Collector:
  - Polls pack/node/edge/manifest counts on a ticker and writes them
    onto the gauges above; see collector.go. Updated by cmd/fcdbd's
    "serve" subcommand, not by the CAS/graph/planner packages directly.

# Metrics Catalog

CAS Metrics:

fcdb_packs_total{band}:
  - Type: Gauge
  - Description: Total number of pack files by band
  - Labels: band (small/index/blob)

fcdb_pack_bytes_total{band}:
  - Type: Gauge
  - Description: Total bytes stored in pack files by band

fcdb_cas_put_duration_seconds:
  - Type: Histogram
  - Description: Time taken to write content to the CAS

fcdb_cas_get_duration_seconds:
  - Type: Histogram
  - Description: Time taken to read content from the CAS

Bloom Metrics:

fcdb_bloom_false_positives_total{level}:
  - Type: Counter
  - Description: Total Bloom filter false positives by hierarchy level
  - Labels: level (global/pack/shard)

fcdb_bloom_redistributions_total:
  - Type: Counter
  - Description: Total number of Bloom filter memory redistributions

Graph Metrics:

fcdb_nodes_total:
  - Type: Gauge
  - Description: Total number of live nodes in the graph

fcdb_edges_total{label}:
  - Type: Gauge
  - Description: Total number of live edges in the graph by label

fcdb_traverse_duration_seconds:
  - Type: Histogram
  - Description: Time taken to run a graph traversal

fcdb_search_duration_seconds:
  - Type: Histogram
  - Description: Time taken to run a text search

Manifest Metrics:

fcdb_manifest_hits_total:
  - Type: Counter
  - Description: Total number of QueryKey manifest resolutions that hit

fcdb_manifest_misses_total:
  - Type: Counter
  - Description: Total number of QueryKey manifest resolutions that missed

fcdb_manifest_evictions_total:
  - Type: Counter
  - Description: Total number of manifest entries evicted for capacity

fcdb_manifest_size:
  - Type: Gauge
  - Description: Current number of live entries in the manifest

Planner Metrics:

fcdb_plan_selected_total{plan}:
  - Type: Counter
  - Description: Total number of times each plan was selected

fcdb_plan_explored_total:
  - Type: Counter
  - Description: Total number of epsilon-greedy exploratory plan selections

fcdb_snapshot_cache_hits_total:
  - Type: Counter
  - Description: Total number of snapshot memoization cache hits

Executor Metrics:

fcdb_txn_outcomes_total{outcome}:
  - Type: Counter
  - Description: Total number of safe-executor transactions by outcome
  - Labels: outcome (committed/aborted/denied)

fcdb_txn_duration_seconds:
  - Type: Histogram
  - Description: Time taken by a safe-executor bracketed operation

fcdb_lease_expirations_total:
  - Type: Counter
  - Description: Total number of capability leases that expired before renewal

# Usage

Updating Gauge Metrics:

	import "github.com/fcdb-io/fcdb/pkg/metrics"

	// Set absolute value
	metrics.NodesTotal.Set(1200)

	// Increment/decrement a labeled gauge
	metrics.PacksTotal.WithLabelValues("small").Inc()
	metrics.PacksTotal.WithLabelValues("small").Dec()

Updating Counter Metrics:

	// Increment by 1
	metrics.ManifestEvictionsTotal.Inc()

	// Add arbitrary value
	metrics.BloomFalsePositivesTotal.WithLabelValues("shard").Add(3)

Recording Histogram Observations:

	// Direct observation
	metrics.CASGetDuration.Observe(0.002) // 2ms

	// Using Timer helper
	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDuration(metrics.CASPutDuration)

Using Timer with Labels:

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDurationVec(someLabeledHistogram, "hot")

Complete Example:

	package main

	import (
		"net/http"

		"github.com/fcdb-io/fcdb/pkg/metrics"
	)

	func main() {
		metrics.NodesTotal.Set(1200)

		timer := metrics.NewTimer()
		runTraversal()
		timer.ObserveDuration(metrics.TraverseDuration)

		http.Handle("/metrics", metrics.Handler())
		http.ListenAndServe(":9090", nil)
	}

	func runTraversal() {}

# Integration Points

This package integrates with:

  - pkg/cas: counts Bloom redistributions; pack counts and bytes reach
    the gauges through Collector, and Bloom false positives and put/get
    timing are not recorded
  - pkg/graph: imports nothing from this package; node/edge counts
    reach the gauges through Collector, and traverse/search timing is
    not recorded
  - pkg/fingerprint: reports manifest hit/miss/eviction counts
  - pkg/planner: reports plan selections and exploration
  - pkg/executor: reports transaction outcomes and duration
  - cmd/fcdbd: wires Collector to the above on a ticker under "serve"
  - Prometheus: scrapes /metrics endpoint

# Design Patterns

Package Init Registration:
  - All metrics registered in init() function
  - MustRegister panics on duplicate registration
  - Ensures metrics available before main()

Label Discipline:
  - Use WithLabelValues for cardinality-bounded labels (band, level, outcome)
  - Avoid high-cardinality labels (Rid, timestamps)
  - Keep label count low

Timer Pattern:
  - Create timer at operation start
  - Defer or explicitly call ObserveDuration
  - Supports both simple and vector histograms

Global Metrics:
  - Package-level variables for all metrics
  - Accessible from any fcdb package
  - Thread-safe concurrent updates

# Monitoring

Prometheus Queries (PromQL):

Storage Growth:
  - Pack count by band: fcdb_packs_total
  - Pack bytes by band: fcdb_pack_bytes_total
  - CAS p95 get latency: histogram_quantile(0.95, fcdb_cas_get_duration_seconds_bucket)

Bloom Accuracy:
  - False positive rate: rate(fcdb_bloom_false_positives_total[5m])
  - Redistribution frequency: rate(fcdb_bloom_redistributions_total[1h])

Graph Size:
  - Node growth: deriv(fcdb_nodes_total[10m])
  - Edge count by label: fcdb_edges_total

Transaction Health:
  - Denial rate: rate(fcdb_txn_outcomes_total{outcome="denied"}[5m])
  - p99 txn latency: histogram_quantile(0.99, fcdb_txn_duration_seconds_bucket)
  - Lease expiration rate: rate(fcdb_lease_expirations_total[5m])

# See Also

  - Prometheus documentation: https://prometheus.io/docs/
  - Prometheus client library: https://github.com/prometheus/client_golang
  - Histogram best practices: https://prometheus.io/docs/practices/histograms/
*/
package metrics
