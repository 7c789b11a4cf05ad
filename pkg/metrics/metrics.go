package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CAS metrics
	PacksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fcdb_packs_total",
			Help: "Total number of pack files by band",
		},
		[]string{"band"},
	)

	PackBytesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fcdb_pack_bytes_total",
			Help: "Total bytes stored in pack files by band",
		},
		[]string{"band"},
	)

	CASPutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fcdb_cas_put_duration_seconds",
			Help:    "Time taken to write content to the CAS",
			Buckets: prometheus.DefBuckets,
		},
	)

	CASGetDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fcdb_cas_get_duration_seconds",
			Help:    "Time taken to read content from the CAS",
			Buckets: prometheus.DefBuckets,
		},
	)

	BloomFalsePositivesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcdb_bloom_false_positives_total",
			Help: "Total Bloom filter false positives by level",
		},
		[]string{"level"},
	)

	BloomRedistributionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fcdb_bloom_redistributions_total",
			Help: "Total number of Bloom filter memory redistributions",
		},
	)

	// Graph metrics
	NodesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fcdb_nodes_total",
			Help: "Total number of live nodes in the graph",
		},
	)

	EdgesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fcdb_edges_total",
			Help: "Total number of live edges in the graph by label",
		},
		[]string{"label"},
	)

	TraverseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fcdb_traverse_duration_seconds",
			Help:    "Time taken to run a graph traversal",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fcdb_search_duration_seconds",
			Help:    "Time taken to run a text search",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Fingerprint / manifest metrics
	ManifestHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fcdb_manifest_hits_total",
			Help: "Total number of QueryKey manifest resolutions that hit",
		},
	)

	ManifestMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fcdb_manifest_misses_total",
			Help: "Total number of QueryKey manifest resolutions that missed",
		},
	)

	ManifestEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fcdb_manifest_evictions_total",
			Help: "Total number of manifest entries evicted for capacity",
		},
	)

	ManifestSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fcdb_manifest_size",
			Help: "Current number of live entries in the manifest",
		},
	)

	// Planner metrics
	PlanSelectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcdb_plan_selected_total",
			Help: "Total number of times each plan was selected",
		},
		[]string{"plan"},
	)

	PlanExploredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fcdb_plan_explored_total",
			Help: "Total number of epsilon-greedy exploratory plan selections",
		},
	)

	SnapshotCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fcdb_snapshot_cache_hits_total",
			Help: "Total number of snapshot memoization cache hits",
		},
	)

	// Executor / capability metrics
	TxnOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcdb_txn_outcomes_total",
			Help: "Total number of safe-executor transactions by outcome",
		},
		[]string{"outcome"}, // committed, aborted, denied
	)

	TxnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fcdb_txn_duration_seconds",
			Help:    "Time taken by a safe-executor bracketed operation",
			Buckets: prometheus.DefBuckets,
		},
	)

	LeaseExpirationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fcdb_lease_expirations_total",
			Help: "Total number of capability leases that expired before renewal",
		},
	)
)

func init() {
	prometheus.MustRegister(
		PacksTotal,
		PackBytesTotal,
		CASPutDuration,
		CASGetDuration,
		BloomFalsePositivesTotal,
		BloomRedistributionsTotal,
		NodesTotal,
		EdgesTotal,
		TraverseDuration,
		SearchDuration,
		ManifestHitsTotal,
		ManifestMissesTotal,
		ManifestEvictionsTotal,
		ManifestSize,
		PlanSelectedTotal,
		PlanExploredTotal,
		SnapshotCacheHitsTotal,
		TxnOutcomesTotal,
		TxnDuration,
		LeaseExpirationsTotal,
	)
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations and reporting their
// duration to a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
