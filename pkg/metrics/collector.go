package metrics

import (
	"strconv"
	"time"

	"github.com/fcdb-io/fcdb/pkg/types"
)

// PackStats is the per-band pack accounting a Collector polls. It
// mirrors pkg/cas's BandStats shape without importing pkg/cas, so this
// package stays a leaf: pkg/cas (and pkg/fingerprint, pkg/planner,
// pkg/executor) import pkg/metrics to report inline counters, and pkg/metrics cannot import
// them back without a cycle.
type PackStats struct {
	PackCount uint64
	Bytes     uint64
}

// Collector polls a store's components on a ticker and republishes
// their state as gauges, the counterpart to the counters and
// histograms other packages update inline as events happen. Each
// source is a closure so the caller's concrete types (*cas.PackCAS,
// *graph.Store, *fingerprint.Manifest) never need to be named here.
type Collector struct {
	packStats   func() map[types.Band]PackStats
	nodeCount   func() (int, error)
	edgeCounts  func() (map[types.LabelID]int, error)
	manifestLen func() int

	stopCh chan struct{}
}

// NewCollector returns a Collector over the given sources. Any source
// may be nil if a deployment doesn't run that component.
func NewCollector(
	packStats func() map[types.Band]PackStats,
	nodeCount func() (int, error),
	edgeCounts func() (map[types.LabelID]int, error),
	manifestLen func() int,
) *Collector {
	return &Collector{
		packStats:   packStats,
		nodeCount:   nodeCount,
		edgeCounts:  edgeCounts,
		manifestLen: manifestLen,
		stopCh:      make(chan struct{}),
	}
}

// Start begins polling every 15 seconds until Stop is called.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector's polling loop.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectPackMetrics()
	c.collectGraphMetrics()
	c.collectManifestMetrics()
}

func (c *Collector) collectPackMetrics() {
	if c.packStats == nil {
		return
	}
	for band, stats := range c.packStats() {
		PacksTotal.WithLabelValues(band.String()).Set(float64(stats.PackCount))
		PackBytesTotal.WithLabelValues(band.String()).Set(float64(stats.Bytes))
	}
}

func (c *Collector) collectGraphMetrics() {
	if c.nodeCount != nil {
		if n, err := c.nodeCount(); err == nil {
			NodesTotal.Set(float64(n))
		}
	}
	if c.edgeCounts == nil {
		return
	}
	counts, err := c.edgeCounts()
	if err != nil {
		return
	}
	for label, count := range counts {
		EdgesTotal.WithLabelValues(strconv.FormatUint(uint64(label), 10)).Set(float64(count))
	}
}

func (c *Collector) collectManifestMetrics() {
	if c.manifestLen == nil {
		return
	}
	ManifestSize.Set(float64(c.manifestLen()))
}
