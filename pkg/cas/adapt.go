package cas

import (
	"strconv"
	"time"

	"github.com/fcdb-io/fcdb/pkg/events"
	"github.com/fcdb-io/fcdb/pkg/metrics"
)

// DefaultAdaptationInterval is how often a running adaptor redistributes
// the Bloom hierarchy's memory budget (spec default: 5 minutes).
const DefaultAdaptationInterval = 5 * time.Minute

// BloomAdaptor rebalances a PackCAS's Bloom hierarchy across its three
// levels on every tick of a fixed interval, whatever the false-positive
// counters read.
type BloomAdaptor struct {
	store    *PackCAS
	interval time.Duration
	stopCh   chan struct{}
}

// NewBloomAdaptor returns an adaptor for store. interval <= 0 uses
// DefaultAdaptationInterval.
func NewBloomAdaptor(store *PackCAS, interval time.Duration) *BloomAdaptor {
	if interval <= 0 {
		interval = DefaultAdaptationInterval
	}
	return &BloomAdaptor{store: store, interval: interval, stopCh: make(chan struct{})}
}

// Start runs the redistribution loop until Stop is called.
func (a *BloomAdaptor) Start() {
	ticker := time.NewTicker(a.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				a.store.redistributeBloom()
			case <-a.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the redistribution loop.
func (a *BloomAdaptor) Stop() {
	close(a.stopCh)
}

// redistributeBloom replays every known digest into a freshly sized
// Bloom hierarchy, then resets the false-positive counters. The
// counters play no part in whether it runs.
func (c *PackCAS) redistributeBloom() {
	c.indexMu.RLock()
	offsets := make([]int64, 0, len(c.index))
	for _, off := range c.index {
		offsets = append(offsets, off)
	}
	c.indexMu.RUnlock()

	entries := make([]bloomEntry, 0, len(offsets))
	for _, off := range offsets {
		buf := make([]byte, recordSize)
		if _, err := c.cidxFile.ReadAt(buf, off); err != nil {
			continue
		}
		rec := decodeRecord(buf)
		if !verifyCRC(rec) {
			continue
		}
		entries = append(entries, bloomEntry{
			digest:   rec.Digest,
			packID:   rec.PackID,
			typePart: uint16(rec.Kind) << 8,
		})
	}

	c.bloom.redistribute(entries)
	metrics.BloomRedistributionsTotal.Inc()
	c.publish(events.EventBloomRedistrib, "bloom hierarchy redistributed", map[string]string{"entries": strconv.Itoa(len(entries))})
}
