package planner

import (
	"math"
	"math/rand"
	"sync"

	"github.com/fcdb-io/fcdb/pkg/metrics"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// DefaultEpsilon is the exploration probability used when none is
// configured.
const DefaultEpsilon = 0.10

// WindowCapacity bounds the rolling observation window each QueryKey
// maintains, shared across every plan recorded under that key.
const WindowCapacity = 100

type observation struct {
	plan      types.Plan
	latencyMS float64
	success   bool
	seq       uint64
}

// AdaptivePlanner implements types.Planner with ε-greedy selection:
// with probability Epsilon it explores a uniformly random candidate,
// otherwise it exploits the candidate with the lowest mean latency
// among successful observations in the key's rolling window.
type AdaptivePlanner struct {
	Epsilon float64

	// WindowCapacity bounds the rolling observation window each
	// QueryKey maintains. Zero means the package default
	// (WindowCapacity const) applies.
	WindowCapacity int

	mu      sync.Mutex
	windows map[types.QueryKey][]observation
	seq     uint64
	rng     *rand.Rand
}

// New constructs an AdaptivePlanner with the default exploration rate
// and window capacity. Use &AdaptivePlanner{Epsilon: ..., WindowCapacity: ...}
// directly to override either.
func New() *AdaptivePlanner {
	return &AdaptivePlanner{
		Epsilon:        DefaultEpsilon,
		WindowCapacity: WindowCapacity,
		windows:        make(map[types.QueryKey][]observation),
		rng:            rand.New(rand.NewSource(1)),
	}
}

// SelectPlan picks one of candidates for key. Ties among equally good
// candidates break toward the one most recently observed; with no
// history at all for key, it returns candidates[0].
func (p *AdaptivePlanner) SelectPlan(key types.QueryKey, candidates []types.Plan) types.Plan {
	if len(candidates) == 0 {
		return types.PlanPathFirst
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.epsilon() > 0 && p.rng.Float64() < p.epsilon() {
		choice := candidates[p.rng.Intn(len(candidates))]
		metrics.PlanExploredTotal.Inc()
		metrics.PlanSelectedTotal.WithLabelValues(choice.String()).Inc()
		return choice
	}

	window := p.windows[key]

	best := candidates[0]
	bestMean := math.Inf(1)
	bestSeq := uint64(0)
	found := false

	for _, c := range candidates {
		mean, lastSeq, ok := meanSuccessLatency(window, c)
		if !ok {
			continue
		}
		if !found || mean < bestMean || (mean == bestMean && lastSeq > bestSeq) {
			best, bestMean, bestSeq, found = c, mean, lastSeq, true
		}
	}

	if !found {
		best = candidates[0]
	}
	metrics.PlanSelectedTotal.WithLabelValues(best.String()).Inc()
	return best
}

// Record appends one observation to key's rolling window, evicting
// the oldest entry once the window exceeds WindowCapacity. A failed
// execution is recorded as-is; SelectPlan treats it as having no
// finite latency, matching the "failure counts as infinite latency"
// rule without storing a sentinel value.
func (p *AdaptivePlanner) Record(key types.QueryKey, plan types.Plan, latencyMS float64, resultCount int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	window := append(p.windows[key], observation{plan: plan, latencyMS: latencyMS, success: ok, seq: p.seq})
	if cap := p.windowCapacity(); len(window) > cap {
		window = window[len(window)-cap:]
	}
	p.windows[key] = window
}

// epsilon returns the configured exploration rate as-is: a zero value
// means pure exploitation, not "unset". New sets Epsilon to
// DefaultEpsilon; a caller building &AdaptivePlanner{} directly gets
// ε=0 with no remapping.
func (p *AdaptivePlanner) epsilon() float64 {
	return p.Epsilon
}

func (p *AdaptivePlanner) windowCapacity() int {
	if p.WindowCapacity <= 0 {
		return WindowCapacity
	}
	return p.WindowCapacity
}

// meanSuccessLatency returns the mean latency and the sequence number
// of the most recent observation among window entries for plan that
// succeeded. ok is false if plan has no successful observations.
func meanSuccessLatency(window []observation, plan types.Plan) (mean float64, lastSeq uint64, ok bool) {
	var sum float64
	var count int
	for _, o := range window {
		if o.plan != plan || !o.success {
			continue
		}
		sum += o.latencyMS
		count++
		if o.seq > lastSeq {
			lastSeq = o.seq
		}
	}
	if count == 0 {
		return 0, 0, false
	}
	return sum / float64(count), lastSeq, true
}
