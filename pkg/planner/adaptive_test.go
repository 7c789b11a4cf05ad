package planner

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPlanWithNoHistoryPicksFirstCandidate(t *testing.T) {
	p := New()
	p.Epsilon = 0
	candidates := []types.Plan{types.PlanTypeFirst, types.PlanPathFirst}

	got := p.SelectPlan(types.QueryKey{}, candidates)
	assert.Equal(t, types.PlanTypeFirst, got)
}

func TestSelectPlanPrefersLowerMeanLatency(t *testing.T) {
	p := New()
	p.Epsilon = 0
	key := types.QueryKey{TypePart: 1}

	p.Record(key, types.PlanPathFirst, 50, 10, true)
	p.Record(key, types.PlanPathFirst, 50, 10, true)
	p.Record(key, types.PlanMeetInMiddle, 5, 10, true)

	got := p.SelectPlan(key, []types.Plan{types.PlanPathFirst, types.PlanMeetInMiddle})
	assert.Equal(t, types.PlanMeetInMiddle, got)
}

func TestSelectPlanIgnoresFailedObservations(t *testing.T) {
	p := New()
	p.Epsilon = 0
	key := types.QueryKey{TypePart: 2}

	// PathFirst has one fast but failed run; MeetInMiddle has one
	// slower but successful run. The failure must not make PathFirst
	// look cheap.
	p.Record(key, types.PlanPathFirst, 1, 10, false)
	p.Record(key, types.PlanMeetInMiddle, 20, 10, true)

	got := p.SelectPlan(key, []types.Plan{types.PlanPathFirst, types.PlanMeetInMiddle})
	assert.Equal(t, types.PlanMeetInMiddle, got)
}

func TestSelectPlanEpsilonOneAlwaysExplores(t *testing.T) {
	p := New()
	p.Epsilon = 1.0
	key := types.QueryKey{TypePart: 3}

	p.Record(key, types.PlanPathFirst, 1, 10, true)

	candidates := []types.Plan{types.PlanPathFirst, types.PlanTypeFirst, types.PlanMeetInMiddle, types.PlanIndexLookup}
	seen := make(map[types.Plan]bool)
	for i := 0; i < 200; i++ {
		seen[p.SelectPlan(key, candidates)] = true
	}
	assert.True(t, len(seen) > 1, "epsilon=1 should explore beyond the single best-known plan")
}

func TestRecordEvictsOldestBeyondWindowCapacity(t *testing.T) {
	p := New()
	key := types.QueryKey{TypePart: 4}

	for i := 0; i < WindowCapacity+20; i++ {
		p.Record(key, types.PlanPathFirst, float64(i), 1, true)
	}

	p.mu.Lock()
	window := p.windows[key]
	p.mu.Unlock()

	require.Len(t, window, WindowCapacity)
	assert.Equal(t, float64(20), window[0].latencyMS, "oldest 20 observations should have been evicted")
}
