package types

import (
	"context"

	"github.com/fcdb-io/fcdb/pkg/digest"
)

// GraphStore is the stable contract an external front-end (a query
// language, an HTTP handler) would build against. pkg/graph implements
// it directly over a PackCAS.
type GraphStore interface {
	CreateNode(ctx context.Context, data []byte) (Rid, error)
	UpdateNode(ctx context.Context, rid Rid, data []byte) error
	GetNode(ctx context.Context, rid Rid) ([]byte, bool, error)
	GetNodeAt(ctx context.Context, rid Rid, asOf Timestamp) ([]byte, bool, error)
	CreateEdge(ctx context.Context, from, to Rid, label LabelID, props []byte) error
	DeleteEdge(ctx context.Context, from, to Rid, label LabelID, at Timestamp) error
	Traverse(ctx context.Context, start Rid, labels []LabelID, maxDepth int, asOf *Timestamp) ([]TraversalStep, error)
	Search(ctx context.Context, term string) ([]SearchHit, error)
	ListRids(ctx context.Context) ([]Rid, error)
	GetEdgesFrom(ctx context.Context, rid Rid) ([]AdjEntry, error)
}

// TraversalStep is one (Rid, depth) pair in a Traverse result,
// ordered breadth-first with ties broken by adjacency insertion order.
type TraversalStep struct {
	Rid   Rid
	Depth int
}

// SearchHit is one (Rid, score) pair in a Search result, sorted
// descending by score with ties broken by ascending Rid.
type SearchHit struct {
	Rid   Rid
	Score float32
}

// Plan identifies one of the adaptive planner's enumerated query plans.
type Plan int

const (
	PlanPathFirst Plan = iota
	PlanTypeFirst
	PlanMeetInMiddle
	PlanIndexLookup
)

func (p Plan) String() string {
	switch p {
	case PlanPathFirst:
		return "path_first"
	case PlanTypeFirst:
		return "type_first"
	case PlanMeetInMiddle:
		return "meet_in_middle"
	case PlanIndexLookup:
		return "index_lookup"
	default:
		return "unknown"
	}
}

// Planner selects and scores query execution plans keyed by QueryKey.
type Planner interface {
	SelectPlan(key QueryKey, candidates []Plan) Plan
	Record(key QueryKey, plan Plan, latencyMS float64, resultCount int, ok bool)
}

// SafeExecutor brackets a capability-checked operation: acquire a
// shared lease over the resource named by d, run fn, audit the
// attempt, then commit or abort.
type SafeExecutor interface {
	ExecuteSafe(ctx context.Context, actor string, op string, d digest.Digest, fn func(ctx context.Context) (any, error)) (any, error)
}
