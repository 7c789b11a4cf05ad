package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/fcdb-io/fcdb/pkg/cas"
	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/events"
	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/types"
)

const (
	kindNodeData uint8 = iota
	kindEdgeProps
)

// Store implements types.GraphStore over a PackCAS. A single
// sync.RWMutex is the graph's exclusive/shared lock: writes hold it
// exclusively, reads hold it shared, and concurrent readers observe
// the state as of their lock acquisition.
type Store struct {
	cas *cas.PackCAS

	mu               sync.RWMutex
	nodes            map[types.Rid]*types.Node
	adjacency        map[types.Rid][]types.AdjEntry
	reverseAdjacency map[types.Rid][]types.AdjEntry
	postings         map[string][]*types.Posting
	indexedTerms     map[types.Rid][]string

	nextRid atomic.Uint64

	broker *events.Broker
}

// New constructs an empty Store backed by store.
func New(store *cas.PackCAS) *Store {
	return &Store{
		cas:              store,
		nodes:            make(map[types.Rid]*types.Node),
		adjacency:        make(map[types.Rid][]types.AdjEntry),
		reverseAdjacency: make(map[types.Rid][]types.AdjEntry),
		postings:         make(map[string][]*types.Posting),
		indexedTerms:     make(map[types.Rid][]string),
	}
}

// SetBroker attaches the event broker nodes and edges are announced
// on. A nil broker (the default) makes publish a no-op.
func (s *Store) SetBroker(b *events.Broker) {
	s.broker = b
}

func (s *Store) publish(typ events.EventType, message string, meta map[string]string) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(&events.Event{Type: typ, Message: message, Metadata: meta})
}

// CreateNode stores data as a new node's initial version and returns
// its freshly allocated Rid.
func (s *Store) CreateNode(ctx context.Context, data []byte) (types.Rid, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.cas.Put(data, kindNodeData, types.BandSmall)
	if err != nil {
		return 0, fmt.Errorf("graph: create node: %w", err)
	}

	rid := types.Rid(s.nextRid.Add(1))
	ts := types.Now()
	s.nodes[rid] = &types.Node{
		Rid:      rid,
		Current:  d,
		Timeline: []types.TimelineEntry{{T: ts, Digest: d}},
	}

	s.reindexLocked(rid, data, ts)
	s.publish(events.EventNodeCreated, fmt.Sprintf("node %d created", rid), map[string]string{"rid": fmt.Sprint(rid)})
	return rid, nil
}

// UpdateNode appends a new version to rid's timeline.
func (s *Store) UpdateNode(ctx context.Context, rid types.Rid, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[rid]
	if !ok {
		return fcdberr.New(fcdberr.KindNotFound, "graph.UpdateNode", fmt.Errorf("rid %d does not exist", rid))
	}

	d, err := s.cas.Put(data, kindNodeData, types.BandSmall)
	if err != nil {
		return fmt.Errorf("graph: update node: %w", err)
	}

	ts := types.Now()
	node.Current = d
	node.Timeline = append(node.Timeline, types.TimelineEntry{T: ts, Digest: d})

	s.reindexLocked(rid, data, ts)
	s.publish(events.EventNodeUpdated, fmt.Sprintf("node %d updated", rid), map[string]string{"rid": fmt.Sprint(rid)})
	return nil
}

// GetNode returns rid's current data. The bool is false if rid is
// unknown.
func (s *Store) GetNode(ctx context.Context, rid types.Rid) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	node, ok := s.nodes[rid]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	data, err := s.cas.Get(node.Current)
	if err != nil {
		return nil, false, fmt.Errorf("graph: get node %d: %w", rid, err)
	}
	return data, true, nil
}

// GetNodeAt returns rid's data as of the most recent timeline entry
// with T <= asOf. The bool is false if rid is unknown or has no
// timeline entry at or before asOf.
func (s *Store) GetNodeAt(ctx context.Context, rid types.Rid, asOf types.Timestamp) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	node, ok := s.nodes[rid]
	var target digest.Digest
	found := false
	if ok {
		for i := len(node.Timeline) - 1; i >= 0; i-- {
			if node.Timeline[i].T <= asOf {
				target = node.Timeline[i].Digest
				found = true
				break
			}
		}
	}
	s.mu.RUnlock()

	if !found {
		return nil, false, nil
	}

	data, err := s.cas.Get(target)
	if err != nil {
		return nil, false, fmt.Errorf("graph: get node %d at %d: %w", rid, asOf, err)
	}
	return data, true, nil
}

// CreateEdge records an edge from -> to under label, storing props in
// the CAS and appending symmetric forward/reverse adjacency entries.
func (s *Store) CreateEdge(ctx context.Context, from, to types.Rid, label types.LabelID, props []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.cas.Put(props, kindEdgeProps, types.BandSmall)
	if err != nil {
		return fmt.Errorf("graph: create edge: %w", err)
	}

	ts := types.Now()
	s.adjacency[from] = append(s.adjacency[from], types.AdjEntry{
		Target: to, Label: label, Properties: d, Timestamp: ts,
	})
	s.reverseAdjacency[to] = append(s.reverseAdjacency[to], types.AdjEntry{
		Target: from, Label: label, Properties: d, Timestamp: ts,
	})
	s.publish(events.EventEdgeCreated, fmt.Sprintf("edge %d->%d created", from, to),
		map[string]string{"from": fmt.Sprint(from), "to": fmt.Sprint(to), "label": fmt.Sprint(label)})
	return nil
}

// DeleteEdge soft-deletes every live from->to edge under label by
// setting DeletedAt on both its forward and reverse adjacency entries.
func (s *Store) DeleteEdge(ctx context.Context, from, to types.Rid, label types.LabelID, at types.Timestamp) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := false
	for i := range s.adjacency[from] {
		e := &s.adjacency[from][i]
		if e.Target == to && e.Label == label && e.DeletedAt == nil {
			at := at
			e.DeletedAt = &at
			matched = true
		}
	}
	for i := range s.reverseAdjacency[to] {
		e := &s.reverseAdjacency[to][i]
		if e.Target == from && e.Label == label && e.DeletedAt == nil {
			at := at
			e.DeletedAt = &at
		}
	}

	if !matched {
		return fcdberr.New(fcdberr.KindNotFound, "graph.DeleteEdge",
			fmt.Errorf("no live edge %d->%d label %d", from, to, label))
	}
	s.publish(events.EventEdgeDeleted, fmt.Sprintf("edge %d->%d deleted", from, to),
		map[string]string{"from": fmt.Sprint(from), "to": fmt.Sprint(to), "label": fmt.Sprint(label)})
	return nil
}

// Traverse performs a breadth-first walk from start, visiting each Rid
// at most once, bounded by maxDepth, honoring an optional label filter
// and an optional as-of timestamp: edges created after asOf and edges
// deleted at or before asOf are skipped. Ties within one BFS layer are
// broken by the adjacency list's insertion order.
func (s *Store) Traverse(ctx context.Context, start types.Rid, labels []types.LabelID, maxDepth int, asOf *types.Timestamp) ([]types.TraversalStep, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	labelSet := make(map[types.LabelID]bool, len(labels))
	for _, l := range labels {
		labelSet[l] = true
	}

	visited := map[types.Rid]bool{start: true}
	queue := []types.TraversalStep{{Rid: start, Depth: 0}}
	var result []types.TraversalStep

	for len(queue) > 0 {
		step := queue[0]
		queue = queue[1:]
		result = append(result, step)

		if step.Depth >= maxDepth {
			continue
		}

		for _, edge := range s.adjacency[step.Rid] {
			if edge.DeletedAt != nil {
				if asOf == nil || *edge.DeletedAt <= *asOf {
					continue
				}
			}
			if asOf != nil && edge.Timestamp > *asOf {
				continue
			}
			if len(labelSet) > 0 && !labelSet[edge.Label] {
				continue
			}
			if visited[edge.Target] {
				continue
			}
			visited[edge.Target] = true
			queue = append(queue, types.TraversalStep{Rid: edge.Target, Depth: step.Depth + 1})
		}
	}

	return result, nil
}

// Search looks up term (case-folded) in the posting index and returns
// hits sorted descending by term-frequency score, ties broken by
// ascending Rid.
func (s *Store) Search(ctx context.Context, term string) ([]types.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := s.postings[strings.ToLower(term)]
	hits := make([]types.SearchHit, 0, len(posts))
	for _, p := range posts {
		hits = append(hits, types.SearchHit{Rid: p.Rid, Score: float32(len(p.Positions))})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Rid < hits[j].Rid
	})

	return hits, nil
}

// ListRids returns every known Rid in ascending order.
func (s *Store) ListRids(ctx context.Context) ([]types.Rid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rids := make([]types.Rid, 0, len(s.nodes))
	for rid := range s.nodes {
		rids = append(rids, rid)
	}
	sort.Slice(rids, func(i, j int) bool { return rids[i] < rids[j] })
	return rids, nil
}

// GetEdgesFrom returns rid's live (not soft-deleted) outgoing edges in
// insertion order.
func (s *Store) GetEdgesFrom(ctx context.Context, rid types.Rid) ([]types.AdjEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var live []types.AdjEntry
	for _, e := range s.adjacency[rid] {
		if e.DeletedAt == nil {
			live = append(live, e)
		}
	}
	return live, nil
}

// reindexLocked drops rid's previous posting entries (if any) and
// re-tokenizes data when it is valid UTF-8. Caller must hold s.mu for
// writing.
func (s *Store) reindexLocked(rid types.Rid, data []byte, ts types.Timestamp) {
	for _, term := range s.indexedTerms[rid] {
		posts := s.postings[term]
		for i, p := range posts {
			if p.Rid == rid {
				s.postings[term] = append(posts[:i], posts[i+1:]...)
				break
			}
		}
	}
	delete(s.indexedTerms, rid)

	if !utf8.Valid(data) {
		return
	}

	words := strings.Fields(string(data))
	byTerm := make(map[string]*types.Posting)
	var order []string
	for pos, word := range words {
		term := strings.ToLower(word)
		p, ok := byTerm[term]
		if !ok {
			p = &types.Posting{Term: term, Rid: rid, Timestamp: ts}
			byTerm[term] = p
			order = append(order, term)
		}
		p.Positions = append(p.Positions, uint32(pos))
	}

	terms := make([]string, 0, len(order))
	for _, term := range order {
		s.postings[term] = append(s.postings[term], byTerm[term])
		terms = append(terms, term)
	}
	s.indexedTerms[rid] = terms
}
