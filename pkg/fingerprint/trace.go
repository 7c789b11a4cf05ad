package fingerprint

import (
	"encoding/binary"
	"sort"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
)

// PropertyUpdate names one (resource, key) property write within a
// trace; it carries no value because trace normal form only needs to
// distinguish operations, not replay them.
type PropertyUpdate struct {
	Rid types.Rid
	Key string
}

// EdgeCreate names one edge-create operation by its endpoints.
type EdgeCreate struct {
	From, To types.Rid
}

// Trace is an unordered batch of operations submitted together. Two
// traces with the same operations in different submission order
// normalize to the same digest.
type Trace struct {
	NodeCreates     []types.Rid
	EdgeCreates     []EdgeCreate
	PropertyUpdates []PropertyUpdate
}

// NormalForm canonicalizes t into three commutative groups in fixed
// order — node-creates sorted by Rid, edge-creates sorted by
// (From, To), property-updates sorted by (Rid, Key) — and returns the
// digest of their concatenation. Two traces with identical contents
// produce the same digest regardless of submission order.
func NormalForm(t Trace) digest.Digest {
	nodes := append([]types.Rid(nil), t.NodeCreates...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	edges := append([]EdgeCreate(nil), t.EdgeCreates...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	props := append([]PropertyUpdate(nil), t.PropertyUpdates...)
	sort.Slice(props, func(i, j int) bool {
		if props[i].Rid != props[j].Rid {
			return props[i].Rid < props[j].Rid
		}
		return props[i].Key < props[j].Key
	})

	var parts [][]byte
	for _, r := range nodes {
		parts = append(parts, ridBytes(r))
	}
	for _, e := range edges {
		parts = append(parts, append(ridBytes(e.From), ridBytes(e.To)...))
	}
	for _, p := range props {
		parts = append(parts, append(ridBytes(p.Rid), []byte(p.Key)...))
	}

	return digest.Concat(parts...)
}

func ridBytes(r types.Rid) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(r))
	return buf
}
