package fingerprint

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestNormalFormIgnoresSubmissionOrder(t *testing.T) {
	t1 := Trace{
		NodeCreates: []types.Rid{3, 1, 2},
		EdgeCreates: []EdgeCreate{{From: 2, To: 3}, {From: 1, To: 2}},
		PropertyUpdates: []PropertyUpdate{
			{Rid: 2, Key: "name"},
			{Rid: 1, Key: "age"},
		},
	}
	t2 := Trace{
		NodeCreates: []types.Rid{1, 2, 3},
		EdgeCreates: []EdgeCreate{{From: 1, To: 2}, {From: 2, To: 3}},
		PropertyUpdates: []PropertyUpdate{
			{Rid: 1, Key: "age"},
			{Rid: 2, Key: "name"},
		},
	}

	assert.Equal(t, NormalForm(t1), NormalForm(t2))
}

func TestNormalFormDistinguishesDifferentContent(t *testing.T) {
	a := Trace{NodeCreates: []types.Rid{1, 2}}
	b := Trace{NodeCreates: []types.Rid{1, 3}}
	assert.NotEqual(t, NormalForm(a), NormalForm(b))
}

func TestNormalFormDistinguishesEdgeFromEmptyTrace(t *testing.T) {
	withEdge := Trace{EdgeCreates: []EdgeCreate{{From: 1, To: 2}}}
	withoutEdge := Trace{}
	assert.NotEqual(t, NormalForm(withEdge), NormalForm(withoutEdge))
}
