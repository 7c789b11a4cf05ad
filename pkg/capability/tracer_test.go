package capability

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestTracerFiltersByActorAndResource(t *testing.T) {
	tr := NewTracer()
	res := digest.Sum([]byte("res"))

	tr.Record(TraceEntry{Operation: "read", Actor: "alice", Resource: res, Success: true})
	tr.Record(TraceEntry{Operation: "write", Actor: "bob", Resource: res, Success: false})

	aliceOps := tr.ForActor("alice")
	assert.Len(t, aliceOps, 1)
	assert.Equal(t, "read", aliceOps[0].Operation)

	resourceOps := tr.ForResource(res)
	assert.Len(t, resourceOps, 2)
}

func TestTracerEvictsOldestOnOverflow(t *testing.T) {
	tr := NewTracer()
	for i := 0; i < TraceCapacity+10; i++ {
		tr.Record(TraceEntry{Operation: "op", Actor: "actor", Cap: types.Capability{Base: uint64(i)}})
	}

	all := tr.ForActor("actor")
	assert.Len(t, all, TraceCapacity)
	// The oldest 10 entries (Base 0..9) must have been evicted.
	assert.EqualValues(t, 10, all[0].Cap.Base)
}
