package capability

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestMapPreservesCapability(t *testing.T) {
	cap := types.Capability{Base: 0, Length: 100, Perms: types.PermRead | types.PermWrite}
	d := digest.Sum([]byte("x"))
	c := NewCell(42, cap, d)

	mapped := Map(c, func(v int) int { return v * 2 })
	assert.Equal(t, 84, mapped.Value)
	assert.Equal(t, cap, mapped.Cap)
	assert.Equal(t, d, mapped.Digest)
}

func TestFlatMapComposesByMeet(t *testing.T) {
	outer := types.Capability{Base: 0, Length: 100, Perms: types.PermRead | types.PermWrite}
	inner := types.Capability{Base: 50, Length: 100, Perms: types.PermRead}
	d1 := digest.Sum([]byte("outer"))
	d2 := digest.Sum([]byte("inner"))

	c := NewCell("payload", outer, d1)
	result := FlatMap(c, func(v string) Cell[int] {
		return NewCell(len(v), inner, d2)
	})

	assert.Equal(t, 7, result.Value)
	assert.Equal(t, d2, result.Digest)
	assert.Equal(t, Meet(outer, inner), result.Cap)
	assert.Equal(t, types.PermRead, result.Cap.Perms, "flat_map must never widen permissions")
}
