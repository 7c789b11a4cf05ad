package capability

import (
	"testing"

	"github.com/fcdb-io/fcdb/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestMeetIntersectsRangeAndAndsPerms(t *testing.T) {
	a := types.Capability{Base: 0, Length: 100, Perms: types.PermRead | types.PermWrite}
	b := types.Capability{Base: 50, Length: 100, Perms: types.PermRead | types.PermExecute}

	m := Meet(a, b)
	assert.EqualValues(t, 50, m.Base)
	assert.EqualValues(t, 100, m.End())
	assert.EqualValues(t, 50, m.Length)
	assert.Equal(t, types.PermRead, m.Perms)
}

func TestMeetDisjointRangesYieldEmpty(t *testing.T) {
	a := types.Capability{Base: 0, Length: 10, Perms: types.PermRead}
	b := types.Capability{Base: 100, Length: 10, Perms: types.PermRead}

	m := Meet(a, b)
	assert.EqualValues(t, 0, m.Length)
}

func TestCovers(t *testing.T) {
	c := types.Capability{Base: 10, Length: 90}
	assert.True(t, Covers(c, 20, 50))
	assert.False(t, Covers(c, 5, 10))
	assert.False(t, Covers(c, 50, 60))
}
