package fcdberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedKind(t *testing.T) {
	base := New(KindNotFound, "graph.GetNode", errors.New("no such rid"))
	wrapped := fmtWrap(base)

	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindAuthority))
}

func TestKindOfUnknownOnPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 1, KindMalformed.ExitCode())
	assert.Equal(t, 2, KindIntegrity.ExitCode())
	assert.Equal(t, 3, KindAuthority.ExitCode())
	assert.Equal(t, 3, KindUnknown.ExitCode())
}

func fmtWrap(err error) error {
	return errors.Join(err)
}
