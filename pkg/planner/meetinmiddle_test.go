package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPathTooShortIsUnsplittable(t *testing.T) {
	_, ok := SplitPath([]string{"user", "posts"}, nil)
	assert.False(t, ok)
}

func TestSplitPathJoinKeyIsLastOfLeftPrefix(t *testing.T) {
	split, ok := SplitPath([]string{"user", "posts", "comments", "replies"}, nil)
	require.True(t, ok)

	assert.Equal(t, split.LeftPath[len(split.LeftPath)-1], split.JoinKey)
	assert.Equal(t, []string{"user", "posts", "comments", "replies"}, append(split.LeftPath, split.RightPath...))
}

func TestSplitPathCostDecreasesWithMoreFilters(t *testing.T) {
	noFilters, _ := SplitPath([]string{"a", "b", "c"}, nil)
	withFilters, _ := SplitPath([]string{"a", "b", "c"}, []string{"TypeA"})
	assert.Less(t, withFilters.EstimatedCost, noFilters.EstimatedCost)
}
