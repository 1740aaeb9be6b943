package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupPosts(t *testing.T) {
	t.Run("group by building", func(t *testing.T) {
		result := GroupPosts(samplePosts(), GroupByBuilding)
		require.Len(t, result.Groups, 3)
		assert.Equal(t, 4, result.TotalCount)
		assert.Equal(t, "H1", result.Groups[0].DisplayName)
		assert.Equal(t, 2, result.Groups[0].Count)
		assert.Equal(t, []int64{1, 3}, IDs(result.Groups[0].Posts))
	})

	t.Run("group by status", func(t *testing.T) {
		result := GroupPosts(samplePosts(), GroupByStatus)
		assert.Len(t, result.Groups, 4)
	})

	t.Run("empty key display name", func(t *testing.T) {
		result := GroupPosts([]Post{{ID: 1, Title: "x"}}, GroupByFloor)
		require.Len(t, result.Groups, 1)
		assert.Equal(t, "(empty)", result.Groups[0].DisplayName)
	})

	t.Run("invalid mode falls back to none", func(t *testing.T) {
		result := GroupPosts(samplePosts(), GroupByMode("nope"))
		assert.Equal(t, GroupByNone, result.Mode)
		assert.Empty(t, result.Groups)
		assert.Equal(t, 4, result.TotalCount)
	})
}

func TestTabCounts(t *testing.T) {
	counts := TabCounts(samplePosts(), []string{TabAll, "H1", "H2", "H3"})
	assert.Equal(t, 4, counts[TabAll])
	assert.Equal(t, 2, counts["H1"])
	assert.Equal(t, 1, counts["H2"])
	assert.Equal(t, 0, counts["H3"])
	assert.NotContains(t, counts, "H6")
}
