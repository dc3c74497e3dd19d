package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_FramesAcrossFourUnits(t *testing.T) {
	ranges, err := Split(50, 4)
	require.NoError(t, err)

	assert.Equal(t, []Range{
		{Start: 0, End: 12},
		{Start: 12, End: 24},
		{Start: 24, End: 36},
		{Start: 36, End: 50},
	}, ranges)
}

func TestSplit_RowsAcrossThreads(t *testing.T) {
	ranges, err := Split(600, 7)
	require.NoError(t, err)
	require.Len(t, ranges, 7)

	for i := 0; i < 6; i++ {
		assert.Equal(t, 85, ranges[i].Len(), "range %d", i)
	}
	assert.Equal(t, Range{Start: 510, End: 600}, ranges[6])
}

func TestSplit_SingleWorkerTakesEverything(t *testing.T) {
	ranges, err := Split(50, 1)
	require.NoError(t, err)
	assert.Equal(t, []Range{{Start: 0, End: 50}}, ranges)
}

func TestSplit_FewerItemsThanWorkers(t *testing.T) {
	ranges, err := Split(3, 5)
	require.NoError(t, err)

	assert.Equal(t, []Range{
		{Start: 0, End: 0},
		{Start: 0, End: 0},
		{Start: 0, End: 0},
		{Start: 0, End: 0},
		{Start: 0, End: 3},
	}, ranges)
	for _, r := range ranges[:4] {
		assert.True(t, r.Empty())
	}
}

func TestSplit_ZeroTotal(t *testing.T) {
	ranges, err := Split(0, 3)
	require.NoError(t, err)
	require.Len(t, ranges, 3)
	for _, r := range ranges {
		assert.True(t, r.Empty())
	}
}

func TestSplit_RejectsInvalidInput(t *testing.T) {
	t.Run("zero workers", func(t *testing.T) {
		_, err := Split(10, 0)
		assert.ErrorIs(t, err, ErrInvalidWorkers)
	})

	t.Run("negative workers", func(t *testing.T) {
		_, err := Split(10, -2)
		assert.ErrorIs(t, err, ErrInvalidWorkers)
	})

	t.Run("negative total", func(t *testing.T) {
		_, err := Split(-1, 2)
		assert.ErrorIs(t, err, ErrNegativeTotal)
		assert.Contains(t, err.Error(), "split -1 over 2 workers")
	})
}

// TestSplit_DisjointCover checks the partition property over a grid of
// domain sizes and worker counts.
func TestSplit_DisjointCover(t *testing.T) {
	for total := 0; total <= 64; total++ {
		for workers := 1; workers <= 24; workers++ {
			ranges, err := Split(total, workers)
			require.NoError(t, err)
			require.Len(t, ranges, workers)

			seen := make([]int, total)
			next := 0
			for i, r := range ranges {
				require.Equal(t, next, r.Start, "total=%d workers=%d range=%d not contiguous", total, workers, i)
				require.GreaterOrEqual(t, r.End, r.Start)
				for _, idx := range r.Indices() {
					seen[idx]++
				}
				next = r.End
			}
			require.Equal(t, total, next, "total=%d workers=%d does not reach the end", total, workers)
			for idx, n := range seen {
				require.Equal(t, 1, n, "total=%d workers=%d index %d covered %d times", total, workers, idx, n)
			}
		}
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: 3, End: 6}
	assert.Equal(t, 3, r.Len())
	assert.False(t, r.Empty())
	assert.True(t, r.Contains(3))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(6))
	assert.Equal(t, []int{3, 4, 5}, r.Indices())
	assert.Equal(t, "[3,6)", r.String())
}
