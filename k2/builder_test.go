package k2

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeReturnsTreeIndex(t *testing.T) {
	b, err := NewBuilder(2, 4)
	require.NoError(t, err)

	//	col    0  1  2  3
	//	line 0 0  1  4  5
	//	     1 2  3  6  7
	//	     2 8  9 12 13
	//	     3 10 11 14 15
	tests := []struct {
		line, col uint64
		want      uint64
	}{
		{0, 0, 0},
		{1, 2, 6},
		{3, 1, 11},
		{3, 3, 15},
	}
	for _, tt := range tests {
		got, err := b.AddEdge(tt.line, tt.col)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "AddEdge(%d, %d)", tt.line, tt.col)
	}

	// Re-adding yields the same index and does not change the build.
	before := b.Build()
	again, err := b.AddEdge(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), again)
	assert.True(t, before.Equal(b.Build()))
}

func TestAddEdgeRange(t *testing.T) {
	b, err := NewBuilder(2, 4)
	require.NoError(t, err)
	_, err = b.AddEdge(4, 0)
	assert.ErrorIs(t, err, ErrCoordRange)
	_, err = b.AddEdge(0, 4)
	assert.ErrorIs(t, err, ErrCoordRange)
}

func TestNewBuilderArgs(t *testing.T) {
	_, err := NewBuilder(1, 4)
	assert.ErrorIs(t, err, ErrBadK)
	_, err = NewBuilder(2, 6)
	assert.ErrorIs(t, err, ErrBadSize)
	_, err = NewBuilder(2, 0)
	assert.ErrorIs(t, err, ErrBadSize)
}

func TestRemoveEdge(t *testing.T) {
	b, err := NewBuilder(2, 4)
	require.NoError(t, err)
	for _, c := range [][2]uint64{{0, 0}, {1, 2}, {3, 3}} {
		_, err := b.AddEdge(c[0], c[1])
		require.NoError(t, err)
	}

	// Removing (1,2) empties its whole quadrant, so the internal bit for the
	// top right quadrant must clear as well.
	removed, err := b.RemoveEdge(1, 2)
	require.NoError(t, err)
	assert.True(t, removed)

	tree := b.Build()
	assert.Equal(t, "internal[1001] leaves[1000 0001]", tree.BitmapString())
	assert.Equal(t, []Edge{{0, 0, 0}, {3, 3, 1}}, CollectEdges(tree.Edges(Forward)))

	// Absent cells report false and leave the builder untouched.
	removed, err = b.RemoveEdge(2, 2)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.True(t, tree.Equal(b.Build()))

	_, err = b.RemoveEdge(9, 0)
	assert.ErrorIs(t, err, ErrCoordRange)
}

func TestRemoveAllEdges(t *testing.T) {
	b, err := NewBuilder(2, 8)
	require.NoError(t, err)
	cells := [][2]uint64{{0, 0}, {5, 5}, {7, 1}}
	for _, c := range cells {
		_, err := b.AddEdge(c[0], c[1])
		require.NoError(t, err)
	}
	for _, c := range cells {
		removed, err := b.RemoveEdge(c[0], c[1])
		require.NoError(t, err)
		assert.True(t, removed)
	}
	tree := b.Build()
	assert.True(t, tree.IsEmpty())
	assert.Equal(t, uint64(0), tree.Bits().Len())
}

func TestHasEdge(t *testing.T) {
	b, err := NewBuilder(2, 4)
	require.NoError(t, err)
	_, err = b.AddEdge(2, 3)
	require.NoError(t, err)

	has, err := b.HasEdge(2, 3)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = b.HasEdge(3, 2)
	require.NoError(t, err)
	assert.False(t, has)
	_, err = b.HasEdge(0, 7)
	assert.ErrorIs(t, err, ErrCoordRange)
}

func TestNewBuilderFromTree(t *testing.T) {
	r := rand.New(rand.NewSource(29))
	for _, k := range []uint64{2, 4} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			size := SizeFor(k, 40)
			var cells [][2]uint64
			for i := 0; i < 50; i++ {
				cells = append(cells, [2]uint64{uint64(r.Intn(40)), uint64(r.Intn(40))})
			}
			tree := buildTree(t, k, size, cells)

			b, err := NewBuilderFromTree(tree)
			require.NoError(t, err)
			assert.True(t, tree.Equal(b.Build()))

			// The rehydrated builder accepts further mutation.
			_, err = b.AddEdge(size-1, size-1)
			require.NoError(t, err)
			assert.Equal(t, tree.Cells()+1, b.Build().Cells())
		})
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	b, err := NewBuilder(2, 8)
	require.NoError(t, err)
	for _, c := range [][2]uint64{{1, 1}, {6, 2}, {7, 7}} {
		_, err := b.AddEdge(c[0], c[1])
		require.NoError(t, err)
	}
	first := b.Build()
	second := b.Build()
	assert.True(t, first.Equal(second))
}
