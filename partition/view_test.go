package partition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoimbra/pkgraph/graphtesting"
	"github.com/mcoimbra/pkgraph/partition"
)

// TestReverse builds the path (i, i+1, i) for i in 0..9 and checks the
// transposed view yields (i+1, i, i).
func TestReverse(t *testing.T) {
	p, err := partition.Build[struct{}](2, graphtesting.GenerateBandEdges(10, 0))
	require.NoError(t, err)

	r := p.Reverse()
	assert.Equal(t, 10, r.Size())
	got := r.Edges()
	require.Len(t, got, 10)
	for _, e := range got {
		assert.Equal(t, e.Dst+1, e.Src)
		assert.Equal(t, int64(e.Dst), e.Attr)
	}
}

// TestReverseTwiceIsIdentity checks the double transpose restores the
// original presentation, offsets and indexes included.
func TestReverseTwiceIsIdentity(t *testing.T) {
	tc := graphtesting.NewTestContext(t, graphtesting.TestConfig{Seed: 3, TestLabelPrefix: "reverse"})
	p, err := partition.Build[struct{}](2, tc.GenerateEdges(50, 100, 16))
	require.NoError(t, err)

	rr := p.Reverse().Reverse()
	assert.Equal(t, p.SrcOffset(), rr.SrcOffset())
	assert.Equal(t, p.DstOffset(), rr.DstOffset())
	assert.Equal(t, p.Edges(), rr.Edges())
}

// TestReverseSwapsIndexes checks the per-dimension index views swap with the
// orientation.
func TestReverseSwapsIndexes(t *testing.T) {
	p, err := partition.Build[struct{}](2, []partition.Edge[int64]{
		{Src: 0, Dst: 1, Attr: 1},
		{Src: 0, Dst: 2, Attr: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 1, p.SrcIndexSize())
	require.Equal(t, 2, p.DstIndexSize())

	r := p.Reverse()
	assert.Equal(t, 2, r.SrcIndexSize())
	assert.Equal(t, 1, r.DstIndexSize())
}

// TestWithActiveSet attaches an active set and checks the count. IDs outside
// the partition's vertex range are dropped.
func TestWithActiveSet(t *testing.T) {
	p, err := partition.Build[struct{}](2, graphtesting.GenerateDiagonalEdges(10, 0))
	require.NoError(t, err)

	_, ok := p.NumActives()
	assert.False(t, ok)

	p2 := p.WithActiveSet([]partition.VertexID{0, 1, 2, 3, 4, 5})
	n, ok := p2.NumActives()
	assert.True(t, ok)
	assert.Equal(t, 6, n)

	// 1000 is far outside the 16 wide vertex range, -1 is behind it.
	p3 := p.WithActiveSet([]partition.VertexID{3, 1000, -1})
	n, ok = p3.NumActives()
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	// The receiver is untouched.
	_, ok = p.NumActives()
	assert.False(t, ok)
}

// TestUpdateVertices overlays vertex attributes and checks later updates win
// without mutating earlier partitions.
func TestUpdateVertices(t *testing.T) {
	p, err := partition.Build[string](2, []partition.Edge[int64]{{Src: 0, Dst: 1, Attr: 1}})
	require.NoError(t, err)

	p2 := p.UpdateVertices([]partition.Vertex[string]{{ID: 0, Attr: "a"}, {ID: 1, Attr: "b"}})
	p3 := p2.UpdateVertices([]partition.Vertex[string]{{ID: 1, Attr: "c"}})

	attr, ok := p3.VertexAttr(0)
	require.True(t, ok)
	assert.Equal(t, "a", attr)
	attr, ok = p3.VertexAttr(1)
	require.True(t, ok)
	assert.Equal(t, "c", attr)

	attr, ok = p2.VertexAttr(1)
	require.True(t, ok)
	assert.Equal(t, "b", attr)
	_, ok = p.VertexAttr(0)
	assert.False(t, ok)
}

// TestWithoutVertexAttributes re-keys the vertex overlay type, keeping the
// edges and dropping the attributes.
func TestWithoutVertexAttributes(t *testing.T) {
	p, err := partition.Build[string](2, graphtesting.GenerateDiagonalEdges(4, 0))
	require.NoError(t, err)
	p = p.UpdateVertices([]partition.Vertex[string]{{ID: 0, Attr: "x"}})

	q := partition.WithoutVertexAttributes[int32](p)
	assert.Equal(t, p.Edges(), q.Edges())
	_, ok := q.VertexAttr(0)
	assert.False(t, ok)
}

// TestCompact trims the matrix back down after removals empty the outer
// quadrants.
func TestCompact(t *testing.T) {
	p, err := partition.Build[struct{}](2, graphtesting.GenerateDiagonalEdges(10, 0))
	require.NoError(t, err)
	require.Equal(t, uint64(16), p.Tree().Size())

	p2, err := p.RemoveEdges([]partition.VertexPair{
		{Src: 4, Dst: 4}, {Src: 5, Dst: 5}, {Src: 6, Dst: 6},
		{Src: 7, Dst: 7}, {Src: 8, Dst: 8}, {Src: 9, Dst: 9},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(16), p2.Tree().Size())

	c := p2.Compact()
	assert.Equal(t, uint64(4), c.Tree().Size())
	assert.Equal(t, p2.Edges(), c.Edges())
	assert.Equal(t, 4, c.SrcIndexSize())

	// Nothing to trim returns the receiver.
	assert.Same(t, c, c.Compact())
}
