package partition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoimbra/pkgraph/graphtesting"
	"github.com/mcoimbra/pkgraph/partition"
)

// TestBuildDiagonal builds the ten self loops (i, i, i) for i in 0..9 and
// checks the resulting geometry:
//
//	matrix side 16 (the smallest power of 2 covering extent 10)
//	origin (0, 0)
//	10 edges, 10 indexed sources, 10 indexed destinations
func TestBuildDiagonal(t *testing.T) {
	edges := graphtesting.GenerateDiagonalEdges(10, 0)
	p, err := partition.Build[int64](2, edges)
	require.NoError(t, err)

	assert.Equal(t, 10, p.Size())
	assert.Equal(t, uint64(16), p.Tree().Size())
	assert.Equal(t, partition.VertexID(0), p.SrcOffset())
	assert.Equal(t, partition.VertexID(0), p.DstOffset())
	assert.Equal(t, 10, p.SrcIndexSize())
	assert.Equal(t, 10, p.DstIndexSize())

	got := p.Edges()
	require.Len(t, got, 10)
	for i, e := range got {
		assert.Equal(t, partition.VertexID(i), e.Src)
		assert.Equal(t, partition.VertexID(i), e.Dst)
		assert.Equal(t, int64(i), e.Attr)
	}
}

// TestBuildOrigin checks that the local coordinate space has its origin at the
// minimum source and destination IDs, independently per dimension.
func TestBuildOrigin(t *testing.T) {
	edges := []partition.Edge[string]{
		{Src: 100, Dst: 205, Attr: "a"},
		{Src: 103, Dst: 200, Attr: "b"},
	}
	p, err := partition.Build[struct{}](2, edges)
	require.NoError(t, err)

	assert.Equal(t, partition.VertexID(100), p.SrcOffset())
	assert.Equal(t, partition.VertexID(200), p.DstOffset())
	// Extent is max(103-100, 205-200)+1 = 6, covered by an 8x8 matrix.
	assert.Equal(t, uint64(8), p.Tree().Size())
	assert.ElementsMatch(t, edges, p.Edges())
}

// TestBuildDuplicateLastWins checks that duplicate pairs collapse to one edge
// carrying the attribute of the last occurrence.
func TestBuildDuplicateLastWins(t *testing.T) {
	edges := []partition.Edge[int64]{
		{Src: 1, Dst: 2, Attr: 7},
		{Src: 0, Dst: 0, Attr: 1},
		{Src: 1, Dst: 2, Attr: 9},
	}
	p, err := partition.Build[int64](2, edges)
	require.NoError(t, err)

	assert.Equal(t, 2, p.Size())
	assert.ElementsMatch(t, []partition.Edge[int64]{
		{Src: 0, Dst: 0, Attr: 1},
		{Src: 1, Dst: 2, Attr: 9},
	}, p.Edges())
}

// TestBuildEmpty builds a partition with no edges at all.
func TestBuildEmpty(t *testing.T) {
	p, err := partition.Build[int64, int64](2, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Size())
	assert.Empty(t, p.Edges())
	assert.Equal(t, 0, p.SrcIndexSize())
	assert.Equal(t, 0, p.DstIndexSize())
}

// TestBuildBadK checks that the subdivision parameter is validated.
func TestBuildBadK(t *testing.T) {
	_, err := partition.Build[int64](1, []partition.Edge[int64]{{Src: 0, Dst: 0}})
	assert.Error(t, err)
}

// TestBuildRandomRoundTrip builds partitions over random edge sets for several
// k values and checks the edges come back out, deduplicated last wins.
func TestBuildRandomRoundTrip(t *testing.T) {
	tc := graphtesting.NewTestContext(t, graphtesting.TestConfig{Seed: 23, TestLabelPrefix: "buildroundtrip"})
	for _, k := range []uint64{2, 3, 4, 8} {
		edges := tc.GenerateEdges(200, 1000, 64)
		p, err := partition.Build[int64](k, edges, partition.WithLogger(tc.Log))
		require.NoError(t, err)
		want := graphtesting.DedupeLastWins(edges)
		assert.Equal(t, len(want), p.Size(), "k=%d", k)
		assert.ElementsMatch(t, want, p.Edges(), "k=%d", k)
	}
}

// TestBuildOrderIndependent builds from the same edge set in two different
// submission orders and checks the iteration sequences are identical: the
// order is a property of the coordinates alone.
func TestBuildOrderIndependent(t *testing.T) {
	tc := graphtesting.NewTestContext(t, graphtesting.TestConfig{Seed: 11, TestLabelPrefix: "buildorder"})
	edges := graphtesting.DedupeLastWins(tc.GenerateEdges(150, 0, 64))
	shuffled := make([]partition.Edge[int64], len(edges))
	copy(shuffled, edges)
	tc.Rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	p1, err := partition.Build[struct{}](2, edges)
	require.NoError(t, err)
	p2, err := partition.Build[struct{}](2, shuffled)
	require.NoError(t, err)
	assert.Equal(t, p1.Edges(), p2.Edges())
}

// TestTripletIterator checks that triplets materialize exactly the requested
// vertex attribute fields.
func TestTripletIterator(t *testing.T) {
	p, err := partition.Build[string](2, []partition.Edge[int64]{{Src: 0, Dst: 1, Attr: 5}})
	require.NoError(t, err)
	p = p.UpdateVertices([]partition.Vertex[string]{{ID: 0, Attr: "src"}, {ID: 1, Attr: "dst"}})

	table := []struct {
		fields  partition.TripletFields
		srcAttr string
		dstAttr string
	}{
		{partition.TripletFieldsNone, "", ""},
		{partition.TripletFieldsSrc, "src", ""},
		{partition.TripletFieldsDst, "", "dst"},
		{partition.TripletFieldsAll, "src", "dst"},
	}
	for _, tt := range table {
		it := p.TripletIterator(tt.fields)
		tr, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, partition.VertexID(0), tr.Src)
		assert.Equal(t, partition.VertexID(1), tr.Dst)
		assert.Equal(t, int64(5), tr.Attr)
		assert.Equal(t, tt.srcAttr, tr.SrcAttr, "fields=%d", tt.fields)
		assert.Equal(t, tt.dstAttr, tr.DstAttr, "fields=%d", tt.fields)
		_, ok = it.Next()
		assert.False(t, ok)
	}
}
