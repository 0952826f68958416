package graphtesting

import (
	"math/rand"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"

	"github.com/mcoimbra/pkgraph/partition"
)

type TestContext struct {
	Log logger.Logger
	Rng *rand.Rand
	T   *testing.T
}

type TestConfig struct {
	// We seed the RNG with the provided Seed. It is normal to force it to some
	// fixed value so that the generated data is the same from run to run.
	Seed            int64
	TestLabelPrefix string
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		Rng: rand.New(rand.NewSource(cfg.Seed)),
		T:   t,
	}
	logger.New("INFO")
	label := cfg.TestLabelPrefix
	if label == "" {
		label = uuid.NewString()
	}
	c.Log = logger.Sugar.WithServiceName(label)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// GenerateEdges returns count random edges inside a bound x bound square of
// vertex IDs starting at origin. Attributes are src*bound + dst so a test can
// recover the expected value from the endpoints. Duplicate pairs may occur.
func (c *TestContext) GenerateEdges(count int, origin partition.VertexID, bound int64) []partition.Edge[int64] {
	edges := make([]partition.Edge[int64], 0, count)
	for i := 0; i < count; i++ {
		src := origin + partition.VertexID(c.Rng.Int63n(bound))
		dst := origin + partition.VertexID(c.Rng.Int63n(bound))
		edges = append(edges, partition.Edge[int64]{Src: src, Dst: dst, Attr: int64(src)*bound + int64(dst)})
	}
	return edges
}

// GenerateDiagonalEdges returns the count self loop edges (i, i, i) starting
// at origin.
func GenerateDiagonalEdges(count int, origin partition.VertexID) []partition.Edge[int64] {
	edges := make([]partition.Edge[int64], 0, count)
	for i := 0; i < count; i++ {
		v := origin + partition.VertexID(i)
		edges = append(edges, partition.Edge[int64]{Src: v, Dst: v, Attr: int64(v)})
	}
	return edges
}

// GenerateBandEdges returns the edges (i, i+1) for i in [origin, origin+count),
// a single directed path. Attributes are the source IDs.
func GenerateBandEdges(count int, origin partition.VertexID) []partition.Edge[int64] {
	edges := make([]partition.Edge[int64], 0, count)
	for i := 0; i < count; i++ {
		v := origin + partition.VertexID(i)
		edges = append(edges, partition.Edge[int64]{Src: v, Dst: v + 1, Attr: int64(v)})
	}
	return edges
}

// DedupeLastWins collapses duplicate (src, dst) pairs keeping the attribute
// of the last occurrence, matching partition build semantics. The result
// order is unspecified.
func DedupeLastWins[E any](edges []partition.Edge[E]) []partition.Edge[E] {
	byPair := make(map[partition.VertexPair]E, len(edges))
	for _, e := range edges {
		byPair[partition.VertexPair{Src: e.Src, Dst: e.Dst}] = e.Attr
	}
	out := make([]partition.Edge[E], 0, len(byPair))
	for pr, attr := range byPair {
		out = append(out, partition.Edge[E]{Src: pr.Src, Dst: pr.Dst, Attr: attr})
	}
	return out
}
