// Package partition implements the compressed edge partition: a k2 tree over
// the local coordinate space of an edge set, a parallel attribute array in
// tree order, per-dimension vertex indexes, a vertex attribute overlay and an
// optional active vertex set. Partitions are immutable; every operation
// returns a new partition sharing unchanged internals. A single partition is
// single threaded, concurrent readers are safe.
package partition

// VertexID identifies a vertex in the global graph space.
type VertexID int64

// Edge is one directed edge with its attribute.
type Edge[E any] struct {
	Src  VertexID
	Dst  VertexID
	Attr E
}

// VertexPair names an edge without its attribute, for removals.
type VertexPair struct {
	Src VertexID
	Dst VertexID
}

// Vertex pairs a vertex with its attribute, for vertex overlay updates.
type Vertex[V any] struct {
	ID   VertexID
	Attr V
}

// Triplet is an edge joined with the attributes of its endpoints. SrcAttr and
// DstAttr are zero values when the triplet was produced without the
// corresponding field.
type Triplet[V, E any] struct {
	Src     VertexID
	Dst     VertexID
	Attr    E
	SrcAttr V
	DstAttr V
}

// TripletFields selects which vertex attributes triplet producing operations
// materialize. Skipping a side avoids the vertex map lookups for it.
type TripletFields uint8

const (
	TripletFieldsNone TripletFields = 0
	TripletFieldsSrc  TripletFields = 1
	TripletFieldsDst  TripletFields = 2
	TripletFieldsAll  TripletFields = TripletFieldsSrc | TripletFieldsDst
)

// IncludeSrc reports whether the source attribute is materialized.
func (f TripletFields) IncludeSrc() bool { return f&TripletFieldsSrc != 0 }

// IncludeDst reports whether the destination attribute is materialized.
func (f TripletFields) IncludeDst() bool { return f&TripletFieldsDst != 0 }

// Activeness selects which edges participate in a message aggregation,
// relative to the partition's active vertex set. A partition without an
// active set treats every vertex as active.
type Activeness int

const (
	// Neither ignores the active set; every edge participates.
	Neither Activeness = iota
	// SrcOnly requires an active source.
	SrcOnly
	// DstOnly requires an active destination.
	DstOnly
	// Both requires both endpoints active.
	Both
	// Either requires at least one endpoint active.
	Either
)
