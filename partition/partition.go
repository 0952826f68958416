package partition

import (
	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/mcoimbra/pkgraph/bitset"
	"github.com/mcoimbra/pkgraph/k2"
	"github.com/mcoimbra/pkgraph/metrics"
)

// Partition binds a k2 tree over local edge coordinates to a parallel
// attribute array, vertex indexes, a vertex attribute overlay and an optional
// active set.
//
// The tree stores edges in a fixed orientation; reversed selects whether the
// partition presents that orientation or its transpose. srcOffset, srcIndex
// and their dst counterparts always describe the presented orientation, while
// attrs is always indexed by the stored forward iteration ordinal, which the
// tree iterator reports in either direction.
type Partition[V, E any] struct {
	k        uint64
	tree     *k2.Tree
	reversed bool
	attrs    []E

	srcOffset VertexID
	dstOffset VertexID
	srcIndex  *bitset.BitSet
	dstIndex  *bitset.BitSet

	vertices map[VertexID]V
	active   *activeSet

	log logger.Logger
}

// activeSet is a bitset over the vertex ID range spanned by the partition's
// two dimensions. IDs outside the range were dropped at construction and are
// reported inactive.
type activeSet struct {
	offset VertexID
	bits   *bitset.BitSet
}

func (a *activeSet) contains(v VertexID) bool {
	if v < a.offset || uint64(v-a.offset) >= a.bits.Len() {
		return false
	}
	return a.bits.Test(uint64(v - a.offset))
}

// Size returns the number of edges in the partition.
func (p *Partition[V, E]) Size() int { return len(p.attrs) }

// K returns the tree subdivision parameter.
func (p *Partition[V, E]) K() uint64 { return p.k }

// Tree returns the underlying k2 tree. The caller must not mutate it.
func (p *Partition[V, E]) Tree() *k2.Tree { return p.tree }

// SrcOffset returns the global vertex ID of local source line 0.
func (p *Partition[V, E]) SrcOffset() VertexID { return p.srcOffset }

// DstOffset returns the global vertex ID of local destination column 0.
func (p *Partition[V, E]) DstOffset() VertexID { return p.dstOffset }

// SrcIndexSize returns the number of distinct local sources with edges.
func (p *Partition[V, E]) SrcIndexSize() int { return int(p.srcIndex.Cardinality()) }

// DstIndexSize returns the number of distinct local destinations with edges.
func (p *Partition[V, E]) DstIndexSize() int { return int(p.dstIndex.Cardinality()) }

// NumActives returns the size of the active vertex set. ok is false when no
// active set is attached, in which case every vertex counts as active.
func (p *Partition[V, E]) NumActives() (n int, ok bool) {
	if p.active == nil {
		return 0, false
	}
	return int(p.active.bits.Cardinality()), true
}

// VertexAttr returns the attribute overlaid on the given vertex.
func (p *Partition[V, E]) VertexAttr(v VertexID) (attr V, ok bool) {
	attr, ok = p.vertices[v]
	return attr, ok
}

func (p *Partition[V, E]) direction() k2.Direction {
	if p.reversed {
		return k2.Transposed
	}
	return k2.Forward
}

// vertexActive reports whether v is active. Without an active set every
// vertex is active.
func (p *Partition[V, E]) vertexActive(v VertexID) bool {
	return p.active == nil || p.active.contains(v)
}

func (p *Partition[V, E]) edgeActive(src, dst VertexID, act Activeness) bool {
	switch act {
	case SrcOnly:
		return p.vertexActive(src)
	case DstOnly:
		return p.vertexActive(dst)
	case Both:
		return p.vertexActive(src) && p.vertexActive(dst)
	case Either:
		return p.vertexActive(src) || p.vertexActive(dst)
	default:
		return true
	}
}

// EdgeIter yields the partition's edges in tree order with their attributes.
type EdgeIter[E any] struct {
	it        *k2.EdgeIterator
	attrs     []E
	srcOffset VertexID
	dstOffset VertexID
}

// Iterator returns a one shot iterator over the partition's edges in the
// deterministic tree order of the presented orientation.
func (p *Partition[V, E]) Iterator() *EdgeIter[E] {
	return &EdgeIter[E]{
		it:        p.tree.Edges(p.direction()),
		attrs:     p.attrs,
		srcOffset: p.srcOffset,
		dstOffset: p.dstOffset,
	}
}

// Next returns the next edge. ok is false when iteration is complete.
func (e *EdgeIter[E]) Next() (Edge[E], bool) {
	cell, ok := e.it.Next()
	if !ok {
		return Edge[E]{}, false
	}
	return Edge[E]{
		Src:  e.srcOffset + VertexID(cell.Line),
		Dst:  e.dstOffset + VertexID(cell.Col),
		Attr: e.attrs[cell.Ord],
	}, true
}

// Edges drains the iterator into a slice.
func (p *Partition[V, E]) Edges() []Edge[E] {
	out := make([]Edge[E], 0, p.Size())
	for it := p.Iterator(); ; {
		e, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

// TripletIter yields edges joined with the vertex attributes selected by the
// triplet fields.
type TripletIter[V, E any] struct {
	p      *Partition[V, E]
	it     *EdgeIter[E]
	fields TripletFields
}

// TripletIterator returns a one shot iterator over the partition's edges
// joined with vertex attributes from the overlay.
func (p *Partition[V, E]) TripletIterator(fields TripletFields) *TripletIter[V, E] {
	return &TripletIter[V, E]{p: p, it: p.Iterator(), fields: fields}
}

// Next returns the next triplet. ok is false when iteration is complete.
func (t *TripletIter[V, E]) Next() (Triplet[V, E], bool) {
	e, ok := t.it.Next()
	if !ok {
		return Triplet[V, E]{}, false
	}
	return t.p.triplet(e, t.fields), true
}

func (p *Partition[V, E]) triplet(e Edge[E], fields TripletFields) Triplet[V, E] {
	tr := Triplet[V, E]{Src: e.Src, Dst: e.Dst, Attr: e.Attr}
	if fields.IncludeSrc() {
		tr.SrcAttr = p.vertices[e.Src]
	}
	if fields.IncludeDst() {
		tr.DstAttr = p.vertices[e.Dst]
	}
	return tr
}

// srcLineEdges returns the tree cells of the presented source line, in
// presented coordinates.
func (p *Partition[V, E]) srcLineEdges(line uint64) ([]k2.Edge, error) {
	if !p.reversed {
		return p.tree.EdgesInLine(line)
	}
	cells, err := p.tree.EdgesInCol(line)
	if err != nil {
		return nil, err
	}
	for i := range cells {
		cells[i].Line, cells[i].Col = cells[i].Col, cells[i].Line
	}
	return cells, nil
}

// dstColEdges returns the tree cells of the presented destination column, in
// presented coordinates.
func (p *Partition[V, E]) dstColEdges(col uint64) ([]k2.Edge, error) {
	if !p.reversed {
		return p.tree.EdgesInCol(col)
	}
	cells, err := p.tree.EdgesInLine(col)
	if err != nil {
		return nil, err
	}
	for i := range cells {
		cells[i].Line, cells[i].Col = cells[i].Col, cells[i].Line
	}
	return cells, nil
}

// Reverse returns the transposed view of the partition: sources and
// destinations swap roles and iteration follows the transposed tree order.
// No tree or attribute data is copied.
func (p *Partition[V, E]) Reverse() *Partition[V, E] {
	r := *p
	r.reversed = !p.reversed
	r.srcOffset, r.dstOffset = p.dstOffset, p.srcOffset
	r.srcIndex, r.dstIndex = p.dstIndex, p.srcIndex
	return &r
}

// WithActiveSet returns a partition whose aggregations consider only the
// given vertices active. IDs outside the partition's vertex range are
// dropped.
func (p *Partition[V, E]) WithActiveSet(ids []VertexID) *Partition[V, E] {
	offset := min(p.srcOffset, p.dstOffset)
	span := uint64(max(p.srcOffset, p.dstOffset)-offset) + p.tree.Size()
	active := &activeSet{offset: offset, bits: bitset.New(span)}
	kept := 0
	for _, id := range ids {
		if id < offset || uint64(id-offset) >= span {
			continue
		}
		active.bits.Set(uint64(id - offset))
		kept++
	}
	if p.log != nil {
		p.log.Debugf("withActiveSet: %d of %d ids in range", kept, len(ids))
	}
	r := *p
	r.active = active
	return &r
}

// UpdateVertices overlays the given attributes onto the vertex mapping. The
// tree and edge attributes are shared with the receiver.
func (p *Partition[V, E]) UpdateVertices(updates []Vertex[V]) *Partition[V, E] {
	vertices := make(map[VertexID]V, len(p.vertices)+len(updates))
	for id, attr := range p.vertices {
		vertices[id] = attr
	}
	for _, u := range updates {
		vertices[u.ID] = u.Attr
	}
	r := *p
	r.vertices = vertices
	return &r
}

// WithoutVertexAttributes returns the partition with an empty vertex overlay
// of a new attribute type, for pipelines that re-key vertex data.
func WithoutVertexAttributes[V2, V, E any](p *Partition[V, E]) *Partition[V2, E] {
	return &Partition[V2, E]{
		k:         p.k,
		tree:      p.tree,
		reversed:  p.reversed,
		attrs:     p.attrs,
		srcOffset: p.srcOffset,
		dstOffset: p.dstOffset,
		srcIndex:  p.srcIndex,
		dstIndex:  p.dstIndex,
		vertices:  map[VertexID]V2{},
		active:    p.active,
		log:       p.log,
	}
}

// Compact returns a partition whose tree has been trimmed to the smallest
// matrix still covering its edges. Offsets, attributes and iteration order
// are unchanged; only the vertex indexes shrink with the matrix.
func (p *Partition[V, E]) Compact() *Partition[V, E] {
	trimmed := p.tree.Trim()
	if trimmed.Size() == p.tree.Size() {
		return p
	}
	metrics.TreesTrimmed.Inc()
	if p.log != nil {
		p.log.Debugf("compact: matrix %d -> %d", p.tree.Size(), trimmed.Size())
	}
	r := *p
	r.tree = trimmed
	r.srcIndex = shrinkIndex(p.srcIndex, trimmed.Size())
	r.dstIndex = shrinkIndex(p.dstIndex, trimmed.Size())
	if r.active != nil {
		r.active = reboxActive(p.active, p.srcOffset, p.dstOffset, trimmed.Size())
	}
	return &r
}

func shrinkIndex(index *bitset.BitSet, size uint64) *bitset.BitSet {
	out := bitset.New(size)
	index.ForEachSet(func(i uint64) bool {
		if i < size {
			out.Set(i)
		}
		return true
	})
	return out
}
