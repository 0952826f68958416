package partition

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"

	"github.com/mcoimbra/pkgraph/bitset"
	"github.com/mcoimbra/pkgraph/k2"
	"github.com/mcoimbra/pkgraph/metrics"
)

// AddEdges returns a partition also containing the given edges. The matrix
// grows as needed; new edges preceding the current origin move the origin up
// and left and the existing edges are rebased onto the new coordinate space.
// A new edge colliding with an existing pair replaces its attribute.
func (p *Partition[V, E]) AddEdges(newEdges []Edge[E]) (*Partition[V, E], error) {
	if len(newEdges) == 0 {
		return p, nil
	}
	extent := VertexID(p.tree.Size()) - 1
	box := bounds{
		srcLo: p.srcOffset, srcHi: p.srcOffset + extent,
		dstLo: p.dstOffset, dstHi: p.dstOffset + extent,
	}
	nb, _ := boundsOf(newEdges)
	box = box.union(nb)

	var out *Partition[V, E]
	var err error
	if !p.reversed && box.srcLo == p.srcOffset && box.dstLo == p.dstOffset {
		out, err = p.addEdgesGrow(box, newEdges)
	} else {
		// The origin moved up or left, or the partition is a transposed
		// view; rebase everything through a full rebuild.
		all := append(p.Edges(), newEdges...)
		out, err = assemble[V, E](p.k, box, all, p.vertices, nil, Options{Log: p.log})
		if out != nil {
			out.active = reboxActive(p.active, out.srcOffset, out.dstOffset, out.tree.Size())
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "add edges")
	}
	added := out.Size() - p.Size()
	metrics.EdgesAdded.Add(float64(len(newEdges)))
	metrics.LiveEdges.Add(float64(added))
	if p.log != nil {
		p.log.Debugf("addEdges: %d submitted, %d new, %d total", len(newEdges), added, out.Size())
	}
	return out, nil
}

// addEdgesGrow is the in-place growth path: the origin is unchanged, so the
// current tree transfers into the enlarged builder as is and only the new
// edges need inserting.
func (p *Partition[V, E]) addEdgesGrow(box bounds, newEdges []Edge[E]) (*Partition[V, E], error) {
	newSize := k2.SizeFor(p.k, box.span())
	tree := p.tree
	if newSize > tree.Size() {
		grown, err := tree.Grow(newSize)
		if err != nil {
			return nil, err
		}
		tree = grown
		metrics.TreesGrown.Inc()
		if p.log != nil {
			p.log.Debugf("addEdges: grew matrix %d -> %d", p.tree.Size(), newSize)
		}
	}
	builder, err := k2.NewBuilderFromTree(tree)
	if err != nil {
		return nil, err
	}

	height := tree.Height()
	ordered := redblacktree.NewWith(utils.UInt64Comparator)
	for it := tree.Edges(k2.Forward); ; {
		cell, ok := it.Next()
		if !ok {
			break
		}
		ordered.Put(k2.TreeIndexOf(p.k, height, cell.Line, cell.Col), p.attrs[cell.Ord])
	}

	srcIndex := extendIndex(p.srcIndex, newSize)
	dstIndex := extendIndex(p.dstIndex, newSize)
	for _, e := range newEdges {
		line := uint64(e.Src - p.srcOffset)
		col := uint64(e.Dst - p.dstOffset)
		index, err := builder.AddEdge(line, col)
		if err != nil {
			return nil, err
		}
		srcIndex.Set(line)
		dstIndex.Set(col)
		ordered.Put(index, e.Attr)
	}

	built := builder.Build()
	return &Partition[V, E]{
		k:         p.k,
		tree:      built,
		attrs:     collectAttrs[E](ordered, built.Cells()),
		srcOffset: p.srcOffset,
		dstOffset: p.dstOffset,
		srcIndex:  srcIndex,
		dstIndex:  dstIndex,
		vertices:  p.vertices,
		active:    reboxActive(p.active, p.srcOffset, p.dstOffset, newSize),
		log:       p.log,
	}, nil
}

func extendIndex(index *bitset.BitSet, size uint64) *bitset.BitSet {
	out := bitset.New(size)
	index.ForEachSet(func(i uint64) bool {
		out.Set(i)
		return true
	})
	return out
}

// RemoveEdges returns a partition without the named pairs. Pairs outside the
// partition or not present are ignored. The matrix keeps its size and origin;
// the vertex indexes are rebuilt from the surviving edges so a source or
// destination shared with a surviving edge stays indexed.
func (p *Partition[V, E]) RemoveEdges(pairs []VertexPair) (*Partition[V, E], error) {
	builder, err := k2.NewBuilderFromTree(p.tree)
	if err != nil {
		return nil, errors.Wrap(err, "remove edges")
	}
	size := p.tree.Size()
	height := p.tree.Height()

	ordered := redblacktree.NewWith(utils.UInt64Comparator)
	for it := p.tree.Edges(k2.Forward); ; {
		cell, ok := it.Next()
		if !ok {
			break
		}
		ordered.Put(k2.TreeIndexOf(p.k, height, cell.Line, cell.Col), p.attrs[cell.Ord])
	}

	removed := 0
	for _, pr := range pairs {
		line := int64(pr.Src - p.srcOffset)
		col := int64(pr.Dst - p.dstOffset)
		if p.reversed {
			line, col = col, line
		}
		if line < 0 || col < 0 || uint64(line) >= size || uint64(col) >= size {
			continue
		}
		ok, err := builder.RemoveEdge(uint64(line), uint64(col))
		if err != nil {
			return nil, errors.Wrap(err, "remove edges")
		}
		if ok {
			ordered.Remove(k2.TreeIndexOf(p.k, height, uint64(line), uint64(col)))
			removed++
		}
	}

	tree := builder.Build()
	srcStored := bitset.New(size)
	dstStored := bitset.New(size)
	for it := tree.Edges(k2.Forward); ; {
		cell, ok := it.Next()
		if !ok {
			break
		}
		srcStored.Set(cell.Line)
		dstStored.Set(cell.Col)
	}
	srcIndex, dstIndex := srcStored, dstStored
	if p.reversed {
		srcIndex, dstIndex = dstStored, srcStored
	}

	metrics.EdgesRemoved.Add(float64(removed))
	metrics.LiveEdges.Sub(float64(removed))
	if p.log != nil {
		p.log.Debugf("removeEdges: %d submitted, %d removed, %d remain", len(pairs), removed, int(tree.Cells()))
	}
	return &Partition[V, E]{
		k:         p.k,
		tree:      tree,
		reversed:  p.reversed,
		attrs:     collectAttrs[E](ordered, tree.Cells()),
		srcOffset: p.srcOffset,
		dstOffset: p.dstOffset,
		srcIndex:  srcIndex,
		dstIndex:  dstIndex,
		vertices:  p.vertices,
		active:    p.active,
		log:       p.log,
	}, nil
}

// Filter returns a partition with only the edges whose triplet satisfies
// epred and whose endpoints both satisfy vpred. Geometry is preserved.
func (p *Partition[V, E]) Filter(epred func(Triplet[V, E]) bool, vpred func(VertexID, V) bool) (*Partition[V, E], error) {
	size := p.tree.Size()
	builder, err := k2.NewBuilder(p.k, size)
	if err != nil {
		return nil, errors.Wrap(err, "filter")
	}
	srcIndex := bitset.New(size)
	dstIndex := bitset.New(size)
	ordered := redblacktree.NewWith(utils.UInt64Comparator)

	for it := p.TripletIterator(TripletFieldsAll); ; {
		tr, ok := it.Next()
		if !ok {
			break
		}
		if !vpred(tr.Src, tr.SrcAttr) || !vpred(tr.Dst, tr.DstAttr) || !epred(tr) {
			continue
		}
		line := uint64(tr.Src - p.srcOffset)
		col := uint64(tr.Dst - p.dstOffset)
		index, err := builder.AddEdge(line, col)
		if err != nil {
			return nil, errors.Wrap(err, "filter")
		}
		srcIndex.Set(line)
		dstIndex.Set(col)
		ordered.Put(index, tr.Attr)
	}

	tree := builder.Build()
	if p.log != nil {
		p.log.Debugf("filter: kept %d of %d edges", int(tree.Cells()), p.Size())
	}
	return &Partition[V, E]{
		k:         p.k,
		tree:      tree,
		attrs:     collectAttrs[E](ordered, tree.Cells()),
		srcOffset: p.srcOffset,
		dstOffset: p.dstOffset,
		srcIndex:  srcIndex,
		dstIndex:  dstIndex,
		vertices:  p.vertices,
		active:    p.active,
		log:       p.log,
	}, nil
}
