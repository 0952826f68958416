package partition

import (
	"fmt"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"

	"github.com/mcoimbra/pkgraph/bitset"
	"github.com/mcoimbra/pkgraph/k2"
	"github.com/mcoimbra/pkgraph/metrics"
)

// bounds is the global bounding box a partition must cover. Mutation
// operations seed it with the existing extent so a rebuild never shrinks the
// coordinate space or moves edges relative to it.
type bounds struct {
	srcLo, srcHi VertexID
	dstLo, dstHi VertexID
}

func boundsOf[E any](edges []Edge[E]) (bounds, bool) {
	if len(edges) == 0 {
		return bounds{}, false
	}
	b := bounds{
		srcLo: edges[0].Src, srcHi: edges[0].Src,
		dstLo: edges[0].Dst, dstHi: edges[0].Dst,
	}
	for _, e := range edges[1:] {
		b.srcLo = min(b.srcLo, e.Src)
		b.srcHi = max(b.srcHi, e.Src)
		b.dstLo = min(b.dstLo, e.Dst)
		b.dstHi = max(b.dstHi, e.Dst)
	}
	return b, true
}

func (b bounds) union(o bounds) bounds {
	return bounds{
		srcLo: min(b.srcLo, o.srcLo), srcHi: max(b.srcHi, o.srcHi),
		dstLo: min(b.dstLo, o.dstLo), dstHi: max(b.dstHi, o.dstHi),
	}
}

func (b bounds) span() uint64 {
	return uint64(max(b.srcHi-b.srcLo, b.dstHi-b.dstLo)) + 1
}

// Build constructs a partition over the given edges. Duplicate (src, dst)
// pairs collapse to a single edge carrying the attribute of the last
// occurrence. The local coordinate space has its origin at the minimum source
// and destination IDs and a side equal to the smallest power of k covering
// the extent.
func Build[V, E any](k uint64, edges []Edge[E], opts ...Option) (*Partition[V, E], error) {
	o := newOptions(opts...)
	b, ok := boundsOf(edges)
	if !ok {
		b = bounds{}
	}
	p, err := assemble[V, E](k, b, edges, map[VertexID]V{}, nil, o)
	if err != nil {
		return nil, errors.Wrap(err, "build partition")
	}
	metrics.PartitionsBuilt.Inc()
	metrics.LiveEdges.Add(float64(p.Size()))
	if o.Log != nil {
		o.Log.Debugf("built partition: %d edges, matrix %d, origin (%d,%d)",
			p.Size(), p.tree.Size(), p.srcOffset, p.dstOffset)
	}
	return p, nil
}

// assemble builds the tree, attribute array and vertex indexes for a set of
// global edges inside the given bounding box. Attributes are sorted into tree
// order through an ordered map keyed by tree index, so insertion order only
// matters for duplicates, where the last insertion wins.
func assemble[V, E any](
	k uint64, b bounds, edges []Edge[E],
	vertices map[VertexID]V, active *activeSet, o Options,
) (*Partition[V, E], error) {
	if err := k2.CheckK(k); err != nil {
		return nil, err
	}
	size := k2.SizeFor(k, b.span())
	builder, err := k2.NewBuilder(k, size)
	if err != nil {
		return nil, err
	}

	srcIndex := bitset.New(size)
	dstIndex := bitset.New(size)
	ordered := redblacktree.NewWith(utils.UInt64Comparator)

	for _, e := range edges {
		if e.Src < b.srcLo || e.Dst < b.dstLo {
			// The caller computes the box from these same edges.
			panic(fmt.Sprintf("edge (%d,%d) outside bounding box", e.Src, e.Dst))
		}
		line := uint64(e.Src - b.srcLo)
		col := uint64(e.Dst - b.dstLo)
		index, err := builder.AddEdge(line, col)
		if err != nil {
			return nil, err
		}
		srcIndex.Set(line)
		dstIndex.Set(col)
		ordered.Put(index, e.Attr)
	}

	tree := builder.Build()
	attrs := collectAttrs[E](ordered, tree.Cells())

	return &Partition[V, E]{
		k:         k,
		tree:      tree,
		attrs:     attrs,
		srcOffset: b.srcLo,
		dstOffset: b.dstLo,
		srcIndex:  srcIndex,
		dstIndex:  dstIndex,
		vertices:  vertices,
		active:    active,
		log:       o.Log,
	}, nil
}

// collectAttrs drains an index-ordered attribute map into the tree-order
// attribute array. The count must match the tree's cell count or the pairing
// between attributes and tree positions has been lost, which is a bug.
func collectAttrs[E any](ordered *redblacktree.Tree, cells uint64) []E {
	attrs := make([]E, 0, ordered.Size())
	for it := ordered.Iterator(); it.Next(); {
		attrs = append(attrs, it.Value().(E))
	}
	if uint64(len(attrs)) != cells {
		panic(fmt.Sprintf("attribute array length %d does not match tree cells %d", len(attrs), cells))
	}
	return attrs
}

// reboxActive re-derives an active set for a partition whose geometry
// changed. Membership is preserved for every ID still in range.
func reboxActive(a *activeSet, srcOffset, dstOffset VertexID, size uint64) *activeSet {
	if a == nil {
		return nil
	}
	offset := min(srcOffset, dstOffset)
	span := uint64(max(srcOffset, dstOffset)-offset) + size
	out := &activeSet{offset: offset, bits: bitset.New(span)}
	a.bits.ForEachSet(func(i uint64) bool {
		v := a.offset + VertexID(i)
		if v >= offset && uint64(v-offset) < span {
			out.bits.Set(uint64(v - offset))
		}
		return true
	})
	return out
}
