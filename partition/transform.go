package partition

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"

	"github.com/mcoimbra/pkgraph/bitset"
	"github.com/mcoimbra/pkgraph/k2"
)

// Map returns a partition with each edge attribute replaced by f of the
// edge. The tree, indexes and vertex overlay are shared with the input.
// These are package functions rather than methods because the attribute type
// changes.
func Map[V, E, E2 any](p *Partition[V, E], f func(Edge[E]) E2) *Partition[V, E2] {
	attrs := make([]E2, p.Size())
	for it := p.tree.Edges(p.direction()); ; {
		cell, ok := it.Next()
		if !ok {
			break
		}
		attrs[cell.Ord] = f(Edge[E]{
			Src:  p.srcOffset + VertexID(cell.Line),
			Dst:  p.dstOffset + VertexID(cell.Col),
			Attr: p.attrs[cell.Ord],
		})
	}
	return withAttrs(p, attrs)
}

// MapAttrs returns a partition whose edge attributes are replaced by the
// given sequence, consumed in the partition's iteration order. It fails with
// ErrEdgeCountMismatch when the sequence length differs from the edge count.
func MapAttrs[V, E, E2 any](p *Partition[V, E], attrs []E2) (*Partition[V, E2], error) {
	if len(attrs) != p.Size() {
		return nil, errors.Wrapf(ErrEdgeCountMismatch, "have %d edges, got %d attributes", p.Size(), len(attrs))
	}
	out := make([]E2, len(attrs))
	i := 0
	for it := p.tree.Edges(p.direction()); ; {
		cell, ok := it.Next()
		if !ok {
			break
		}
		out[cell.Ord] = attrs[i]
		i++
	}
	return withAttrs(p, out), nil
}

func withAttrs[V, E, E2 any](p *Partition[V, E], attrs []E2) *Partition[V, E2] {
	return &Partition[V, E2]{
		k:         p.k,
		tree:      p.tree,
		reversed:  p.reversed,
		attrs:     attrs,
		srcOffset: p.srcOffset,
		dstOffset: p.dstOffset,
		srcIndex:  p.srcIndex,
		dstIndex:  p.dstIndex,
		vertices:  p.vertices,
		active:    p.active,
		log:       p.log,
	}
}

// InnerJoin returns a partition over the edges present in both inputs, with
// attributes produced by f. When the inputs share a coordinate system the
// join is a merge walk over the two tree orders; otherwise the edges of other
// are hashed by global vertex pair and looked up once per edge of p. The
// result carries p's vertex overlay and active set.
func InnerJoin[V, E, V2, E2, E3 any](
	p *Partition[V, E], other *Partition[V2, E2],
	f func(src, dst VertexID, a E, b E2) E3,
) (*Partition[V, E3], error) {
	size := p.tree.Size()
	builder, err := k2.NewBuilder(p.k, size)
	if err != nil {
		return nil, errors.Wrap(err, "inner join")
	}
	srcIndex := bitset.New(size)
	dstIndex := bitset.New(size)
	ordered := redblacktree.NewWith(utils.UInt64Comparator)

	emit := func(src, dst VertexID, a E, b E2) error {
		line := uint64(src - p.srcOffset)
		col := uint64(dst - p.dstOffset)
		index, err := builder.AddEdge(line, col)
		if err != nil {
			return err
		}
		srcIndex.Set(line)
		dstIndex.Set(col)
		ordered.Put(index, f(src, dst, a, b))
		return nil
	}

	aligned := p.k == other.k && size == other.tree.Size() &&
		p.srcOffset == other.srcOffset && p.dstOffset == other.dstOffset
	if aligned {
		// Both iterations ascend the same Morton order, so one synchronized
		// walk finds every common edge.
		height := p.tree.Height()
		itp := p.tree.Edges(p.direction())
		ito := other.tree.Edges(other.direction())
		ep, okp := itp.Next()
		eo, oko := ito.Next()
		for okp && oko {
			ip := k2.TreeIndexOf(p.k, height, ep.Line, ep.Col)
			io := k2.TreeIndexOf(p.k, height, eo.Line, eo.Col)
			switch {
			case ip < io:
				ep, okp = itp.Next()
			case io < ip:
				eo, oko = ito.Next()
			default:
				err := emit(p.srcOffset+VertexID(ep.Line), p.dstOffset+VertexID(ep.Col),
					p.attrs[ep.Ord], other.attrs[eo.Ord])
				if err != nil {
					return nil, errors.Wrap(err, "inner join")
				}
				ep, okp = itp.Next()
				eo, oko = ito.Next()
			}
		}
	} else {
		byPair := make(map[VertexPair]E2, other.Size())
		for it := other.Iterator(); ; {
			e, ok := it.Next()
			if !ok {
				break
			}
			byPair[VertexPair{Src: e.Src, Dst: e.Dst}] = e.Attr
		}
		for it := p.Iterator(); ; {
			e, ok := it.Next()
			if !ok {
				break
			}
			b, ok := byPair[VertexPair{Src: e.Src, Dst: e.Dst}]
			if !ok {
				continue
			}
			if err := emit(e.Src, e.Dst, e.Attr, b); err != nil {
				return nil, errors.Wrap(err, "inner join")
			}
		}
	}

	tree := builder.Build()
	if p.log != nil {
		p.log.Debugf("innerJoin: %d common edges (aligned=%t)", int(tree.Cells()), aligned)
	}
	return &Partition[V, E3]{
		k:         p.k,
		tree:      tree,
		attrs:     collectAttrs[E3](ordered, tree.Cells()),
		srcOffset: p.srcOffset,
		dstOffset: p.dstOffset,
		srcIndex:  srcIndex,
		dstIndex:  dstIndex,
		vertices:  p.vertices,
		active:    p.active,
		log:       p.log,
	}, nil
}
