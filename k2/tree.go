// Package k2 implements the compressed K²-tree representation of a sparse
// N×N boolean matrix and its mutable builder. The compressed form stores two
// packed bit sections in a single bitmap: internal node bits level by level
// in Morton order, followed by leaf cell bits. Child blocks are located by
// rank over the bitmap, so the structure carries no pointers.
package k2

import (
	"github.com/mcoimbra/pkgraph/bitset"
)

// virtualRoot is the position used for the root, which stores no bit and is
// treated as always set.
const virtualRoot = int64(-1)

// Tree is an immutable compressed K²-tree. A bit at internal position p is 1
// iff some leaf cell below p is 1. The first internalCount bits are internal,
// the remaining leavesCount bits are leaves. leavesCount is a multiple of k²
// and an empty tree has leavesCount == 0.
type Tree struct {
	k             uint64
	size          uint64
	internalCount uint64
	leavesCount   uint64
	bits          *bitset.BitSet
}

// NewTree assembles a Tree from its parts, as produced by Builder.Build or a
// decoded snapshot. It validates the parameter and shape relations but does
// not audit the bit content.
func NewTree(k, size, internalCount, leavesCount uint64, bits *bitset.BitSet) (*Tree, error) {
	if err := CheckK(k); err != nil {
		return nil, err
	}
	if !IsPowerOf(k, size) {
		return nil, ErrBadSize
	}
	if leavesCount%(k*k) != 0 || bits.Len() != internalCount+leavesCount {
		return nil, ErrBadSize
	}
	return &Tree{
		k:             k,
		size:          size,
		internalCount: internalCount,
		leavesCount:   leavesCount,
		bits:          bits,
	}, nil
}

// K returns the subdivision parameter.
func (t *Tree) K() uint64 { return t.k }

// Size returns the matrix side length, a power of k.
func (t *Tree) Size() uint64 { return t.size }

// Height returns log_k(size).
func (t *Tree) Height() uint64 { return HeightOf(t.k, t.size) }

// InternalCount returns the number of internal bits in the bitmap.
func (t *Tree) InternalCount() uint64 { return t.internalCount }

// LeavesCount returns the number of leaf bits in the bitmap.
func (t *Tree) LeavesCount() uint64 { return t.leavesCount }

// Bits returns the packed bitmap. The caller must not mutate it.
func (t *Tree) Bits() *bitset.BitSet { return t.bits }

// IsEmpty reports whether the tree holds no cells.
func (t *Tree) IsEmpty() bool { return t.leavesCount == 0 }

// Cells returns the number of set leaf cells.
func (t *Tree) Cells() uint64 {
	if t.IsEmpty() {
		return 0
	}
	return t.bits.Count(t.internalCount, t.bits.Len()-1)
}

// rank returns the number of set bits at positions <= p. The child block of
// the set internal bit at p starts at position rank(p) * k². The virtual root
// has rank 0, so its children occupy the first block.
func (t *Tree) rank(p int64) uint64 {
	if p == virtualRoot {
		return 0
	}
	return t.bits.Count(0, uint64(p))
}

// leafOrd returns the ordinal of the set leaf bit at position p within the
// leaves section. Leaf bits appear in the bitmap in Morton order, so this is
// the edge's position in forward iteration and its attribute slot.
func (t *Tree) leafOrd(p uint64) uint64 {
	return t.bits.Count(t.internalCount, p) - 1
}

// Direction selects the orientation of an edge iteration.
type Direction int

const (
	// Forward yields cells of the matrix as stored.
	Forward Direction = iota
	// Transposed yields cells of the transposed matrix in the transposed
	// matrix's own Morton order, without structural change to the tree.
	Transposed
)

// Edge is one set cell of the matrix. Ord is the cell's position in Forward
// Morton order regardless of the direction it was yielded in, so it indexes a
// parallel attribute array either way.
type Edge struct {
	Line uint64
	Col  uint64
	Ord  uint64
}

type frame struct {
	p    int64
	n    uint64
	line uint64
	col  uint64
}

// EdgeIterator walks the set cells of a Tree depth first. Cells are yielded
// in the Morton order of the chosen direction.
type EdgeIterator struct {
	t     *Tree
	dir   Direction
	stack []frame
	ord   uint64
}

// Edges returns an iterator over the set cells of t in the given direction.
func (t *Tree) Edges(dir Direction) *EdgeIterator {
	it := &EdgeIterator{t: t, dir: dir}
	if !t.IsEmpty() {
		it.stack = append(it.stack, frame{p: virtualRoot, n: t.size})
	}
	return it
}

// Next returns the next set cell. ok is false when iteration is complete.
func (it *EdgeIterator) Next() (e Edge, ok bool) {
	t := it.t
	k := t.k
	kk := k * k
	for len(it.stack) > 0 {
		f := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		if f.p != virtualRoot && uint64(f.p) >= t.internalCount {
			// Leaf bit.
			if !t.bits.Test(uint64(f.p)) {
				continue
			}
			ord := it.ord
			if it.dir == Transposed {
				ord = t.leafOrd(uint64(f.p))
			}
			it.ord++
			return Edge{Line: f.line, Col: f.col, Ord: ord}, true
		}
		if f.p != virtualRoot && !t.bits.Test(uint64(f.p)) {
			continue
		}

		y := t.rank(f.p) * kk
		sub := f.n / k
		// Push children in reverse so child 0 pops first. In the transposed
		// direction the i-th child of the view is the mirrored child of the
		// stored tree.
		for j := kk; j > 0; j-- {
			i := j - 1
			ci := i
			if it.dir == Transposed {
				ci = (i%k)*k + i/k
			}
			it.stack = append(it.stack, frame{
				p:    int64(y + ci),
				n:    sub,
				line: f.line + (i / k * sub),
				col:  f.col + (i % k * sub),
			})
		}
	}
	return Edge{}, false
}

// CollectEdges drains an iterator into a slice, mainly for tests.
func CollectEdges(it *EdgeIterator) []Edge {
	var out []Edge
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		out = append(out, e)
	}
	return out
}

// EdgesInLine returns the set cells of the given matrix line in ascending
// column order, descending only into subquadrants that cover the line.
func (t *Tree) EdgesInLine(line uint64) ([]Edge, error) {
	if line >= t.size {
		return nil, ErrCoordRange
	}
	var out []Edge
	if !t.IsEmpty() {
		t.scan(virtualRoot, t.size, 0, 0, func(f frame) bool { return f.line <= line && line < f.line+f.n }, &out)
	}
	return out, nil
}

// EdgesInCol returns the set cells of the given matrix column in ascending
// line order, descending only into subquadrants that cover the column.
func (t *Tree) EdgesInCol(col uint64) ([]Edge, error) {
	if col >= t.size {
		return nil, ErrCoordRange
	}
	var out []Edge
	if !t.IsEmpty() {
		t.scan(virtualRoot, t.size, 0, 0, func(f frame) bool { return f.col <= col && col < f.col+f.n }, &out)
	}
	return out, nil
}

func (t *Tree) scan(p int64, n, line, col uint64, covers func(frame) bool, out *[]Edge) {
	if p != virtualRoot && uint64(p) >= t.internalCount {
		if t.bits.Test(uint64(p)) {
			*out = append(*out, Edge{Line: line, Col: col, Ord: t.leafOrd(uint64(p))})
		}
		return
	}
	if p != virtualRoot && !t.bits.Test(uint64(p)) {
		return
	}
	k := t.k
	y := t.rank(p) * k * k
	sub := n / k
	for i := uint64(0); i < k*k; i++ {
		child := frame{p: int64(y + i), n: sub, line: line + i/k*sub, col: col + i%k*sub}
		if covers(child) {
			t.scan(child.p, child.n, child.line, child.col, covers, out)
		}
	}
}

// Equal reports whether two trees have the same parameter, geometry and bits.
func (t *Tree) Equal(o *Tree) bool {
	return t.k == o.k && t.size == o.size &&
		t.internalCount == o.internalCount && t.leavesCount == o.leavesCount &&
		t.bits.Equal(o.bits)
}
