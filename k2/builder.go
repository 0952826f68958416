package k2

import (
	"github.com/mcoimbra/pkgraph/bitset"
)

// Builder accumulates cells of a k^height sided matrix in a dense per-level
// bitmap and compresses them into a Tree. The dense bitmap stores levels
// 1..height contiguously; the root is virtual. The leaf level dominates the
// allocation at size², which is acceptable because size is bounded by the
// vertex range of a single partition.
type Builder struct {
	k       uint64
	size    uint64
	height  uint64
	offsets []uint64
	bits    *bitset.BitSet
}

// NewBuilder returns an empty builder for a size-sided matrix. size must be a
// positive power of k.
func NewBuilder(k, size uint64) (*Builder, error) {
	if err := CheckK(k); err != nil {
		return nil, err
	}
	if !IsPowerOf(k, size) {
		return nil, ErrBadSize
	}
	height := HeightOf(k, size)
	return &Builder{
		k:       k,
		size:    size,
		height:  height,
		offsets: LevelOffsets(k, height),
		bits:    bitset.New(DenseLength(k, height)),
	}, nil
}

// NewBuilderFromTree rehydrates a compressed tree into a fresh builder with
// the same parameter and size, ready for further mutation.
func NewBuilderFromTree(t *Tree) (*Builder, error) {
	b, err := NewBuilder(t.K(), t.Size())
	if err != nil {
		return nil, err
	}
	for it := t.Edges(Forward); ; {
		e, ok := it.Next()
		if !ok {
			break
		}
		if _, err := b.AddEdge(e.Line, e.Col); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// K returns the subdivision parameter.
func (b *Builder) K() uint64 { return b.k }

// Size returns the matrix side length.
func (b *Builder) Size() uint64 { return b.size }

// Height returns log_k(size).
func (b *Builder) Height() uint64 { return b.height }

// AddEdge sets the cell (line, col) and returns its tree index. The walk runs
// from the leaf level upward and stops at the first ancestor that is already
// set, so re-adding a present cell is an idempotent single bit test.
func (b *Builder) AddEdge(line, col uint64) (uint64, error) {
	if line >= b.size || col >= b.size {
		return 0, ErrCoordRange
	}
	kk := b.k * b.k
	index := TreeIndexOf(b.k, b.height, line, col)
	m := index
	for level := b.height; level >= 1; level-- {
		p := b.offsets[level] + m
		if b.bits.Test(p) {
			break
		}
		b.bits.Set(p)
		m /= kk
	}
	return index, nil
}

// HasEdge reports whether the cell (line, col) is set.
func (b *Builder) HasEdge(line, col uint64) (bool, error) {
	if line >= b.size || col >= b.size {
		return false, ErrCoordRange
	}
	m := TreeIndexOf(b.k, b.height, line, col)
	return b.bits.Test(b.offsets[b.height] + m), nil
}

// RemoveEdge clears the cell (line, col) and every ancestor whose child block
// becomes entirely zero. It reports whether the cell was present.
func (b *Builder) RemoveEdge(line, col uint64) (bool, error) {
	if line >= b.size || col >= b.size {
		return false, ErrCoordRange
	}
	kk := b.k * b.k
	m := TreeIndexOf(b.k, b.height, line, col)
	if !b.bits.Test(b.offsets[b.height] + m) {
		return false, nil
	}
	b.bits.Unset(b.offsets[b.height] + m)
	for level := b.height; level > 1; level-- {
		blockStart := b.offsets[level] + m/kk*kk
		if b.bits.Count(blockStart, blockStart+kk-1) != 0 {
			break
		}
		m /= kk
		b.bits.Unset(b.offsets[level-1] + m)
	}
	return true, nil
}

// Build compresses the dense bitmap into a Tree. Every entirely zero k² block
// is dropped; the survivors concatenate level by level, with blocks from the
// leaf level forming the leaves section. The builder remains usable.
func (b *Builder) Build() *Tree {
	kk := b.k * b.k

	// A block survives iff it contains a set bit, so walking set bits visits
	// exactly the surviving blocks in order.
	countKept := func(lo, hi uint64) uint64 {
		blocks := uint64(0)
		lastBlock := uint64(0)
		seen := false
		for p, ok := b.bits.NextSet(lo); ok && p <= hi; p, ok = b.bits.NextSet(p + 1) {
			block := (p - lo) / kk
			if !seen || block != lastBlock {
				blocks++
				lastBlock = block
				seen = true
			}
			if p == hi {
				break
			}
		}
		return blocks
	}

	var internalBlocks, leafBlocks uint64
	leafLo := b.offsets[b.height]
	denseLen := b.bits.Len()
	if b.height > 1 {
		internalBlocks = countKept(0, leafLo-1)
	}
	leafBlocks = countKept(leafLo, denseLen-1)

	internalCount := internalBlocks * kk
	leavesCount := leafBlocks * kk
	packed := bitset.New(internalCount + leavesCount)

	out := uint64(0)
	copyKept := func(lo, hi uint64) {
		lastBlock := ^uint64(0)
		for p, ok := b.bits.NextSet(lo); ok && p <= hi; p, ok = b.bits.NextSet(p + 1) {
			block := (p - lo) / kk
			if block != lastBlock {
				if lastBlock != ^uint64(0) {
					out += kk
				}
				lastBlock = block
			}
			packed.Set(out + (p-lo)%kk)
			if p == hi {
				break
			}
		}
		if lastBlock != ^uint64(0) {
			out += kk
		}
	}
	if b.height > 1 {
		copyKept(0, leafLo-1)
	}
	copyKept(leafLo, denseLen-1)

	t, err := NewTree(b.k, b.size, internalCount, leavesCount, packed)
	if err != nil {
		// The shapes above satisfy NewTree by construction.
		panic(err)
	}
	return t
}
