package k2

import (
	"github.com/mcoimbra/pkgraph/bitset"
)

// Grow returns a tree for a larger matrix with the current content placed in
// the top left subquadrant. newSize must be a power of k no smaller than the
// current size. The cell set, leaf section and iteration order are unchanged;
// one internal block with only its first child set is prepended per added
// level.
func (t *Tree) Grow(newSize uint64) (*Tree, error) {
	if newSize == t.size {
		return t, nil
	}
	if newSize < t.size || !IsPowerOf(t.k, newSize) {
		return nil, ErrBadSize
	}
	if t.IsEmpty() {
		return NewTree(t.k, newSize, 0, 0, bitset.New(0))
	}

	kk := t.k * t.k
	deltaLevels := HeightOf(t.k, newSize) - t.Height()
	prefix := deltaLevels * kk

	bits := bitset.New(prefix + t.bits.Len())
	for level := uint64(0); level < deltaLevels; level++ {
		bits.Set(level * kk)
	}
	t.bits.ForEachSet(func(p uint64) bool {
		bits.Set(prefix + p)
		return true
	})
	return NewTree(t.k, newSize, t.internalCount+prefix, t.leavesCount, bits)
}

// Trim returns a tree for the smallest matrix that still contains every set
// cell, repeatedly discarding the root block while the content fits in the
// top left subquadrant. Trimming never shrinks below size k and is idempotent.
func (t *Tree) Trim() *Tree {
	k := t.k
	kk := k * k
	size := t.size
	internalCount := t.internalCount
	bits := t.bits

	for size > k {
		if t.leavesCount != 0 {
			// Shrink only while the root block addresses nothing outside its
			// first child.
			if bits.Count(1, kk-1) != 0 {
				break
			}
			next := bitset.New(bits.Len() - kk)
			for p, ok := bits.NextSet(kk); ok; p, ok = bits.NextSet(p + 1) {
				next.Set(p - kk)
			}
			bits = next
			internalCount -= kk
		}
		size /= k
	}

	if size == t.size {
		return t
	}
	trimmed, err := NewTree(k, size, internalCount, t.leavesCount, bits)
	if err != nil {
		// Dropping whole root blocks preserves the shape relations.
		panic(err)
	}
	return trimmed
}
