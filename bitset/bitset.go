// Package bitset implements the dense packed-bit array underlying the k2 tree
// structures. Bits are stored LSB0 in 64 bit words. All range counting is done
// with per-word popcounts so that Count is O(n/64) in the width of the range.
package bitset

import "math/bits"

const wordBits = 64

// BitSet is a fixed-length dense bit array. The zero value is not usable;
// construct with New or FromBytes.
type BitSet struct {
	words  []uint64
	length uint64
}

// New returns a BitSet of the given logical length with all bits clear.
func New(length uint64) *BitSet {
	return &BitSet{
		words:  make([]uint64, (length+wordBits-1)/wordBits),
		length: length,
	}
}

// Len returns the logical length of the set in bits.
func (b *BitSet) Len() uint64 { return b.length }

// Test reports whether bit i is set.
func (b *BitSet) Test(i uint64) bool {
	b.check(i)
	return b.words[i>>6]&(1<<(i&63)) != 0
}

// Set sets bit i to 1.
func (b *BitSet) Set(i uint64) {
	b.check(i)
	b.words[i>>6] |= 1 << (i & 63)
}

// Unset clears bit i.
func (b *BitSet) Unset(i uint64) {
	b.check(i)
	b.words[i>>6] &^= 1 << (i & 63)
}

// Count returns the number of set bits in the inclusive range [lo, hi].
func (b *BitSet) Count(lo, hi uint64) uint64 {
	b.check(lo)
	b.check(hi)
	if hi < lo {
		return 0
	}

	loWord := lo >> 6
	hiWord := hi >> 6

	// Mask away bits below lo in the first word and above hi in the last.
	loMask := ^uint64(0) << (lo & 63)
	hiMask := ^uint64(0) >> (63 - hi&63)

	if loWord == hiWord {
		return uint64(bits.OnesCount64(b.words[loWord] & loMask & hiMask))
	}

	n := uint64(bits.OnesCount64(b.words[loWord] & loMask))
	for w := loWord + 1; w < hiWord; w++ {
		n += uint64(bits.OnesCount64(b.words[w]))
	}
	n += uint64(bits.OnesCount64(b.words[hiWord] & hiMask))
	return n
}

// Cardinality returns the total number of set bits.
func (b *BitSet) Cardinality() uint64 {
	n := uint64(0)
	for _, w := range b.words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}

// IsEmpty reports whether no bit is set.
func (b *BitSet) IsEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// NextSet returns the position of the first set bit at or after i. ok is
// false when no set bit remains.
func (b *BitSet) NextSet(i uint64) (pos uint64, ok bool) {
	if i >= b.length {
		return 0, false
	}

	// First, the possibly partial word containing i.
	w := i >> 6
	if first := b.words[w] >> (i & 63); first != 0 {
		return i + uint64(bits.TrailingZeros64(first)), true
	}

	for w++; w < uint64(len(b.words)); w++ {
		if b.words[w] != 0 {
			return w<<6 + uint64(bits.TrailingZeros64(b.words[w])), true
		}
	}
	return 0, false
}

// ForEachSet calls visit with each set position in ascending order. Iteration
// stops early if visit returns false.
func (b *BitSet) ForEachSet(visit func(i uint64) bool) {
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		if !visit(i) {
			return
		}
		if i+1 >= b.length {
			return
		}
	}
}

// Clone returns an independent copy of b.
func (b *BitSet) Clone() *BitSet {
	c := &BitSet{
		words:  make([]uint64, len(b.words)),
		length: b.length,
	}
	copy(c.words, b.words)
	return c
}

// Equal reports whether b and c have the same length and the same set bits.
func (b *BitSet) Equal(c *BitSet) bool {
	if b.length != c.length {
		return false
	}
	for i := range b.words {
		if b.words[i] != c.words[i] {
			return false
		}
	}
	return true
}

func (b *BitSet) check(i uint64) {
	if i >= b.length {
		panic(ErrIndexRange)
	}
}
