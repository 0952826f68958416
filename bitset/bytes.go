package bitset

import "encoding/binary"

// Bytes returns the packed words of b in big endian order. The slice length is
// always a multiple of 8. Trailing pad bits beyond Len are zero.
func (b *BitSet) Bytes() []byte {
	out := make([]byte, len(b.words)*8)
	for i, w := range b.words {
		binary.BigEndian.PutUint64(out[i*8:], w)
	}
	return out
}

// FromBytes reconstructs a BitSet of the given logical length from data
// produced by Bytes. It returns ErrBadLength for a zero length and ErrBadData
// when data is too short to cover length bits.
func FromBytes(length uint64, data []byte) (*BitSet, error) {
	if length == 0 {
		return nil, ErrBadLength
	}
	nwords := (length + wordBits - 1) / wordBits
	if uint64(len(data)) < nwords*8 {
		return nil, ErrBadData
	}
	b := New(length)
	for i := range b.words {
		b.words[i] = binary.BigEndian.Uint64(data[i*8:])
	}
	// Mask pad bits so Equal and Cardinality are well defined regardless of
	// what the tail of data carried.
	if rem := length & 63; rem != 0 {
		b.words[nwords-1] &= ^uint64(0) >> (64 - rem)
	}
	return b, nil
}
