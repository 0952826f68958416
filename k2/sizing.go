package k2

// Sizing arithmetic shared by the builder and the compressed tree. All sizes
// are powers of k. Heights count matrix subdivision levels, so a size k matrix
// has height 1 and a size k^h matrix has height h.

// CheckK validates the subdivision parameter.
func CheckK(k uint64) error {
	if k < 2 {
		return ErrBadK
	}
	return nil
}

// SizeFor returns the smallest power of k that is >= bound. A bound of zero or
// one yields k, the smallest usable matrix side.
func SizeFor(k, bound uint64) uint64 {
	size := k
	for size < bound {
		size *= k
	}
	return size
}

// HeightOf returns h such that k^h == size. size must be a power of k.
func HeightOf(k, size uint64) uint64 {
	h := uint64(0)
	for n := size; n > 1; n /= k {
		h++
	}
	return h
}

// IsPowerOf reports whether size is a positive power of k (k^1 or higher).
func IsPowerOf(k, size uint64) bool {
	if size < k {
		return false
	}
	n := size
	for n > 1 {
		if n%k != 0 {
			return false
		}
		n /= k
	}
	return true
}

// LevelOffsets returns the offset of each subdivision level within the dense
// builder bitmap. The root is virtual and stores no bit, so offsets[0] is
// unused, offsets[1] = 0 and offsets[level] = sum of k^(2j) for 1 <= j < level.
// The returned slice has height+1 entries.
func LevelOffsets(k, height uint64) []uint64 {
	offsets := make([]uint64, height+1)
	levelBits := k * k
	for level := uint64(2); level <= height; level++ {
		offsets[level] = offsets[level-1] + levelBits
		levelBits *= k * k
	}
	return offsets
}

// DenseLength returns the total bit length of the dense builder bitmap for
// the given height: sum of k^(2j) for j = 1..height.
func DenseLength(k, height uint64) uint64 {
	total := uint64(0)
	levelBits := k * k
	for level := uint64(1); level <= height; level++ {
		total += levelBits
		levelBits *= k * k
	}
	return total
}
