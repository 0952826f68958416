package k2

import "errors"

var (
	ErrBadK       = errors.New("k must be at least 2")
	ErrBadSize    = errors.New("size must be a positive power of k and no smaller than the current size")
	ErrCoordRange = errors.New("matrix coordinate out of range")
)
