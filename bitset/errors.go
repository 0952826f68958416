package bitset

import "errors"

var (
	ErrIndexRange = errors.New("bit index out of range")
	ErrBadLength  = errors.New("bitset length must be greater than zero")
	ErrBadData    = errors.New("packed data is too short for the stated length")
)
