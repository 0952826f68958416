package partition

import "errors"

var (
	ErrEdgeCountMismatch = errors.New("attribute sequence length does not match the partition edge count")
)
