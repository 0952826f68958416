package k2

import (
	"fmt"
	"strings"
)

// debug utilities

// BitmapString renders the compressed bitmap with the internal and leaf
// sections separated and each k² block space delimited.
func (t *Tree) BitmapString() string {
	kk := t.k * t.k
	section := func(lo, hi uint64) string {
		var sb strings.Builder
		for p := lo; p < hi; p++ {
			if p > lo && (p-lo)%kk == 0 {
				sb.WriteByte(' ')
			}
			if t.bits.Test(p) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		return sb.String()
	}
	return fmt.Sprintf("internal[%s] leaves[%s]",
		section(0, t.internalCount),
		section(t.internalCount, t.internalCount+t.leavesCount))
}

// MatrixString renders the full matrix as rows of '.' and 'X', one line per
// matrix line. Useful in test failure output for small trees.
func (t *Tree) MatrixString() string {
	grid := make([][]byte, t.size)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(".", int(t.size)))
	}
	for it := t.Edges(Forward); ; {
		e, ok := it.Next()
		if !ok {
			break
		}
		grid[e.Line][e.Col] = 'X'
	}
	rows := make([]string, t.size)
	for i := range grid {
		rows[i] = string(grid[i])
	}
	return strings.Join(rows, "\n")
}

// EdgesString renders the forward edge enumeration as "(line,col)" tuples.
func (t *Tree) EdgesString() string {
	var parts []string
	for it := t.Edges(Forward); ; {
		e, ok := it.Next()
		if !ok {
			break
		}
		parts = append(parts, fmt.Sprintf("(%d,%d)", e.Line, e.Col))
	}
	return strings.Join(parts, " ")
}
