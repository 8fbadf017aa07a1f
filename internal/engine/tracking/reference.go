package tracking

import "github.com/dshills/tagtext/internal/engine/buffer"

// Reference recomputes the span of an annotation covering tokens [s, e)
// after change c by mapping each boundary through the edit independently.
// A boundary inside the replaced range collapses to the end of the inserted
// tokens; a boundary exactly at a pure insertion stays put at the start and
// moves at the end only when owned. It is the slow model Classify is
// checked against.
func Reference(c buffer.Change, s, e int, owned bool) (start, end int) {
	i, n, m := c.Index, len(c.Inserted), len(c.Removed)
	mapPos := func(x int, isEnd bool) int {
		switch {
		case m == 0 && x == i:
			if owned == isEnd {
				return x + n
			}
			return x
		case x <= i:
			return x
		case x >= i+m:
			return x + n - m
		default:
			return i + n
		}
	}
	return mapPos(s, false), mapPos(e, true)
}
