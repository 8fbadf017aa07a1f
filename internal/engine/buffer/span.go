package buffer

import (
	"fmt"

	"github.com/dshills/tagtext/internal/engine/tokenizer"
)

// Span represents a byte range in the buffer.
// Start is inclusive, End is exclusive: [Start, End).
type Span struct {
	Start int // Inclusive start offset
	End   int // Exclusive end offset
}

// NewSpan creates a new Span from start and end offsets.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

func spanOf(s tokenizer.Span, base int) Span {
	return Span{Start: base + s.Start, End: base + s.End}
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty returns true if the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains returns true if the given offset is within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Overlaps returns true if this span overlaps with another span.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Shift returns a new span shifted by the given delta.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}
