package history

import (
	"slices"
	"time"

	"github.com/dshills/tagtext/internal/engine/buffer"
)

// Entry is one undo unit: the edits of a single operation or group in the
// order they were applied.
type Entry struct {
	Name      string
	Edits     []buffer.CharEdit
	Timestamp time.Time
}

// Inverse returns the edits that revert e, in the order they must be
// applied.
func (e Entry) Inverse() []buffer.CharEdit {
	out := make([]buffer.CharEdit, len(e.Edits))
	for i, ed := range e.Edits {
		out[len(e.Edits)-1-i] = Invert(ed)
	}
	return out
}

// Bytes returns the net change in text length when e is applied.
func (e Entry) Bytes() int {
	n := 0
	for _, ed := range e.Edits {
		n += len(ed.Inserted) - len(ed.Removed)
	}
	return n
}

func (e Entry) clone() Entry {
	e.Edits = slices.Clone(e.Edits)
	return e
}

// Invert returns the edit that undoes e.
func Invert(e buffer.CharEdit) buffer.CharEdit {
	return buffer.CharEdit{Offset: e.Offset, Removed: e.Inserted, Inserted: e.Removed}
}

// Info describes an entry without exposing its edits.
type Info struct {
	Name      string
	Edits     int
	Timestamp time.Time
}

func (e Entry) info() Info {
	return Info{Name: e.Name, Edits: len(e.Edits), Timestamp: e.Timestamp}
}
