package buffer

import (
	"fmt"
	"strings"
)

// CharEdit describes the character-level replacement that caused a Change.
type CharEdit struct {
	Offset   int    // Byte offset of the replaced range
	Removed  string // The text that was replaced (if any)
	Inserted string // The replacement text
}

// String returns a human-readable representation of the edit.
func (e CharEdit) String() string {
	switch {
	case e.Removed == "":
		return fmt.Sprintf("Insert(%d, %q)", e.Offset, e.Inserted)
	case e.Inserted == "":
		return fmt.Sprintf("Delete[%d:%d)", e.Offset, e.Offset+len(e.Removed))
	default:
		return fmt.Sprintf("Replace[%d:%d) with %q", e.Offset, e.Offset+len(e.Removed), e.Inserted)
	}
}

// Delta returns the change in buffer length caused by this edit.
func (e CharEdit) Delta() int {
	return len(e.Inserted) - len(e.Removed)
}

// ChangeType categorizes a token sequence change.
type ChangeType uint8

const (
	ChangeNone    ChangeType = iota // No token was inserted or removed
	ChangeInsert                    // Tokens were inserted
	ChangeDelete                    // Tokens were removed
	ChangeReplace                   // Tokens were replaced
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change describes one modification of the token sequence: at Index, the
// Removed tokens were replaced by the Inserted ones. Tokens outside that
// window kept their identity.
type Change struct {
	Index    int      // Token index of the first removed/inserted token
	Inserted []*Token // Tokens now at [Index, Index+len(Inserted))
	Removed  []*Token // Tokens that were at [Index, Index+len(Removed))
	Cause    CharEdit // The character edit that produced this change
}

// Type returns the kind of change.
func (c Change) Type() ChangeType {
	switch {
	case len(c.Inserted) == 0 && len(c.Removed) == 0:
		return ChangeNone
	case len(c.Removed) == 0:
		return ChangeInsert
	case len(c.Inserted) == 0:
		return ChangeDelete
	default:
		return ChangeReplace
	}
}

// IsEmpty reports whether no token was inserted or removed.
func (c Change) IsEmpty() bool {
	return c.Type() == ChangeNone
}

// Delta returns the change in token count.
func (c Change) Delta() int {
	return len(c.Inserted) - len(c.Removed)
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	return fmt.Sprintf("%s@%d -[%s] +[%s]", c.Type(), c.Index,
		joinValues(c.Removed), joinValues(c.Inserted))
}

func joinValues(toks []*Token) string {
	vals := make([]string, len(toks))
	for i, t := range toks {
		vals[i] = t.Value()
	}
	return strings.Join(vals, " ")
}
