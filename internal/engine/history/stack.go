package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/tagtext/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrGroupOpen     = errors.New("history group in progress")
)

// DefaultMaxEntries is used when the limit is not positive.
const DefaultMaxEntries = 1000

// ApplyFunc applies a sequence of character edits to a document.
type ApplyFunc func(edits []buffer.CharEdit) error

// History manages the undo and redo stacks of one document.
type History struct {
	mu sync.Mutex

	undoStack []Entry
	redoStack []Entry

	// Grouping state
	grouping bool
	group    Entry

	maxEntries int
}

// New creates a history keeping at most maxEntries undo entries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Record adds an applied edit. Outside a group it becomes its own entry,
// named after the edit. Recording clears the redo stack.
func (h *History) Record(e buffer.CharEdit) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.group.Edits = append(h.group.Edits, e)
		return
	}
	h.pushLocked(Entry{Name: e.String(), Edits: []buffer.CharEdit{e}, Timestamp: time.Now()})
}

func (h *History) pushLocked(e Entry) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the latest entry and passes its inverse edits to apply. On
// success the entry moves to the redo stack; on failure it is restored.
// The lock is not held while apply runs.
func (h *History) Undo(apply ApplyFunc) error {
	h.mu.Lock()
	if h.grouping {
		h.mu.Unlock()
		return ErrGroupOpen
	}
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := apply(entry.Inverse()); err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return nil
}

// Redo pops the latest undone entry and passes its edits to apply.
func (h *History) Redo(apply ApplyFunc) error {
	h.mu.Lock()
	if h.grouping {
		h.mu.Unlock()
		return ErrGroupOpen
	}
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := apply(entry.clone().Edits); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a group. Edits recorded until EndGroup form a single
// entry. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.group = Entry{Name: name}
}

// EndGroup closes the group and records it, unless it is empty.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if len(h.group.Edits) > 0 {
		h.group.Timestamp = time.Now()
		h.pushLocked(h.group)
	}
	h.group = Entry{}
}

// CancelGroup drops the group without recording it. The grouped edits
// remain applied, so when there were any, older entries no longer line up
// with the text and the whole history is cleared.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping && len(h.group.Edits) > 0 {
		h.undoStack = nil
		h.redoStack = nil
	}
	h.grouping = false
	h.group = Entry{}
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo and redo entries and closes any group.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = Entry{}
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Info, len(h.undoStack))
	for i, e := range h.undoStack {
		out[i] = e.info()
	}
	return out
}

// PeekUndo describes the entry the next Undo would revert.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo describes the entry the next Redo would reapply.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if excess := len(h.undoStack) - max; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
