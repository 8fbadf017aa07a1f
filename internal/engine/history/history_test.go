package history

import (
	"errors"
	"testing"

	"github.com/dshills/tagtext/internal/engine/buffer"
)

// textApplier applies edits to a plain string, standing in for a document.
type textApplier struct {
	text string
	fail bool
}

func (a *textApplier) apply(edits []buffer.CharEdit) error {
	if a.fail {
		return errors.New("apply failed")
	}
	for _, e := range edits {
		end := e.Offset + len(e.Removed)
		if a.text[e.Offset:end] != e.Removed {
			return errors.New("edit does not match text")
		}
		a.text = a.text[:e.Offset] + e.Inserted + a.text[end:]
	}
	return nil
}

// edit applies e to the text and records it.
func (a *textApplier) edit(h *History, e buffer.CharEdit) {
	if err := a.apply([]buffer.CharEdit{e}); err != nil {
		panic(err)
	}
	h.Record(e)
}

func TestInvert(t *testing.T) {
	e := buffer.CharEdit{Offset: 4, Removed: "cat", Inserted: "dog"}
	inv := Invert(e)
	if inv.Offset != 4 || inv.Removed != "dog" || inv.Inserted != "cat" {
		t.Errorf("Invert() = %+v", inv)
	}
	if Invert(inv) != e {
		t.Error("Invert should be its own inverse")
	}
}

func TestEntryInverseOrder(t *testing.T) {
	e := Entry{Edits: []buffer.CharEdit{
		{Offset: 0, Inserted: "a"},
		{Offset: 1, Inserted: "b"},
	}}
	inv := e.Inverse()
	if inv[0].Offset != 1 || inv[1].Offset != 0 {
		t.Errorf("Inverse() = %+v, want last edit first", inv)
	}
	if e.Bytes() != 2 {
		t.Errorf("Bytes() = %d, want 2", e.Bytes())
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	h := New(0)
	a := &textApplier{text: "The cat sat."}
	a.edit(h, buffer.CharEdit{Offset: 4, Removed: "cat", Inserted: "dog"})
	a.edit(h, buffer.CharEdit{Offset: 0, Inserted: "So "})

	if err := h.Undo(a.apply); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if a.text != "The dog sat." {
		t.Errorf("after undo text = %q", a.text)
	}
	if err := h.Undo(a.apply); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if a.text != "The cat sat." {
		t.Errorf("after second undo text = %q", a.text)
	}
	if err := h.Undo(a.apply); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() on empty = %v, want ErrNothingToUndo", err)
	}

	if err := h.Redo(a.apply); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if a.text != "The dog sat." {
		t.Errorf("after redo text = %q", a.text)
	}
	if h.UndoCount() != 1 || h.RedoCount() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", h.UndoCount(), h.RedoCount())
	}
}

func TestHistoryRedoClearedOnRecord(t *testing.T) {
	h := New(0)
	a := &textApplier{text: "ab"}
	a.edit(h, buffer.CharEdit{Offset: 2, Inserted: "c"})
	_ = h.Undo(a.apply)
	if !h.CanRedo() {
		t.Fatal("should be able to redo")
	}
	a.edit(h, buffer.CharEdit{Offset: 0, Removed: "a"})
	if h.CanRedo() {
		t.Error("recording should clear redo")
	}
	if err := h.Redo(a.apply); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() = %v, want ErrNothingToRedo", err)
	}
}

func TestHistoryFailedApplyRestoresEntry(t *testing.T) {
	h := New(0)
	a := &textApplier{text: "x"}
	a.edit(h, buffer.CharEdit{Offset: 1, Inserted: "y"})

	a.fail = true
	if err := h.Undo(a.apply); err == nil {
		t.Fatal("Undo() should fail")
	}
	if h.UndoCount() != 1 || h.CanRedo() {
		t.Error("failed undo should leave the stacks unchanged")
	}
}

func TestHistoryMaxEntries(t *testing.T) {
	h := New(2)
	a := &textApplier{}
	for _, s := range []string{"a", "b", "c"} {
		a.edit(h, buffer.CharEdit{Offset: len(a.text), Inserted: s})
	}
	if h.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", h.UndoCount())
	}
	h.SetMaxEntries(1)
	if h.UndoCount() != 1 || h.MaxEntries() != 1 {
		t.Errorf("after SetMaxEntries(1): count %d max %d", h.UndoCount(), h.MaxEntries())
	}
	_ = h.Undo(a.apply)
	if a.text != "ab" {
		t.Errorf("text = %q, want %q", a.text, "ab")
	}
}

func TestHistoryGrouping(t *testing.T) {
	h := New(0)
	a := &textApplier{text: "cat"}

	h.BeginGroup("pluralize")
	h.BeginGroup("nested is ignored")
	a.edit(h, buffer.CharEdit{Offset: 3, Inserted: "s"})
	a.edit(h, buffer.CharEdit{Offset: 0, Inserted: "the "})
	if !h.IsGrouping() {
		t.Error("should be grouping")
	}
	if err := h.Undo(a.apply); !errors.Is(err, ErrGroupOpen) {
		t.Errorf("Undo() in group = %v, want ErrGroupOpen", err)
	}
	h.EndGroup()

	info, ok := h.PeekUndo()
	if !ok || info.Name != "pluralize" || info.Edits != 2 {
		t.Errorf("PeekUndo() = %+v, %v", info, ok)
	}
	if err := h.Undo(a.apply); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if a.text != "cat" {
		t.Errorf("text = %q, want %q", a.text, "cat")
	}
	if info, ok := h.PeekRedo(); !ok || info.Name != "pluralize" {
		t.Errorf("PeekRedo() = %+v, %v", info, ok)
	}
}

func TestHistoryEmptyGroupIsNotRecorded(t *testing.T) {
	h := New(0)
	h.BeginGroup("nothing")
	h.EndGroup()
	if h.CanUndo() {
		t.Error("empty group should not be recorded")
	}
}

func TestHistoryCancelGroup(t *testing.T) {
	h := New(0)
	a := &textApplier{text: "a"}
	a.edit(h, buffer.CharEdit{Offset: 1, Inserted: "b"})

	h.BeginGroup("empty")
	h.CancelGroup()
	if h.UndoCount() != 1 {
		t.Error("cancelling an empty group should keep history")
	}

	scope := h.GroupScope("dropped")
	a.edit(h, buffer.CharEdit{Offset: 2, Inserted: "c"})
	scope.Cancel()
	scope.End()
	if h.CanUndo() || h.IsGrouping() {
		t.Error("cancelling a group with edits should clear history")
	}
}

func TestHistoryTransaction(t *testing.T) {
	h := New(0)
	a := &textApplier{text: "a"}
	boom := errors.New("boom")

	err := h.Transaction("partial", func() error {
		a.edit(h, buffer.CharEdit{Offset: 1, Inserted: "b"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Transaction() = %v, want boom", err)
	}
	if info, _ := h.PeekUndo(); info.Name != "partial" {
		t.Errorf("PeekUndo().Name = %q, want partial", info.Name)
	}
	_ = h.Undo(a.apply)
	if a.text != "a" {
		t.Errorf("text = %q, want %q", a.text, "a")
	}
}

func TestHistoryCheckpoint(t *testing.T) {
	h := New(0)
	a := &textApplier{text: "x"}
	a.edit(h, buffer.CharEdit{Offset: 1, Inserted: "1"})
	cp := h.CreateCheckpoint()
	a.edit(h, buffer.CharEdit{Offset: 2, Inserted: "2"})
	a.edit(h, buffer.CharEdit{Offset: 3, Inserted: "3"})

	if err := h.UndoToCheckpoint(cp, a.apply); err != nil {
		t.Fatalf("UndoToCheckpoint() error = %v", err)
	}
	if a.text != "x1" {
		t.Errorf("text = %q, want %q", a.text, "x1")
	}
	if len(h.UndoInfo()) != 1 {
		t.Errorf("UndoInfo() has %d entries, want 1", len(h.UndoInfo()))
	}
}

func TestHistoryClear(t *testing.T) {
	h := New(0)
	h.Record(buffer.CharEdit{Inserted: "a"})
	h.BeginGroup("g")
	h.Clear()
	if h.CanUndo() || h.CanRedo() || h.IsGrouping() {
		t.Error("Clear() should reset everything")
	}
}
