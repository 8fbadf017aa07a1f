package engine

// ============================================================================
// Undo and Redo
// ============================================================================

// Undo reverts the most recent operation or group. The reverting edits
// propagate like any other, so surviving annotations move back with the
// text while purged annotations are not restored.
func (d *Document) Undo() error {
	return d.replay(d.undo.Undo)
}

// Redo reapplies the most recently undone operation or group.
func (d *Document) Redo() error {
	return d.replay(d.undo.Redo)
}

// CanUndo reports whether Undo has anything to revert.
func (d *Document) CanUndo() bool {
	return d.undo.CanUndo()
}

// CanRedo reports whether Redo has anything to reapply.
func (d *Document) CanRedo() bool {
	return d.undo.CanRedo()
}

// Group runs fn and records every edit it makes as one undo entry named
// name. The edits are recorded even when fn fails.
func (d *Document) Group(name string, fn func() error) error {
	return d.undo.Transaction(name, fn)
}

// ClearUndo forgets all undo and redo entries.
func (d *Document) ClearUndo() {
	d.undo.Clear()
}
