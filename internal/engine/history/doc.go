// Package history provides undo and redo for documents.
//
// History records the character edit behind every document operation. An
// undo replays the inverse edits of the latest entry; a redo replays the
// entry again. Because replays are ordinary edits, annotations follow them
// through the usual propagation: an undo restores the text, and the spans
// of surviving annotations move back with it, but an annotation purged by
// the original edit stays gone.
//
// # Grouping
//
// Edits recorded between BeginGroup and EndGroup form one entry and undo
// together:
//
//	h.BeginGroup("reformat")
//	// ... several edits ...
//	h.EndGroup()
//
// Transaction and GroupScope wrap the same calls.
package history
