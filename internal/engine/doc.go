// Package engine provides the annotated text document for tagtext.
//
// The engine package is the facade over the text model: a Document owns
// one token buffer, one annotation store and the propagator that keeps the
// two in step, and exposes them through a single thread-safe API.
//
// # Architecture
//
// The document is built on several sub-packages:
//
//   - tokenizer: script-aware splitting of text into token spans
//   - buffer: characters plus a token overlay with incremental retokenization
//   - annotation: typed, attributed token spans and their ordered store
//   - tracking: propagation of token changes to annotation spans
//   - history: undo and redo of character edits
//   - attrs, markup: attribute containers, name validation, XML escaping
//
// # Edits
//
// Every structural edit runs through one entry point: the character or
// token edit is applied to the buffer, the buffer retokenizes the affected
// run and reports one Change, the propagator commits the span deltas of
// every annotation, and finally listeners are told. An edit either
// completes or fails before anything is modified.
//
//	doc, _ := engine.New(engine.WithContent("The cat sat."))
//	s, _ := doc.Annotate("sentence", 0, 4)
//	doc.DeleteChars(5, 2)       // tokens: The c sat .
//	doc.InsertToken(1, "big")   // s now covers 5 tokens
//
// # Undo
//
// Every edit's character edit is recorded. Undo replays the inverse edits
// of the latest entry through the same entry point, so annotations move
// back with the text; an annotation purged by the original edit stays
// gone. Group records several edits as one entry.
//
// # Views
//
// A View looks at the document through one annotation. Token indices and
// character offsets are relative to the annotation's first token; Start
// reports the annotation's position within the view it was derived from.
// Views hold IDs, not records, and resolve them on every call, so a view
// whose annotation has been removed fails with ErrAnnotationGone. Edits
// made through a view name its annotation as the edit source, which wins
// ties at the annotation's boundaries:
//
//	v, _ := doc.ViewOf(s)
//	v.InsertToken(v.Size(), "again") // grows s rather than the next span
//
// # Listeners
//
// Document listeners receive each Change in absolute coordinates. View
// listeners then receive it rebased to their annotation, clipped to the
// tokens inside it, in store order. Annotation lifecycle events follow.
// Listeners run after the document lock is released and may read the
// document; an edit attempted from a listener fails with ErrEditInProgress.
//
// # Thread Safety
//
// Reads may run concurrently. Writes are not queued: a write that starts
// while another is in flight fails with ErrEditInProgress. Tokens and
// annotations returned by the document are live records. Token attributes
// change only through SetTokenAttr; the mutators of a stored annotation
// take the document's write path and are rejected the same way.
package engine
