// Package tracking propagates token-sequence changes to stored annotations.
//
// A buffer edit replaces the tokens [Index, Index+m) with n new ones. Every
// annotation's token span must follow: spans before the edit shift, spans
// around it grow or shrink, spans it swallows are purged. The Propagator
// computes the delta for every stored annotation from the pre-edit spans
// first and only then commits them all, so no classification ever observes
// another annotation's updated span.
//
// # Ownership
//
// A pure insertion exactly at an annotation boundary is ambiguous: the new
// tokens may belong inside the annotation or outside it. The edit's source
// annotation resolves the tie. A candidate owns the insertion if it is the
// source, strictly encloses it, or has the same span and ranks before it by
// nesting rank and then creation sequence. Without a source no stored
// annotation owns a boundary insertion; the document root takes it.
//
// # Relays
//
// Each annotation whose interior is touched receives a relay: the change
// rebased to the annotation's start with the token lists clipped to the
// part inside it. The engine delivers relays to view listeners.
//
// # History
//
// The Propagator numbers every applied change with a Revision and keeps a
// bounded ring of recent records for ChangesSince queries.
//
// # Usage
//
//	p := tracking.New(store)
//	res := p.Apply(change, source)
//	for _, r := range res.Relays {
//	    // r.Change.Index is relative to r.Annotation.Start()
//	}
//
// # Thread Safety
//
// Apply mutates the store and is not safe for concurrent use. History
// queries take an internal read lock.
package tracking
