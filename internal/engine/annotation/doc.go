// Package annotation provides typed, attributed spans over token indices and
// the ordered store that indexes them.
//
// An Annotation covers the half-open token range [Start, End). Its type is a
// QName-shaped name, its attributes live in an attrs.Map, and its identity is
// a random 128-bit ID. Nesting is never stored explicitly: it emerges from
// containment and from the NestingOrder, which ranks types from outermost to
// innermost.
//
// # Store Order
//
// The Store keeps annotations sorted by
//
//	(start asc, size desc, nesting rank asc, creation sequence asc)
//
// so iteration visits outer annotations before the ones they contain and
// ties resolve deterministically. Crossing spans are legal.
//
// # Events
//
// Lifecycle events (Added, Removed, TypeChanged, AttributeChanged) go to
// the annotation's own listeners and then to the store's listeners. A store
// can hold events while its owner is mid-edit (Suspend/Resume) and deliver
// them later with Dispatch.
//
// # Thread Safety
//
// Neither Annotation nor Store is safe for concurrent use. The engine
// package serializes access to both.
package annotation
