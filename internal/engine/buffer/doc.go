// Package buffer provides the character buffer and its token overlay.
//
// A Buffer holds UTF-8 text plus the ordered tokens a [tokenizer.Tokenizer]
// finds in it. Every edit is a replacement of a byte range; after the
// characters change the buffer retokenizes only the whitespace-bounded run
// the edit touched, keeps the identity of tokens whose text is unaffected and
// reports the difference as a single [Change].
//
// The buffer provides:
//
//   - Character edits: InsertChars, DeleteChars, ReplaceChars, SetText
//   - Token edits: InsertToken, RemoveTokens, ReplaceToken
//   - Whitespace edits: SetLeadingWhitespace, SetWhitespaceAfter,
//     SetTrailingWhitespace
//   - Random access by byte offset or token index
//
// Basic usage:
//
//	buf := buffer.NewFromString("The cat sat.")
//	buf.Values() // ["The" "cat" "sat" "."]
//
//	// Delete "at" from "cat"
//	change, _ := buf.DeleteChars(5, 2)
//	// change.Index == 1, Removed ["cat"], Inserted ["c"]
//
//	// Insert a token before "c"
//	buf.InsertToken(1, "big") // "The big c sat."
//
// Reconstruction:
//
// The token overlay always reconstructs the text exactly:
//
//	LeadingWhitespace() + Σ(Token(i).Value() + WhitespaceAfter(i)) == Text()
//
// Token edits apply a padding rule: when a splice would glue two blocks of
// non-whitespace text into fewer tokens than they form apart, one space is
// inserted at that boundary first. Character edits are applied verbatim.
//
// Thread Safety:
//
// A Buffer is not safe for concurrent mutation. engine.Document serializes
// writes and allows concurrent readers; reads only share the atomic
// last-used-index hint.
package buffer
