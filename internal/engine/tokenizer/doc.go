// Package tokenizer turns character sequences into token spans.
//
// A [Tokenizer] is a pure function from text to ordered, non-overlapping
// byte spans. No span contains or straddles a whitespace rune, so the
// tokenization of a text is the concatenation of the tokenizations of its
// whitespace-separated segments. The text buffer relies on that property to
// retokenize only the segment an edit touches.
//
// The default [Pattern] tokenizer walks each segment by grapheme cluster and
// groups clusters into elements:
//
//   - letter runs: letters of one Unicode script ("Hello", "привет")
//   - digit runs: decimal digits of one script ("2024")
//   - symbol runs: one punctuation or symbol cluster repeated ("...", "!!")
//   - everything else: one cluster per element
//
// Inner punctuation joins letter and digit runs ("don't"), numeric
// separators join digit runs ("1,000.50"). Everything else becomes a token
// boundary, so "cat." yields "cat" and ".".
package tokenizer
