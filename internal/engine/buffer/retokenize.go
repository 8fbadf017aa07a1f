package buffer

import (
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/dshills/tagtext/internal/engine/tokenizer"
)

// Character edits

// InsertChars inserts text at offset.
func (b *Buffer) InsertChars(offset int, text string) (Change, error) {
	return b.ReplaceChars(offset, 0, text)
}

// DeleteChars removes n bytes starting at offset.
func (b *Buffer) DeleteChars(offset, n int) (Change, error) {
	return b.ReplaceChars(offset, n, "")
}

// ReplaceChars replaces n bytes starting at offset with text.
func (b *Buffer) ReplaceChars(offset, n int, text string) (Change, error) {
	if n < 0 {
		return Change{}, ErrRangeInvalid
	}
	if err := b.checkOffset(offset); err != nil {
		return Change{}, err
	}
	if n > len(b.text)-offset {
		return Change{}, fmt.Errorf("%w: %d bytes at %d of %d", ErrOffsetOutOfRange, n, offset, len(b.text))
	}
	if err := b.checkRange(offset, offset+n); err != nil {
		return Change{}, err
	}
	text, err := b.prepare(text)
	if err != nil {
		return Change{}, err
	}
	return b.replace(offset, offset+n, text), nil
}

// SetText replaces the whole content.
func (b *Buffer) SetText(text string) (Change, error) {
	return b.ReplaceChars(0, len(b.text), text)
}

// replace swaps b.text[start:end] for text and retokenizes the affected run.
// The range must already be validated.
func (b *Buffer) replace(start, end int, text string) Change {
	cause := CharEdit{Offset: start, Removed: string(b.text[start:end]), Inserted: text}
	delta := len(text) - (end - start)

	// Tokens never contain whitespace, so the run between the nearest
	// whitespace on either side bounds every token the edit can affect. An
	// edit inside the leading whitespace, or on a buffer without tokens,
	// degenerates to tokenizing text alone.
	left, right := b.affectedRun(start, end)
	i0 := b.firstStartingAtOrAfter(left)
	i1 := b.firstStartingAtOrAfter(right)
	old := b.tokens[i0:i1]

	modified := string(b.text[left:start]) + text + string(b.text[end:right])
	spans := b.tokenizer.Tokenize(modified)

	// Peel tokens that are unchanged in value and relative position off
	// both ends; only the middle is replaced.
	p := 0
	for p < len(old) && p < len(spans) &&
		old[p].span.Start-left == spans[p].Start &&
		old[p].value == modified[spans[p].Start:spans[p].End] {
		p++
	}
	q := 0
	for q < len(old)-p && q < len(spans)-p {
		ot, ns := old[len(old)-1-q], spans[len(spans)-1-q]
		if right-ot.span.Start != len(modified)-ns.Start ||
			ot.value != modified[ns.Start:ns.End] {
			break
		}
		q++
	}

	removed := slices.Clone(old[p : len(old)-q])
	inserted := make([]*Token, 0, len(spans)-p-q)
	for _, sp := range spans[p : len(spans)-q] {
		inserted = append(inserted, newToken(spanOf(sp, left), modified[sp.Start:sp.End], b.tokenizer))
	}

	b.text = slices.Concat(b.text[:start:start], []byte(text), b.text[end:])
	if delta != 0 {
		for _, t := range b.tokens[i1-q:] {
			t.span = t.span.Shift(delta)
		}
	}
	b.tokens = slices.Replace(b.tokens, i0+p, i1-q, inserted...)
	b.last.Store(int64(i0 + p))

	c := Change{Index: i0 + p, Inserted: inserted, Removed: removed, Cause: cause}
	if !c.IsEmpty() {
		b.notify(c)
	}
	return c
}

// affectedRun widens [start, end) to the nearest whitespace on both sides.
func (b *Buffer) affectedRun(start, end int) (left, right int) {
	left = start
	for left > 0 {
		r, size := utf8.DecodeLastRune(b.text[:left])
		if tokenizer.IsSpace(r) {
			break
		}
		left -= size
	}
	right = end
	for right < len(b.text) {
		r, size := utf8.DecodeRune(b.text[right:])
		if tokenizer.IsSpace(r) {
			break
		}
		right += size
	}
	return left, right
}

func (b *Buffer) firstStartingAtOrAfter(offset int) int {
	return sort.Search(len(b.tokens), func(i int) bool { return b.tokens[i].span.Start >= offset })
}
