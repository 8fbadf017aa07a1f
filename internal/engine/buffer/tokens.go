package buffer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/tagtext/internal/engine/tokenizer"
)

// Token edits

// InsertToken inserts value as a new token before index. Inserting at
// TokenCount() appends after the last token. The value must be non-empty
// and whitespace-free; if the tokenizer splits it, several tokens are
// inserted.
func (b *Buffer) InsertToken(index int, value string) (Change, error) {
	if index < 0 || index > len(b.tokens) {
		return Change{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(b.tokens))
	}
	if err := checkTokenValue(value); err != nil {
		return Change{}, err
	}
	value, _ = b.prepare(value)

	switch {
	case index < len(b.tokens):
		at := b.tokens[index].span.Start
		return b.splice(at, at, value+" "), nil
	case len(b.tokens) == 0:
		return b.splice(len(b.text), len(b.text), value), nil
	default:
		at := b.tokens[len(b.tokens)-1].span.End
		return b.splice(at, at, " "+value), nil
	}
}

// RemoveTokens removes count tokens starting at index together with the
// whitespace after them. When the removed tokens end the sequence, the
// whitespace before them goes instead, so trailing whitespace is kept.
func (b *Buffer) RemoveTokens(index, count int) (Change, error) {
	n := len(b.tokens)
	if index < 0 || count < 1 || count > n-index {
		return Change{}, fmt.Errorf("%w: remove %d at %d of %d", ErrIndexOutOfRange, count, index, n)
	}
	var start, end int
	switch {
	case index+count < n:
		start, end = b.tokens[index].span.Start, b.tokens[index+count].span.Start
	case index > 0:
		start, end = b.tokens[index-1].span.End, b.tokens[n-1].span.End
	default:
		start, end = b.tokens[0].span.Start, b.tokens[n-1].span.End
	}
	return b.splice(start, end, ""), nil
}

// ReplaceToken replaces the text of the token at index with value.
func (b *Buffer) ReplaceToken(index int, value string) (Change, error) {
	t, err := b.Token(index)
	if err != nil {
		return Change{}, err
	}
	if err := checkTokenValue(value); err != nil {
		return Change{}, err
	}
	value, _ = b.prepare(value)
	return b.splice(t.span.Start, t.span.End, value), nil
}

// Whitespace edits

// SetLeadingWhitespace replaces the whitespace before the first token.
func (b *Buffer) SetLeadingWhitespace(ws string) (Change, error) {
	if err := checkWhitespace(ws); err != nil {
		return Change{}, err
	}
	end := len(b.text)
	if len(b.tokens) > 0 {
		end = b.tokens[0].span.Start
	}
	return b.splice(0, end, ws), nil
}

// SetWhitespaceAfter replaces the whitespace after token index. Setting it
// to "" between two tokens that would merge keeps a single space.
func (b *Buffer) SetWhitespaceAfter(index int, ws string) (Change, error) {
	if _, err := b.Token(index); err != nil {
		return Change{}, err
	}
	if err := checkWhitespace(ws); err != nil {
		return Change{}, err
	}
	return b.splice(b.tokens[index].span.End, b.gapEnd(index), ws), nil
}

// SetTrailingWhitespace replaces the whitespace after the last token.
func (b *Buffer) SetTrailingWhitespace(ws string) (Change, error) {
	if len(b.tokens) == 0 {
		return b.SetLeadingWhitespace(ws)
	}
	return b.SetWhitespaceAfter(len(b.tokens)-1, ws)
}

// splice replaces [start, end) with text after applying the padding rule.
func (b *Buffer) splice(start, end int, text string) Change {
	return b.replace(start, end, b.pad(start, end, text))
}

// pad inserts a space at each boundary where text would glue onto adjacent
// non-whitespace characters and merge tokens.
func (b *Buffer) pad(start, end int, text string) string {
	before := b.blockBefore(start)
	after := b.blockAfter(end)

	if text == "" {
		if before != "" && after != "" && b.merges(before, after) {
			return " "
		}
		return text
	}
	if before != "" {
		if head := leadingBlock(text); head != "" && b.merges(before, head) {
			text = " " + text
		}
	}
	if after != "" {
		if tail := trailingBlock(text); tail != "" && b.merges(tail, after) {
			text += " "
		}
	}
	return text
}

// merges reports whether concatenating a and c yields fewer tokens than
// tokenizing them apart.
func (b *Buffer) merges(a, c string) bool {
	return tokenizer.Count(b.tokenizer, a+c) < tokenizer.Count(b.tokenizer, a)+tokenizer.Count(b.tokenizer, c)
}

// blockBefore returns the non-whitespace run ending at offset.
func (b *Buffer) blockBefore(offset int) string {
	i := offset
	for i > 0 {
		r, size := utf8.DecodeLastRune(b.text[:i])
		if tokenizer.IsSpace(r) {
			break
		}
		i -= size
	}
	return string(b.text[i:offset])
}

// blockAfter returns the non-whitespace run starting at offset.
func (b *Buffer) blockAfter(offset int) string {
	i := offset
	for i < len(b.text) {
		r, size := utf8.DecodeRune(b.text[i:])
		if tokenizer.IsSpace(r) {
			break
		}
		i += size
	}
	return string(b.text[offset:i])
}

func leadingBlock(s string) string {
	if i := strings.IndexFunc(s, tokenizer.IsSpace); i >= 0 {
		return s[:i]
	}
	return s
}

func trailingBlock(s string) string {
	if i := strings.LastIndexFunc(s, tokenizer.IsSpace); i >= 0 {
		_, size := utf8.DecodeRuneInString(s[i:])
		return s[i+size:]
	}
	return s
}
