package buffer

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync/atomic"
	"unicode/utf8"

	"github.com/dshills/tagtext/internal/engine/tokenizer"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrIndexOutOfRange  = errors.New("token index out of range")
	ErrInvalidToken     = errors.New("invalid token value")
	ErrNotWhitespace    = errors.New("text is not whitespace")
	ErrInvalidUTF8      = errors.New("text is not valid UTF-8")
)

// Buffer holds text and its token overlay.
type Buffer struct {
	text      []byte
	tokens    []*Token
	tokenizer tokenizer.Tokenizer
	normalize func(string) string

	// last is the index of the most recent token lookup, tried first by
	// TokenIndexAt so sequential scans are amortized O(1).
	last atomic.Int64

	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Change)
}

// New creates a new empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		tokenizer: tokenizer.Default,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a buffer with initial content.
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	if b.normalize != nil {
		s = b.normalize(s)
	}
	b.text = []byte(s)
	for _, sp := range b.tokenizer.Tokenize(s) {
		b.tokens = append(b.tokens, newToken(spanOf(sp, 0), s[sp.Start:sp.End], b.tokenizer))
	}
	return b
}

// Read Operations

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Len returns the byte length of the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}

// IsEmpty returns true if the buffer holds no text.
func (b *Buffer) IsEmpty() bool {
	return len(b.text) == 0
}

// Tokenizer returns the buffer's tokenizer.
func (b *Buffer) Tokenizer() tokenizer.Tokenizer {
	return b.tokenizer
}

// TextRange returns the text in [start, end).
func (b *Buffer) TextRange(start, end int) (string, error) {
	if err := b.checkRange(start, end); err != nil {
		return "", err
	}
	return string(b.text[start:end]), nil
}

// RuneAt returns the rune starting at offset and its size in bytes.
func (b *Buffer) RuneAt(offset int) (rune, int, error) {
	if offset < 0 || offset >= len(b.text) {
		return utf8.RuneError, 0, ErrOffsetOutOfRange
	}
	r, size := utf8.DecodeRune(b.text[offset:])
	return r, size, nil
}

// TokenCount returns the number of tokens.
func (b *Buffer) TokenCount() int {
	return len(b.tokens)
}

// Token returns the token at index.
func (b *Buffer) Token(index int) (*Token, error) {
	if index < 0 || index >= len(b.tokens) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(b.tokens))
	}
	return b.tokens[index], nil
}

// SetTokenAttr sets an attribute on the token at index. Invalid names are
// rejected.
func (b *Buffer) SetTokenAttr(index int, name, value string) error {
	t, err := b.Token(index)
	if err != nil {
		return err
	}
	return t.setAttr(name, value)
}

// Tokens returns a copy of the token slice.
func (b *Buffer) Tokens() []*Token {
	return slices.Clone(b.tokens)
}

// TokenRange returns the tokens in [start, end).
func (b *Buffer) TokenRange(start, end int) ([]*Token, error) {
	if start < 0 || end < start || end > len(b.tokens) {
		return nil, fmt.Errorf("%w: [%d:%d) of %d", ErrIndexOutOfRange, start, end, len(b.tokens))
	}
	return slices.Clone(b.tokens[start:end]), nil
}

// Values returns the token values in order.
func (b *Buffer) Values() []string {
	vals := make([]string, len(b.tokens))
	for i, t := range b.tokens {
		vals[i] = t.value
	}
	return vals
}

// TokenIndexAt returns the index of the token containing offset.
// It returns false if offset falls in whitespace or outside the text.
func (b *Buffer) TokenIndexAt(offset int) (int, bool) {
	n := len(b.tokens)
	if last := int(b.last.Load()); last < n {
		for i := last; i < n && i <= last+1; i++ {
			if b.tokens[i].span.Contains(offset) {
				b.last.Store(int64(i))
				return i, true
			}
		}
	}
	i := sort.Search(n, func(i int) bool { return b.tokens[i].span.End > offset })
	if i < n && b.tokens[i].span.Start <= offset {
		b.last.Store(int64(i))
		return i, true
	}
	return -1, false
}

// TokenIndexAtOrAfter returns the index of the token containing offset or,
// if offset falls between tokens, of the next token. It returns TokenCount()
// when no token ends after offset.
func (b *Buffer) TokenIndexAtOrAfter(offset int) int {
	return sort.Search(len(b.tokens), func(i int) bool { return b.tokens[i].span.End > offset })
}

// LeadingWhitespace returns the whitespace before the first token. With no
// tokens it is the whole text.
func (b *Buffer) LeadingWhitespace() string {
	if len(b.tokens) == 0 {
		return string(b.text)
	}
	return string(b.text[:b.tokens[0].span.Start])
}

// WhitespaceAfter returns the whitespace between token index and the next
// token, or the end of the text for the last token.
func (b *Buffer) WhitespaceAfter(index int) (string, error) {
	if index < 0 || index >= len(b.tokens) {
		return "", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(b.tokens))
	}
	return string(b.text[b.tokens[index].span.End:b.gapEnd(index)]), nil
}

// TrailingWhitespace returns the whitespace after the last token. With no
// tokens it is empty; the whole text counts as leading whitespace.
func (b *Buffer) TrailingWhitespace() string {
	if len(b.tokens) == 0 {
		return ""
	}
	return string(b.text[b.tokens[len(b.tokens)-1].span.End:])
}

// gapEnd returns the offset where the whitespace after token index ends.
func (b *Buffer) gapEnd(index int) int {
	if index+1 < len(b.tokens) {
		return b.tokens[index+1].span.Start
	}
	return len(b.text)
}

// Listeners

// OnChange registers fn to be called after every edit that inserts or
// removes tokens. The returned function unregisters it.
func (b *Buffer) OnChange(fn func(Change)) (cancel func()) {
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener{id: id, fn: fn})
	return func() {
		b.listeners = slices.DeleteFunc(b.listeners, func(l listener) bool { return l.id == id })
	}
}

func (b *Buffer) notify(c Change) {
	for _, l := range slices.Clone(b.listeners) {
		l.fn(c)
	}
}

// Validation helpers

func (b *Buffer) checkOffset(offset int) error {
	if offset < 0 || offset > len(b.text) {
		return fmt.Errorf("%w: %d of %d", ErrOffsetOutOfRange, offset, len(b.text))
	}
	if offset < len(b.text) && !utf8.RuneStart(b.text[offset]) {
		return fmt.Errorf("%w: offset %d splits a rune", ErrRangeInvalid, offset)
	}
	return nil
}

func (b *Buffer) checkRange(start, end int) error {
	if err := b.checkOffset(start); err != nil {
		return err
	}
	if end < start {
		return fmt.Errorf("%w: [%d:%d)", ErrRangeInvalid, start, end)
	}
	return b.checkOffset(end)
}

func checkTokenValue(value string) error {
	if value == "" || tokenizer.ContainsSpace(value) {
		return fmt.Errorf("%w: %q", ErrInvalidToken, value)
	}
	if !utf8.ValidString(value) {
		return ErrInvalidUTF8
	}
	return nil
}

func checkWhitespace(ws string) error {
	if !tokenizer.OnlySpace(ws) {
		return fmt.Errorf("%w: %q", ErrNotWhitespace, ws)
	}
	return nil
}

func (b *Buffer) prepare(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}
	if b.normalize != nil {
		text = b.normalize(text)
	}
	return text, nil
}
