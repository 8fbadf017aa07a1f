package buffer

import (
	"fmt"

	"github.com/dshills/tagtext/internal/engine/attrs"
	"github.com/dshills/tagtext/internal/engine/tokenizer"
)

// Token is one whitespace-free unit of the buffer's text.
//
// A Token's identity is its pointer. The buffer keeps a token, together
// with its attributes, across edits that leave its text untouched and only
// refreshes its offsets; a token whose text is affected is discarded and a
// new one is created.
type Token struct {
	span      Span
	value     string
	attrs     *attrs.Map
	tokenizer tokenizer.Tokenizer
}

func newToken(span Span, value string, t tokenizer.Tokenizer) *Token {
	return &Token{span: span, value: value, tokenizer: t}
}

// Value returns the token text.
func (t *Token) Value() string {
	return t.value
}

// Span returns the token's byte span in the buffer.
// For a token that has been removed, it is the last span it occupied.
func (t *Token) Span() Span {
	return t.span
}

// Start returns the byte offset of the token.
func (t *Token) Start() int {
	return t.span.Start
}

// End returns the byte offset just past the token.
func (t *Token) End() int {
	return t.span.End
}

// Tokenizer returns the tokenizer that produced the token.
func (t *Token) Tokenizer() tokenizer.Tokenizer {
	return t.tokenizer
}

// Attrs returns a copy of the token's attributes.
func (t *Token) Attrs() *attrs.Map {
	return t.attrs.Clone()
}

// Attr returns the value of a token attribute.
func (t *Token) Attr(name string) (string, bool) {
	return t.attrs.Get(name)
}

func (t *Token) setAttr(name, value string) error {
	if t.attrs == nil {
		t.attrs = attrs.New()
	}
	_, _, err := t.attrs.Set(name, value)
	return err
}

// String returns a human-readable representation of the token.
func (t *Token) String() string {
	return fmt.Sprintf("%q%s", t.value, t.span)
}
