package buffer

import (
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/tagtext/internal/engine/tokenizer"
)

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithTokenizer sets the tokenizer used for the token overlay.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(b *Buffer) {
		if t != nil {
			b.tokenizer = t
		}
	}
}

// WithNormalization normalizes all inserted text to the given form.
func WithNormalization(form norm.Form) Option {
	return func(b *Buffer) {
		b.normalize = form.String
	}
}

// WithNFC normalizes inserted text to NFC.
func WithNFC() Option {
	return WithNormalization(norm.NFC)
}
