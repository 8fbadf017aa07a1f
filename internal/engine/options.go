package engine

import (
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/tagtext/internal/engine/annotation"
	"github.com/dshills/tagtext/internal/engine/tokenizer"
	"github.com/dshills/tagtext/internal/logging"
)

// Default configuration values.
const (
	DefaultRootType   = annotation.DefaultRootType
	DefaultMaxHistory = 1000
	DefaultMaxUndo    = 1000
)

// Option configures a Document during creation.
type Option func(*Document)

// WithContent sets the initial content of the document.
func WithContent(content string) Option {
	return func(d *Document) {
		d.initContent = content
	}
}

// WithTokenizer sets the tokenizer for the token overlay.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(d *Document) {
		if t != nil {
			d.tokenizer = t
		}
	}
}

// WithNormalization normalizes all text entering the document.
func WithNormalization(form norm.Form) Option {
	return func(d *Document) {
		d.normForm = &form
	}
}

// WithNestingOrder sets the type ranking, outermost first.
func WithNestingOrder(types ...string) Option {
	return func(d *Document) {
		d.nestingTypes = types
	}
}

// WithRootType sets the type of the implicit root annotation.
func WithRootType(typ string) Option {
	return func(d *Document) {
		if typ != "" {
			d.rootType = typ
		}
	}
}

// WithProperties sets initial document properties.
func WithProperties(props map[string]string) Option {
	return func(d *Document) {
		d.initProps = props
	}
}

// WithMaxHistory sets the number of applied changes the document remembers.
func WithMaxHistory(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxHistory = n
		}
	}
}

// WithMaxUndo sets the number of undo entries the document keeps.
func WithMaxUndo(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxUndo = n
		}
	}
}

// WithLogger sets the logger. Documents log under component "engine".
func WithLogger(l *logging.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithReadOnly creates a read-only document.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(d *Document) {
		d.readOnly = true
	}
}
