package engine

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/tagtext/internal/engine/annotation"
	"github.com/dshills/tagtext/internal/engine/attrs"
	"github.com/dshills/tagtext/internal/engine/buffer"
	"github.com/dshills/tagtext/internal/engine/history"
	"github.com/dshills/tagtext/internal/engine/tokenizer"
	"github.com/dshills/tagtext/internal/engine/tracking"
	"github.com/dshills/tagtext/internal/logging"
)

// Re-export commonly used types for convenience.
type (
	// Token is one whitespace-free unit of text.
	Token = buffer.Token

	// Span is a byte range in the text.
	Span = buffer.Span

	// Change describes one modification of the token sequence.
	Change = buffer.Change

	// CharEdit is the character edit behind a Change.
	CharEdit = buffer.CharEdit

	// Annotation is a typed, attributed token span.
	Annotation = annotation.Annotation

	// AnnotationID identifies an annotation.
	AnnotationID = annotation.ID

	// AnnotationEvent is an annotation lifecycle event.
	AnnotationEvent = annotation.Event

	// NestingOrder ranks annotation types.
	NestingOrder = annotation.NestingOrder

	// Revision numbers applied changes.
	Revision = tracking.Revision

	// Record is one remembered change.
	Record = tracking.Record
)

// Document is an editable token sequence with annotations kept in step.
//
// Reads are safe from multiple goroutines. There is one writer at a time:
// a write made while another is running, including one made by a listener
// during delivery, fails with ErrEditInProgress and has no effect.
// Concurrent writers are not queued behind the running write; they fail
// rather than wait, and callers that want to serialize must do so
// themselves. SetType, SetAttr and RemoveAttr called directly on a stored
// Annotation are writes and follow the same rule.
type Document struct {
	mu sync.RWMutex

	// editing is held for a whole write, listener delivery included.
	editing atomic.Bool

	// Core components
	buf   *buffer.Buffer
	store *annotation.Store
	prop  *tracking.Propagator
	props *attrs.Map
	undo  *history.History

	// Listeners
	listeners     []changeListener
	viewListeners map[annotation.ID][]changeListener
	nextListener  int

	// Configuration
	tokenizer    tokenizer.Tokenizer
	normForm     *norm.Form
	rootType     string
	nestingTypes []string
	maxHistory   int
	maxUndo      int
	readOnly     bool
	logger       *logging.Logger

	// Initialization
	initContent string
	initProps   map[string]string
}

type changeListener struct {
	id int
	fn func(Change)
}

// New creates a document with the given options.
func New(opts ...Option) (*Document, error) {
	d := &Document{
		tokenizer:  tokenizer.Default,
		rootType:   DefaultRootType,
		maxHistory: DefaultMaxHistory,
		maxUndo:    DefaultMaxUndo,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.Get()
	}
	d.logger = d.logger.WithComponent("engine")

	order, err := annotation.NewNestingOrder(d.rootType, d.nestingTypes...)
	if err != nil {
		return nil, err
	}

	d.props = attrs.New()
	for _, name := range slices.Sorted(maps.Keys(d.initProps)) {
		if _, _, err := d.props.Set(name, d.initProps[name]); err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
	}

	bufOpts := []buffer.Option{buffer.WithTokenizer(d.tokenizer)}
	if d.normForm != nil {
		bufOpts = append(bufOpts, buffer.WithNormalization(*d.normForm))
	}
	if !utf8.ValidString(d.initContent) {
		return nil, buffer.ErrInvalidUTF8
	}
	d.buf = buffer.NewFromString(d.initContent, bufOpts...)
	d.initContent = ""

	d.store = annotation.NewStore(
		annotation.WithNestingOrder(order),
		annotation.WithProperties(d.props),
		annotation.WithGuard(d.write),
	)
	d.prop = tracking.New(d.store, tracking.WithMaxHistory(d.maxHistory))
	d.undo = history.New(d.maxUndo)
	return d, nil
}

// NewFromReader creates a document from the content of r.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(append(slices.Clone(opts), WithContent(string(content)))...)
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the full text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Text()
}

// TextRange returns the text in the byte range [start, end).
func (d *Document) TextRange(start, end int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.TextRange(start, end)
}

// Len returns the byte length of the text.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Len()
}

// IsEmpty returns true if the document holds no text.
func (d *Document) IsEmpty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.IsEmpty()
}

// RuneAt returns the rune starting at offset and its size in bytes.
func (d *Document) RuneAt(offset int) (rune, int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.RuneAt(offset)
}

// TokenCount returns the number of tokens.
func (d *Document) TokenCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.TokenCount()
}

// Token returns the token at index.
func (d *Document) Token(index int) (*Token, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Token(index)
}

// Tokens returns every token in order.
func (d *Document) Tokens() []*Token {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Tokens()
}

// Values returns the token values in order.
func (d *Document) Values() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.Values()
}

// TokenIndexAt returns the index of the token containing the byte offset.
func (d *Document) TokenIndexAt(offset int) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.TokenIndexAt(offset)
}

// LeadingWhitespace returns the whitespace before the first token.
func (d *Document) LeadingWhitespace() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.LeadingWhitespace()
}

// WhitespaceAfter returns the whitespace following token index.
func (d *Document) WhitespaceAfter(index int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.WhitespaceAfter(index)
}

// TrailingWhitespace returns the whitespace after the last token.
func (d *Document) TrailingWhitespace() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buf.TrailingWhitespace()
}

// Tokenizer returns the document's tokenizer.
func (d *Document) Tokenizer() tokenizer.Tokenizer {
	return d.tokenizer
}

// RootType returns the type of the implicit root annotation.
func (d *Document) RootType() string {
	return d.rootType
}

// IsReadOnly reports whether writes are refused.
func (d *Document) IsReadOnly() bool {
	return d.readOnly
}

// Revision returns the revision of the last applied change.
func (d *Document) Revision() Revision {
	return d.prop.Revision()
}

// ChangesSince returns the remembered changes after rev, oldest first.
func (d *Document) ChangesSince(rev Revision) []Record {
	return d.prop.ChangesSince(rev)
}

// ============================================================================
// Character Edits
// ============================================================================

// InsertChars inserts text at the byte offset.
func (d *Document) InsertChars(offset int, text string) (Change, error) {
	return d.ReplaceChars(offset, 0, text)
}

// DeleteChars removes n bytes starting at offset.
func (d *Document) DeleteChars(offset, n int) (Change, error) {
	return d.ReplaceChars(offset, n, "")
}

// ReplaceChars replaces n bytes starting at offset with text.
func (d *Document) ReplaceChars(offset, n int, text string) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.ReplaceChars(offset, n, text)
		return c, nil, err
	})
}

// SetText replaces the whole text. Annotations covering replaced tokens
// shrink or are purged like for any other edit.
func (d *Document) SetText(text string) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.SetText(text)
		return c, nil, err
	})
}

// ============================================================================
// Token Edits
// ============================================================================

// InsertToken inserts value as a token before index.
func (d *Document) InsertToken(index int, value string) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.InsertToken(index, value)
		return c, nil, err
	})
}

// RemoveTokens removes count tokens starting at index.
func (d *Document) RemoveTokens(index, count int) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.RemoveTokens(index, count)
		return c, nil, err
	})
}

// ReplaceToken replaces the value of the token at index.
func (d *Document) ReplaceToken(index int, value string) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.ReplaceToken(index, value)
		return c, nil, err
	})
}

// SetLeadingWhitespace replaces the whitespace before the first token.
func (d *Document) SetLeadingWhitespace(ws string) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.SetLeadingWhitespace(ws)
		return c, nil, err
	})
}

// SetWhitespaceAfter replaces the whitespace following token index.
func (d *Document) SetWhitespaceAfter(index int, ws string) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.SetWhitespaceAfter(index, ws)
		return c, nil, err
	})
}

// SetTrailingWhitespace replaces the whitespace after the last token.
func (d *Document) SetTrailingWhitespace(ws string) (Change, error) {
	return d.edit(func() (Change, *Annotation, error) {
		c, err := d.buf.SetTrailingWhitespace(ws)
		return c, nil, err
	})
}

// SetTokenAttr sets an attribute on the token at index.
func (d *Document) SetTokenAttr(index int, name, value string) error {
	return d.write(func() error {
		return d.buf.SetTokenAttr(index, name, value)
	})
}

// ============================================================================
// Listeners
// ============================================================================

// OnChange registers fn to receive every non-empty Change in absolute
// coordinates. The returned function unregisters it.
func (d *Document) OnChange(fn func(Change)) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextListener++
	id := d.nextListener
	d.listeners = append(d.listeners, changeListener{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.listeners = slices.DeleteFunc(d.listeners, func(l changeListener) bool { return l.id == id })
	}
}

// OnAnnotationEvent registers fn for the lifecycle events of every stored
// annotation. The returned function unregisters it.
func (d *Document) OnAnnotationEvent(fn func(AnnotationEvent)) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stop := d.store.OnEvent(fn)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		stop()
	}
}

// onViewChange registers fn on the observer list of the annotation id. The
// zero ID is the root.
func (d *Document) onViewChange(id annotation.ID, fn func(Change)) (cancel func()) {
	// Called with d.mu held.
	if d.viewListeners == nil {
		d.viewListeners = make(map[annotation.ID][]changeListener)
	}
	d.nextListener++
	lid := d.nextListener
	d.viewListeners[id] = append(d.viewListeners[id], changeListener{id: lid, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		remaining := slices.DeleteFunc(d.viewListeners[id], func(l changeListener) bool { return l.id == lid })
		if len(remaining) == 0 {
			delete(d.viewListeners, id)
			return
		}
		d.viewListeners[id] = remaining
	}
}
