package engine

import (
	"fmt"

	"github.com/dshills/tagtext/internal/engine/annotation"
)

// View is a window onto a document through one annotation.
//
// Token indices and character offsets passed to a view are relative to its
// annotation's first token. Start reports where the annotation begins
// within the view the view was derived from, its base. The root view looks
// at the whole document through the implicit root annotation.
//
// A view stores annotation IDs and resolves them on every call; once its
// annotation or its base is removed, every method fails with
// ErrAnnotationGone.
type View struct {
	doc      *Document
	base     annotation.ID // zero for the root
	ann      annotation.ID // zero for the root
	readOnly bool
}

// View returns a view over the whole document.
func (d *Document) View() *View {
	return &View{doc: d, readOnly: d.readOnly}
}

// ViewOf returns a view over a stored annotation, based on the root.
func (d *Document) ViewOf(a *Annotation) (*View, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.store.Has(a) {
		return nil, ErrNotStored
	}
	return &View{doc: d, ann: a.ID(), readOnly: d.readOnly}, nil
}

// frame is a resolved view: the annotation (nil for the root) and its
// absolute token span, plus the absolute start of the base.
type frame struct {
	ann       *Annotation
	start     int
	size      int
	baseStart int
}

func (f frame) end() int {
	return f.start + f.size
}

// resolveLocked looks up a view's annotations. Callers hold d.mu.
func (v *View) resolveLocked() (frame, error) {
	d := v.doc
	var f frame
	if v.ann.IsZero() {
		f.size = d.buf.TokenCount()
	} else {
		a, ok := d.store.Get(v.ann)
		if !ok {
			return frame{}, fmt.Errorf("%w: %s", ErrAnnotationGone, v.ann)
		}
		f.ann, f.start, f.size = a, a.Start(), a.Size()
	}
	if !v.base.IsZero() {
		b, ok := d.store.Get(v.base)
		if !ok {
			return frame{}, fmt.Errorf("%w: base %s", ErrAnnotationGone, v.base)
		}
		f.baseStart = b.Start()
	}
	return f, nil
}

func (v *View) resolve() (frame, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	return v.resolveLocked()
}

// Document returns the viewed document.
func (v *View) Document() *Document {
	return v.doc
}

// IsRoot reports whether the view covers the whole document.
func (v *View) IsRoot() bool {
	return v.ann.IsZero()
}

// IsReadOnly reports whether the view refuses writes.
func (v *View) IsReadOnly() bool {
	return v.readOnly
}

// ReadOnly returns a read-only copy of the view.
func (v *View) ReadOnly() *View {
	c := *v
	c.readOnly = true
	return &c
}

// ============================================================================
// Read Operations
// ============================================================================

// Annotation returns the viewed annotation, or nil for the root view.
func (v *View) Annotation() (*Annotation, error) {
	f, err := v.resolve()
	return f.ann, err
}

// Type returns the annotation type; the root view has the root type.
func (v *View) Type() (string, error) {
	f, err := v.resolve()
	if err != nil {
		return "", err
	}
	if f.ann == nil {
		return v.doc.rootType, nil
	}
	return f.ann.Type(), nil
}

// Start returns the annotation's start relative to the base.
func (v *View) Start() (int, error) {
	f, err := v.resolve()
	return f.start - f.baseStart, err
}

// Size returns the number of tokens in the view.
func (v *View) Size() (int, error) {
	f, err := v.resolve()
	return f.size, err
}

// Token returns the token at index i of the view.
func (v *View) Token(i int) (*Token, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	f, err := v.resolveLocked()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= f.size {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, f.size)
	}
	return v.doc.buf.Token(f.start + i)
}

// Tokens returns the tokens of the view.
func (v *View) Tokens() ([]*Token, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	f, err := v.resolveLocked()
	if err != nil {
		return nil, err
	}
	return v.doc.buf.TokenRange(f.start, f.end())
}

// Text returns the text from the view's first token to the end of its last.
// The root view returns the whole text, surrounding whitespace included.
func (v *View) Text() (string, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	f, err := v.resolveLocked()
	if err != nil {
		return "", err
	}
	if f.ann == nil {
		return v.doc.buf.Text(), nil
	}
	lo, hi := v.charExtentLocked(f)
	return v.doc.buf.TextRange(lo, hi)
}

// charExtentLocked returns the byte range from the first token's start to
// the last token's end.
func (v *View) charExtentLocked(f frame) (int, int) {
	b := v.doc.buf
	if f.ann == nil {
		return 0, b.Len()
	}
	first, _ := b.Token(f.start)
	last, _ := b.Token(f.end() - 1)
	return first.Start(), last.End()
}

// Annotations returns views over the annotations inside this one whose
// type is one of types, or of any type, in store order. The view's own
// annotation is not included.
func (v *View) Annotations(types ...string) ([]*View, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	f, err := v.resolveLocked()
	if err != nil {
		return nil, err
	}
	var out []*View
	for _, a := range v.doc.store.RangeQuery(f.start, f.end(), types...) {
		if a == f.ann {
			continue
		}
		out = append(out, &View{doc: v.doc, base: v.ann, ann: a.ID(), readOnly: v.readOnly})
	}
	return out, nil
}

// Sub returns a view over a stored annotation based on this view.
func (v *View) Sub(a *Annotation) (*View, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	if _, err := v.resolveLocked(); err != nil {
		return nil, err
	}
	if !v.doc.store.Has(a) {
		return nil, ErrNotStored
	}
	return &View{doc: v.doc, base: v.ann, ann: a.ID(), readOnly: v.readOnly}, nil
}

// Attr returns an attribute of the annotation; the root view reads the
// document properties.
func (v *View) Attr(name string) (string, bool, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	f, err := v.resolveLocked()
	if err != nil {
		return "", false, err
	}
	if f.ann == nil {
		val, ok := v.doc.props.Get(name)
		return val, ok, nil
	}
	val, ok := f.ann.Attr(name)
	return val, ok, nil
}

// Lookup returns an attribute, falling back to the document properties.
func (v *View) Lookup(name string) (string, bool, error) {
	v.doc.mu.RLock()
	defer v.doc.mu.RUnlock()
	f, err := v.resolveLocked()
	if err != nil {
		return "", false, err
	}
	if f.ann == nil {
		val, ok := v.doc.props.Get(name)
		return val, ok, nil
	}
	val, ok := f.ann.Lookup(name)
	return val, ok, nil
}

// ============================================================================
// Write Operations
// ============================================================================

// mutate translates one view edit to absolute coordinates and applies it
// at the document with the view's annotation as the source.
func (v *View) mutate(op func(f frame) (Change, error)) (Change, error) {
	if v.readOnly {
		return Change{}, ErrReadOnly
	}
	return v.doc.edit(func() (Change, *Annotation, error) {
		f, err := v.resolveLocked()
		if err != nil {
			return Change{}, nil, err
		}
		c, err := op(f)
		return c, f.ann, err
	})
}

// InsertToken inserts value before view index i; i may equal Size to
// append inside the annotation.
func (v *View) InsertToken(i int, value string) (Change, error) {
	return v.mutate(func(f frame) (Change, error) {
		if i < 0 || i > f.size {
			return Change{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, f.size)
		}
		return v.doc.buf.InsertToken(f.start+i, value)
	})
}

// RemoveTokens removes count tokens starting at view index i.
func (v *View) RemoveTokens(i, count int) (Change, error) {
	return v.mutate(func(f frame) (Change, error) {
		if i < 0 || count < 1 || count > f.size-i {
			return Change{}, fmt.Errorf("%w: remove %d at %d of %d", ErrIndexOutOfRange, count, i, f.size)
		}
		return v.doc.buf.RemoveTokens(f.start+i, count)
	})
}

// ReplaceToken replaces the value of the token at view index i.
func (v *View) ReplaceToken(i int, value string) (Change, error) {
	return v.mutate(func(f frame) (Change, error) {
		if i < 0 || i >= f.size {
			return Change{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, f.size)
		}
		return v.doc.buf.ReplaceToken(f.start+i, value)
	})
}

// InsertChars inserts text at a byte offset relative to the view's first
// token.
func (v *View) InsertChars(offset int, text string) (Change, error) {
	return v.ReplaceChars(offset, 0, text)
}

// DeleteChars removes n bytes at a byte offset relative to the view's
// first token.
func (v *View) DeleteChars(offset, n int) (Change, error) {
	return v.ReplaceChars(offset, n, "")
}

// ReplaceChars replaces n bytes at a byte offset relative to the view's
// first token. The range must lie within the view's text.
func (v *View) ReplaceChars(offset, n int, text string) (Change, error) {
	return v.mutate(func(f frame) (Change, error) {
		lo, hi := v.charExtentLocked(f)
		if offset < 0 || n < 0 || offset > hi-lo || n > hi-lo-offset {
			return Change{}, fmt.Errorf("%w: %d bytes at %d of %d", ErrOffsetOutOfRange, n, offset, hi-lo)
		}
		return v.doc.buf.ReplaceChars(lo+offset, n, text)
	})
}

// Annotate stores a new annotation over view tokens [start, start+size)
// and returns a view over it based on this view.
func (v *View) Annotate(typ string, start, size int) (*View, error) {
	if v.readOnly {
		return nil, ErrReadOnly
	}
	var child *View
	err := v.doc.write(func() error {
		f, err := v.resolveLocked()
		if err != nil {
			return err
		}
		if start < 0 || size > f.size-start {
			return fmt.Errorf("%w: %d tokens at %d of %d", ErrIndexOutOfRange, size, start, f.size)
		}
		a, err := v.doc.annotateLocked(typ, f.start+start, size)
		if err != nil {
			return err
		}
		child = &View{doc: v.doc, base: v.ann, ann: a.ID(), readOnly: v.readOnly}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// SetAttr sets an attribute of the annotation; on the root view it sets a
// document property.
func (v *View) SetAttr(name, value string) error {
	if v.readOnly {
		return ErrReadOnly
	}
	return v.doc.write(func() error {
		f, err := v.resolveLocked()
		if err != nil {
			return err
		}
		if f.ann == nil {
			_, _, err = v.doc.props.Set(name, value)
			return err
		}
		return v.doc.store.SetAttr(f.ann, name, value)
	})
}

// OnChange registers fn for changes touching the view, rebased to the
// view's coordinates: Index and Cause.Offset are relative to the view's
// first token and only the tokens inside the view are listed. Cause.Offset
// is negative when the edit began before the view. The root view receives
// every change unmodified.
func (v *View) OnChange(fn func(Change)) (cancel func(), err error) {
	v.doc.mu.Lock()
	defer v.doc.mu.Unlock()
	if _, err := v.resolveLocked(); err != nil {
		return nil, err
	}
	return v.doc.onViewChange(v.ann, fn), nil
}
