package annotation

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dshills/tagtext/internal/engine/attrs"
	"github.com/dshills/tagtext/internal/engine/markup"
)

// sequence orders annotations by creation when timestamps tie.
var sequence atomic.Uint64

// Annotation is a typed, attributed span over token indices.
type Annotation struct {
	typ       string
	start     int
	size      int
	id        ID
	attrs     *attrs.Map
	createdAt time.Time
	seq       uint64

	owner     atomic.Pointer[Store]
	listeners *listeners
}

// New creates a detached annotation over tokens [start, start+size).
// The type must be a valid name, start non-negative and size positive.
func New(typ string, start, size int) (*Annotation, error) {
	if strings.TrimSpace(typ) == "" {
		return nil, ErrBlankType
	}
	if err := markup.CheckName(typ); err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: %d", ErrOffsetOutOfRange, start)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Annotation{
		typ:       typ,
		start:     start,
		size:      size,
		id:        NewID(),
		createdAt: time.Now(),
		seq:       sequence.Add(1),
	}, nil
}

// ID returns the annotation's identifier.
func (a *Annotation) ID() ID {
	return a.id
}

// Type returns the annotation type.
func (a *Annotation) Type() string {
	return a.typ
}

// Start returns the index of the first covered token.
func (a *Annotation) Start() int {
	return a.start
}

// Size returns the number of covered tokens.
func (a *Annotation) Size() int {
	return a.size
}

// End returns the index just past the last covered token.
func (a *Annotation) End() int {
	return a.start + a.size
}

// Contains reports whether token index i is covered.
func (a *Annotation) Contains(i int) bool {
	return i >= a.start && i < a.End()
}

// Encloses reports whether a covers every token of other.
func (a *Annotation) Encloses(other *Annotation) bool {
	return a.start <= other.start && other.End() <= a.End()
}

// Crosses reports whether a and other overlap without either enclosing
// the other.
func (a *Annotation) Crosses(other *Annotation) bool {
	overlap := a.start < other.End() && other.start < a.End()
	return overlap && !a.Encloses(other) && !other.Encloses(a)
}

// CreatedAt returns the creation time.
func (a *Annotation) CreatedAt() time.Time {
	return a.createdAt
}

// Sequence returns the creation sequence number, unique per process.
func (a *Annotation) Sequence() uint64 {
	return a.seq
}

// Attached reports whether the annotation is held by a store.
func (a *Annotation) Attached() bool {
	return a.owner.Load() != nil
}

// SetType changes the annotation type. On a stored annotation the change
// runs through the store's guard and the annotation is moved to its new
// position in the store order.
func (a *Annotation) SetType(typ string) error {
	return a.guarded(func() error { return a.setType(typ) })
}

func (a *Annotation) setType(typ string) error {
	if strings.TrimSpace(typ) == "" {
		return ErrBlankType
	}
	if err := markup.CheckName(typ); err != nil {
		return err
	}
	if typ == a.typ {
		return nil
	}
	old := a.typ
	a.typ = typ
	if s := a.owner.Load(); s != nil {
		s.reposition(a)
	}
	a.emit(Event{Kind: TypeChanged, Annotation: a, OldType: old})
	return nil
}

// guarded runs a mutation through the owning store's guard, or directly
// when the annotation is detached or the store has none.
func (a *Annotation) guarded(fn func() error) error {
	if s := a.owner.Load(); s != nil && s.guard != nil {
		return s.guard(fn)
	}
	return fn()
}

// Attr returns the value of an attribute set on the annotation itself.
func (a *Annotation) Attr(name string) (string, bool) {
	return a.attrs.Get(name)
}

// Lookup returns an attribute, falling back to the properties of the
// store's owner when the annotation does not set it.
func (a *Annotation) Lookup(name string) (string, bool) {
	if v, ok := a.attrs.Get(name); ok {
		return v, true
	}
	if s := a.owner.Load(); s != nil && s.props != nil {
		return s.props.Get(name)
	}
	return "", false
}

// SetAttr sets an attribute. Invalid names are rejected and leave the
// annotation unchanged. Stored annotations go through the store's guard.
func (a *Annotation) SetAttr(name, value string) error {
	return a.guarded(func() error { return a.setAttr(name, value) })
}

func (a *Annotation) setAttr(name, value string) error {
	if a.attrs == nil {
		a.attrs = attrs.New()
	}
	old, had, err := a.attrs.Set(name, value)
	if err != nil {
		return err
	}
	a.emit(Event{Kind: AttributeChanged, Annotation: a, Name: name, OldValue: old, HadValue: had})
	return nil
}

// RemoveAttr deletes an attribute. It reports whether the attribute existed.
func (a *Annotation) RemoveAttr(name string) (bool, error) {
	var had bool
	err := a.guarded(func() error {
		had = a.removeAttr(name)
		return nil
	})
	return had, err
}

func (a *Annotation) removeAttr(name string) bool {
	old, had := a.attrs.Remove(name)
	if had {
		a.emit(Event{Kind: AttributeChanged, Annotation: a, Name: name, OldValue: old, HadValue: true})
	}
	return had
}

// AttrNames returns the attribute names in sorted order.
func (a *Annotation) AttrNames() []string {
	return a.attrs.Names()
}

// Attrs returns a copy of the attributes.
func (a *Annotation) Attrs() *attrs.Map {
	return a.attrs.Clone()
}

// Clone returns a detached copy with a new ID and no listeners.
func (a *Annotation) Clone() *Annotation {
	return &Annotation{
		typ:       a.typ,
		start:     a.start,
		size:      a.size,
		id:        NewID(),
		attrs:     a.attrs.Clone(),
		createdAt: time.Now(),
		seq:       sequence.Add(1),
	}
}

// OnEvent registers fn for this annotation's lifecycle events. The returned
// function unregisters it.
func (a *Annotation) OnEvent(fn Listener) (cancel func()) {
	if a.listeners == nil {
		a.listeners = &listeners{}
	}
	return a.listeners.add(fn)
}

// String returns a human-readable representation of the annotation.
func (a *Annotation) String() string {
	return fmt.Sprintf("%s[%d:%d)", a.typ, a.start, a.End())
}

// emit routes an event through the store when attached, so a suspended
// store can hold it.
func (a *Annotation) emit(e Event) {
	if s := a.owner.Load(); s != nil {
		s.emit(e)
		return
	}
	a.listeners.notify(e)
}
