package annotation

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
)

// Properties supplies the fallback values for Annotation.Lookup.
type Properties interface {
	Get(name string) (string, bool)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithNestingOrder sets the order used to rank types.
func WithNestingOrder(o NestingOrder) StoreOption {
	return func(s *Store) {
		s.order = o
	}
}

// WithProperties sets the properties stored annotations inherit.
func WithProperties(p Properties) StoreOption {
	return func(s *Store) {
		s.props = p
	}
}

// WithGuard routes the mutators called directly on stored annotations
// (SetType, SetAttr, RemoveAttr) through guard, which runs fn under the
// owner's write lock or rejects it.
func WithGuard(guard func(fn func() error) error) StoreOption {
	return func(s *Store) {
		s.guard = guard
	}
}

// Store holds annotations in canonical order and indexes them by ID.
type Store struct {
	items []*Annotation
	byID  map[ID]*Annotation
	order NestingOrder
	props Properties
	guard func(fn func() error) error

	listeners listeners

	// held collects events while the store is suspended.
	held      []Event
	suspended bool
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{byID: make(map[ID]*Annotation)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delta is a pending change to one annotation's span.
type Delta struct {
	Annotation *Annotation
	Start      int // Added to the start index
	Size       int // Added to the size
}

// String returns a human-readable representation of the delta.
func (d Delta) String() string {
	return fmt.Sprintf("%s start%+d size%+d", d.Annotation, d.Start, d.Size)
}

// Ordering

// compare orders annotations canonically.
func (s *Store) compare(a, b *Annotation) int {
	if c := cmp.Compare(a.start, b.start); c != 0 {
		return c
	}
	if c := cmp.Compare(b.size, a.size); c != 0 {
		return c
	}
	if c := cmp.Compare(s.order.Rank(a.typ), s.order.Rank(b.typ)); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// searchSpan returns the first position whose (start, size) does not sort
// before the given span.
func (s *Store) searchSpan(start, size int) int {
	return sort.Search(len(s.items), func(i int) bool {
		it := s.items[i]
		return it.start > start || (it.start == start && it.size <= size)
	})
}

// position returns the index of a in items, or -1.
func (s *Store) position(a *Annotation) int {
	for i := s.searchSpan(a.start, a.size); i < len(s.items); i++ {
		it := s.items[i]
		if it == a {
			return i
		}
		if it.start != a.start || it.size != a.size {
			break
		}
	}
	// The order is stale only between a commit and the re-sort that
	// follows it.
	return slices.Index(s.items, a)
}

// NestingOrder returns the order used to rank types.
func (s *Store) NestingOrder() NestingOrder {
	return s.order
}

// SetNestingOrder replaces the nesting order and re-sorts the store.
func (s *Store) SetNestingOrder(o NestingOrder) {
	s.order = o
	s.Resort()
}

// Rank returns the nesting rank of the annotation's type.
func (s *Store) Rank(a *Annotation) int {
	return s.order.Rank(a.typ)
}

// Precedes reports whether a sorts before b by nesting rank, then by
// creation sequence.
func (s *Store) Precedes(a, b *Annotation) bool {
	if ra, rb := s.Rank(a), s.Rank(b); ra != rb {
		return ra < rb
	}
	return a.seq < b.seq
}

// Resort restores canonical order if it was disturbed.
func (s *Store) Resort() {
	if !slices.IsSortedFunc(s.items, s.compare) {
		slices.SortStableFunc(s.items, s.compare)
	}
}

// Queries

// Len returns the number of stored annotations.
func (s *Store) Len() int {
	return len(s.items)
}

// All returns every annotation in canonical order.
func (s *Store) All() []*Annotation {
	return slices.Clone(s.items)
}

// Get returns the annotation with the given ID.
func (s *Store) Get(id ID) (*Annotation, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Has reports whether a is stored here.
func (s *Store) Has(a *Annotation) bool {
	return a != nil && a.owner.Load() == s
}

// RangeQuery returns the annotations contained in tokens [start, end) whose
// type is one of types, or of any type when none are given.
func (s *Store) RangeQuery(start, end int, types ...string) []*Annotation {
	var out []*Annotation
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].start >= start })
	for ; i < len(s.items); i++ {
		a := s.items[i]
		if a.start >= end {
			break
		}
		if a.End() <= end && matchType(a.typ, types) {
			out = append(out, a)
		}
	}
	return out
}

// Covering returns the annotations that cover token index, outermost first.
func (s *Store) Covering(index int) []*Annotation {
	var out []*Annotation
	n := sort.Search(len(s.items), func(i int) bool { return s.items[i].start > index })
	for _, a := range s.items[:n] {
		if a.Contains(index) {
			out = append(out, a)
		}
	}
	return out
}

// TypesInRange returns the sorted distinct types of the annotations
// contained in tokens [start, end).
func (s *Store) TypesInRange(start, end int) []string {
	var types []string
	for _, a := range s.RangeQuery(start, end) {
		types = append(types, a.typ)
	}
	slices.Sort(types)
	return slices.Compact(types)
}

func matchType(typ string, types []string) bool {
	return len(types) == 0 || slices.Contains(types, typ)
}

// Mutations

// Insert adds a to the store at its canonical position. Among annotations
// with the same span it goes after those that rank before it.
func (s *Store) Insert(a *Annotation) error {
	switch owner := a.owner.Load(); {
	case owner == s:
		return fmt.Errorf("%w: %s", ErrDuplicate, a.id)
	case owner != nil:
		return fmt.Errorf("%w: %s", ErrAttached, a.id)
	}
	if _, ok := s.byID[a.id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, a.id)
	}
	if a.size < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, a.size)
	}
	s.insertLocked(a)
	s.byID[a.id] = a
	a.owner.Store(s)
	s.emit(Event{Kind: Added, Annotation: a})
	return nil
}

func (s *Store) insertLocked(a *Annotation) {
	i := s.searchSpan(a.start, a.size)
	for i < len(s.items) {
		it := s.items[i]
		if it.start != a.start || it.size != a.size || !s.Precedes(it, a) {
			break
		}
		i++
	}
	s.items = slices.Insert(s.items, i, a)
}

// SetType changes the type of a stored annotation without consulting the
// guard. Callers hold the owner's write lock.
func (s *Store) SetType(a *Annotation, typ string) error {
	if !s.Has(a) {
		return fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	return a.setType(typ)
}

// SetAttr sets an attribute of a stored annotation without consulting the
// guard.
func (s *Store) SetAttr(a *Annotation, name, value string) error {
	if !s.Has(a) {
		return fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	return a.setAttr(name, value)
}

// RemoveAttr deletes an attribute of a stored annotation without consulting
// the guard.
func (s *Store) RemoveAttr(a *Annotation, name string) (bool, error) {
	if !s.Has(a) {
		return false, fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	return a.removeAttr(name), nil
}

// reposition moves a after a change of its type.
func (s *Store) reposition(a *Annotation) {
	if i := slices.Index(s.items, a); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		s.insertLocked(a)
	}
}

// Remove removes a. It reports whether a was stored here.
func (s *Store) Remove(a *Annotation) bool {
	if !s.Has(a) {
		return false
	}
	if i := s.position(a); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	s.detach(a)
	return true
}

// RemoveMatching removes the first stored annotation with the same type,
// span and attributes as a, which may be a detached copy. It returns the
// removed annotation.
func (s *Store) RemoveMatching(a *Annotation) (*Annotation, bool) {
	if s.Has(a) {
		s.Remove(a)
		return a, true
	}
	for i := s.searchSpan(a.start, a.size); i < len(s.items); i++ {
		it := s.items[i]
		if it.start != a.start || it.size != a.size {
			break
		}
		if it.typ == a.typ && it.attrs.Equal(a.attrs) {
			s.items = slices.Delete(s.items, i, i+1)
			s.detach(it)
			return it, true
		}
	}
	return nil, false
}

// Cleanup removes every annotation with a non-positive size and returns
// them in store order.
func (s *Store) Cleanup() []*Annotation {
	var removed []*Annotation
	s.items = slices.DeleteFunc(s.items, func(a *Annotation) bool {
		if a.size <= 0 {
			removed = append(removed, a)
			return true
		}
		return false
	})
	for _, a := range removed {
		s.detach(a)
	}
	return removed
}

// Commit applies every delta, restores canonical order and purges the
// annotations left empty. Deltas must be computed before Commit is called;
// none of them observes another's effect.
func (s *Store) Commit(deltas []Delta) (purged []*Annotation) {
	if len(deltas) == 0 {
		return nil
	}
	for _, d := range deltas {
		d.Annotation.start += d.Start
		d.Annotation.size += d.Size
	}
	purged = s.Cleanup()
	s.Resort()
	return purged
}

func (s *Store) detach(a *Annotation) {
	delete(s.byID, a.id)
	a.owner.Store(nil)
	s.emit(Event{Kind: Removed, Annotation: a})
}

// Events

// OnEvent registers fn for the events of every stored annotation. The
// returned function unregisters it.
func (s *Store) OnEvent(fn Listener) (cancel func()) {
	return s.listeners.add(fn)
}

// Suspend holds events until Resume.
func (s *Store) Suspend() {
	s.suspended = true
}

// Resume stops holding events and returns the ones held since Suspend.
// Deliver them with Dispatch.
func (s *Store) Resume() []Event {
	held := s.held
	s.held, s.suspended = nil, false
	return held
}

// Dispatch delivers events to the annotation listeners, then to the store
// listeners.
func (s *Store) Dispatch(events []Event) {
	for _, e := range events {
		e.Annotation.listeners.notify(e)
		s.listeners.notify(e)
	}
}

func (s *Store) emit(e Event) {
	if s.suspended {
		s.held = append(s.held, e)
		return
	}
	s.Dispatch([]Event{e})
}
