package engine

import (
	"fmt"

	"github.com/dshills/tagtext/internal/engine/annotation"
)

// ============================================================================
// Annotation Queries
// ============================================================================

// Annotation returns the stored annotation with the given ID.
func (d *Document) Annotation(id AnnotationID) (*Annotation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.Get(id)
}

// Annotations returns the stored annotations of the given types, or all of
// them, in store order.
func (d *Document) Annotations(types ...string) []*Annotation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.RangeQuery(0, d.buf.TokenCount(), types...)
}

// AnnotationCount returns the number of stored annotations.
func (d *Document) AnnotationCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.Len()
}

// AnnotationsIn returns the annotations contained in tokens [start, end)
// whose type is one of types, or of any type when none are given.
func (d *Document) AnnotationsIn(start, end int, types ...string) []*Annotation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.RangeQuery(start, end, types...)
}

// Covering returns the annotations covering token index, outermost first.
func (d *Document) Covering(index int) []*Annotation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.Covering(index)
}

// TypesIn returns the sorted distinct types of the annotations contained in
// tokens [start, end).
func (d *Document) TypesIn(start, end int) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.TypesInRange(start, end)
}

// NestingOrder returns the type ranking.
func (d *Document) NestingOrder() NestingOrder {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.store.NestingOrder()
}

// Lookup returns an annotation attribute, falling back to the document
// properties.
func (d *Document) Lookup(a *Annotation, name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return a.Lookup(name)
}

// Crossings returns every pair of stored annotations whose spans cross.
func (d *Document) Crossings() []Crossing {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := d.store.All()
	var out []Crossing
	for i, a := range all {
		for _, b := range all[i+1:] {
			if b.Start() >= a.End() {
				break
			}
			// b starts inside a; it crosses a when it ends after it.
			if b.End() > a.End() {
				out = append(out, Crossing{First: a, Second: b})
			}
		}
	}
	return out
}

// CheckWellFormed reports crossing annotations as a *CrossingError.
func (d *Document) CheckWellFormed() error {
	if crossings := d.Crossings(); len(crossings) > 0 {
		return &CrossingError{Crossings: crossings}
	}
	return nil
}

// ============================================================================
// Annotation Writes
// ============================================================================

// Annotate creates and stores an annotation over tokens [start, start+size).
func (d *Document) Annotate(typ string, start, size int) (*Annotation, error) {
	var a *Annotation
	err := d.write(func() error {
		var err error
		a, err = d.annotateLocked(typ, start, size)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (d *Document) annotateLocked(typ string, start, size int) (*Annotation, error) {
	a, err := annotation.New(typ, start, size)
	if err != nil {
		return nil, err
	}
	if err := d.checkSpanLocked(start, size); err != nil {
		return nil, err
	}
	if err := d.store.Insert(a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddAnnotation stores an annotation created elsewhere, for example a
// clone. Its span must lie within the token sequence.
func (d *Document) AddAnnotation(a *Annotation) error {
	return d.write(func() error {
		if err := d.checkSpanLocked(a.Start(), a.Size()); err != nil {
			return err
		}
		return d.store.Insert(a)
	})
}

func (d *Document) checkSpanLocked(start, size int) error {
	if n := d.buf.TokenCount(); start < 0 || size > n-start {
		return fmt.Errorf("%w: %d tokens at %d of %d", ErrIndexOutOfRange, size, start, n)
	}
	return nil
}

// RemoveAnnotation removes a. Views over it fail from then on. It reports
// whether a was stored.
func (d *Document) RemoveAnnotation(a *Annotation) (bool, error) {
	var removed bool
	err := d.write(func() error {
		removed = d.store.Remove(a)
		if removed {
			delete(d.viewListeners, a.ID())
		}
		return nil
	})
	return removed, err
}

// RemoveMatching removes the stored annotation with the same type, span
// and attributes as a, which may be a detached copy.
func (d *Document) RemoveMatching(a *Annotation) (*Annotation, error) {
	var removed *Annotation
	err := d.write(func() error {
		got, ok := d.store.RemoveMatching(a)
		if !ok {
			return fmt.Errorf("%w: %s", annotation.ErrNotFound, a)
		}
		removed = got
		delete(d.viewListeners, got.ID())
		return nil
	})
	return removed, err
}

// SetAnnotationType changes the type of a stored annotation.
func (d *Document) SetAnnotationType(a *Annotation, typ string) error {
	return d.write(func() error {
		if !d.store.Has(a) {
			return ErrNotStored
		}
		return d.store.SetType(a, typ)
	})
}

// SetAnnotationAttr sets an attribute of a stored annotation.
func (d *Document) SetAnnotationAttr(a *Annotation, name, value string) error {
	return d.write(func() error {
		if !d.store.Has(a) {
			return ErrNotStored
		}
		return d.store.SetAttr(a, name, value)
	})
}

// RemoveAnnotationAttr deletes an attribute of a stored annotation.
func (d *Document) RemoveAnnotationAttr(a *Annotation, name string) error {
	return d.write(func() error {
		if !d.store.Has(a) {
			return ErrNotStored
		}
		_, err := d.store.RemoveAttr(a, name)
		return err
	})
}

// SetNestingOrder replaces the type ranking and re-sorts the store. The
// root type is kept.
func (d *Document) SetNestingOrder(types ...string) error {
	return d.write(func() error {
		order, err := annotation.NewNestingOrder(d.rootType, types...)
		if err != nil {
			return err
		}
		d.store.SetNestingOrder(order)
		return nil
	})
}

// ============================================================================
// Properties
// ============================================================================

// Property returns a document property.
func (d *Document) Property(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.props.Get(name)
}

// PropertyNames returns the property names in sorted order.
func (d *Document) PropertyNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.props.Names()
}

// SetProperty sets a document property. Annotations inherit properties
// through Lookup.
func (d *Document) SetProperty(name, value string) error {
	return d.write(func() error {
		_, _, err := d.props.Set(name, value)
		return err
	})
}

// RemoveProperty deletes a document property.
func (d *Document) RemoveProperty(name string) error {
	return d.write(func() error {
		d.props.Remove(name)
		return nil
	})
}
