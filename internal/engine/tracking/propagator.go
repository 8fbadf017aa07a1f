package tracking

import (
	"fmt"
	"sync"

	"github.com/dshills/tagtext/internal/engine/annotation"
	"github.com/dshills/tagtext/internal/engine/buffer"
)

// DefaultMaxHistory is the default number of applied changes remembered.
const DefaultMaxHistory = 1000

// Option configures a Propagator.
type Option func(*Propagator)

// WithMaxHistory sets the number of applied changes remembered.
// IMPORTANT: This option must only be used during creation via New.
func WithMaxHistory(n int) Option {
	return func(p *Propagator) {
		if n < 1 {
			n = 1
		}
		p.maxHistory = n
		p.history = make([]Record, n)
	}
}

// Propagator keeps a store's annotation spans in step with buffer changes.
type Propagator struct {
	store *annotation.Store

	mu         sync.RWMutex
	revision   Revision
	history    []Record
	head       int // Index of oldest entry
	count      int // Number of entries
	maxHistory int
}

// New creates a propagator for store.
func New(store *annotation.Store, opts ...Option) *Propagator {
	p := &Propagator{
		store:      store,
		maxHistory: DefaultMaxHistory,
		history:    make([]Record, DefaultMaxHistory),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rebased is a change expressed in one annotation's coordinates: Index is
// relative to the annotation's start and the token lists hold only the
// tokens inside it.
type Rebased struct {
	Annotation *annotation.Annotation
	Change     buffer.Change
}

// Result describes the effect of one applied change.
type Result struct {
	Revision Revision
	Deltas   []annotation.Delta
	Purged   []*annotation.Annotation
	Relays   []Rebased
}

// String returns a short summary of the result.
func (r Result) String() string {
	return fmt.Sprintf("rev %d: %d deltas, %d purged, %d relays",
		r.Revision, len(r.Deltas), len(r.Purged), len(r.Relays))
}

// plan is the pre-edit classification of one annotation.
type plan struct {
	delta annotation.Delta
	relay bool
}

// Apply propagates c to every stored annotation. source is the annotation
// the edit was made through, or nil for edits made at the document level.
//
// Every delta is computed against the pre-edit spans before any is
// committed. Annotations left empty are purged. Relays are returned for
// the survivors whose interior the change touched.
func (p *Propagator) Apply(c buffer.Change, source *annotation.Annotation) Result {
	var res Result
	if c.IsEmpty() {
		return res
	}

	all := p.store.All()
	plans := make([]plan, 0, len(all))
	for _, a := range all {
		owned := p.owns(a, source)
		d, relay := Classify(c, a.Start(), a.End(), owned)
		if d.Start == 0 && d.Size == 0 && !relay {
			continue
		}
		d.Annotation = a
		plans = append(plans, plan{delta: d, relay: relay})
	}

	res.Deltas = make([]annotation.Delta, len(plans))
	for i, pl := range plans {
		res.Deltas[i] = pl.delta
	}
	// Rebasing reads the pre-edit span, so it happens before the commit.
	var relays []Rebased
	for _, pl := range plans {
		if pl.relay {
			relays = append(relays, Rebase(c, pl.delta.Annotation))
		}
	}

	res.Purged = p.store.Commit(res.Deltas)
	for _, r := range relays {
		if r.Annotation.Size() > 0 {
			res.Relays = append(res.Relays, r)
		}
	}
	res.Revision = p.record(c, res)
	return res
}

// owns reports whether candidate owns a boundary insertion made through
// source.
func (p *Propagator) owns(candidate, source *annotation.Annotation) bool {
	if source == nil {
		return false
	}
	if candidate == source {
		return true
	}
	if candidate.Encloses(source) {
		if candidate.Start() != source.Start() || candidate.Size() != source.Size() {
			return true
		}
		return p.store.Precedes(candidate, source)
	}
	return false
}

// Classify computes the span delta of an annotation covering tokens [s, e)
// for change c, and whether the change touches its interior. owned tells
// whether the annotation owns a pure insertion at one of its boundaries.
func Classify(c buffer.Change, s, e int, owned bool) (annotation.Delta, bool) {
	i, n, m := c.Index, len(c.Inserted), len(c.Removed)
	var d annotation.Delta

	if m == 0 {
		switch {
		case i > e || (i == e && !owned):
			// after end
		case i < s || (i == s && !owned):
			d.Start = n
		default:
			// at an owned boundary or inside
			d.Size = n
			return d, true
		}
		return d, false
	}

	switch {
	case i >= e:
		// after end
		return d, false
	case i+m <= s:
		d.Start = n - m
		return d, false
	case i < s && i+m >= e:
		// covers
		d.Start = i + n - s
		d.Size = -(e - s)
		return d, false
	case i < s:
		// spans start: the part before s is replaced, the rest was inside
		d.Start = i + n - s
		d.Size = -(i + m - s)
		return d, true
	case i+m <= e:
		// inside
		d.Size = n - m
	default:
		// spans end: the tokens past e are dropped, the inserted ones stay
		d.Size = n - (e - i)
	}
	return d, e-s+d.Size > 0
}

// Rebase expresses c in a's current coordinates, clipped to a's span.
// It must be called before the change is committed to a.
func Rebase(c buffer.Change, a *annotation.Annotation) Rebased {
	s, e := a.Start(), a.End()
	i, n, m := c.Index, len(c.Inserted), len(c.Removed)

	// Removed tokens occupied [i, i+m) before the edit.
	lo, hi := max(i, s), min(i+m, e)
	var removed []*buffer.Token
	if lo < hi {
		removed = c.Removed[lo-i : hi-i]
	}

	// Inserted tokens occupy [i, i+n) after it. The annotation keeps s
	// unless the change spans its start, in which case nothing inserted
	// lands inside.
	var inserted []*buffer.Token
	if i >= s {
		d, _ := Classify(c, s, e, true)
		newEnd := e + d.Size
		if end := min(i+n, newEnd); i < end {
			inserted = c.Inserted[:end-i]
		}
	}

	return Rebased{
		Annotation: a,
		Change: buffer.Change{
			Index:    max(i, s) - s,
			Inserted: inserted,
			Removed:  removed,
			Cause:    c.Cause,
		},
	}
}
