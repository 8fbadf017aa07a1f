package annotation

import (
	"fmt"
	"slices"
)

// EventKind identifies an annotation lifecycle event.
type EventKind uint8

const (
	// Added is sent after an annotation is inserted into a store.
	Added EventKind = iota + 1
	// Removed is sent after an annotation leaves its store, including when
	// an edit purges it.
	Removed
	// TypeChanged is sent after SetType; OldType holds the previous type.
	TypeChanged
	// AttributeChanged is sent after SetAttr or RemoveAttr. Name is the
	// attribute; OldValue and HadValue describe its previous state.
	AttributeChanged
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TypeChanged:
		return "type-changed"
	case AttributeChanged:
		return "attribute-changed"
	default:
		return "unknown"
	}
}

// Event describes a lifecycle change of one annotation.
type Event struct {
	Kind       EventKind
	Annotation *Annotation
	OldType    string
	Name       string
	OldValue   string
	HadValue   bool
}

// String returns a human-readable representation of the event.
func (e Event) String() string {
	switch e.Kind {
	case TypeChanged:
		return fmt.Sprintf("%s %s (was %s)", e.Kind, e.Annotation, e.OldType)
	case AttributeChanged:
		return fmt.Sprintf("%s %s @%s", e.Kind, e.Annotation, e.Name)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Annotation)
	}
}

// Listener receives annotation events.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// listeners is a lazily allocated observer list.
type listeners struct {
	entries []listenerEntry
	nextID  int
}

func (l *listeners) add(fn Listener) (cancel func()) {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listenerEntry{id: id, fn: fn})
	return func() {
		l.entries = slices.DeleteFunc(l.entries, func(e listenerEntry) bool { return e.id == id })
	}
}

func (l *listeners) notify(e Event) {
	if l == nil {
		return
	}
	for _, entry := range slices.Clone(l.entries) {
		entry.fn(e)
	}
}
