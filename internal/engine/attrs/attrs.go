// Package attrs provides the string-keyed attribute container used by
// tokens, annotations and document properties.
package attrs

import (
	"maps"
	"slices"

	"github.com/dshills/tagtext/internal/engine/markup"
)

// Map is a set of named string attributes. Names must be valid QNames.
// The zero value is an empty map ready to use. A Map is not safe for
// concurrent mutation.
type Map struct {
	values map[string]string
}

// New returns an empty attribute map.
func New() *Map {
	return &Map{}
}

// Get returns the value of name and whether it is set.
func (m *Map) Get(name string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[name]
	return v, ok
}

// Has reports whether name is set.
func (m *Map) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Set assigns value to name. Invalid names are rejected and leave the map
// unchanged. Set returns the previous value, if any.
func (m *Map) Set(name, value string) (old string, hadOld bool, err error) {
	if err := markup.CheckName(name); err != nil {
		return "", false, err
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	old, hadOld = m.values[name]
	m.values[name] = value
	return old, hadOld, nil
}

// Remove deletes name and returns its previous value.
func (m *Map) Remove(name string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	old, ok := m.values[name]
	if ok {
		delete(m.values, name)
	}
	return old, ok
}

// Len returns the number of attributes.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.values)
}

// Names returns the attribute names in sorted order.
func (m *Map) Names() []string {
	if m.Len() == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(m.values))
}

// Range calls fn for every attribute in name order until fn returns false.
func (m *Map) Range(fn func(name, value string) bool) {
	for _, name := range m.Names() {
		if !fn(name, m.values[name]) {
			return
		}
	}
}

// Equal reports whether both maps hold the same attributes.
// A nil map equals an empty one.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	return maps.Equal(m.values, other.values)
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	if m.Len() == 0 {
		return &Map{}
	}
	return &Map{values: maps.Clone(m.values)}
}
