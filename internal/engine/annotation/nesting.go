package annotation

import (
	"fmt"
	"strings"

	"github.com/dshills/tagtext/internal/engine/markup"
)

// DefaultRootType is the type of the implicit annotation spanning a whole
// document.
const DefaultRootType = "document"

// NestingOrder ranks annotation types from outermost to innermost. The root
// type ranks 0, listed types rank 1..n in order and any other type ranks
// n+1. The zero value ranks every type equally except DefaultRootType.
type NestingOrder struct {
	root  string
	types []string
	rank  map[string]int
}

// NewNestingOrder creates a nesting order with the given root type and
// types, outermost first. Repeated types keep their first position.
func NewNestingOrder(root string, types ...string) (NestingOrder, error) {
	if root == "" {
		root = DefaultRootType
	}
	if err := markup.CheckName(root); err != nil {
		return NestingOrder{}, err
	}
	o := NestingOrder{root: root, rank: make(map[string]int, len(types))}
	for _, t := range types {
		if err := markup.CheckName(t); err != nil {
			return NestingOrder{}, err
		}
		if _, seen := o.rank[t]; seen || t == root {
			continue
		}
		o.types = append(o.types, t)
		o.rank[t] = len(o.types)
	}
	return o, nil
}

// ParseNestingOrder parses a whitespace-separated type list, outermost first.
func ParseNestingOrder(root, list string) (NestingOrder, error) {
	o, err := NewNestingOrder(root, strings.Fields(list)...)
	if err != nil {
		return NestingOrder{}, fmt.Errorf("nesting order: %w", err)
	}
	return o, nil
}

// Root returns the root type.
func (o NestingOrder) Root() string {
	if o.root == "" {
		return DefaultRootType
	}
	return o.root
}

// Types returns the listed types, outermost first.
func (o NestingOrder) Types() []string {
	return append([]string(nil), o.types...)
}

// Rank returns the nesting rank of typ; lower ranks are outer.
func (o NestingOrder) Rank(typ string) int {
	if typ == o.Root() {
		return 0
	}
	if r, ok := o.rank[typ]; ok {
		return r
	}
	return len(o.types) + 1
}

// String renders the listed types in the form ParseNestingOrder accepts.
func (o NestingOrder) String() string {
	return strings.Join(o.types, " ")
}
