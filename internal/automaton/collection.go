package automaton

import (
	"sort"

	"github.com/brackwater/weir/grammar"
)

// Edge is one outgoing transition recorded against a state in a Collection.
type Edge struct {
	Symbol grammar.Symbol
	ToKey  string
}

// Collection accumulates a deterministically-ordered, deduplicated
// collection of states discovered breadth-first. States are identified by a
// caller-chosen canonical key (for LR(0) construction, a Kernel's Key());
// the index assigned to a key is its first-discovery order, which becomes
// that state's numeric id in the finished automaton.
type Collection[V any] struct {
	order  []string
	index  map[string]int
	values map[string]V
	edges  map[string][]Edge
}

// NewCollection returns an empty Collection.
func NewCollection[V any]() *Collection[V] {
	return &Collection[V]{
		index:  map[string]int{},
		values: map[string]V{},
		edges:  map[string][]Edge{},
	}
}

// Discover registers key with value if not already present, returning the
// state's index (stable across repeated Discover calls for the same key)
// and whether this call actually added it.
func (c *Collection[V]) Discover(key string, value V) (idx int, isNew bool) {
	if existing, ok := c.index[key]; ok {
		return existing, false
	}
	idx = len(c.order)
	c.order = append(c.order, key)
	c.index[key] = idx
	c.values[key] = value
	return idx, true
}

// AddEdge records a transition from the state keyed by from to the state
// keyed by to, labeled with sym. Both states must already have been
// Discover'd.
func (c *Collection[V]) AddEdge(from, to string, sym grammar.Symbol) {
	c.edges[from] = append(c.edges[from], Edge{Symbol: sym, ToKey: to})
}

// Len returns the number of discovered states.
func (c *Collection[V]) Len() int { return len(c.order) }

// KeyAt returns the canonical key of the state at index i (its discovery
// order).
func (c *Collection[V]) KeyAt(i int) string { return c.order[i] }

// IndexOf returns the index assigned to key, or -1 if key was never
// discovered.
func (c *Collection[V]) IndexOf(key string) int {
	if idx, ok := c.index[key]; ok {
		return idx
	}
	return -1
}

// Value returns the payload associated with key.
func (c *Collection[V]) Value(key string) V {
	return c.values[key]
}

// ValueAt returns the payload associated with the state at index i.
func (c *Collection[V]) ValueAt(i int) V {
	return c.values[c.order[i]]
}

// Edges returns the outgoing edges recorded for key, sorted by Symbol for
// deterministic iteration regardless of the order AddEdge calls arrived in.
func (c *Collection[V]) Edges(key string) []Edge {
	es := c.edges[key]
	sorted := make([]Edge, len(es))
	copy(sorted, es)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol.Less(sorted[j].Symbol) })
	return sorted
}

// EdgesAt returns the outgoing edges for the state at index i, sorted by
// Symbol.
func (c *Collection[V]) EdgesAt(i int) []Edge {
	return c.Edges(c.order[i])
}
