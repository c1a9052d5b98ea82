// Package automaton provides the deterministic breadth-first
// state-collection machinery package build uses to construct the LR(0)
// item-set graph (C9 stage a). It plays the same role the teacher's
// automaton.go generic DFA[E]/NFA[E] containers play for NFA/DFA
// construction during regex compilation — a state keyed by a canonical
// string, carrying an arbitrary payload, discovered breadth-first — adapted
// here so kernel sets (not regex states) are the payload and the canonical
// key is the sorted kernel itself rather than a regex state name.
package automaton

import (
	"sort"
	"strconv"
	"strings"

	"github.com/brackwater/weir/grammar"
)

// Item is an LR(0) item: a production together with the position of the
// dot within its handle. Dot ranges from 0 (nothing consumed) to
// len(handle) (the production is complete).
type Item struct {
	Production grammar.ProductionID
	Dot        int
}

// Less imposes the deterministic (production, dot) order the design
// requires for canonical kernel-set comparison.
func (it Item) Less(o Item) bool {
	if it.Production != o.Production {
		return it.Production < o.Production
	}
	return it.Dot < o.Dot
}

// Kernel is a deduplicated, canonically sorted list of Items: the kernel of
// an LR(0) state, per the design's "stored as sorted lists of
// (production-index, dot-position) pairs."
type Kernel []Item

// NewKernel sorts and deduplicates items into a canonical Kernel.
func NewKernel(items []Item) Kernel {
	cp := make([]Item, len(items))
	copy(cp, items)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Less(cp[j]) })

	out := cp[:0]
	for i, it := range cp {
		if i > 0 && it == cp[i-1] {
			continue
		}
		out = append(out, it)
	}
	return Kernel(out)
}

// Key returns the canonical string used to dedupe kernel sets by structural
// equality: two Kernels with the same Key contain exactly the same items.
func (k Kernel) Key() string {
	var sb strings.Builder
	for i, it := range k {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.FormatUint(uint64(it.Production), 10))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(it.Dot))
	}
	return sb.String()
}
