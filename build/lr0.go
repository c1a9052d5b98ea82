package build

import (
	"context"

	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/internal/automaton"
)

// StateEdge is one outgoing transition of an LR(0) state: shifting on a
// terminal, or taking GOTO on a nonterminal.
type StateEdge struct {
	Symbol grammar.Symbol
	To     int
}

// GotoRecord is one GOTO transition split out of the LR(0) graph (stage a):
// reaching state To from state From by taking a transition on nonterminal
// Nonterminal.
type GotoRecord struct {
	From        int
	To          int
	Nonterminal grammar.NonterminalID
}

// LR0Automaton is the deterministic breadth-first LR(0) item-set
// construction: one state per (deduplicated) kernel, reached from the
// augmented start state's closure by repeatedly grouping outgoing
// transitions by the symbol at the dot and advancing it.
type LR0Automaton struct {
	Kernels []automaton.Kernel
	Edges   [][]StateEdge
	Gotos   []GotoRecord
	Start   int
}

// closureItems expands kernel into the full LR(0) item set it represents:
// iterate items, and whenever the dot sits before a nonterminal, enqueue
// that nonterminal's productions at dot 0, until no more are added.
func closureItems(p AbstractSyntaxProvider, kernel automaton.Kernel) []automaton.Item {
	seen := map[automaton.Item]bool{}
	var items []automaton.Item

	var enqueue func(it automaton.Item)
	enqueue = func(it automaton.Item) {
		if seen[it] {
			return
		}
		seen[it] = true
		items = append(items, it)

		handle := p.ProductionMembers(it.Production)
		if it.Dot >= len(handle) {
			return
		}
		sym := handle[it.Dot]
		if sym.IsTerminal() {
			return
		}
		for _, prod := range p.NonterminalProductions(sym.Nonterminal()) {
			enqueue(automaton.Item{Production: prod, Dot: 0})
		}
	}

	for _, it := range kernel {
		enqueue(it)
	}

	return items
}

// dotSymbol returns the symbol immediately after the dot in it, and whether
// the item is not yet complete (dot is not at the end of the handle).
func dotSymbol(p AbstractSyntaxProvider, it automaton.Item) (grammar.Symbol, bool) {
	handle := p.ProductionMembers(it.Production)
	if it.Dot >= len(handle) {
		return grammar.Symbol{}, false
	}
	return handle[it.Dot], true
}

// BuildLR0 constructs the LR(0) state machine for the augmented grammar
// described by p (C9 stage a). cancel, if non-nil, is polled once per
// processed state, per the design's cancellation-signal requirement for the
// table builder's outer loops.
func BuildLR0(p AbstractSyntaxProvider, cancel <-chan struct{}) (*LR0Automaton, error) {
	startKernel := automaton.NewKernel([]automaton.Item{{Production: p.StartProduction(), Dot: 0}})

	coll := automaton.NewCollection[automaton.Kernel]()
	startIdx, _ := coll.Discover(startKernel.Key(), startKernel)

	queue := []string{startKernel.Key()}

	for len(queue) > 0 {
		if cancelled(cancel) {
			return nil, context.Canceled
		}

		key := queue[0]
		queue = queue[1:]

		kernel := coll.Value(key)
		closure := closureItems(p, kernel)

		// group items by the symbol at the dot, in a deterministic order:
		// collect distinct symbols first, sort them, then build each
		// destination kernel.
		bySymbol := map[grammar.Symbol][]automaton.Item{}
		var symbols []grammar.Symbol
		for _, it := range closure {
			sym, ok := dotSymbol(p, it)
			if !ok {
				continue
			}
			if _, seen := bySymbol[sym]; !seen {
				symbols = append(symbols, sym)
			}
			bySymbol[sym] = append(bySymbol[sym], automaton.Item{Production: it.Production, Dot: it.Dot + 1})
		}
		sortSymbols(symbols)

		for _, sym := range symbols {
			destKernel := automaton.NewKernel(bySymbol[sym])
			destKey := destKernel.Key()
			_, isNew := coll.Discover(destKey, destKernel)
			if isNew {
				queue = append(queue, destKey)
			}
			coll.AddEdge(key, destKey, sym)
		}
	}

	auto := &LR0Automaton{
		Kernels: make([]automaton.Kernel, coll.Len()),
		Edges:   make([][]StateEdge, coll.Len()),
		Start:   startIdx,
	}

	for i := 0; i < coll.Len(); i++ {
		auto.Kernels[i] = coll.ValueAt(i)
		edges := coll.EdgesAt(i)
		stateEdges := make([]StateEdge, len(edges))
		for j, e := range edges {
			to := coll.IndexOf(e.ToKey)
			stateEdges[j] = StateEdge{Symbol: e.Symbol, To: to}
			if !e.Symbol.IsTerminal() {
				auto.Gotos = append(auto.Gotos, GotoRecord{From: i, To: to, Nonterminal: e.Symbol.Nonterminal()})
			}
		}
		auto.Edges[i] = stateEdges
	}

	return auto, nil
}

// Goto returns the destination state reached from state i on sym, or -1 if
// there is no such transition.
func (a *LR0Automaton) Goto(i int, sym grammar.Symbol) int {
	for _, e := range a.Edges[i] {
		if e.Symbol.Equal(sym) {
			return e.To
		}
	}
	return -1
}

func sortSymbols(symbols []grammar.Symbol) {
	// small slices (bounded by a single state's vocabulary); insertion sort
	// keeps this free of an extra sort.Slice closure allocation per state.
	for i := 1; i < len(symbols); i++ {
		for j := i; j > 0 && symbols[j].Less(symbols[j-1]); j-- {
			symbols[j], symbols[j-1] = symbols[j-1], symbols[j]
		}
	}
}

func cancelled(cancel <-chan struct{}) bool {
	if cancel == nil {
		return false
	}
	select {
	case <-cancel:
		return true
	default:
		return false
	}
}
