package build

import (
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/internal/bits"
)

// ComputeNullable computes the set of nullable nonterminals by fixpoint
// iteration (C9 stage b): a nonterminal is nullable if any of its
// productions consists entirely of nullable symbols. Terminals are never
// nullable. Per this implementation's decision on the design's first Open
// Question (§9), the end-of-input symbol is treated as non-nullable; it
// only ever appears explicitly in the augmented start GOTO's initial follow
// set (stage e), never as an ordinary handle symbol.
func ComputeNullable(p AbstractSyntaxProvider) bits.SymbolSet {
	nullable := bits.NewSymbolSet(uint(p.NonterminalCount()))

	changed := true
	for changed {
		changed = false
		for nt := 0; nt < p.NonterminalCount(); nt++ {
			ntID := grammar.NonterminalID(nt)
			if nullable.Has(uint(nt)) {
				continue
			}
			for _, prodID := range p.NonterminalProductions(ntID) {
				if handleIsNullable(p.ProductionMembers(prodID), nullable) {
					nullable.Add(uint(nt))
					changed = true
					break
				}
			}
		}
	}

	return nullable
}

func handleIsNullable(handle []grammar.Symbol, nullable bits.SymbolSet) bool {
	for _, sym := range handle {
		if sym.IsTerminal() {
			return false
		}
		if !nullable.Has(uint(sym.Nonterminal())) {
			return false
		}
	}
	return true
}

// ComputeProductionNullableStart computes, for every production, the
// smallest handle index i such that every symbol from i onward is nullable
// (C9 stage c). i == len(handle) means no such (non-trivial) suffix exists
// other than the empty one at the end, which is vacuously nullable.
func ComputeProductionNullableStart(p AbstractSyntaxProvider, nullable bits.SymbolSet) []int {
	starts := make([]int, p.ProductionCount())

	for prodID := 0; prodID < p.ProductionCount(); prodID++ {
		handle := p.ProductionMembers(grammar.ProductionID(prodID))
		i := len(handle)
		for i > 0 {
			sym := handle[i-1]
			if sym.IsTerminal() || !nullable.Has(uint(sym.Nonterminal())) {
				break
			}
			i--
		}
		starts[prodID] = i
	}

	return starts
}
