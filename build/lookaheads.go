package build

import (
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/internal/bits"
)

// ReduceKey identifies one reduce item: production P completed in state
// State.
type ReduceKey struct {
	State      int
	Production grammar.ProductionID
}

// LookaheadTable is the result of stage g: the reduction lookahead set for
// every reduce item in the automaton, plus the state (if any) in which the
// augmented start production completes and should accept rather than
// reduce.
type LookaheadTable struct {
	Lookaheads  map[ReduceKey]bits.SymbolSet
	AcceptState int // -1 if the automaton never completes the start production
}

// ComputeLookaheads runs stage g: for every GOTO p --A--> p' and every
// production A -> w, the state reached by walking forward from p through w
// contains the completed item "A -> w .", and that item's reduction
// lookahead is exactly Follow(GOTO(p, A)) as already accumulated in fg. This
// is the DeRemer/Pennello formulation: lookaheads are read off GOTOs, never
// computed by walking an item backward out of the state that contains it.
func ComputeLookaheads(p AbstractSyntaxProvider, auto *LR0Automaton, fg *FollowGraph) *LookaheadTable {
	table := &LookaheadTable{
		Lookaheads:  map[ReduceKey]bits.SymbolSet{},
		AcceptState: -1,
	}

	for gi, g := range fg.Auto.Gotos {
		for _, prodID := range p.NonterminalProductions(g.Nonterminal) {
			handle := p.ProductionMembers(prodID)
			q := walkState(auto, g.From, handle)
			if q < 0 {
				continue
			}
			key := ReduceKey{State: q, Production: prodID}
			existing, ok := table.Lookaheads[key]
			if !ok {
				existing = bits.NewSymbolSet(uint(p.TerminalCount() + 1))
				table.Lookaheads[key] = existing
			}
			existing.Union(fg.Follows[gi])
		}
	}

	startHandle := p.ProductionMembers(p.StartProduction())
	if q := walkState(auto, auto.Start, startHandle); q >= 0 {
		table.AcceptState = q
	}

	return table
}
