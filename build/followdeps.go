package build

import (
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/internal/bits"
)

// DependencyKind classifies an edge in the GOTO follow dependency graph
// (C9 stage d), per the design: successor edges flow from a GOTO to the
// GOTOs triggered immediately after it on a nullable nonterminal; includes
// edges flow from a GOTO to the GOTO(s) that "include" it because a
// production's nullable tail lets the follow set pass through — internal
// if that production starts at the same state the dependent GOTO does,
// predecessor otherwise.
type DependencyKind int

const (
	DependencySuccessor DependencyKind = iota
	DependencyInternal
	DependencyPredecessor
)

// Dependency is one edge "to depends on from": from's follow set must be
// unioned into to's.
type Dependency struct {
	From int
	To   int
	Kind DependencyKind
}

// FollowGraph is the GOTO follow dependency graph plus each GOTO's
// progressively-computed follow set.
type FollowGraph struct {
	Auto *LR0Automaton

	// GotoOf maps (fromState, nonterminal) to the index into Auto.Gotos (and
	// into Follows) for that GOTO, letting stage d/e/f look a GOTO up by
	// where it's taken from and what it's triggered by.
	GotoOf map[gotoKey]int

	Deps    []Dependency
	Follows []bits.SymbolSet // indexed by GOTO index, same order as Auto.Gotos
}

type gotoKey struct {
	state int
	nt    grammar.NonterminalID
}

// BuildFollowGraph runs stages d and e of C9: it indexes every GOTO by
// (from state, nonterminal), computes the successor/includes dependency
// edges between them, and seeds each GOTO's direct (stage e) follow set.
func BuildFollowGraph(p AbstractSyntaxProvider, auto *LR0Automaton, nullable bits.SymbolSet, nullableStart []int) *FollowGraph {
	fg := &FollowGraph{
		Auto:   auto,
		GotoOf: map[gotoKey]int{},
	}

	for i, g := range auto.Gotos {
		fg.GotoOf[gotoKey{state: g.From, nt: g.Nonterminal}] = i
	}

	nTerms := p.TerminalCount()

	// stage e: initial (direct) follows.
	fg.Follows = make([]bits.SymbolSet, len(auto.Gotos))
	for i, g := range auto.Gotos {
		follow := bits.NewSymbolSet(uint(nTerms + 1)) // +1 reserved slot for EOF
		for _, edge := range auto.Edges[g.To] {
			if edge.Symbol.IsTerminal() {
				follow.Add(uint(edge.Symbol.Terminal()))
			}
		}
		fg.Follows[i] = follow
	}
	fg.addEOFToStartGoto(p, auto, nTerms)

	// stage d: dependency edges.
	for gi, g := range auto.Gotos {
		// successor dependencies: nonterminal transitions out of g.To that
		// trigger a nullable nonterminal.
		for _, edge := range auto.Edges[g.To] {
			if edge.Symbol.IsTerminal() {
				continue
			}
			succNT := edge.Symbol.Nonterminal()
			if !nullable.Has(uint(succNT)) {
				continue
			}
			if succIdx, ok := fg.GotoOf[gotoKey{state: g.To, nt: succNT}]; ok {
				fg.Deps = append(fg.Deps, Dependency{From: succIdx, To: gi, Kind: DependencySuccessor})
			}
		}

		// includes dependencies: every production P headed by g.Nonterminal
		// of the form alpha B beta where beta is nullable.
		for _, prodID := range p.NonterminalProductions(g.Nonterminal) {
			handle := p.ProductionMembers(prodID)
			start := nullableStart[prodID]
			for j, sym := range handle {
				if sym.IsTerminal() {
					continue
				}
				betaNullable := start <= j+1
				if !betaNullable {
					continue
				}
				B := sym.Nonterminal()
				q := walkState(auto, g.From, handle[:j])
				if q < 0 {
					continue
				}
				gPrimeIdx, ok := fg.GotoOf[gotoKey{state: q, nt: B}]
				if !ok {
					continue
				}
				kind := DependencyPredecessor
				if q == g.From {
					kind = DependencyInternal
				}
				fg.Deps = append(fg.Deps, Dependency{From: gi, To: gPrimeIdx, Kind: kind})
			}
		}
	}

	return fg
}

func (fg *FollowGraph) addEOFToStartGoto(p AbstractSyntaxProvider, auto *LR0Automaton, nTerms int) {
	handle := p.ProductionMembers(p.StartProduction())
	if len(handle) != 1 || handle[0].IsTerminal() {
		return
	}
	startSym := handle[0].Nonterminal()
	gi, ok := fg.GotoOf[gotoKey{state: auto.Start, nt: startSym}]
	if !ok {
		return
	}
	// EOF occupies the reserved slot one past the last real terminal id.
	fg.Follows[gi].Add(uint(nTerms))
}

// walkState follows path from state start through the LR0Automaton's
// transitions, returning the resulting state, or -1 if path is not a valid
// walk from start.
func walkState(auto *LR0Automaton, start int, path []grammar.Symbol) int {
	cur := start
	for _, sym := range path {
		next := auto.Goto(cur, sym)
		if next < 0 {
			return -1
		}
		cur = next
	}
	return cur
}

// Propagate runs one fixpoint pass over the dependency edges whose Kind is
// in kinds, OR-ing each edge's source follow set into its target, until a
// full sweep makes no further change. Per the design's note on cyclic GOTO
// dependencies, this tolerates self-loops and cycles unconditionally:
// set-union is monotonic, so no cycle-breaking is required, and SymbolSet's
// Union reports whether it changed anything so the fixpoint check stays
// O(words) instead of comparing full set contents.
func (fg *FollowGraph) Propagate(kinds ...DependencyKind) {
	allowed := map[DependencyKind]bool{}
	for _, k := range kinds {
		allowed[k] = true
	}

	changed := true
	for changed {
		changed = false
		for _, dep := range fg.Deps {
			if !allowed[dep.Kind] {
				continue
			}
			if fg.Follows[dep.To].Union(fg.Follows[dep.From]) {
				changed = true
			}
		}
	}
}

// PropagateAll runs stage f's two mandated passes in order: first
// successor+internal edges to fixpoint, then internal+predecessor edges to
// fixpoint. The ordering matters — after taking a successor edge, internal
// edges must not be re-followed in the same logical path — so the two
// passes must not be merged into one combined fixpoint.
func (fg *FollowGraph) PropagateAll() {
	fg.Propagate(DependencySuccessor, DependencyInternal)
	fg.Propagate(DependencyInternal, DependencyPredecessor)
}
