package grammar

import (
	"fmt"

	"github.com/google/uuid"
)

// Grammar is the full set of immutable, precompiled tables needed to drive a
// parse: the terminal and nonterminal name tables, the production list, the
// lexical DFA and its groups, and the LALR(1) state machine. A Grammar is
// built once (see package build, or NewGrammar for hand assembly) and is
// safe to share, read-only, across any number of concurrent parses; nothing
// in this package ever mutates a Grammar's tables after construction.
type Grammar struct {
	Name    string
	BuildID uuid.UUID

	terminals    []Terminal
	nonterminals []Nonterminal
	productions  []Production

	dfaStates []DFAState
	dfaStart  DFAStateID
	groups    []Group

	lalrStates []LALRState
	lalrStart  LALRStateID

	startSymbol NonterminalID
	endSymbol   TerminalID

	opt *OptimizedOperations
}

// Config is the full set of tables NewGrammar assembles into a Grammar. It
// exists as a single struct (rather than a long positional constructor)
// because every field is itself a sizable table; callers are expected to be
// package build or a test fixture, not ad hoc application code.
type Config struct {
	Name         string
	Terminals    []Terminal
	Nonterminals []Nonterminal
	Productions  []Production
	DFAStates    []DFAState
	DFAStart     DFAStateID
	Groups       []Group
	LALRStates   []LALRState
	LALRStart    LALRStateID
	StartSymbol  NonterminalID
	EndSymbol    TerminalID
}

// NewGrammar assembles a Grammar from already-computed tables and eagerly
// precomputes its OptimizedOperations. Use this to hand-assemble small test
// grammars directly; package build's Compile is the usual path for grammars
// derived from an AbstractSyntaxProvider.
func NewGrammar(cfg Config) *Grammar {
	g := &Grammar{
		Name:         cfg.Name,
		terminals:    cfg.Terminals,
		nonterminals: cfg.Nonterminals,
		productions:  cfg.Productions,
		dfaStates:    cfg.DFAStates,
		dfaStart:     cfg.DFAStart,
		groups:       cfg.Groups,
		lalrStates:   cfg.LALRStates,
		lalrStart:    cfg.LALRStart,
		startSymbol:  cfg.StartSymbol,
		endSymbol:    cfg.EndSymbol,
	}
	g.opt = buildOptimizedOperations(g)
	return g
}

// WithBuildID returns a shallow copy of g carrying id as its BuildID, e.g.
// the BuildID of the build.Result its LALR tables came from.
func (g *Grammar) WithBuildID(id uuid.UUID) *Grammar {
	cp := *g
	cp.BuildID = id
	return &cp
}

// Terminals returns every terminal in index order.
func (g *Grammar) Terminals() []Terminal { return g.terminals }

// Nonterminals returns every nonterminal in index order.
func (g *Grammar) Nonterminals() []Nonterminal { return g.nonterminals }

// Productions returns every production in index order.
func (g *Grammar) Productions() []Production { return g.productions }

// Term returns the Terminal at id. Panics if id is out of range: an
// out-of-range TerminalID reaching here is an internal invariant violation,
// not a user error.
func (g *Grammar) Term(id TerminalID) Terminal {
	return g.terminals[id]
}

// Nonterminal returns the Nonterminal at id.
func (g *Grammar) Nonterminal(id NonterminalID) Nonterminal {
	return g.nonterminals[id]
}

// Production returns the Production at id.
func (g *Grammar) Production(id ProductionID) Production {
	return g.productions[id]
}

// DFAState returns the DFAState at id.
func (g *Grammar) DFAState(id DFAStateID) DFAState {
	return g.dfaStates[id]
}

// DFAStart is the DFA's initial state, the state every token scan begins
// from.
func (g *Grammar) DFAStart() DFAStateID { return g.dfaStart }

// Group returns the Group at id.
func (g *Grammar) Group(id GroupID) Group {
	return g.groups[id]
}

// Groups returns every group in index order.
func (g *Grammar) Groups() []Group { return g.groups }

// LALRState returns the LALRState at id.
func (g *Grammar) LALRState(id LALRStateID) LALRState {
	return g.lalrStates[id]
}

// LALRStates returns every LALR state in index order.
func (g *Grammar) LALRStates() []LALRState { return g.lalrStates }

// LALRStart is the LALR driver's initial state.
func (g *Grammar) LALRStart() LALRStateID { return g.lalrStart }

// StartSymbol is the grammar's (unaugmented) start nonterminal.
func (g *Grammar) StartSymbol() NonterminalID { return g.startSymbol }

// EndSymbol is the reserved end-of-input terminal ($ / EOF).
func (g *Grammar) EndSymbol() TerminalID { return g.endSymbol }

// Optimized returns the precomputed lookup tables associated with this
// grammar (C5). They are computed once, at construction, and never change
// afterward.
func (g *Grammar) Optimized() *OptimizedOperations { return g.opt }

func (g *Grammar) String() string {
	return fmt.Sprintf("Grammar(%s: %d terminals, %d nonterminals, %d productions, %d DFA states, %d LALR states)",
		g.Name, len(g.terminals), len(g.nonterminals), len(g.productions), len(g.dfaStates), len(g.lalrStates))
}
