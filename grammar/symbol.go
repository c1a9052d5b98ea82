// Package grammar holds the immutable, precompiled tables that describe a
// language: terminals, nonterminals, productions, the lexical DFA and its
// groups, and the LALR(1) action/goto tables. A Grammar and its
// OptimizedOperations are built once (see package build) and may then be
// shared, read-only, across any number of concurrent parses.
package grammar

import "fmt"

// TerminalID indexes a Grammar's Terminals table.
type TerminalID uint16

// NonterminalID indexes a Grammar's Nonterminals table.
type NonterminalID uint16

// NoTerminal is never a valid index into Terminals; used as a sentinel in
// Symbol and DFASymbol fields that don't apply to the current variant.
const NoTerminal = TerminalID(^uint16(0))

// NoNonterminal is never a valid index into Nonterminals.
const NoNonterminal = NonterminalID(^uint16(0))

// Terminal is a lexical symbol class: a token kind the DFA can accept and
// the LALR tables can shift or reduce on.
type Terminal struct {
	ID   TerminalID
	Name string
}

func (t Terminal) String() string { return t.Name }

// Nonterminal is a grammar symbol defined by one or more Productions.
type Nonterminal struct {
	ID   NonterminalID
	Name string
}

func (nt Nonterminal) String() string { return nt.Name }

// Symbol is a grammar symbol appearing on the right-hand side of a
// Production: either a Terminal or a Nonterminal, never both. Prefer this
// closed tagged form over an interface so production handles are a flat,
// comparable, allocation-free slice.
type Symbol struct {
	isTerminal  bool
	terminal    TerminalID
	nonterminal NonterminalID
}

// MakeTerminalSymbol wraps a TerminalID as a production-handle Symbol.
func MakeTerminalSymbol(id TerminalID) Symbol {
	return Symbol{isTerminal: true, terminal: id, nonterminal: NoNonterminal}
}

// MakeNonterminalSymbol wraps a NonterminalID as a production-handle Symbol.
func MakeNonterminalSymbol(id NonterminalID) Symbol {
	return Symbol{isTerminal: false, terminal: NoTerminal, nonterminal: id}
}

// IsTerminal reports whether the symbol is a Terminal (as opposed to a
// Nonterminal).
func (s Symbol) IsTerminal() bool { return s.isTerminal }

// Terminal returns the wrapped TerminalID. Only valid if IsTerminal is true.
func (s Symbol) Terminal() TerminalID { return s.terminal }

// Nonterminal returns the wrapped NonterminalID. Only valid if IsTerminal is
// false.
func (s Symbol) Nonterminal() NonterminalID { return s.nonterminal }

// Equal reports whether two symbols denote the same terminal or the same
// nonterminal.
func (s Symbol) Equal(o Symbol) bool {
	if s.isTerminal != o.isTerminal {
		return false
	}
	if s.isTerminal {
		return s.terminal == o.terminal
	}
	return s.nonterminal == o.nonterminal
}

// Less imposes a total, deterministic order over symbols: all terminals
// (ordered by id) sort before all nonterminals (ordered by id). Used
// wherever a construction must process outgoing transitions in a fixed
// order regardless of map iteration order, e.g. LR(0) state discovery.
func (s Symbol) Less(o Symbol) bool {
	if s.isTerminal != o.isTerminal {
		return s.isTerminal
	}
	if s.isTerminal {
		return s.terminal < o.terminal
	}
	return s.nonterminal < o.nonterminal
}

func (s Symbol) String() string {
	if s.isTerminal {
		return fmt.Sprintf("T%d", s.terminal)
	}
	return fmt.Sprintf("N%d", s.nonterminal)
}
