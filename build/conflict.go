package build

import "github.com/brackwater/weir/grammar"

// Decision is what a ConflictResolver returns when asked to arbitrate
// between two candidate actions for the same (state, terminal) cell.
type Decision int

const (
	// ChooseOption1 keeps the first action offered and discards the
	// second.
	ChooseOption1 Decision = iota
	// ChooseOption2 replaces the dominant action with the second one
	// offered.
	ChooseOption2
	// ChooseNeither suppresses both: the terminal becomes
	// "non-associative" in this state and emits no action at all. Not
	// valid as the outcome of a reduce/reduce conflict.
	ChooseNeither
	// CannotChoose means the resolver has no opinion; the action is kept
	// as an additional dominant action. If more than one dominant action
	// survives to emission, the grammar is ambiguous and Compile reports a
	// build error.
	CannotChoose
)

// ConflictResolver is consulted during table materialization (C9 stage h)
// whenever two actions would occupy the same ACTION-table cell: a shift
// competing with a reduce, or two reduces competing with each other.
// Resolution based on operator precedence/associativity is the caller's
// concern (out of scope here); this interface is only the hook Compile
// calls into.
type ConflictResolver interface {
	// ResolveShiftReduce decides between shifting on terminal and reducing
	// by production.
	ResolveShiftReduce(terminal grammar.TerminalID, production grammar.ProductionID) Decision

	// ResolveReduceReduce decides between reducing by p1 and reducing by
	// p2. Must never return ChooseNeither.
	ResolveReduceReduce(p1, p2 grammar.ProductionID) Decision
}

// NoResolver always returns CannotChoose, so competing actions simply
// surface as an ambiguous-grammar build error. It is the zero-configuration
// default: a grammar with no actual conflicts never consults it.
type NoResolver struct{}

func (NoResolver) ResolveShiftReduce(grammar.TerminalID, grammar.ProductionID) Decision {
	return CannotChoose
}

func (NoResolver) ResolveReduceReduce(grammar.ProductionID, grammar.ProductionID) Decision {
	return CannotChoose
}

// PreferShiftResolver always resolves shift/reduce conflicts in favor of
// the shift (the common default for dangling-else-style ambiguities) and
// reduce/reduce conflicts in favor of the lower-numbered production (the
// one declared first), matching the conventional yacc/bison default.
type PreferShiftResolver struct{}

func (PreferShiftResolver) ResolveShiftReduce(grammar.TerminalID, grammar.ProductionID) Decision {
	return ChooseOption1 // option1 is always the shift; see actionSet.admit in build.go
}

func (PreferShiftResolver) ResolveReduceReduce(p1, p2 grammar.ProductionID) Decision {
	if p1 <= p2 {
		return ChooseOption1
	}
	return ChooseOption2
}
