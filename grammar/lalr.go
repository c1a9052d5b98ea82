package grammar

import "fmt"

// LALRStateID indexes a Grammar's LALRStates table.
type LALRStateID uint32

// NoLALRState marks the absence of a GOTO transition.
const NoLALRState = LALRStateID(^uint32(0))

// ActionKind is the tag of the Action union.
type ActionKind int

const (
	// ActionShift pushes a new state and consumes the current token.
	ActionShift ActionKind = iota
	// ActionReduce applies a production and reconsults ACTION/GOTO without
	// consuming a token.
	ActionReduce
	// ActionAccept ends the parse successfully.
	ActionAccept
)

// Action is a single ACTION-table entry: shift to a state, reduce by a
// production, or accept.
type Action struct {
	Kind       ActionKind
	State      LALRStateID  // meaningful iff Kind == ActionShift
	Production ProductionID // meaningful iff Kind == ActionReduce
}

func (a Action) String() string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("shift %d", a.State)
	case ActionReduce:
		return fmt.Sprintf("reduce P%d", a.Production)
	case ActionAccept:
		return "accept"
	default:
		return "?"
	}
}

// LALRState is one state of the parser's pushdown automaton: its shift/
// reduce actions keyed by terminal, its GOTO targets keyed by nonterminal,
// and (for the state(s) that can see end-of-input) an action to take there.
type LALRState struct {
	Index     LALRStateID
	Actions   map[TerminalID]Action
	Goto      map[NonterminalID]LALRStateID
	EOFAction *Action
}

// Action looks up the action for term in this state, reporting ok=false if
// none is defined (a syntax error on that terminal in this state).
func (s LALRState) Action(term TerminalID) (Action, bool) {
	a, ok := s.Actions[term]
	return a, ok
}

// GotoState looks up the GOTO target for nonterminal nt, reporting ok=false
// if the grammar defines no such transition from this state.
func (s LALRState) GotoState(nt NonterminalID) (LALRStateID, bool) {
	st, ok := s.Goto[nt]
	return st, ok
}
