package build

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/brackwater/weir/ferr"
	"github.com/brackwater/weir/grammar"
)

// Result is the LALR(1) section of a Grammar, along with the BuildID minted
// for this compilation. A caller assembling a full Grammar combines Result
// with the terminal/nonterminal tables, productions, and lexical DFA it
// already has (those are outside Compile's scope; see package doc).
type Result struct {
	States  []grammar.LALRState
	Start   grammar.LALRStateID
	BuildID uuid.UUID
}

// Compile runs every stage of C9 in order (a: LR(0) construction, b-c:
// nullable sets, d-f: GOTO follow dependency propagation, g: reduction
// lookaheads, h: table materialization with conflict resolution) and
// returns the resulting LALR(1) state table.
//
// cancel, if non-nil, is polled between stages and during the LR(0)
// breadth-first construction; a close (or send) on it aborts the build with
// context.Canceled.
//
// resolver arbitrates shift/reduce and reduce/reduce conflicts; pass
// NoResolver{} to treat any conflict as a build error. Apart from
// cancellation, a non-nil error is a *ferr.BuildError; Result is then still
// populated with
// whatever best-effort table materialization produced, so a caller that
// wants to inspect the conflicts (e.g. to print them) may do so.
func Compile(p AbstractSyntaxProvider, resolver ConflictResolver, cancel <-chan struct{}) (*Result, error) {
	if resolver == nil {
		resolver = NoResolver{}
	}

	auto, err := BuildLR0(p, cancel)
	if err != nil {
		return nil, err
	}

	nullable := ComputeNullable(p)
	nullableStart := ComputeProductionNullableStart(p, nullable)
	if cancelled(cancel) {
		return nil, context.Canceled
	}

	fg := BuildFollowGraph(p, auto, nullable, nullableStart)
	fg.PropagateAll()
	if cancelled(cancel) {
		return nil, context.Canceled
	}

	lookaheads := ComputeLookaheads(p, auto, fg)
	if cancelled(cancel) {
		return nil, context.Canceled
	}

	states, diags := materializeStates(p, auto, lookaheads, resolver)

	result := &Result{
		States:  states,
		Start:   grammar.LALRStateID(auto.Start),
		BuildID: uuid.New(),
	}

	return result, ferr.NewBuildError(diags)
}

// actionSet tracks, during stage h materialization, the list of actions
// currently dominant for one (state, terminal) cell: more than one entry
// means a CannotChoose left the conflict genuinely unresolved; nonAssoc
// means a ChooseNeither suppressed the terminal for this state entirely.
type actionSet struct {
	dominant []grammar.Action
	nonAssoc bool
}

// materializeStates runs stage h: for every LR(0) state, collect its shift
// and GOTO edges directly off the automaton, then fold in every reduce item
// (and the accept item, if this state completes the augmented start
// production) terminal by terminal, maintaining each terminal's dominant
// action list exactly per the design's conflict-resolution model (C10): a
// new candidate is compared against every currently-dominant action in
// turn, ChooseOption2 drops the old one, ChooseOption1 drops the candidate,
// ChooseNeither marks the terminal non-associative for the rest of this
// state's construction, and CannotChoose keeps both.
func materializeStates(p AbstractSyntaxProvider, auto *LR0Automaton, lookaheads *LookaheadTable, resolver ConflictResolver) ([]grammar.LALRState, []ferr.Diagnostic) {
	states := make([]grammar.LALRState, len(auto.Kernels))
	var diags []ferr.Diagnostic

	for i := range auto.Kernels {
		st := grammar.LALRState{
			Index:   grammar.LALRStateID(i),
			Actions: map[grammar.TerminalID]grammar.Action{},
			Goto:    map[grammar.NonterminalID]grammar.LALRStateID{},
		}

		pending := map[grammar.TerminalID]*actionSet{}

		for _, edge := range auto.Edges[i] {
			if edge.Symbol.IsTerminal() {
				term := edge.Symbol.Terminal()
				pending[term] = &actionSet{dominant: []grammar.Action{{
					Kind:  grammar.ActionShift,
					State: grammar.LALRStateID(edge.To),
				}}}
			} else {
				st.Goto[edge.Symbol.Nonterminal()] = grammar.LALRStateID(edge.To)
			}
		}

		if i == lookaheads.AcceptState {
			accept := grammar.Action{Kind: grammar.ActionAccept}
			st.EOFAction = &accept
		}

		closure := closureItems(p, auto.Kernels[i])
		for _, it := range closure {
			handle := p.ProductionMembers(it.Production)
			if it.Dot != len(handle) {
				continue
			}
			if it.Production == p.StartProduction() {
				continue // handled as the accept item above
			}

			la, ok := lookaheads.Lookaheads[ReduceKey{State: i, Production: it.Production}]
			if !ok {
				continue
			}

			nTerms := p.TerminalCount()
			for _, t := range la.Elements() {
				reduce := grammar.Action{Kind: grammar.ActionReduce, Production: it.Production}
				if int(t) == nTerms {
					// the reserved EOF slot becomes this state's end-of-input action
					if st.EOFAction == nil {
						eof := reduce
						st.EOFAction = &eof
					} else {
						diags = append(diags, ferr.Diagnostic{Message: conflictMessage("end-of-input", grammar.TerminalID(t), *st.EOFAction, reduce)})
					}
					continue
				}
				term := grammar.TerminalID(t)

				set, had := pending[term]
				if !had {
					pending[term] = &actionSet{dominant: []grammar.Action{reduce}}
					continue
				}
				if diag := set.admit(resolver, term, reduce); diag != "" {
					diags = append(diags, ferr.Diagnostic{Message: diag})
				}
			}
		}

		for term, set := range pending {
			if set.nonAssoc || len(set.dominant) == 0 {
				continue
			}
			if len(set.dominant) > 1 {
				diags = append(diags, ferr.Diagnostic{Message: ambiguityMessage(term, set.dominant)})
			}
			st.Actions[term] = set.dominant[0]
		}

		states[i] = st
	}

	return states, diags
}

// admit arbitrates a newly-discovered reduce candidate against every action
// currently dominant for this terminal, updating the set in place and
// returning a diagnostic message if the conflict could not be resolved.
func (set *actionSet) admit(resolver ConflictResolver, term grammar.TerminalID, candidate grammar.Action) string {
	var kept []grammar.Action
	survives := true
	diag := ""

	for _, d := range set.dominant {
		var decision Decision
		if d.Kind == grammar.ActionShift {
			decision = resolver.ResolveShiftReduce(term, candidate.Production)
		} else {
			decision = resolver.ResolveReduceReduce(d.Production, candidate.Production)
		}

		switch decision {
		case ChooseOption2:
			// d is dropped; candidate survives.
		case ChooseNeither:
			set.nonAssoc = true
		case ChooseOption1:
			kept = append(kept, d)
			survives = false
		default: // CannotChoose
			kept = append(kept, d)
			if diag == "" {
				kind := "reduce/reduce"
				if d.Kind == grammar.ActionShift {
					kind = "shift/reduce"
				}
				diag = conflictMessage(kind, term, d, candidate)
			}
		}
	}

	if set.nonAssoc {
		set.dominant = nil
		return diag
	}
	if survives {
		kept = append(kept, candidate)
	}
	set.dominant = kept
	return diag
}

func ambiguityMessage(term grammar.TerminalID, actions []grammar.Action) string {
	msg := "ambiguous grammar: " + strconv.FormatUint(uint64(len(actions)), 10) +
		" actions survive for terminal " + strconv.FormatUint(uint64(term), 10)
	return msg
}

func conflictMessage(kind string, term grammar.TerminalID, a, b grammar.Action) string {
	return kind + " conflict on terminal " + strconv.FormatUint(uint64(term), 10) +
		": production " + strconv.FormatUint(uint64(a.Production), 10) +
		" vs production " + strconv.FormatUint(uint64(b.Production), 10)
}
