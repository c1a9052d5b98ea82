package grammar

import "sort"

// OptimizedOperations holds the per-grammar lookup tables precomputed once
// at build time and shared, read-only, by every parse of the grammar (C5 in
// the design). None of this is observable state a caller can mutate; it
// exists purely to make the tokenizer's and driver's hot loops O(1)
// array-index lookups instead of map lookups or binary searches.
type OptimizedOperations struct {
	// asciiNext[state] is a 128-entry table: asciiNext[state][c] is the
	// DFAStateID reached from state on ASCII byte c, already folding in
	// AnythingElse as the default. States whose ASCII region has neither an
	// explicit edge nor an AnythingElse fallback (pure dead/error states)
	// all point at the single sharedErrorTable to save memory, per the
	// design's ASCII-fast-path-sharing note.
	asciiNext []*[128]DFAStateID

	sharedErrorTable *[128]DFAStateID

	// action[state][terminal] is the dense ACTION table; ok[state][terminal]
	// reports whether an action is actually defined there (the zero Action
	// value, Shift to state 0, would otherwise be indistinguishable from a
	// real entry).
	action   [][]Action
	actionOK [][]bool

	// goto_[state][nonterminal] is NoLALRState when undefined.
	goto_ [][]LALRStateID

	// eofAction[state] / eofOK[state] mirror LALRState.EOFAction as a dense
	// table for the same reason as action/actionOK.
	eofAction []Action
	eofOK     []bool

	// groupSearch[g] is the precomputed decision-point search plan used to
	// skip ahead through character-mode group content without re-entering
	// the DFA per character.
	groupSearch []GroupSearchPlan
}

// GroupSearchPlan is the precomputed "next interesting character" search
// state for one group's character-mode content, built once per grammar.
//
// When the group cannot nest and its end marker is a literal of more than
// one character, UseLiteralScan is true and EndLiteral holds the full
// marker: the tokenizer does a substring search for it directly. Otherwise
// Alphabet holds the first character of every nested group's start literal
// plus the first character of this group's own end marker (or just that one
// character, if Alphabet ends up a single rune); the tokenizer scans for any
// rune in Alphabet and only then re-enters the DFA to disambiguate.
type GroupSearchPlan struct {
	UseLiteralScan bool
	EndLiteral     string
	Alphabet       []rune
}

// AsciiNext returns the DFAStateID reached from state on ASCII byte c
// (c < 128), already folding AnythingElse in as the default.
func (o *OptimizedOperations) AsciiNext(state DFAStateID, c byte) DFAStateID {
	return o.asciiNext[state][c]
}

// Action returns the ACTION-table entry for (state, terminal), reporting
// ok=false if none is defined.
func (o *OptimizedOperations) Action(state LALRStateID, term TerminalID) (Action, bool) {
	row := o.action[state]
	if int(term) >= len(row) {
		return Action{}, false
	}
	return row[term], o.actionOK[state][term]
}

// EOFAction returns the action to take on end-of-input in state, reporting
// ok=false if none is defined.
func (o *OptimizedOperations) EOFAction(state LALRStateID) (Action, bool) {
	return o.eofAction[state], o.eofOK[state]
}

// Goto returns the GOTO-table entry for (state, nonterminal), reporting
// ok=false if undefined.
func (o *OptimizedOperations) Goto(state LALRStateID, nt NonterminalID) (LALRStateID, bool) {
	row := o.goto_[state]
	if int(nt) >= len(row) {
		return NoLALRState, false
	}
	target := row[nt]
	return target, target != NoLALRState
}

// GroupSearch returns the decision-point search plan for group g.
func (o *OptimizedOperations) GroupSearch(g GroupID) GroupSearchPlan {
	return o.groupSearch[g]
}

func buildOptimizedOperations(g *Grammar) *OptimizedOperations {
	o := &OptimizedOperations{}

	errTable := &[128]DFAStateID{}
	for i := range errTable {
		errTable[i] = NoDFAState
	}
	o.sharedErrorTable = errTable

	o.asciiNext = make([]*[128]DFAStateID, len(g.dfaStates))
	for i, st := range g.dfaStates {
		table := computeAsciiTable(st)
		if table == nil {
			o.asciiNext[i] = errTable
		} else {
			o.asciiNext[i] = table
		}
	}

	nTerms := len(g.terminals)
	nNonterms := len(g.nonterminals)

	o.action = make([][]Action, len(g.lalrStates))
	o.actionOK = make([][]bool, len(g.lalrStates))
	o.goto_ = make([][]LALRStateID, len(g.lalrStates))
	o.eofAction = make([]Action, len(g.lalrStates))
	o.eofOK = make([]bool, len(g.lalrStates))

	for i, st := range g.lalrStates {
		actions := make([]Action, nTerms)
		actionsOK := make([]bool, nTerms)
		for term, act := range st.Actions {
			actions[term] = act
			actionsOK[term] = true
		}
		o.action[i] = actions
		o.actionOK[i] = actionsOK

		gotoRow := make([]LALRStateID, nNonterms)
		for j := range gotoRow {
			gotoRow[j] = NoLALRState
		}
		for nt, target := range st.Goto {
			gotoRow[nt] = target
		}
		o.goto_[i] = gotoRow

		if st.EOFAction != nil {
			o.eofAction[i] = *st.EOFAction
			o.eofOK[i] = true
		}
	}

	o.groupSearch = make([]GroupSearchPlan, len(g.groups))
	for i, grp := range g.groups {
		o.groupSearch[i] = buildGroupSearchPlan(g, grp)
	}

	return o
}

// computeAsciiTable returns nil if every ASCII code point maps to
// NoDFAState (st has neither explicit ASCII edges nor an AnythingElse
// fallback), signaling the caller to use the shared error table instead.
func computeAsciiTable(st DFAState) *[128]DFAStateID {
	table := &[128]DFAStateID{}
	anyNonError := false
	for c := 0; c < 128; c++ {
		next := st.Next(rune(c))
		table[c] = next
		if next != NoDFAState {
			anyNonError = true
		}
	}
	if !anyNonError {
		return nil
	}
	return table
}

func buildGroupSearchPlan(g *Grammar, grp Group) GroupSearchPlan {
	nestEmpty := len(grp.Nesting) == 0

	if nestEmpty && !grp.EndsAtNewline && len([]rune(grp.EndLiteral)) > 1 {
		return GroupSearchPlan{UseLiteralScan: true, EndLiteral: grp.EndLiteral}
	}

	seen := map[rune]bool{}
	var alphabet []rune

	add := func(r rune) {
		if !seen[r] {
			seen[r] = true
			alphabet = append(alphabet, r)
		}
	}

	for nestedID := range grp.Nesting {
		nested := g.Group(nestedID)
		if lit := []rune(nested.Start.Literal); len(lit) > 0 {
			add(lit[0])
		}
	}
	if grp.EndsAtNewline {
		add('\n')
	}
	if lit := []rune(grp.EndLiteral); len(lit) > 0 {
		add(lit[0])
	}

	sort.Slice(alphabet, func(i, j int) bool { return alphabet[i] < alphabet[j] })

	return GroupSearchPlan{Alphabet: alphabet}
}
