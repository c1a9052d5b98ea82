package build

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brackwater/weir/grammar"
)

// Terminal ids for the classic expression grammar used throughout this
// file: E -> E + T | T; T -> T * F | F; F -> ( E ) | id.
const (
	termID = grammar.TerminalID(iota)
	termPlus
	termStar
	termLParen
	termRParen
	nTermsExpr = 5
)

// Nonterminal ids, with the augmented start (S' -> E) at index 0.
const (
	ntStart = grammar.NonterminalID(iota)
	ntE
	ntT
	ntF
)

func sym(t grammar.TerminalID) grammar.Symbol    { return grammar.MakeTerminalSymbol(t) }
func nsym(n grammar.NonterminalID) grammar.Symbol { return grammar.MakeNonterminalSymbol(n) }

func expressionGrammarProvider() *SimpleProvider {
	productions := []grammar.Production{
		{Index: 0, Head: ntStart, Handle: []grammar.Symbol{nsym(ntE)}},
		{Index: 1, Head: ntE, Handle: []grammar.Symbol{nsym(ntE), sym(termPlus), nsym(ntT)}},
		{Index: 2, Head: ntE, Handle: []grammar.Symbol{nsym(ntT)}},
		{Index: 3, Head: ntT, Handle: []grammar.Symbol{nsym(ntT), sym(termStar), nsym(ntF)}},
		{Index: 4, Head: ntT, Handle: []grammar.Symbol{nsym(ntF)}},
		{Index: 5, Head: ntF, Handle: []grammar.Symbol{sym(termLParen), nsym(ntE), sym(termRParen)}},
		{Index: 6, Head: ntF, Handle: []grammar.Symbol{sym(termID)}},
	}
	return NewSimpleProvider(nTermsExpr, 4, productions, 0, grammar.TerminalID(nTermsExpr))
}

func TestCompile_ExpressionGrammarHasNoConflicts(t *testing.T) {
	p := expressionGrammarProvider()

	result, err := Compile(p, NoResolver{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.States)
	assert.NotZero(t, result.BuildID)
}

func TestCompile_ExpressionGrammarAcceptsIDPlusIDTimesID(t *testing.T) {
	p := expressionGrammarProvider()
	result, err := Compile(p, NoResolver{}, nil)
	require.NoError(t, err)

	input := []grammar.TerminalID{termID, termPlus, termID, termStar, termID}
	ok := driveAccepts(p, result, input)
	assert.True(t, ok, "expected id + id * id to be accepted")
}

func TestCompile_ExpressionGrammarRejectsTrailingOperator(t *testing.T) {
	p := expressionGrammarProvider()
	result, err := Compile(p, NoResolver{}, nil)
	require.NoError(t, err)

	input := []grammar.TerminalID{termID, termPlus}
	ok := driveAccepts(p, result, input)
	assert.False(t, ok, "expected a dangling + before EOF to be rejected")
}

// TestCompile_IsDeterministicAcrossRuns compiles the same grammar twice and
// requires the resulting state tables to be structurally identical (BuildID
// excepted, which is freshly generated per Compile). Construction walks maps
// and item sets keyed by generated strings in several places; this guards
// against any of that iteration order leaking into the materialized table.
func TestCompile_IsDeterministicAcrossRuns(t *testing.T) {
	p := expressionGrammarProvider()

	r1, err := Compile(p, NoResolver{}, nil)
	require.NoError(t, err)
	r2, err := Compile(p, NoResolver{}, nil)
	require.NoError(t, err)

	if diff := deep.Equal(r1.States, r2.States); diff != nil {
		t.Errorf("state tables diverged between runs: %v", diff)
	}
	assert.Equal(t, r1.Start, r2.Start)
}

// driveAccepts is a minimal shift/reduce/accept driver over a materialized
// Result, used only to confirm the table is actually usable end to end; the
// real driver lives in package parse.
func driveAccepts(p AbstractSyntaxProvider, result *Result, input []grammar.TerminalID) bool {
	states := []grammar.LALRStateID{result.Start}
	pos := 0

	for {
		top := states[len(states)-1]
		state := result.States[top]

		if pos >= len(input) {
			if state.EOFAction == nil {
				return false
			}
			switch state.EOFAction.Kind {
			case grammar.ActionAccept:
				return true
			case grammar.ActionReduce:
				states = reduceStack(p, result, states, state.EOFAction.Production)
				continue
			default:
				return false
			}
		}

		term := input[pos]
		action, ok := state.Action(term)
		if !ok {
			return false
		}

		switch action.Kind {
		case grammar.ActionShift:
			states = append(states, action.State)
			pos++
		case grammar.ActionReduce:
			states = reduceStack(p, result, states, action.Production)
		default:
			return false
		}
	}
}

func reduceStack(p AbstractSyntaxProvider, result *Result, states []grammar.LALRStateID, prod grammar.ProductionID) []grammar.LALRStateID {
	handleLen := len(p.ProductionMembers(prod))
	states = states[:len(states)-handleLen]
	top := states[len(states)-1]
	dest, ok := result.States[top].GotoState(p.ProductionHead(prod))
	if !ok {
		panic("no GOTO for reduced nonterminal; table is malformed")
	}
	return append(states, dest)
}
