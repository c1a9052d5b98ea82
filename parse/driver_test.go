package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brackwater/weir/build"
	"github.com/brackwater/weir/ferr"
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/lex"
	"github.com/brackwater/weir/stream"
)

// Balanced parentheses: S' -> S ; S -> ( S ) | ε.
const (
	lparen = grammar.TerminalID(0)
	rparen = grammar.TerminalID(1)
	endSym = grammar.TerminalID(2)

	ntStart = grammar.NonterminalID(0)
	ntS     = grammar.NonterminalID(1)
)

func sym(t grammar.TerminalID) grammar.Symbol    { return grammar.MakeTerminalSymbol(t) }
func nsym(n grammar.NonterminalID) grammar.Symbol { return grammar.MakeNonterminalSymbol(n) }

func balancedParensGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	productions := []grammar.Production{
		{Index: 0, Head: ntStart, Handle: []grammar.Symbol{nsym(ntS)}},
		{Index: 1, Head: ntS, Handle: []grammar.Symbol{sym(lparen), nsym(ntS), sym(rparen)}},
		{Index: 2, Head: ntS, Handle: nil},
	}
	provider := build.NewSimpleProvider(2, 2, productions, 0, endSym)

	result, err := build.Compile(provider, build.NoResolver{}, nil)
	require.NoError(t, err)

	dfaStates := []grammar.DFAState{
		{ // 0: start
			Edges: []grammar.Edge{
				{Range: grammar.CharRange{Lo: '(', Hi: '('}, Next: 1},
				{Range: grammar.CharRange{Lo: ')', Hi: ')'}, Next: 2},
			},
			AnythingElse: grammar.NoDFAState,
		},
		{ // 1: "("
			AnythingElse: grammar.NoDFAState,
			Accept:       &grammar.DFASymbol{Kind: grammar.SymbolTerminal, Terminal: lparen, Name: "("},
		},
		{ // 2: ")"
			AnythingElse: grammar.NoDFAState,
			Accept:       &grammar.DFASymbol{Kind: grammar.SymbolTerminal, Terminal: rparen, Name: ")"},
		},
	}

	return grammar.NewGrammar(grammar.Config{
		Name:        "balanced-parens",
		Terminals:    []grammar.Terminal{{ID: lparen, Name: "("}, {ID: rparen, Name: ")"}},
		Nonterminals: []grammar.Nonterminal{{ID: ntStart, Name: "S'"}, {ID: ntS, Name: "S"}},
		Productions:  productions,
		DFAStates:   dfaStates,
		DFAStart:    0,
		LALRStates:  result.States,
		LALRStart:   result.Start,
		StartSymbol: ntS,
		EndSymbol:   endSym,
	})
}

func runParse(g *grammar.Grammar, input string) (any, error) {
	cs := stream.NewFromString(input)
	tok := lex.New(g, cs, SyntaxCheckPostProcessor{})
	d := New(g, tok, SyntaxCheckPostProcessor{})
	return d.Run()
}

func TestDriver_BalancedParens_Accepts(t *testing.T) {
	g := balancedParensGrammar(t)

	_, err := runParse(g, "(())")
	require.NoError(t, err)

	_, err = runParse(g, "")
	require.NoError(t, err)
}

func TestDriver_BalancedParens_UnclosedReportsSyntaxErrorAtEOF(t *testing.T) {
	g := balancedParensGrammar(t)

	_, err := runParse(g, "(()")
	require.Error(t, err)

	var perr ferr.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ferr.KindSyntaxError, perr.Kind())
	assert.True(t, perr.Actual().IsEOF)

	names := expectedNames(perr.Expected())
	assert.ElementsMatch(t, []string{")"}, names)
}

func TestDriver_BalancedParens_ExtraCloseReportsSyntaxError(t *testing.T) {
	g := balancedParensGrammar(t)

	_, err := runParse(g, "())")
	require.Error(t, err)

	var perr ferr.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ferr.KindSyntaxError, perr.Kind())
	assert.Equal(t, uint64(1), perr.Position().Line())
	assert.Equal(t, uint64(3), perr.Position().Column())
	assert.False(t, perr.Actual().IsEOF)
	assert.Equal(t, ")", perr.Actual().Name)

	names := expectedNames(perr.Expected())
	assert.Contains(t, names, "end of input")
}

func expectedNames(expected []ferr.ExpectedSymbol) []string {
	names := make([]string, len(expected))
	for i, e := range expected {
		names[i] = e.String()
	}
	return names
}

func TestDriver_RegisterTraceListener_EmitsShiftsReducesAndAccept(t *testing.T) {
	g := balancedParensGrammar(t)

	cs := stream.NewFromString("()")
	tok := lex.New(g, cs, SyntaxCheckPostProcessor{})
	d := New(g, tok, SyntaxCheckPostProcessor{})

	var lines []string
	d.RegisterTraceListener(func(s string) { lines = append(lines, s) })

	_, err := d.Run()
	require.NoError(t, err)

	require.NotEmpty(t, lines)
	assert.Contains(t, lines, "accept")

	var sawShift, sawReduce bool
	for _, l := range lines {
		if strings.HasPrefix(l, "shift -> state") {
			sawShift = true
		}
		if strings.HasPrefix(l, "reduce:") {
			sawReduce = true
		}
	}
	assert.True(t, sawShift, "expected at least one shift trace line, got %v", lines)
	assert.True(t, sawReduce, "expected at least one reduce trace line, got %v", lines)
}

func TestDriver_NoTraceListener_DoesNotPanic(t *testing.T) {
	g := balancedParensGrammar(t)
	_, err := runParse(g, "(())")
	require.NoError(t, err)
}
