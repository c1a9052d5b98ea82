package grammar_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brackwater/weir/build"
	"github.com/brackwater/weir/grammar"
)

func TestDescribeTable_ListsStatesAndCells(t *testing.T) {
	const (
		termA = grammar.TerminalID(0)
		endT  = grammar.TerminalID(1)

		ntStart = grammar.NonterminalID(0)
		ntS     = grammar.NonterminalID(1)
	)

	productions := []grammar.Production{
		{Index: 0, Head: ntStart, Handle: []grammar.Symbol{grammar.MakeNonterminalSymbol(ntS)}},
		{Index: 1, Head: ntS, Handle: []grammar.Symbol{grammar.MakeTerminalSymbol(termA)}},
	}
	provider := build.NewSimpleProvider(2, 2, productions, 0, endT)
	result, err := build.Compile(provider, build.NoResolver{}, nil)
	require.NoError(t, err)

	g := grammar.NewGrammar(grammar.Config{
		Name:        "describe-fixture",
		Terminals:    []grammar.Terminal{{ID: termA, Name: "a"}},
		Nonterminals: []grammar.Nonterminal{{ID: ntStart, Name: "S'"}, {ID: ntS, Name: "S"}},
		Productions:  productions,
		DFAStart:    grammar.NoDFAState,
		LALRStates:  result.States,
		LALRStart:   result.Start,
		StartSymbol: ntS,
		EndSymbol:   endT,
	})

	out := g.DescribeTable()
	assert.True(t, strings.Contains(out, "A:a"), "expected a column header for terminal a, got:\n%s", out)
	assert.True(t, strings.Contains(out, "s"), "expected at least one shift cell, got:\n%s", out)
}
