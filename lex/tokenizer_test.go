package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brackwater/weir/ferr"
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/stream"
)

// Test fixture grammar: identifiers [a-z]+, whitespace noise, a line
// comment group ("//" to newline, discarded) and a self-nesting block
// comment group ("/*" ... "*/", discarded).
const (
	termID = grammar.TerminalID(0)

	groupLineComment  = grammar.GroupID(0)
	groupBlockComment = grammar.GroupID(1)
)

func testGrammar() *grammar.Grammar {
	states := []grammar.DFAState{
		{ // 0: start
			Edges: []grammar.Edge{
				{Range: grammar.CharRange{Lo: '\t', Hi: '\t'}, Next: 2},
				{Range: grammar.CharRange{Lo: '\n', Hi: '\n'}, Next: 2},
				{Range: grammar.CharRange{Lo: '\r', Hi: '\r'}, Next: 2},
				{Range: grammar.CharRange{Lo: ' ', Hi: ' '}, Next: 2},
				{Range: grammar.CharRange{Lo: '/', Hi: '/'}, Next: 3},
				{Range: grammar.CharRange{Lo: 'a', Hi: 'z'}, Next: 1},
			},
			AnythingElse: grammar.NoDFAState,
		},
		{ // 1: one-or-more lowercase letters -> id
			Edges: []grammar.Edge{
				{Range: grammar.CharRange{Lo: 'a', Hi: 'z'}, Next: 1},
			},
			AnythingElse: grammar.NoDFAState,
			Accept:       &grammar.DFASymbol{Kind: grammar.SymbolTerminal, Terminal: termID, Name: "id"},
		},
		{ // 2: one-or-more whitespace (including CR/LF) -> noise
			Edges: []grammar.Edge{
				{Range: grammar.CharRange{Lo: '\t', Hi: '\t'}, Next: 2},
				{Range: grammar.CharRange{Lo: '\n', Hi: '\n'}, Next: 2},
				{Range: grammar.CharRange{Lo: '\r', Hi: '\r'}, Next: 2},
				{Range: grammar.CharRange{Lo: ' ', Hi: ' '}, Next: 2},
			},
			AnythingElse: grammar.NoDFAState,
			Accept:       &grammar.DFASymbol{Kind: grammar.SymbolNoise, NoiseName: "ws"},
		},
		{ // 3: saw '/'
			Edges: []grammar.Edge{
				{Range: grammar.CharRange{Lo: '*', Hi: '*'}, Next: 5},
				{Range: grammar.CharRange{Lo: '/', Hi: '/'}, Next: 4},
			},
			AnythingElse: grammar.NoDFAState,
		},
		{ // 4: saw "//"
			AnythingElse: grammar.NoDFAState,
			Accept:       &grammar.DFASymbol{Kind: grammar.SymbolGroupStart, Literal: "//", Group: groupLineComment},
		},
		{ // 5: saw "/*"
			AnythingElse: grammar.NoDFAState,
			Accept:       &grammar.DFASymbol{Kind: grammar.SymbolGroupStart, Literal: "/*", Group: groupBlockComment},
		},
	}

	groups := []grammar.Group{
		{
			Index:         groupLineComment,
			Start:         *states[4].Accept,
			EndsAtNewline: true,
			Container:     grammar.DFASymbol{Kind: grammar.SymbolNoise, NoiseName: "line-comment"},
			AdvanceMode:   grammar.AdvanceByChar,
			EndingMode:    grammar.EndingOpen,
		},
		{
			Index:       groupBlockComment,
			Start:       *states[5].Accept,
			EndLiteral:  "*/",
			Container:   grammar.DFASymbol{Kind: grammar.SymbolNoise, NoiseName: "block-comment"},
			Nesting:     map[grammar.GroupID]bool{groupBlockComment: true},
			AdvanceMode: grammar.AdvanceByChar,
			EndingMode:  grammar.EndingClosed,
		},
	}

	return grammar.NewGrammar(grammar.Config{
		Name:      "lex-fixture",
		Terminals: []grammar.Terminal{{ID: termID, Name: "id"}},
		DFAStates: states,
		DFAStart:  0,
		Groups:    groups,
		EndSymbol: grammar.TerminalID(1),
	})
}

type recordingTransformer struct{}

func (recordingTransformer) Transform(_ grammar.TerminalID, _ stream.Context, chars []rune) (any, error) {
	return string(chars), nil
}

func allTokens(t *testing.T, tok *Tokenizer) []Token {
	t.Helper()
	var out []Token
	for {
		tk, err := tok.Next()
		require.NoError(t, err)
		out = append(out, tk)
		if tk.IsEOF {
			return out
		}
	}
}

func TestTokenizer_IdentifiersAndWhitespace(t *testing.T) {
	cs := stream.NewFromString("a bc")
	tok := New(testGrammar(), cs, recordingTransformer{})

	toks := allTokens(t, tok)
	require.Len(t, toks, 3) // "a", "bc", EOF

	assert.Equal(t, "a", toks[0].Data)
	assert.Equal(t, uint64(1), toks[0].Position.Line())
	assert.Equal(t, uint64(1), toks[0].Position.Column())

	assert.Equal(t, "bc", toks[1].Data)
	assert.True(t, toks[2].IsEOF)
}

func TestTokenizer_LineCommentDiscardedAndEndsAtNewline(t *testing.T) {
	cs := stream.NewFromString("a // comment\nb")
	tok := New(testGrammar(), cs, recordingTransformer{})

	toks := allTokens(t, tok)
	require.Len(t, toks, 3) // "a", "b", EOF

	assert.Equal(t, "a", toks[0].Data)
	assert.Equal(t, uint64(1), toks[0].Position.Line())

	assert.Equal(t, "b", toks[1].Data)
	assert.Equal(t, uint64(2), toks[1].Position.Line())
	assert.Equal(t, uint64(1), toks[1].Position.Column())
}

func TestTokenizer_NestedBlockCommentIsSkippedWhole(t *testing.T) {
	cs := stream.NewFromString("a/*x/*y*/z*/b")
	tok := New(testGrammar(), cs, recordingTransformer{})

	toks := allTokens(t, tok)
	require.Len(t, toks, 3) // "a", "b", EOF
	assert.Equal(t, "a", toks[0].Data)
	assert.Equal(t, "b", toks[1].Data)
}

func TestTokenizer_NestedBlockCommentThenTrailingTerminal(t *testing.T) {
	cs := stream.NewFromString("/* /* inner */ outer */x")
	tok := New(testGrammar(), cs, recordingTransformer{})

	toks := allTokens(t, tok)
	require.Len(t, toks, 2) // "x", EOF
	assert.Equal(t, "x", toks[0].Data)
	assert.True(t, toks[1].IsEOF)
}

func TestTokenizer_UnclosedBlockCommentIsFatal(t *testing.T) {
	cs := stream.NewFromString("a/*x")
	tok := New(testGrammar(), cs, recordingTransformer{})

	_, err := tok.Next() // "a"
	require.NoError(t, err)

	_, err = tok.Next()
	require.Error(t, err)
	var perr ferr.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestTokenizer_DeadTransitionIsLexicalError(t *testing.T) {
	cs := stream.NewFromString("$")
	tok := New(testGrammar(), cs, recordingTransformer{})

	_, err := tok.Next()
	require.Error(t, err)
}

func TestTokenizer_CRLFCountsAsOneLineBreak(t *testing.T) {
	cs := stream.NewFromString("a\r\nb")
	tok := New(testGrammar(), cs, recordingTransformer{})

	toks := allTokens(t, tok)
	require.Len(t, toks, 3) // "a", "b", EOF

	assert.Equal(t, "a", toks[0].Data)
	assert.Equal(t, uint64(1), toks[0].Position.Line())
	assert.Equal(t, uint64(1), toks[0].Position.Column())

	assert.Equal(t, "b", toks[1].Data)
	assert.Equal(t, uint64(2), toks[1].Position.Line())
	assert.Equal(t, uint64(1), toks[1].Position.Column())
}

func TestTokenizer_RegisterTraceListener_EmitsTokensAndGroups(t *testing.T) {
	cs := stream.NewFromString("a // comment\nb")
	tok := New(testGrammar(), cs, recordingTransformer{})

	var lines []string
	tok.RegisterTraceListener(func(s string) { lines = append(lines, s) })

	allTokens(t, tok)

	require.NotEmpty(t, lines)

	var sawToken, sawGroupEnter, sawGroupExit bool
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "token:"):
			sawToken = true
		case strings.HasPrefix(l, "enter group:"):
			sawGroupEnter = true
		case strings.HasPrefix(l, "exit group"):
			sawGroupExit = true
		}
	}
	assert.True(t, sawToken, "expected at least one token trace line, got %v", lines)
	assert.True(t, sawGroupEnter, "expected a group-entered trace line, got %v", lines)
	assert.True(t, sawGroupExit, "expected a group-exited trace line, got %v", lines)
}

func TestTokenizer_NoTraceListener_DoesNotPanic(t *testing.T) {
	cs := stream.NewFromString("a bc")
	tok := New(testGrammar(), cs, recordingTransformer{})
	allTokens(t, tok)
}
