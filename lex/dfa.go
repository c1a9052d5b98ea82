package lex

import (
	"github.com/brackwater/weir/ferr"
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/stream"
)

// scanDFA runs g's lexical DFA from its start state over cs's resident
// (and, as needed, freshly pulled) characters, tracking the last state that
// accepted into a DFASymbol. It never mutates cs's cursor; callers decide
// how much of the match to actually consume.
//
// Three outcomes:
//   - (sym, length, nil): a token was recognized; length is the number of
//     characters of the longest accepted match (the DFA's last-accept
//     offset).
//   - (nil, 0, nil): input ended with nothing resident at all — a clean
//     end of input.
//   - (nil, 0, err): a fatal error — either the underlying reader failed,
//     no character ever led to an accepting state (LexicalError, reporting
//     the first character), or input ended mid-scan before any acceptance
//     (UnexpectedEndOfInput).
func scanDFA(g *grammar.Grammar, cs *stream.CharStream) (*grammar.DFASymbol, int, error) {
	opt := g.Optimized()
	state := g.DFAStart()
	tokenStart := cs.CurrentPosition()

	consumed := 0
	lastAcceptLen := -1
	var lastAccept *grammar.DFASymbol

	for {
		if !cs.TryExpandPastOffset(consumed) {
			if err := cs.Err(); err != nil {
				return nil, 0, err
			}
			if lastAccept != nil {
				return lastAccept, lastAcceptLen, nil
			}
			if consumed == 0 {
				return nil, 0, nil
			}
			return nil, 0, ferr.NewUnexpectedEndOfInput(tokenStart)
		}

		r := cs.CharacterBuffer()[consumed]

		var next grammar.DFAStateID
		if r >= 0 && r < 128 {
			next = opt.AsciiNext(state, byte(r))
		} else {
			next = g.DFAState(state).Next(r)
		}

		if next == grammar.NoDFAState {
			if lastAccept != nil {
				return lastAccept, lastAcceptLen, nil
			}
			return nil, 0, ferr.NewLexicalError(tokenStart, cs.CharacterBuffer()[0])
		}

		state = next
		consumed++
		if acc := g.DFAState(state).Accept; acc != nil {
			lastAccept = acc
			lastAcceptLen = consumed
		}
	}
}
