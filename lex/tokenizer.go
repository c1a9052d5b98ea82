// Package lex implements the DFA-driven tokenizer (C6 in the design): it
// runs a Grammar's lexical DFA over a CharStream, classifies each match as a
// terminal, discarded noise, or a lexical group marker, and drives the
// group stack described in the design's group-classification table.
package lex

import (
	"errors"
	"fmt"

	"github.com/brackwater/weir/ferr"
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/position"
	"github.com/brackwater/weir/stream"
)

// Token is one lexical unit handed to the LALR driver.
type Token struct {
	Position position.Position
	Symbol   grammar.TerminalID
	Data     any
	IsEOF    bool
}

// Transformer is the half of the post-processor contract (C8) the
// tokenizer needs: converting a matched lexeme into a semantic value.
// parse.PostProcessor satisfies this via its Transform method.
type Transformer interface {
	Transform(terminal grammar.TerminalID, ctx stream.Context, chars []rune) (any, error)
}

type groupFrame struct {
	id    grammar.GroupID
	group grammar.Group
}

// Tokenizer runs one Grammar's DFA over one CharStream, handing matched
// tokens to transformer. Not thread-safe; one per parse.
type Tokenizer struct {
	g           *grammar.Grammar
	stream      *stream.CharStream
	transformer Transformer
	groups      []groupFrame
	trace       func(s string)
}

// New returns a Tokenizer reading from cs against g, calling transformer to
// turn matched lexemes into semantic values.
func New(g *grammar.Grammar, cs *stream.CharStream, transformer Transformer) *Tokenizer {
	return &Tokenizer{g: g, stream: cs, transformer: transformer}
}

// RegisterTraceListener installs a callback invoked with a human-readable
// line for every notable tokenizer decision: a token emitted, noise
// discarded, or a group entered/exited. Pass nil to stop tracing. Tracing is
// for debugging a grammar's lexical behavior; nothing in this package's own
// control flow depends on whether a listener is registered.
func (t *Tokenizer) RegisterTraceListener(listener func(s string)) {
	t.trace = listener
}

func (t *Tokenizer) notifyTraceFn(fn func() string) {
	if t.trace != nil {
		t.trace(fn())
	}
}

func (t *Tokenizer) notifyTrace(fmtStr string, args ...any) {
	t.notifyTraceFn(func() string { return fmt.Sprintf(fmtStr, args...) })
}

// CurrentPosition is the stream's current Position, used to anchor a
// post-processor error that didn't supply its own.
func (t *Tokenizer) CurrentPosition() position.Position {
	return t.stream.CurrentPosition()
}

// Next returns the next token, or the EOF token once input is exhausted.
// Every error it returns is fatal.
func (t *Tokenizer) Next() (Token, error) {
	for {
		tok, err := t.step()
		if err != nil {
			return Token{}, err
		}
		if tok != nil {
			return *tok, nil
		}
	}
}

// step advances the tokenizer by exactly one decision. A nil token with a
// nil error means "keep looping" (noise discarded, group entered/exited
// without a token to emit yet).
func (t *Tokenizer) step() (*Token, error) {
	if len(t.groups) == 0 {
		return t.stepOutsideGroup()
	}
	top := t.groups[len(t.groups)-1]
	if top.group.AdvanceMode == grammar.AdvanceByToken {
		return t.stepTokenModeGroup(top)
	}
	return t.stepCharModeGroup(top)
}

func (t *Tokenizer) stepOutsideGroup() (*Token, error) {
	startPos := t.stream.TokenStartPosition()

	sym, length, err := scanDFA(t.g, t.stream)
	if err != nil {
		return nil, err
	}
	if sym == nil {
		return &Token{Position: startPos, IsEOF: true}, nil
	}

	switch sym.Kind {
	case grammar.SymbolTerminal:
		t.stream.AdvanceBy(length, false)
		val, terr := t.stream.CreateToken(t.transformFor(sym.Terminal))
		if terr != nil {
			return nil, terr
		}
		t.notifyTrace("token: %s %q", sym.Name, val)
		return &Token{Position: startPos, Symbol: sym.Terminal, Data: val}, nil

	case grammar.SymbolNoise:
		t.stream.AdvanceBy(length, true)
		if _, terr := t.stream.CreateToken(discardTransform); terr != nil {
			return nil, terr
		}
		t.notifyTrace("discard noise: %s", sym.NoiseName)
		return nil, nil

	case grammar.SymbolGroupStart:
		t.notifyTrace("enter group: %s", sym.Literal)
		t.pushGroupByID(sym.Group, length)
		return nil, nil

	case grammar.SymbolGroupEnd:
		return nil, ferr.NewUnexpectedGroupEnd(startPos, sym.Literal)

	default:
		panic("lex: DFA accepted into an unknown DFASymbol kind")
	}
}

func (t *Tokenizer) stepTokenModeGroup(top groupFrame) (*Token, error) {
	sym, length, err := scanDFA(t.g, t.stream)
	if err != nil {
		return nil, err
	}
	if sym == nil {
		return t.handleEOFInGroup(top)
	}

	switch sym.Kind {
	case grammar.SymbolGroupStart:
		if top.group.Nests(sym.Group) {
			t.pushGroupByID(sym.Group, length)
			return nil, nil
		}
		t.stream.AdvanceBy(length, false)
		return nil, nil

	case grammar.SymbolGroupEnd:
		if sym.Group == top.id {
			return t.closeGroup(length, false)
		}
		t.stream.AdvanceBy(length, false)
		return nil, nil

	default: // Terminal or Noise recognized inside the group: absorbed whole.
		t.stream.AdvanceBy(length, false)
		return nil, nil
	}
}

func (t *Tokenizer) stepCharModeGroup(top groupFrame) (*Token, error) {
	plan := t.g.Optimized().GroupSearch(top.id)
	if plan.UseLiteralScan {
		return t.scanForLiteral(top, plan.EndLiteral)
	}
	return t.scanForAlphabet(top, plan.Alphabet)
}

// scanForLiteral advances through group content looking for the fixed,
// un-nestable end-marker literal, used only when the group's alphabet would
// otherwise be the whole literal itself (see GroupSearchPlan).
func (t *Tokenizer) scanForLiteral(top groupFrame, literal string) (*Token, error) {
	want := []rune(literal)
	offset := 0

	for {
		if !t.stream.TryExpandPastOffset(offset + len(want) - 1) {
			if err := t.stream.Err(); err != nil {
				return nil, err
			}
			return t.handleEOFInGroup(top)
		}

		buf := t.stream.CharacterBuffer()
		if runesEqual(buf[offset:offset+len(want)], want) {
			if offset > 0 {
				t.stream.AdvanceBy(offset, false)
			}
			return t.closeGroup(len(want), false)
		}
		offset++
	}
}

// scanForAlphabet advances through character-mode group content one
// candidate position at a time, skipping runs of characters that aren't in
// the group's precomputed decision-point alphabet (first characters of
// nestable group starts, the end literal, and newline if EndsAtNewline).
// Every hit is then verified against the real literals before acting on it,
// since the alphabet only guarantees a character may start something
// interesting, not that it does.
func (t *Tokenizer) scanForAlphabet(top groupFrame, alphabet []rune) (*Token, error) {
	alphaSet := make(map[rune]bool, len(alphabet))
	for _, r := range alphabet {
		alphaSet[r] = true
	}

	offset := 0
	for {
		if !t.stream.TryExpandPastOffset(offset) {
			if err := t.stream.Err(); err != nil {
				return nil, err
			}
			if offset > 0 {
				t.stream.AdvanceBy(offset, false)
			}
			return t.handleEOFInGroup(top)
		}

		r := t.stream.CharacterBuffer()[offset]
		if !alphaSet[r] {
			offset++
			continue
		}

		if offset > 0 {
			t.stream.AdvanceBy(offset, false)
			offset = 0
		}

		if top.group.EndsAtNewline && r == '\n' {
			return t.closeGroup(1, true)
		}

		if lit := []rune(top.group.EndLiteral); len(lit) > 0 && t.matchesHere(lit) {
			return t.closeGroup(len(lit), false)
		}

		if gid, litLen, ok := t.matchesNestedStart(top, r); ok {
			t.pushGroupByID(gid, litLen)
			return nil, nil
		}

		// false positive: this alphabet character didn't actually start any
		// real literal here, so it's just ordinary content.
		t.stream.AdvanceBy(1, false)
	}
}

func (t *Tokenizer) matchesHere(lit []rune) bool {
	if !t.stream.TryExpandPastOffset(len(lit) - 1) {
		return false
	}
	return runesEqual(t.stream.CharacterBuffer()[:len(lit)], lit)
}

func (t *Tokenizer) matchesNestedStart(top groupFrame, r rune) (grammar.GroupID, int, bool) {
	for gid := range top.group.Nesting {
		nested := t.g.Group(gid)
		lit := []rune(nested.Start.Literal)
		if len(lit) == 0 || lit[0] != r {
			continue
		}
		if t.matchesHere(lit) {
			return gid, len(lit), true
		}
	}
	return 0, 0, false
}

func (t *Tokenizer) handleEOFInGroup(top groupFrame) (*Token, error) {
	if !top.group.EndsAtNewline {
		return nil, ferr.NewUnexpectedEndOfInputInGroup(t.stream.CurrentPosition(), top.group.Start.Literal)
	}
	return t.closeGroup(0, true)
}

func (t *Tokenizer) pushGroupByID(id grammar.GroupID, length int) {
	grp := t.g.Group(id)
	unpin := grp.Container.Kind == grammar.SymbolNoise
	t.stream.AdvanceBy(length, unpin)
	t.groups = append(t.groups, groupFrame{id: id, group: grp})
}

// closeGroup pops the innermost group, optionally consuming its end marker,
// and — if this was the outermost group — unpins the accumulated content
// into a Token (or discards it, for a Noise container).
func (t *Tokenizer) closeGroup(endLen int, viaNewline bool) (*Token, error) {
	frame := t.groups[len(t.groups)-1]
	t.groups = t.groups[:len(t.groups)-1]

	unpin := frame.group.Container.Kind == grammar.SymbolNoise

	if viaNewline || frame.group.EndingMode == grammar.EndingClosed {
		if endLen > 0 {
			t.stream.AdvanceBy(endLen, unpin)
		}
	}
	// EndingOpen (and not closing via newline): leave the end-literal's
	// characters unconsumed so they're reprocessed as ordinary input.

	if len(t.groups) > 0 {
		t.notifyTrace("exit nested group, %d remaining", len(t.groups))
		return nil, nil
	}

	t.notifyTrace("exit group")

	if frame.group.Container.Kind == grammar.SymbolNoise {
		if _, err := t.stream.CreateToken(discardTransform); err != nil {
			return nil, err
		}
		return nil, nil
	}

	pos := t.stream.TokenStartPosition()
	val, err := t.stream.CreateToken(t.transformFor(frame.group.Container.Terminal))
	if err != nil {
		return nil, err
	}
	return &Token{Position: pos, Symbol: frame.group.Container.Terminal, Data: val}, nil
}

// transformFor adapts the Transformer for term, surfacing a
// ParserApplicationException as a UserError (at its own Position, else the
// token's start) and wrapping any other error as a PostProcessorError.
func (t *Tokenizer) transformFor(term grammar.TerminalID) stream.Transformer {
	return func(ctx stream.Context, chars []rune) (any, error) {
		val, err := t.transformer.Transform(term, ctx, chars)
		if err == nil {
			return val, nil
		}
		var appErr *ferr.ParserApplicationException
		if errors.As(err, &appErr) {
			at := ctx.Start
			if appErr.At != nil {
				at = *appErr.At
			}
			return nil, ferr.NewUserError(at, appErr.Message, appErr)
		}
		return nil, ferr.NewPostProcessorError(err)
	}
}

func discardTransform(stream.Context, []rune) (any, error) {
	return nil, nil
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
