package parse

import (
	"errors"
	"fmt"

	"github.com/brackwater/weir/ferr"
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/lex"
	"github.com/brackwater/weir/position"
)

// Driver runs the LALR(1) pushdown automaton (C7) over a lex.Tokenizer,
// invoking a PostProcessor to fuse reductions into semantic values. One
// Driver serves exactly one parse; it is not reusable or thread-safe.
type Driver struct {
	g    *grammar.Grammar
	tok  *lex.Tokenizer
	post PostProcessor

	stateStack  []grammar.LALRStateID
	objectStack []any

	trace func(s string)
}

// New returns a Driver that reads tokens from tok against g, handing
// lexemes and reductions to post.
func New(g *grammar.Grammar, tok *lex.Tokenizer, post PostProcessor) *Driver {
	return &Driver{
		g:           g,
		tok:         tok,
		post:        post,
		stateStack:  []grammar.LALRStateID{g.LALRStart()},
		objectStack: []any{nil}, // leading sentinel: state 0, null value
	}
}

// RegisterTraceListener installs a callback invoked with a human-readable
// line for every state push/pop, action taken, and token consumed. Pass nil
// to stop tracing. Tracing is for debugging a grammar's parse behavior;
// nothing in this package's own control flow depends on whether a listener
// is registered.
func (d *Driver) RegisterTraceListener(listener func(s string)) {
	d.trace = listener
}

func (d *Driver) notifyTraceFn(fn func() string) {
	if d.trace != nil {
		d.trace(fn())
	}
}

func (d *Driver) notifyTrace(fmtStr string, args ...any) {
	d.notifyTraceFn(func() string { return fmt.Sprintf(fmtStr, args...) })
}

// Run drives the parse to completion, returning the single fused value for
// an accepted input or a fatal error (always a ferr.ParseError, except when
// the post-processor itself raised something other than a
// ferr.ParserApplicationException, in which case it is a
// ferr.PostProcessorError).
func (d *Driver) Run() (any, error) {
	opt := d.g.Optimized()

	var current *lex.Token
	for {
		if current == nil {
			tok, err := d.tok.Next()
			if err != nil {
				return nil, err
			}
			current = &tok
			if current.IsEOF {
				d.notifyTrace("next token: end of input")
			} else {
				d.notifyTrace("next token: %s", d.g.Term(current.Symbol).Name)
			}
		}

		top := d.stateStack[len(d.stateStack)-1]

		var action grammar.Action
		var hasAction bool
		var actualPos position.Position
		var actual ferr.ExpectedSymbol

		if current.IsEOF {
			action, hasAction = opt.EOFAction(top)
			actualPos = current.Position
			actual = ferr.ExpectedSymbol{IsEOF: true}
		} else {
			action, hasAction = opt.Action(top, current.Symbol)
			actualPos = current.Position
			actual = ferr.ExpectedSymbol{Name: d.g.Term(current.Symbol).Name}
		}

		if !hasAction {
			return nil, ferr.NewSyntaxError(actualPos, d.expectedSymbols(top), actual)
		}

		switch action.Kind {
		case grammar.ActionAccept:
			d.notifyTrace("accept")
			if len(d.objectStack) != 2 {
				panic("parse: accept reached with a malformed object stack")
			}
			return d.objectStack[1], nil

		case grammar.ActionShift:
			d.notifyTrace("shift -> state %d", action.State)
			d.stateStack = append(d.stateStack, action.State)
			d.objectStack = append(d.objectStack, current.Data)
			current = nil

		case grammar.ActionReduce:
			d.notifyTrace("reduce: %s", d.g.Production(action.Production).Describe(d.g))
			if err := d.reduce(action.Production); err != nil {
				return nil, err
			}
			// loop without consuming current token.

		default:
			panic("parse: action table produced an unknown ActionKind")
		}
	}
}

// reduce pops a production's handle off both stacks, calls Fuse over the
// popped values, and pushes the GOTO-derived destination state with the
// fused value.
func (d *Driver) reduce(prod grammar.ProductionID) error {
	production := d.g.Production(prod)
	n := len(production.Handle)

	split := len(d.stateStack) - n
	if split < 1 {
		panic("parse: reduce would pop below the sentinel; malformed tables")
	}

	members := append([]any(nil), d.objectStack[split:]...)

	value, err := d.post.Fuse(prod, members)
	if err != nil {
		return wrapPostProcessorError(err, d.currentPosition())
	}

	d.stateStack = d.stateStack[:split]
	d.objectStack = d.objectStack[:split]

	below := d.stateStack[len(d.stateStack)-1]
	dest, ok := d.g.Optimized().Goto(below, production.Head)
	if !ok {
		panic("parse: no GOTO for reduced nonterminal; malformed tables")
	}

	d.stateStack = append(d.stateStack, dest)
	d.objectStack = append(d.objectStack, value)
	return nil
}

// currentPosition is the best-effort Position to attach to a post-processor
// failure that didn't supply its own: the token-start position the
// tokenizer is sitting at.
func (d *Driver) currentPosition() position.Position {
	return d.tok.CurrentPosition()
}

// wrapPostProcessorError implements §7's Fuse-exception handling: a
// ParserApplicationException surfaces as a UserError at its own Position
// (falling back to pos), anything else is wrapped as a PostProcessorError.
func wrapPostProcessorError(err error, pos position.Position) error {
	var appErr *ferr.ParserApplicationException
	if errors.As(err, &appErr) {
		at := pos
		if appErr.At != nil {
			at = *appErr.At
		}
		return ferr.NewUserError(at, appErr.Message, appErr)
	}
	return ferr.NewPostProcessorError(err)
}

// expectedSymbols builds the SyntaxError expected set: every terminal with a
// defined action in state, plus EOF if the state defines an eof_action.
func (d *Driver) expectedSymbols(state grammar.LALRStateID) []ferr.ExpectedSymbol {
	st := d.g.LALRState(state)
	expected := make([]ferr.ExpectedSymbol, 0, len(st.Actions)+1)
	for term := range st.Actions {
		expected = append(expected, ferr.ExpectedSymbol{Name: d.g.Term(term).Name})
	}
	if st.EOFAction != nil {
		expected = append(expected, ferr.ExpectedSymbol{IsEOF: true})
	}
	return expected
}
