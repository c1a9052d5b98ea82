// Package weir is the runtime LALR(1) parsing engine's public entry point:
// it wires a compiled Grammar to an input source and a PostProcessor,
// running the tokenizer (C6) and LALR driver (C7) to completion.
//
// Compiling a Grammar from a grammar description is package build's job
// (C9); this package only runs one a caller already has.
package weir

import (
	"io"
	"os"

	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/lex"
	"github.com/brackwater/weir/parse"
	"github.com/brackwater/weir/stream"
)

// PostProcessor is re-exported from package parse so callers need only
// import weir for the common path.
type PostProcessor = parse.PostProcessor

// SyntaxCheckPostProcessor and ASTPostProcessor are the two prebuilt
// post-processors every grammar can use without writing its own.
type (
	SyntaxCheckPostProcessor = parse.SyntaxCheckPostProcessor
	ASTPostProcessor          = parse.ASTPostProcessor
	Node                      = parse.Node
)

// Input is a source of characters to parse. Build one with FromString,
// FromRunes, FromReader, or FromFile; a zero Input is not valid.
type Input struct {
	open func() (*stream.CharStream, error)
}

// FromString parses the characters of s directly, fully resident.
func FromString(s string) Input {
	return Input{open: func() (*stream.CharStream, error) {
		return stream.NewFromString(s), nil
	}}
}

// FromRunes parses an in-memory character slice directly, fully resident.
// The slice must not be mutated while a parse using it is in progress.
func FromRunes(r []rune) Input {
	return Input{open: func() (*stream.CharStream, error) {
		return stream.NewFromRunes(r), nil
	}}
}

// FromReader parses characters pulled on demand from r. The stream never
// closes r; the caller owns its lifetime.
func FromReader(r io.Reader) Input {
	return Input{open: func() (*stream.CharStream, error) {
		return stream.NewFromReader(r, true), nil
	}}
}

// FromFile opens path and parses its contents, closing the file once the
// parse completes (successfully or not).
func FromFile(path string) Input {
	return Input{open: func() (*stream.CharStream, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return stream.NewFromReader(f, false), nil
	}}
}

// Parser runs one compiled Grammar, against any number of Inputs, handing
// lexemes and reductions to a PostProcessor. Safe for concurrent use across
// different Inputs: a Grammar's tables are read-only and each Parse call
// drives its own CharStream, Tokenizer, and Driver.
type Parser struct {
	g        *grammar.Grammar
	post     PostProcessor
	buildErr error
	trace    func(s string)
}

// New returns a Parser over an already-compiled Grammar.
func New(g *grammar.Grammar, post PostProcessor) *Parser {
	return &Parser{g: g, post: post}
}

// NewFromBuild returns a Parser that, if buildErr is non-nil (the grammar
// this Parser would otherwise run failed to compile), rejects every Parse
// call with that same error instead of running — per §7, a parser
// constructed from a failed build rejects every call with BuildError.
// buildErr is expected to be nil or a *ferr.BuildError.
func NewFromBuild(g *grammar.Grammar, buildErr error, post PostProcessor) *Parser {
	return &Parser{g: g, post: post, buildErr: buildErr}
}

// Grammar returns the Grammar this Parser runs.
func (p *Parser) Grammar() *grammar.Grammar { return p.g }

// RegisterTraceListener installs a callback that receives a line for every
// notable tokenizer and driver decision (token emitted, group entered/
// exited, state shifted/reduced, action taken) during every subsequent
// Parse call. Pass nil to stop tracing.
func (p *Parser) RegisterTraceListener(listener func(s string)) {
	p.trace = listener
}

// Parse runs the tokenizer and LALR driver to completion over in, returning
// the post-processor's fused value for an accepted input. Every error is
// fatal: a ferr.ParseError, a ferr.PostProcessorError, the *ferr.BuildError
// this Parser was constructed with, or an I/O error opening in.
func (p *Parser) Parse(in Input) (any, error) {
	if p.buildErr != nil {
		return nil, p.buildErr
	}

	cs, err := in.open()
	if err != nil {
		return nil, err
	}
	defer cs.Close()

	tok := lex.New(p.g, cs, p.post)
	d := parse.New(p.g, tok, p.post)
	if p.trace != nil {
		tok.RegisterTraceListener(p.trace)
		d.RegisterTraceListener(p.trace)
	}
	return d.Run()
}
