// Package parse implements the LALR(1) driver (C7 in the design): a
// pushdown automaton that consumes tokens from a lex.Tokenizer, shifts and
// reduces against a grammar's precomputed ACTION/GOTO tables, and invokes a
// caller-supplied PostProcessor (C8) to build the result.
package parse

import (
	"github.com/brackwater/weir/grammar"
	"github.com/brackwater/weir/stream"
)

// PostProcessor is the full contract a caller implements to turn a parse
// into a semantic value: Transform converts a matched lexeme into an object,
// Fuse combines a production's reduced members into its head's value.
type PostProcessor interface {
	// Transform converts the characters matched for terminal into a
	// semantic value. ctx exposes the token's start/end Position and the
	// stream's per-parse object store.
	Transform(terminal grammar.TerminalID, ctx stream.Context, chars []rune) (any, error)

	// Fuse combines the values already produced for production's handle
	// (members, in left-to-right order) into the value for its head.
	Fuse(production grammar.ProductionID, members []any) (any, error)
}

// SyntaxCheckPostProcessor discards every semantic value: Transform and
// Fuse both always return nil. Useful when only accept/reject matters.
type SyntaxCheckPostProcessor struct{}

func (SyntaxCheckPostProcessor) Transform(grammar.TerminalID, stream.Context, []rune) (any, error) {
	return nil, nil
}

func (SyntaxCheckPostProcessor) Fuse(grammar.ProductionID, []any) (any, error) {
	return nil, nil
}

// Node is a generic parse-tree node built by ASTPostProcessor: either a leaf
// carrying a matched token's text, or an interior node carrying the
// production that produced it and its children in handle order.
type Node struct {
	Terminal   grammar.TerminalID
	IsLeaf     bool
	Text       string
	Production grammar.ProductionID
	Children   []*Node
}

// ASTPostProcessor builds a generic, untyped parse tree: every token becomes
// a leaf Node, every reduction becomes an interior Node over its already-
// built children.
type ASTPostProcessor struct{}

func (ASTPostProcessor) Transform(terminal grammar.TerminalID, _ stream.Context, chars []rune) (any, error) {
	return &Node{Terminal: terminal, IsLeaf: true, Text: string(chars)}, nil
}

func (ASTPostProcessor) Fuse(production grammar.ProductionID, members []any) (any, error) {
	children := make([]*Node, 0, len(members))
	for _, m := range members {
		if n, ok := m.(*Node); ok {
			children = append(children, n)
		}
	}
	return &Node{Production: production, Children: children}, nil
}
