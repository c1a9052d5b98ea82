// Package build computes the LALR(1) section of a Grammar — its states,
// actions, and GOTOs — from an abstract description of a grammar's
// productions (C9 in the design). It does not parse, serialize, or describe
// grammars in any higher-level surface syntax; that combinator/builder
// layer, along with regex-to-DFA construction for the lexical side, is
// deliberately out of scope and left to the caller (see spec §1).
package build

import "github.com/brackwater/weir/grammar"

// AbstractSyntaxProvider is everything the table builder needs to know about
// a grammar's productions. It matches the design's §6 "Grammar input to
// table builder" contract exactly; a caller assembling a Grammar from some
// higher-level description (a combinator DSL, a parsed grammar file — both
// out of scope here) implements this to hand the syntax off to Compile.
//
// StartProduction must be the single augmented production S' -> S that
// Compile's caller has already added: its head is a nonterminal not
// otherwise reachable from the grammar's real productions, and its handle is
// exactly [S]. NonterminalCount and ProductionCount both include this
// augmented nonterminal and production.
type AbstractSyntaxProvider interface {
	TerminalCount() int
	NonterminalCount() int
	ProductionCount() int

	// StartProduction is the augmented S' -> S production.
	StartProduction() grammar.ProductionID

	// EndSymbol is the reserved end-of-input terminal ($ / EOF).
	EndSymbol() grammar.TerminalID

	// ProductionHead returns the nonterminal a production reduces to.
	ProductionHead(p grammar.ProductionID) grammar.NonterminalID

	// ProductionMembers returns a production's handle, in left-to-right
	// order. An empty slice denotes an epsilon production.
	ProductionMembers(p grammar.ProductionID) []grammar.Symbol

	// NonterminalProductions enumerates every production whose head is nt.
	NonterminalProductions(nt grammar.NonterminalID) []grammar.ProductionID
}

// SimpleProvider is a minimal, in-memory AbstractSyntaxProvider built
// directly from production lists. It exists for tests and small
// hand-assembled grammars; it is not the combinator/builder surface the
// design excludes (it has no notion of surface syntax, precedence, or
// regex — just the bare production relation Compile needs).
type SimpleProvider struct {
	NTerminals    int
	NNonterminals int
	Productions   []grammar.Production
	Start         grammar.ProductionID
	End           grammar.TerminalID

	byHead map[grammar.NonterminalID][]grammar.ProductionID
}

// NewSimpleProvider indexes productions by head and returns a ready-to-use
// SimpleProvider.
func NewSimpleProvider(nTerm, nNonterm int, productions []grammar.Production, start grammar.ProductionID, end grammar.TerminalID) *SimpleProvider {
	p := &SimpleProvider{
		NTerminals:    nTerm,
		NNonterminals: nNonterm,
		Productions:   productions,
		Start:         start,
		End:           end,
		byHead:        map[grammar.NonterminalID][]grammar.ProductionID{},
	}
	for _, prod := range productions {
		p.byHead[prod.Head] = append(p.byHead[prod.Head], prod.Index)
	}
	return p
}

func (p *SimpleProvider) TerminalCount() int    { return p.NTerminals }
func (p *SimpleProvider) NonterminalCount() int { return p.NNonterminals }
func (p *SimpleProvider) ProductionCount() int  { return len(p.Productions) }
func (p *SimpleProvider) StartProduction() grammar.ProductionID { return p.Start }
func (p *SimpleProvider) EndSymbol() grammar.TerminalID         { return p.End }

func (p *SimpleProvider) ProductionHead(id grammar.ProductionID) grammar.NonterminalID {
	return p.Productions[id].Head
}

func (p *SimpleProvider) ProductionMembers(id grammar.ProductionID) []grammar.Symbol {
	return p.Productions[id].Handle
}

func (p *SimpleProvider) NonterminalProductions(nt grammar.NonterminalID) []grammar.ProductionID {
	return p.byHead[nt]
}
