package grammar

import "strings"

// ProductionID indexes a Grammar's Productions table.
type ProductionID uint32

// Production is a single rewrite rule Head -> Handle. Handle may be empty
// (an epsilon production).
type Production struct {
	Index  ProductionID
	Head   NonterminalID
	Handle []Symbol
}

// IsEpsilon reports whether this production's handle is empty.
func (p Production) IsEpsilon() bool { return len(p.Handle) == 0 }

// Describe renders p as "Head -> sym sym ..." (or "Head -> ε"), resolving
// symbol ids to names via g. Used for diagnostics and trace output, never
// for anything the driver or builder decide behavior on.
func (p Production) Describe(g *Grammar) string {
	return p.describe(g)
}

func (p Production) describe(g *Grammar) string {
	var sb strings.Builder
	sb.WriteString(g.Nonterminal(p.Head).Name)
	sb.WriteString(" ->")
	if p.IsEpsilon() {
		sb.WriteString(" ε")
		return sb.String()
	}
	for _, sym := range p.Handle {
		sb.WriteByte(' ')
		if sym.IsTerminal() {
			sb.WriteString(g.Term(sym.Terminal()).Name)
		} else {
			sb.WriteString(g.Nonterminal(sym.Nonterminal()).Name)
		}
	}
	return sb.String()
}
