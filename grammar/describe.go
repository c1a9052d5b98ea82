package grammar

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// DescribeTable renders the ACTION/GOTO table as a human-readable grid: one
// row per LALR state, one column per terminal (shift/reduce/accept) followed
// by one column per nonterminal (GOTO target). Intended for build
// diagnostics and debugging a grammar, not for anything the driver consults.
func (g *Grammar) DescribeTable() string {
	data := [][]string{g.describeHeaderRow()}
	for _, st := range g.lalrStates {
		data = append(data, g.describeStateRow(st))
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func (g *Grammar) describeHeaderRow() []string {
	row := []string{"state", "|"}
	for _, t := range g.terminals {
		row = append(row, fmt.Sprintf("A:%s", t.Name))
	}
	row = append(row, "$", "|")
	for _, nt := range g.nonterminals {
		row = append(row, fmt.Sprintf("G:%s", nt.Name))
	}
	return row
}

func (g *Grammar) describeStateRow(st LALRState) []string {
	row := []string{fmt.Sprintf("%d", st.Index), "|"}

	for _, t := range g.terminals {
		row = append(row, g.describeCell(st, t.ID))
	}

	cell := ""
	if st.EOFAction != nil {
		cell = g.describeAction(*st.EOFAction)
	}
	row = append(row, cell, "|")

	for _, nt := range g.nonterminals {
		cell := ""
		if target, ok := st.GotoState(nt.ID); ok {
			cell = fmt.Sprintf("%d", target)
		}
		row = append(row, cell)
	}
	return row
}

func (g *Grammar) describeCell(st LALRState, term TerminalID) string {
	act, ok := st.Action(term)
	if !ok {
		return ""
	}
	return g.describeAction(act)
}

func (g *Grammar) describeAction(act Action) string {
	switch act.Kind {
	case ActionShift:
		return fmt.Sprintf("s%d", act.State)
	case ActionReduce:
		return fmt.Sprintf("r(%s)", g.productions[act.Production].describe(g))
	case ActionAccept:
		return "acc"
	default:
		return ""
	}
}
