package compressor

import (
	"fmt"

	"github.com/nihei9/syntax/grammar"
)

// TabularTable is a dense matrix. Each row holds the actions of a state by terminal index,
// followed by its gotos by non-terminal index.
type TabularTable struct {
	TerminalCount    int
	NonTerminalCount int
	Rows             [][]int

	// Messages holds the error message index of each state.
	Messages []int
}

func tabulateTable(a *grammar.Automaton) *TabularTable {
	termCount := len(a.Grammar.Terminals)
	nonTermCount := len(a.Grammar.NonTerminals)
	tab := &TabularTable{
		TerminalCount:    termCount,
		NonTerminalCount: nonTermCount,
	}
	for _, s := range a.States {
		row := make([]int, termCount+nonTermCount)
		def := defaultAction(s)
		for i := 0; i < termCount; i++ {
			row[i] = def
		}
		for _, e := range stateEntries(s) {
			row[e.terminal] = e.action
		}
		for _, g := range s.GoTos {
			row[termCount+g.NonTerminal.Index] = g.Target
		}
		s.Position = s.Num * len(row)
		tab.Rows = append(tab.Rows, row)
		tab.Messages = append(tab.Messages, s.Message)
	}
	return tab
}

func (t *TabularTable) Mode() Mode {
	return ModeTabular
}

func (t *TabularTable) StateCount() int {
	return len(t.Rows)
}

func (t *TabularTable) Action(state, terminal int) (int, error) {
	if state < 0 || state >= len(t.Rows) || terminal < 0 || terminal >= t.TerminalCount {
		return ActionError, fmt.Errorf("indexes are out of range: [%v, %v]", state, terminal)
	}
	return t.Rows[state][terminal], nil
}

func (t *TabularTable) GoTo(state, nonTerminal int) (int, error) {
	if state < 0 || state >= len(t.Rows) || nonTerminal < 0 || nonTerminal >= t.NonTerminalCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", state, nonTerminal)
	}
	return t.Rows[state][t.TerminalCount+nonTerminal], nil
}

// Compress feeds the matrix to a compressor and returns the number of entries the compressed
// form needs.
func (t *TabularTable) Compress(c Compressor) (int, error) {
	if len(t.Rows) == 0 {
		return 0, fmt.Errorf("the table is empty")
	}
	colCount := len(t.Rows[0])
	entries := make([]int, 0, len(t.Rows)*colCount)
	for _, row := range t.Rows {
		entries = append(entries, row...)
	}
	m, err := NewMatrix(entries, colCount)
	if err != nil {
		return 0, err
	}
	err = c.Compress(m)
	if err != nil {
		return 0, err
	}
	return c.CompressedSize(), nil
}
