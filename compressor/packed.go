package compressor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nihei9/syntax/grammar"
)

type PackedEntry struct {
	Terminal int
	Action   int

	// Recovery is true for a shift of an error token.
	Recovery bool
}

type PackedState struct {
	// Position is the offset of the state's run in Entries.
	Position int
	Default  int
	Count    int
	Message  int

	// Shared is true when the state reuses the run of an earlier state with the same entries.
	// A shared run is emitted only once.
	Shared bool
}

type GoToEntry struct {
	Source int
	Target int
}

type PackedGoTo struct {
	Position int
	Count    int
	Default  int
}

// PackedTable keeps only the non-default actions of each state in one array, and only the
// non-default gotos of each non-terminal in another.
type PackedTable struct {
	Entries     []*PackedEntry
	States      []*PackedState
	GoToEntries []*GoToEntry
	GoTos       []*PackedGoTo
}

func packTable(a *grammar.Automaton) *PackedTable {
	tab := &PackedTable{}

	runs := map[string]int{}
	for _, s := range a.States {
		def := defaultAction(s)
		var entries []*PackedEntry
		for _, e := range stateEntries(s) {
			if e.action == def && !e.recovery {
				continue
			}
			entries = append(entries, &PackedEntry{
				Terminal: e.terminal,
				Action:   e.action,
				Recovery: e.recovery,
			})
		}

		ps := &PackedState{
			Position: len(tab.Entries),
			Default:  def,
			Count:    len(entries),
			Message:  s.Message,
		}
		key := runKey(entries)
		if pos, ok := runs[key]; ok && len(entries) > 0 {
			ps.Position = pos
			ps.Shared = true
		} else {
			runs[key] = ps.Position
			tab.Entries = append(tab.Entries, entries...)
		}
		tab.States = append(tab.States, ps)
		s.Position = ps.Position
	}

	for _, nonTerm := range a.Grammar.NonTerminals {
		col := goToColumn(a, nonTerm)
		def := defaultGoTo(col)
		g := &PackedGoTo{
			Position: len(tab.GoToEntries),
			Default:  def,
		}
		for _, e := range col {
			if e.Target == def {
				continue
			}
			tab.GoToEntries = append(tab.GoToEntries, e)
			g.Count++
		}
		tab.GoTos = append(tab.GoTos, g)
	}

	shared := 0
	for _, ps := range tab.States {
		if ps.Shared {
			shared++
		}
	}
	tracer().Debugf("packed %v action entries (%v shared states) and %v goto entries", len(tab.Entries), shared, len(tab.GoToEntries))

	return tab
}

func runKey(entries []*PackedEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strconv.Itoa(e.Terminal))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Action))
		if e.Recovery {
			b.WriteByte('!')
		}
		b.WriteByte(',')
	}
	return b.String()
}

func (t *PackedTable) Mode() Mode {
	return ModePacked
}

func (t *PackedTable) StateCount() int {
	return len(t.States)
}

func (t *PackedTable) Action(state, terminal int) (int, error) {
	if state < 0 || state >= len(t.States) {
		return ActionError, fmt.Errorf("state is out of range: %v", state)
	}
	ps := t.States[state]
	for _, e := range t.Entries[ps.Position : ps.Position+ps.Count] {
		if e.Terminal == terminal {
			return e.Action, nil
		}
	}
	return ps.Default, nil
}

func (t *PackedTable) GoTo(state, nonTerminal int) (int, error) {
	if nonTerminal < 0 || nonTerminal >= len(t.GoTos) {
		return 0, fmt.Errorf("non-terminal is out of range: %v", nonTerminal)
	}
	g := t.GoTos[nonTerminal]
	for _, e := range t.GoToEntries[g.Position : g.Position+g.Count] {
		if e.Source == state {
			return e.Target, nil
		}
	}
	return g.Default, nil
}

// EmittedStates returns the states whose runs appear in Entries, in state order. The position of
// each equals the number of entries emitted before it.
func (t *PackedTable) EmittedStates() []int {
	var states []int
	for i, ps := range t.States {
		if ps.Shared {
			continue
		}
		states = append(states, i)
	}
	return states
}
