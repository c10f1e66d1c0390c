package compressor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/syntax/grammar"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("syntax.compressor")
}

type Mode string

const (
	ModePacked  = Mode("packed")
	ModeTabular = Mode("tabular")
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "p", "packed":
		return ModePacked, nil
	case "t", "tabular":
		return ModeTabular, nil
	}
	return "", fmt.Errorf("unknown packing: %v", s)
}

// Encoded actions. A shift to state s is s, a reduction by rule r is -r.
const (
	ActionError  = 0
	ActionAccept = 32767
)

// Table is a compressed automaton. Action and GoTo take terminal and non-terminal indexes.
type Table interface {
	Mode() Mode
	StateCount() int
	Action(state, terminal int) (int, error)
	GoTo(state, nonTerminal int) (int, error)
}

var (
	_ Table = &PackedTable{}
	_ Table = &TabularTable{}
)

func EncodeAction(act *grammar.Action) int {
	switch act.Kind {
	case grammar.ActionShift:
		return act.Target
	case grammar.ActionReduce:
		return -act.Target
	case grammar.ActionAccept:
		return ActionAccept
	}
	return ActionError
}

// Pack compresses the automaton and records the position of each state in a.States.
func Pack(a *grammar.Automaton, mode Mode) (Table, error) {
	if len(a.States) >= ActionAccept {
		return nil, fmt.Errorf("too many states to encode: %v (limit: %v)", len(a.States), ActionAccept-1)
	}

	var tab Table
	switch mode {
	case ModePacked:
		tab = packTable(a)
	case ModeTabular:
		tab = tabulateTable(a)
	default:
		return nil, fmt.Errorf("unknown packing: %v", mode)
	}

	tracer().Infof("%v table: %v states", mode, tab.StateCount())

	return tab, nil
}

// defaultAction returns the most frequent reduction of the state, preferring the lower rule on a
// tie, or an error when the state reduces nothing.
func defaultAction(s *grammar.State) int {
	freq := map[int]int{}
	for _, act := range s.Actions {
		if act.Kind != grammar.ActionReduce {
			continue
		}
		freq[act.Target]++
	}
	rule := -1
	for r, n := range freq {
		if rule < 0 || n > freq[rule] || (n == freq[rule] && r < rule) {
			rule = r
		}
	}
	if rule < 0 {
		return ActionError
	}
	return -rule
}

type actionEntry struct {
	terminal int
	action   int
	recovery bool
}

// stateEntries lists every action of the state, recoveries included, ordered by terminal index.
func stateEntries(s *grammar.State) []*actionEntry {
	entries := make([]*actionEntry, 0, len(s.Actions)+len(s.Recoveries))
	for _, act := range s.Actions {
		entries = append(entries, &actionEntry{
			terminal: act.Terminal.Index,
			action:   EncodeAction(act),
		})
	}
	for _, act := range s.Recoveries {
		entries = append(entries, &actionEntry{
			terminal: act.Terminal.Index,
			action:   EncodeAction(act),
			recovery: true,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].terminal < entries[j].terminal
	})
	return entries
}

// goToColumn collects the gotos on a non-terminal as (source, target) pairs in state order.
func goToColumn(a *grammar.Automaton, nonTerm *grammar.NonTerminal) []*GoToEntry {
	var col []*GoToEntry
	for _, s := range a.States {
		target, ok := s.GoTo(nonTerm)
		if !ok {
			continue
		}
		col = append(col, &GoToEntry{
			Source: s.Num,
			Target: target,
		})
	}
	return col
}

// defaultGoTo returns the most frequent target, preferring the lower state on a tie.
func defaultGoTo(col []*GoToEntry) int {
	freq := map[int]int{}
	for _, e := range col {
		freq[e.Target]++
	}
	target := -1
	for t, n := range freq {
		if target < 0 || n > freq[target] || (n == freq[target] && t < target) {
			target = t
		}
	}
	if target < 0 {
		return 0
	}
	return target
}
