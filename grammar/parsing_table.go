package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/syntax/grammar/symbol"
)

type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

func (k ActionKind) String() string {
	switch k {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	}
	return "error"
}

// Action is an entry of the action table. Target is a state number for a shift and a rule index
// for a reduction.
type Action struct {
	Terminal *Terminal
	Kind     ActionKind
	Target   int

	// Recovery is true for a shift of an error token.
	Recovery bool
}

func (a *Action) String() string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("shift %v", a.Target)
	case ActionReduce:
		return fmt.Sprintf("reduce %v", a.Target)
	}
	return a.Kind.String()
}

type GoTo struct {
	NonTerminal *NonTerminal
	Target      int
}

type Item struct {
	Rule      *Rule
	Dot       int
	LookAhead []*Terminal
}

type State struct {
	Num    int
	Kernel []*Item

	// Actions are ordered by terminal index and never contain error tokens.
	Actions []*Action

	// GoTos are ordered by non-terminal index.
	GoTos []*GoTo

	// Recoveries are shifts of error tokens, ordered like Grammar.ErrorTokens.
	Recoveries []*Action

	// Message is an index into Grammar.Messages, or -1.
	Message int

	// Position is the offset of the state's entries in the packed action table. It is
	// recorded when the automaton is packed.
	Position int
}

// Action returns the action on the terminal. A missing action means an error.
func (s *State) Action(term *Terminal) *Action {
	for _, a := range s.Actions {
		if a.Terminal == term {
			return a
		}
	}
	return &Action{
		Terminal: term,
		Kind:     ActionError,
	}
}

func (s *State) GoTo(nonTerm *NonTerminal) (int, bool) {
	for _, g := range s.GoTos {
		if g.NonTerminal == nonTerm {
			return g.Target, true
		}
	}
	return 0, false
}

type ConflictKind string

const (
	ConflictShiftReduce  = ConflictKind("shift/reduce")
	ConflictReduceReduce = ConflictKind("reduce/reduce")
)

type conflictResolutionMethod string

const (
	ResolvedByPrec      = conflictResolutionMethod("precedence")
	ResolvedByAssoc     = conflictResolutionMethod("associativity")
	ResolvedByShift     = conflictResolutionMethod("shift preference")
	ResolvedByProdOrder = conflictResolutionMethod("rule order")
)

type Conflict struct {
	State    int
	Terminal *Terminal
	Kind     ConflictKind

	// ShiftTarget is meaningful only for a shift/reduce conflict.
	ShiftTarget int

	// Rules holds the competing rule indexes. A shift/reduce conflict has one rule.
	Rules      []int
	Chosen     *Action
	ResolvedBy conflictResolutionMethod
}

func (c *Conflict) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state %v: %v conflict on %v (", c.State, c.Kind, c.Terminal.Name)
	if c.Kind == ConflictShiftReduce {
		fmt.Fprintf(&b, "shift %v, reduce %v", c.ShiftTarget, c.Rules[0])
	} else {
		fmt.Fprintf(&b, "reduce %v, reduce %v", c.Rules[0], c.Rules[1])
	}
	fmt.Fprintf(&b, ") resolved as %v by %v", c.Chosen, c.ResolvedBy)
	return b.String()
}

// tableCell is an entry of the dense working table the builder resolves conflicts in.
type tableCell struct {
	kind   ActionKind
	target int
}

type lrTableBuilder struct {
	automaton *lr0Automaton
	gram      *Grammar
	termCount int

	cells     []tableCell
	conflicts []*Conflict
}

func newLRTableBuilder(automaton *lr0Automaton, gram *Grammar) *lrTableBuilder {
	termCount := len(gram.Terminals)
	return &lrTableBuilder{
		automaton: automaton,
		gram:      gram,
		termCount: termCount,
		cells:     make([]tableCell, len(automaton.orderedStates)*termCount),
	}
}

func (b *lrTableBuilder) readCell(state stateNum, term *Terminal) tableCell {
	return b.cells[state.Int()*b.termCount+term.Index]
}

func (b *lrTableBuilder) writeCell(state stateNum, term *Terminal, cell tableCell) {
	b.cells[state.Int()*b.termCount+term.Index] = cell
}

func (b *lrTableBuilder) build() ([]*State, error) {
	states := make([]*State, len(b.automaton.orderedStates))
	for _, lrs := range b.automaton.orderedStates {
		state := &State{
			Num:     lrs.num.Int(),
			Message: -1,
		}
		states[lrs.num] = state

		nextSyms := make([]symbol.Symbol, 0, len(lrs.next))
		for sym := range lrs.next {
			nextSyms = append(nextSyms, sym)
		}
		sort.Slice(nextSyms, func(i, j int) bool {
			return nextSyms[i] < nextSyms[j]
		})
		for _, sym := range nextSyms {
			nextState := b.automaton.states[lrs.next[sym]]
			if sym.IsTerminal() {
				term := b.gram.sym2Term[sym]
				if term.Error {
					state.Recoveries = append(state.Recoveries, &Action{
						Terminal: term,
						Kind:     ActionShift,
						Target:   nextState.num.Int(),
						Recovery: true,
					})
					continue
				}
				b.writeShiftAction(lrs.num, term, nextState.num)
			} else {
				state.GoTos = append(state.GoTos, &GoTo{
					NonTerminal: b.gram.sym2NonTerm[sym],
					Target:      nextState.num.Int(),
				})
			}
		}
		sort.Slice(state.GoTos, func(i, j int) bool {
			return state.GoTos[i].NonTerminal.Index < state.GoTos[j].NonTerminal.Index
		})
		sort.Slice(state.Recoveries, func(i, j int) bool {
			return errorTokenOrder(b.gram, state.Recoveries[i].Terminal) < errorTokenOrder(b.gram, state.Recoveries[j].Terminal)
		})

		prodIDs := make([]*production, 0, len(lrs.reducible))
		for prodID := range lrs.reducible {
			prod, ok := b.gram.prods.findByID(prodID)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", prodID)
			}
			prodIDs = append(prodIDs, prod)
		}
		sort.Slice(prodIDs, func(i, j int) bool {
			return prodIDs[i].num < prodIDs[j].num
		})
		for _, prod := range prodIDs {
			item, ok := lrs.findReducibleItem(prod.id)
			if !ok {
				return nil, fmt.Errorf("reducible item not found; state: %v, production: %v", lrs.num, prod.num)
			}
			for _, a := range item.lookAheadSymbols() {
				term := b.gram.sym2Term[a]
				if term.Error {
					continue
				}
				b.writeReduceAction(lrs.num, term, prod.num)
			}
		}

		for _, kItem := range lrs.items {
			rule := b.gram.Rules[kItem.prodNum]
			item := &Item{
				Rule: rule,
				Dot:  kItem.dot,
			}
			if kItem.reducible {
				for _, a := range kItem.lookAheadSymbols() {
					item.LookAhead = append(item.LookAhead, b.gram.sym2Term[a])
				}
			}
			state.Kernel = append(state.Kernel, item)

			if rule.Message >= 0 && state.Message < 0 {
				state.Message = rule.Message
			}
		}
	}

	for _, state := range states {
		for _, term := range b.gram.Terminals {
			cell := b.readCell(stateNum(state.Num), term)
			if cell.kind == ActionError {
				continue
			}
			state.Actions = append(state.Actions, &Action{
				Terminal: term,
				Kind:     cell.kind,
				Target:   cell.target,
			})
		}
	}

	return states, nil
}

func errorTokenOrder(gram *Grammar, term *Terminal) int {
	for i, t := range gram.ErrorTokens {
		if t == term {
			return i
		}
	}
	return len(gram.ErrorTokens)
}

func (b *lrTableBuilder) writeShiftAction(state stateNum, term *Terminal, nextState stateNum) {
	cell := b.readCell(state, term)
	if cell.kind == ActionReduce {
		act, method := b.resolveSRConflict(term, productionNum(cell.target))
		b.conflicts = append(b.conflicts, &Conflict{
			State:       state.Int(),
			Terminal:    term,
			Kind:        ConflictShiftReduce,
			ShiftTarget: nextState.Int(),
			Rules:       []int{cell.target},
			Chosen:      b.chosen(term, act, nextState.Int(), cell.target),
			ResolvedBy:  method,
		})
		if act == ActionReduce {
			return
		}
	}
	b.writeCell(state, term, tableCell{
		kind:   ActionShift,
		target: nextState.Int(),
	})
}

// writeReduceAction writes a reduction. Reducing the augmented start rule is written as acceptance.
func (b *lrTableBuilder) writeReduceAction(state stateNum, term *Terminal, prod productionNum) {
	kind := ActionReduce
	if prod == productionNumStart {
		kind = ActionAccept
	}

	cell := b.readCell(state, term)
	switch cell.kind {
	case ActionReduce, ActionAccept:
		if productionNum(cell.target) == prod {
			return
		}

		winner := productionNum(cell.target)
		if prod < winner {
			winner = prod
		}
		winnerKind := ActionReduce
		if winner == productionNumStart {
			winnerKind = ActionAccept
		}
		b.conflicts = append(b.conflicts, &Conflict{
			State:      state.Int(),
			Terminal:   term,
			Kind:       ConflictReduceReduce,
			Rules:      []int{cell.target, prod.Int()},
			Chosen:     b.chosen(term, winnerKind, 0, winner.Int()),
			ResolvedBy: ResolvedByProdOrder,
		})
		b.writeCell(state, term, tableCell{
			kind:   winnerKind,
			target: winner.Int(),
		})
	case ActionShift:
		act, method := b.resolveSRConflict(term, prod)
		b.conflicts = append(b.conflicts, &Conflict{
			State:       state.Int(),
			Terminal:    term,
			Kind:        ConflictShiftReduce,
			ShiftTarget: cell.target,
			Rules:       []int{prod.Int()},
			Chosen:      b.chosen(term, act, cell.target, prod.Int()),
			ResolvedBy:  method,
		})
		if act == ActionReduce {
			b.writeCell(state, term, tableCell{
				kind:   kind,
				target: prod.Int(),
			})
		}
	default:
		b.writeCell(state, term, tableCell{
			kind:   kind,
			target: prod.Int(),
		})
	}
}

func (b *lrTableBuilder) chosen(term *Terminal, kind ActionKind, shiftTarget, rule int) *Action {
	if kind == ActionShift {
		return &Action{
			Terminal: term,
			Kind:     ActionShift,
			Target:   shiftTarget,
		}
	}
	if rule == productionNumStart.Int() {
		kind = ActionAccept
	}
	return &Action{
		Terminal: term,
		Kind:     kind,
		Target:   rule,
	}
}

// resolveSRConflict reduces only when both sides have a precedence, the rule's level is less than or
// equal to the terminal's, and the terminal is left-associative.
func (b *lrTableBuilder) resolveSRConflict(term *Terminal, prod productionNum) (ActionKind, conflictResolutionMethod) {
	symPrec := term.Precedence
	prodPrec := b.gram.Rules[prod].Precedence
	if symPrec == precNil || prodPrec == precNil {
		return ActionShift, ResolvedByShift
	}

	method := ResolvedByPrec
	if symPrec == prodPrec {
		method = ResolvedByAssoc
	}
	if prodPrec <= symPrec && term.Assoc == AssocLeft {
		return ActionReduce, method
	}
	return ActionShift, method
}
