package grammar

import (
	"fmt"
	"io"
	"strings"
)

type Algorithm string

const (
	AlgorithmSLR  = Algorithm("SLR")
	AlgorithmLALR = Algorithm("LALR")
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "s", "slr":
		return AlgorithmSLR, nil
	case "l", "lalr":
		return AlgorithmLALR, nil
	}
	return "", fmt.Errorf("unknown algorithm: %v", s)
}

type Automaton struct {
	Grammar   *Grammar
	Algorithm Algorithm
	States    []*State
	Conflicts []*Conflict
}

// Build constructs the automaton of a grammar. The result depends only on the grammar and the
// algorithm, so building the same grammar twice yields identical states.
func Build(gram *Grammar, alg Algorithm) (*Automaton, error) {
	if gram.AugmentedStart == nil || len(gram.Rules) == 0 {
		return nil, fmt.Errorf("the grammar has no augmented start rule")
	}
	if !gram.derivesTerminalString(gram.Start) {
		return nil, semErrEmptyLanguage
	}

	lr0, err := genLR0Automaton(gram.prods, gram.AugmentedStart.Symbol)
	if err != nil {
		return nil, err
	}

	switch alg {
	case AlgorithmSLR:
		first, err := genFirstSet(gram.prods)
		if err != nil {
			return nil, err
		}
		follow, err := genFollowSet(gram.prods, first)
		if err != nil {
			return nil, err
		}
		_, err = genSLR1Automaton(lr0, gram.prods, follow)
		if err != nil {
			return nil, err
		}
	case AlgorithmLALR:
		first, err := genFirstSet(gram.prods)
		if err != nil {
			return nil, err
		}
		_, err = genLALR1Automaton(lr0, gram.prods, first)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown algorithm: %v", alg)
	}

	b := newLRTableBuilder(lr0, gram)
	states, err := b.build()
	if err != nil {
		return nil, err
	}

	a := &Automaton{
		Grammar:   gram,
		Algorithm: alg,
		States:    states,
		Conflicts: b.conflicts,
	}

	tracer().Infof("%v automaton: %d states, %d conflicts", alg, len(a.States), len(a.Conflicts))
	for _, c := range a.Conflicts {
		tracer().Debugf("%v", c)
	}

	return a, nil
}

// derivesTerminalString reports whether a non-terminal derives at least one string of terminals.
func (g *Grammar) derivesTerminalString(nonTerm *NonTerminal) bool {
	productive := map[string]bool{}
	for {
		changed := false
		for _, r := range g.Rules {
			if productive[r.LHS.Name] {
				continue
			}
			ok := true
			for _, sym := range r.RHS {
				if sym.IsTerminal() {
					continue
				}
				if !productive[g.SymbolName(sym)] {
					ok = false
					break
				}
			}
			if ok {
				productive[r.LHS.Name] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return productive[nonTerm.Name]
}

func (a *Automaton) ActionCount() int {
	n := 0
	for _, s := range a.States {
		n += len(s.Actions)
	}
	return n
}

func (a *Automaton) GoToCount() int {
	n := 0
	for _, s := range a.States {
		n += len(s.GoTos)
	}
	return n
}

func (a *Automaton) RecoveryCount() int {
	n := 0
	for _, s := range a.States {
		n += len(s.Recoveries)
	}
	return n
}

// Describe writes a human-readable dump of the states.
func (a *Automaton) Describe(w io.Writer) {
	g := a.Grammar
	conflicts := map[int][]*Conflict{}
	for _, c := range a.Conflicts {
		conflicts[c.State] = append(conflicts[c.State], c)
	}

	for _, s := range a.States {
		fmt.Fprintf(w, "state %v\n", s.Num)
		for _, item := range s.Kernel {
			fmt.Fprintf(w, "    %v", g.RuleString(item.Rule, item.Dot))
			if len(item.LookAhead) > 0 {
				names := make([]string, len(item.LookAhead))
				for i, t := range item.LookAhead {
					names[i] = t.Name
				}
				fmt.Fprintf(w, "    [%v]", strings.Join(names, ", "))
			}
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, "\n")
		for _, act := range s.Actions {
			fmt.Fprintf(w, "    %-16v %v\n", act.Terminal.Name, act)
		}
		for _, act := range s.Recoveries {
			fmt.Fprintf(w, "    %-16v recover %v\n", act.Terminal.Name, act.Target)
		}
		for _, goTo := range s.GoTos {
			fmt.Fprintf(w, "    %-16v goto %v\n", goTo.NonTerminal.Name, goTo.Target)
		}
		for _, c := range conflicts[s.Num] {
			fmt.Fprintf(w, "    %v\n", c)
		}
		fmt.Fprintf(w, "\n")
	}
}
