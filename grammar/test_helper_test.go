package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/syntax/grammar/symbol"
)

type testGrammarOption func(b *Builder)

func withPrecedence(assoc Assoc, syms ...string) testGrammarOption {
	return func(b *Builder) {
		b.Precedence(&PrecedenceDecl{
			Assoc:   assoc,
			Symbols: syms,
		})
	}
}

func withErrorToken(name string) testGrammarOption {
	return func(b *Builder) {
		b.ErrorToken(name, 0)
	}
}

func withStart(name string) testGrammarOption {
	return func(b *Builder) {
		b.Start(name, 0)
	}
}

func withRulePrec(rule int, term string) testGrammarOption {
	return func(b *Builder) {
		b.rules[rule-1].Prec = term
	}
}

func withRuleMessage(rule int, msg string) testGrammarOption {
	return func(b *Builder) {
		b.rules[rule-1].Message = msg
	}
}

// genTestGrammar builds a grammar from terminal names and rules written like `expr: expr + term`.
// The options run after all rules are declared.
func genTestGrammar(t *testing.T, terms []string, rules []string, opts ...testGrammarOption) *Grammar {
	t.Helper()

	b := NewBuilder("test")
	for _, term := range terms {
		b.Terminal(&TerminalDecl{
			Name: term,
		})
	}
	for i, r := range rules {
		lhsAndRHS := strings.SplitN(r, ":", 2)
		if len(lhsAndRHS) != 2 {
			t.Fatalf("invalid test rule: %v", r)
		}
		b.Rule(&RuleDecl{
			LHS: strings.TrimSpace(lhsAndRHS[0]),
			RHS: strings.Fields(lhsAndRHS[1]),
			Row: i + 1,
		})
	}
	for _, opt := range opts {
		opt(b)
	}

	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, gram *Grammar) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := gram.symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

// newTestProductionGenerator looks productions up in the grammar so that they carry their rule indexes.
func newTestProductionGenerator(t *testing.T, gram *Grammar, genSym testSymbolGenerator) testProductionGenerator {
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		prod, ok := gram.prods.findByID(genProductionID(genSym(lhs), rhsSym))
		if !ok {
			t.Fatalf("production was not found: %v → %v", lhs, rhs)
		}

		return prod
	}
}

type testLR0ItemGenerator func(lhs string, dot int, rhs ...string) *lrItem

func newTestLR0ItemGenerator(t *testing.T, genProd testProductionGenerator) testLR0ItemGenerator {
	return func(lhs string, dot int, rhs ...string) *lrItem {
		t.Helper()

		prod := genProd(lhs, rhs...)
		item, err := newLR0Item(prod, dot)
		if err != nil {
			t.Fatalf("failed to create a LR0 item: %v", err)
		}

		return item
	}
}

// findState returns the first state whose kernel contains the item of the rule with the dot.
func findState(t *testing.T, a *Automaton, rule, dot int) *State {
	t.Helper()

	for _, s := range a.States {
		for _, item := range s.Kernel {
			if item.Rule.Index == rule && item.Dot == dot {
				return s
			}
		}
	}
	t.Fatalf("a state having the kernel item was not found; rule: %v, dot: %v", rule, dot)
	return nil
}

func findTerminal(t *testing.T, gram *Grammar, name string) *Terminal {
	t.Helper()

	term, ok := gram.TerminalByName(name)
	if !ok {
		t.Fatalf("terminal was not found: %v", name)
	}
	return term
}

func withLookAhead(item *lrItem, lookAhead ...symbol.Symbol) *lrItem {
	item.addLookAhead(lookAhead...)
	return item
}

func genExprGrammar(t *testing.T, opts ...testGrammarOption) *Grammar {
	return genTestGrammar(t,
		[]string{"+", "*", "(", ")", "id"},
		[]string{
			"expr: expr + term",
			"expr: term",
			"term: term * factor",
			"term: factor",
			"factor: ( expr )",
			"factor: id",
		},
		opts...,
	)
}

// genLALRClassGrammar returns a grammar that is LALR(1) but not SLR(1).
func genLALRClassGrammar(t *testing.T) *Grammar {
	return genTestGrammar(t,
		[]string{"eq", "ref", "id"},
		[]string{
			"S: L eq R",
			"S: R",
			"L: ref R",
			"L: id",
			"R: L",
		},
	)
}
