package grammar

import (
	"testing"

	"github.com/nihei9/syntax/grammar/symbol"
)

type follow struct {
	nonTerm string
	symbols []string
	eof     bool
}

func TestFollowSet(t *testing.T) {
	tests := []struct {
		caption string
		terms   []string
		rules   []string
		follow  []follow
	}{
		{
			caption: "productions contain only non-empty productions",
			terms:   []string{"+", "*", "(", ")", "id"},
			rules: []string{
				"expr: expr + term",
				"expr: term",
				"term: term * factor",
				"term: factor",
				"factor: ( expr )",
				"factor: id",
			},
			follow: []follow{
				{nonTerm: "expr'", eof: true},
				{nonTerm: "expr", symbols: []string{"+", ")"}, eof: true},
				{nonTerm: "term", symbols: []string{"+", "*", ")"}, eof: true},
				{nonTerm: "factor", symbols: []string{"+", "*", ")"}, eof: true},
			},
		},
		{
			caption: "productions contain an empty start production",
			terms:   []string{"x"},
			rules: []string{
				"s:",
			},
			follow: []follow{
				{nonTerm: "s'", eof: true},
				{nonTerm: "s", eof: true},
			},
		},
		{
			caption: "FOLLOW of a nullable suffix includes FOLLOW of the left-hand side",
			terms:   []string{"x", "y", "z"},
			rules: []string{
				"s: a b z",
				"s: a b",
				"a: x",
				"b:",
				"b: y",
			},
			follow: []follow{
				{nonTerm: "s", eof: true},
				{nonTerm: "a", symbols: []string{"y", "z"}, eof: true},
				{nonTerm: "b", symbols: []string{"z"}, eof: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram := genTestGrammar(t, tt.terms, tt.rules)
			fst, err := genFirstSet(gram.prods)
			if err != nil {
				t.Fatal(err)
			}
			flw, err := genFollowSet(gram.prods, fst)
			if err != nil {
				t.Fatal(err)
			}

			genSym := newTestSymbolGenerator(t, gram)
			for _, ttFollow := range tt.follow {
				actual, err := flw.find(genSym(ttFollow.nonTerm))
				if err != nil {
					t.Fatalf("failed to get a FOLLOW entry; non-terminal symbol: %v, error: %v", ttFollow.nonTerm, err)
				}

				expected := newFollowEntry()
				for _, name := range ttFollow.symbols {
					expected.add(genSym(name))
				}
				if ttFollow.eof {
					expected.add(symbol.SymbolEOF)
				}

				testFollow(t, actual, expected)
			}
		})
	}
}

func testFollow(t *testing.T, actual, expected *followEntry) {
	t.Helper()

	if actual.symbols.len() != expected.symbols.len() {
		t.Fatalf("unexpected symbols\nwant: %v\ngot: %v", expected.symbols.symbols(), actual.symbols.symbols())
	}

	for _, eSym := range expected.symbols.symbols() {
		if !actual.symbols.contains(eSym) {
			t.Fatalf("invalid FOLLOW set\nwant: %v\ngot: %v", expected.symbols.symbols(), actual.symbols.symbols())
		}
	}
}
