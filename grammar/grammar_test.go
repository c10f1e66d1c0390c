package grammar

import (
	"testing"

	verr "github.com/nihei9/syntax/error"
)

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("calc")
	b.Type("num", "int", 1)
	b.Terminal(&TerminalDecl{Name: "plus", Literal: "+", Row: 2})
	b.Terminal(&TerminalDecl{Name: "num", Pattern: "[0-9]+", Type: "num", Row: 3})
	b.Terminal(&TerminalDecl{Name: "semi", Literal: ";", Code: 300, Row: 4})
	b.Terminal(&TerminalDecl{Name: "ws", Pattern: "[ \t]+", Skip: true, Row: 5})
	b.NonTerminal("expr", "num", 6)
	b.Precedence(&PrecedenceDecl{Assoc: AssocLeft, Symbols: []string{"plus"}, Row: 7})
	b.ErrorToken("error", 8)
	b.Rule(&RuleDecl{LHS: "stmt", RHS: []string{"expr", "semi"}, Row: 9})
	b.Rule(&RuleDecl{LHS: "stmt", RHS: []string{"error", "semi"}, Row: 10})
	b.Rule(&RuleDecl{LHS: "expr", RHS: []string{"expr", "plus", "expr"}, Action: "{ $$ = $1 + $3; }", ActionRow: 11, Row: 11})
	b.Rule(&RuleDecl{LHS: "expr", RHS: []string{"num"}, Message: "number expected", Row: 12})
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if gram.Start.Name != "stmt" || gram.AugmentedStart.Name != "stmt'" {
		t.Errorf("unexpected start symbols: %v, %v", gram.Start.Name, gram.AugmentedStart.Name)
	}
	if gram.AugmentedStart.Index != -1 {
		t.Errorf("the augmented start symbol must have no index: %v", gram.AugmentedStart.Index)
	}

	expectedTerms := []struct {
		name  string
		index int
		code  int
		prec  int
		assoc Assoc
	}{
		{name: "$end", index: 0, code: 0, assoc: AssocNone},
		{name: "plus", index: 1, code: '+', prec: 10, assoc: AssocLeft},
		{name: "num", index: 2, code: 257, assoc: AssocNone},
		{name: "semi", index: 3, code: 300, assoc: AssocNone},
		{name: "ws", index: 4, code: 258, assoc: AssocNone},
		{name: "error", index: 5, code: 256, assoc: AssocNone},
	}
	if len(gram.Terminals) != len(expectedTerms) {
		t.Fatalf("unexpected terminal count; want: %v, got: %v", len(expectedTerms), len(gram.Terminals))
	}
	for i, e := range expectedTerms {
		term := gram.Terminals[i]
		if term.Name != e.name || term.Index != e.index || term.Code != e.code || term.Precedence != e.prec || term.Assoc != e.assoc {
			t.Errorf("unexpected terminal; want: %+v, got: %+v", e, term)
		}
	}
	if num, _ := gram.TerminalByName("num"); num.Type == nil || num.Type.Expression != "int" {
		t.Errorf("num must be typed")
	}
	if len(gram.ErrorTokens) != 1 || gram.ErrorTokens[0].Name != "error" {
		t.Errorf("unexpected error tokens: %v", gram.ErrorTokens)
	}

	expectedNonTerms := []string{"expr", "stmt"}
	if len(gram.NonTerminals) != len(expectedNonTerms) {
		t.Fatalf("unexpected non-terminal count; want: %v, got: %v", len(expectedNonTerms), len(gram.NonTerminals))
	}
	for i, name := range expectedNonTerms {
		if gram.NonTerminals[i].Name != name || gram.NonTerminals[i].Index != i {
			t.Errorf("unexpected non-terminal; want: %v (%v), got: %v (%v)", name, i, gram.NonTerminals[i].Name, gram.NonTerminals[i].Index)
		}
	}

	expectedRules := []struct {
		text string
		prec int
		msg  int
	}{
		{text: "stmt' → stmt", msg: -1},
		{text: "stmt → expr semi", msg: -1},
		{text: "stmt → error semi", msg: -1},
		{text: "expr → expr plus expr", prec: 10, msg: -1},
		{text: "expr → num", msg: 0},
	}
	if len(gram.Rules) != len(expectedRules) {
		t.Fatalf("unexpected rule count; want: %v, got: %v", len(expectedRules), len(gram.Rules))
	}
	for i, e := range expectedRules {
		r := gram.Rules[i]
		if r.Index != i {
			t.Errorf("unexpected rule index; want: %v, got: %v", i, r.Index)
		}
		if text := gram.RuleString(r, -1); text != e.text {
			t.Errorf("unexpected rule; want: %v, got: %v", e.text, text)
		}
		if r.Precedence != e.prec || r.Message != e.msg {
			t.Errorf("unexpected rule attributes; rule: %v, precedence: %v, message: %v", e.text, r.Precedence, r.Message)
		}
	}
	if !gram.Rules[0].IsAugmented() || gram.Rules[1].IsAugmented() {
		t.Errorf("only rule 0 is the augmented rule")
	}
	if gram.Rules[3].Action != "{ $$ = $1 + $3; }" || gram.Rules[3].ActionRow != 11 {
		t.Errorf("unexpected action: %v", gram.Rules[3].Action)
	}
	if len(gram.Messages) != 1 || gram.Messages[0] != "number expected" {
		t.Errorf("unexpected messages: %v", gram.Messages)
	}
	if typ := gram.SymbolType(gram.Rules[3].RHS[0]); typ == nil || typ.Name != "num" {
		t.Errorf("expr must be typed: %v", typ)
	}
}

func TestBuilder_BuildErrors(t *testing.T) {
	tests := []struct {
		caption string
		build   func(b *Builder)
		causes  []error
	}{
		{
			caption: "a grammar without rules",
			build:   func(b *Builder) {},
			causes:  []error{semErrNoProduction},
		},
		{
			caption: "an undefined symbol on the right-hand side",
			build: func(b *Builder) {
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 1})
			},
			causes: []error{semErrUndefinedSym, semErrNoProductionForNonTerm},
		},
		{
			caption: "a duplicate terminal",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Row: 1})
				b.Terminal(&TerminalDecl{Name: "x", Row: 2})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 3})
			},
			causes: []error{semErrDuplicateTerminal},
		},
		{
			caption: "a duplicate token code",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Code: 300, Row: 1})
				b.Terminal(&TerminalDecl{Name: "y", Code: 300, Row: 2})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x", "y"}, Row: 3})
			},
			causes: []error{semErrDuplicateCode},
		},
		{
			caption: "an undefined type",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Type: "t", Row: 1})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 2})
			},
			causes: []error{semErrUndefinedType},
		},
		{
			caption: "a duplicate production",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Row: 1})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 2})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 3})
			},
			causes: []error{semErrDuplicateProduction},
		},
		{
			caption: "a terminal on the left-hand side",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Row: 1})
				b.Rule(&RuleDecl{LHS: "x", RHS: []string{"x"}, Row: 2})
			},
			causes: []error{semErrLHSIsTerminal, semErrStartIsTerminal},
		},
		{
			caption: "an unreachable non-terminal",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Row: 1})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 2})
				b.Rule(&RuleDecl{LHS: "t", RHS: []string{"x"}, Row: 3})
			},
			causes: []error{semErrUnusedProduction},
		},
		{
			caption: "a precedence override naming a terminal without precedence",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Row: 1})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Prec: "x", Row: 2})
			},
			causes: []error{semErrUndefinedPrecSym, semErrNoProductionForNonTerm},
		},
		{
			caption: "a skipped terminal used in a rule",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "ws", Skip: true, Row: 1})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"ws"}, Row: 2})
			},
			causes: []error{semErrTermCannotBeSkipped, semErrNoProductionForNonTerm},
		},
		{
			caption: "a terminal declared in two precedence groups",
			build: func(b *Builder) {
				b.Terminal(&TerminalDecl{Name: "x", Row: 1})
				b.Precedence(&PrecedenceDecl{Assoc: AssocLeft, Symbols: []string{"x"}, Row: 2})
				b.Precedence(&PrecedenceDecl{Assoc: AssocRight, Symbols: []string{"x"}, Row: 3})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 4})
			},
			causes: []error{semErrDuplicatePrec},
		},
		{
			caption: "a start symbol that is a terminal",
			build: func(b *Builder) {
				b.Start("x", 1)
				b.Terminal(&TerminalDecl{Name: "x", Row: 2})
				b.Rule(&RuleDecl{LHS: "s", RHS: []string{"x"}, Row: 3})
			},
			causes: []error{semErrStartIsTerminal},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			b := NewBuilder("test")
			tt.build(b)
			_, err := b.Build()
			if err == nil {
				t.Fatalf("an error was expected")
			}
			errs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type: %T", err)
			}
			if len(errs) != len(tt.causes) {
				t.Fatalf("unexpected error count; want: %v, got: %v\n%v", len(tt.causes), len(errs), errs)
			}
			for i, cause := range tt.causes {
				if errs[i].Cause != cause {
					t.Errorf("unexpected cause; want: %v, got: %v", cause, errs[i].Cause)
				}
			}
		})
	}
}

func TestParseAssoc(t *testing.T) {
	for _, tt := range []struct {
		src   string
		assoc Assoc
		err   bool
	}{
		{src: "left", assoc: AssocLeft},
		{src: "R", assoc: AssocRight},
		{src: "nonassoc", assoc: AssocNone},
		{src: "up", err: true},
	} {
		assoc, err := ParseAssoc(tt.src)
		if tt.err {
			if err == nil {
				t.Errorf("an error was expected: %v", tt.src)
			}
			continue
		}
		if err != nil || assoc != tt.assoc {
			t.Errorf("unexpected associativity; want: %v, got: %v (%v)", tt.assoc, assoc, err)
		}
	}
}
