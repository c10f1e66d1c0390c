package driver

import (
	"strings"
	"testing"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genGrammar builds
//
//	stmts : stmts stmt | stmt ;
//	stmt  : expr semi | error semi ;
//	expr  : expr plus num | num ;
func genGrammar(t *testing.T, numPattern string) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder("stmts")
	b.Terminal(&grammar.TerminalDecl{Name: "num", Pattern: numPattern})
	b.Terminal(&grammar.TerminalDecl{Name: "ws", Pattern: "[ \t\n]+", Skip: true})
	b.Terminal(&grammar.TerminalDecl{Name: "plus", Literal: "+"})
	b.Terminal(&grammar.TerminalDecl{Name: "semi", Literal: ";"})
	b.ErrorToken("error", 1)
	b.Rule(&grammar.RuleDecl{LHS: "stmts", RHS: []string{"stmts", "stmt"}, Row: 2})
	b.Rule(&grammar.RuleDecl{LHS: "stmts", RHS: []string{"stmt"}, Row: 3})
	b.Rule(&grammar.RuleDecl{LHS: "stmt", RHS: []string{"expr", "semi"}, Row: 4})
	b.Rule(&grammar.RuleDecl{LHS: "stmt", RHS: []string{"error", "semi"}, Row: 5})
	b.Rule(&grammar.RuleDecl{LHS: "expr", RHS: []string{"expr", "plus", "num"}, Row: 6, Message: "a number is expected"})
	b.Rule(&grammar.RuleDecl{LHS: "expr", RHS: []string{"num"}, Row: 7})
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

type parseResult struct {
	parser *Parser
	cst    *Node
}

func parse(t *testing.T, a *grammar.Automaton, mode compressor.Mode, src string) *parseResult {
	t.Helper()

	tab, err := compressor.Pack(a, mode)
	require.NoError(t, err)
	lex, err := CompileLexSpec(a.Grammar)
	require.NoError(t, err)
	toks, err := NewTokenStream(lex, strings.NewReader(src))
	require.NoError(t, err)
	semAct := NewSyntaxTreeActionSet(a.Grammar)
	p, err := NewParser(a, tab, toks, SemanticAction(semAct))
	require.NoError(t, err)
	require.NoError(t, p.Parse())
	return &parseResult{
		parser: p,
		cst:    semAct.CST(),
	}
}

func TestParser_Parse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "syntax.driver")
	defer teardown()

	tests := []struct {
		caption  string
		src      string
		accepted bool
		errCount int
		tree     string
	}{
		{
			caption:  "a statement",
			src:      "1 + 2;",
			accepted: true,
			tree: `stmts
└─ stmt
   ├─ expr
   │  ├─ expr
   │  │  └─ num "1"
   │  ├─ plus "+"
   │  └─ num "2"
   └─ semi ";"
`,
		},
		{
			caption:  "the parser recovers by shifting the error token",
			src:      "1+;2;",
			accepted: true,
			errCount: 1,
			tree: `stmts
├─ stmts
│  └─ stmt
│     ├─ !error
│     └─ semi ";"
└─ stmt
   ├─ expr
   │  └─ num "2"
   └─ semi ";"
`,
		},
		{
			caption:  "an invalid token is a syntax error",
			src:      "1 # ;",
			accepted: true,
			errCount: 1,
		},
		{
			caption:  "the parser gives up when the input ends while recovering",
			src:      "+",
			errCount: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			for _, alg := range []grammar.Algorithm{grammar.AlgorithmSLR, grammar.AlgorithmLALR} {
				a, err := grammar.Build(genGrammar(t, "[0-9]+"), alg)
				require.NoError(t, err)

				packed := parse(t, a, compressor.ModePacked, tt.src)
				tabular := parse(t, a, compressor.ModeTabular, tt.src)

				for _, r := range []*parseResult{packed, tabular} {
					assert.Equal(t, tt.accepted, r.parser.Accepted(), "%v", alg)
					assert.Len(t, r.parser.SyntaxErrors(), tt.errCount, "%v", alg)
					if tt.tree != "" {
						var b strings.Builder
						PrintTree(&b, r.cst)
						assert.Equal(t, tt.tree, b.String(), "%v", alg)
					}
				}
				assert.Equal(t, packed.parser.Decisions(), tabular.parser.Decisions(), "both tables take the same decisions (%v)", alg)
			}
		})
	}
}

func TestParser_Decisions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "syntax.driver")
	defer teardown()

	a, err := grammar.Build(genGrammar(t, "[0-9]+"), grammar.AlgorithmLALR)
	require.NoError(t, err)
	r := parse(t, a, compressor.ModePacked, "1;")

	var kinds []DecisionKind
	var reductions []int
	for _, d := range r.parser.Decisions() {
		kinds = append(kinds, d.Kind)
		if d.Kind == DecisionReduce {
			reductions = append(reductions, d.Target)
		}
	}
	assert.Equal(t, []DecisionKind{
		DecisionShift,
		DecisionReduce,
		DecisionGoTo,
		DecisionShift,
		DecisionReduce,
		DecisionGoTo,
		DecisionReduce,
		DecisionGoTo,
		DecisionAccept,
	}, kinds)
	assert.Equal(t, []int{6, 3, 2}, reductions)

	decisions := r.parser.Decisions()
	assert.Equal(t, 0, decisions[0].State)
	assert.Equal(t, "num", decisions[0].Terminal)
	assert.Equal(t, "$end", decisions[len(decisions)-1].Terminal)
}

func TestParser_SyntaxErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "syntax.driver")
	defer teardown()

	a, err := grammar.Build(genGrammar(t, "[0-9]+"), grammar.AlgorithmLALR)
	require.NoError(t, err)
	r := parse(t, a, compressor.ModeTabular, "1+;\n2+;")

	synErrs := r.parser.SyntaxErrors()
	require.Len(t, synErrs, 2)
	assert.Equal(t, 1, synErrs[0].Row)
	assert.Equal(t, 3, synErrs[0].Col)
	assert.Equal(t, 2, synErrs[1].Row)
	assert.Equal(t, 3, synErrs[1].Col)
	for _, e := range synErrs {
		assert.Equal(t, "a number is expected", e.Message)
		assert.Equal(t, []string{"num"}, e.ExpectedTerminals)
		assert.Equal(t, ";", string(e.Token.Lexeme()))
	}

	var recoveries int
	for _, d := range r.parser.Decisions() {
		if d.Kind == DecisionRecover {
			assert.Equal(t, "error", d.Terminal)
			recoveries++
		}
	}
	assert.Equal(t, 2, recoveries)
}

func TestNewParser(t *testing.T) {
	g := genGrammar(t, "[0-9]+")
	slr, err := grammar.Build(g, grammar.AlgorithmSLR)
	require.NoError(t, err)
	tab, err := compressor.Pack(slr, compressor.ModeTabular)
	require.NoError(t, err)

	other := &grammar.Automaton{
		Grammar: g,
		States:  slr.States[:1],
	}
	_, err = NewParser(other, tab, nil)
	assert.Error(t, err)
}
