package generator

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/config"
	verr "github.com/nihei9/syntax/error"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/language"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grammarDecl struct {
	actions  []string
	lexer    []*grammar.LexerAction
	trailer  string
	conflict bool
}

func genAutomaton(t *testing.T, decl *grammarDecl) *grammar.Automaton {
	t.Helper()

	b := grammar.NewBuilder("calc")
	b.Declarations("/* user declarations */")
	b.Trailer(decl.trailer, 40)
	b.Type("num", "int", 1)
	b.Terminal(&grammar.TerminalDecl{Name: "plus", Literal: "+"})
	b.Terminal(&grammar.TerminalDecl{Name: "num", Pattern: "[0-9]+", Type: "num"})
	b.NonTerminal("expr", "num", 2)
	if !decl.conflict {
		b.Precedence(&grammar.PrecedenceDecl{Assoc: grammar.AssocLeft, Symbols: []string{"plus"}})
	}
	b.ErrorToken("error", 3)
	b.Rule(&grammar.RuleDecl{LHS: "expr", RHS: []string{"expr", "plus", "expr"}, Action: decl.actions[0], ActionRow: 10, Row: 10})
	b.Rule(&grammar.RuleDecl{LHS: "expr", RHS: []string{"num"}, Action: decl.actions[1], ActionRow: 11, Row: 11})
	b.Rule(&grammar.RuleDecl{LHS: "expr", RHS: []string{"error"}, Row: 12, Message: "an expression is expected"})
	for _, act := range decl.lexer {
		b.LexerAction(act.Mode, act.Action, act.Row)
	}
	g, err := b.Build()
	require.NoError(t, err)
	a, err := grammar.Build(g, grammar.AlgorithmLALR)
	require.NoError(t, err)
	return a
}

type runOpts struct {
	lang      language.ID
	mode      compressor.Mode
	include   bool
	noLine    bool
	skeletons fstest.MapFS
}

type outputs struct {
	output  strings.Builder
	include strings.Builder
	report  strings.Builder
}

func newRun(t *testing.T, a *grammar.Automaton, opts runOpts, out *outputs) *Run {
	t.Helper()

	cfg := config.New()
	cfg.Source = "testdata/calc.toml"
	cfg.Language = opts.lang
	cfg.Packing = opts.mode
	cfg.EmitLineDirectives = !opts.noLine
	cfg.GenerateIncludeFile = &opts.include
	require.NoError(t, cfg.Validate())

	tab, err := compressor.Pack(a, opts.mode)
	require.NoError(t, err)

	backendOpts := &language.Options{
		Name:           a.Grammar.Name,
		LineDirectives: cfg.EmitLineDirectives,
	}
	var b language.Backend
	b, err = language.New(opts.lang, backendOpts)
	require.NoError(t, err)
	run := &Run{
		Config:    cfg,
		Automaton: a,
		Table:     tab,
		Backend:   b,
		Skeletons: language.Skeletons(),
		Output:    &out.output,
		Report:    &out.report,
	}
	if opts.skeletons != nil {
		run.Skeletons = opts.skeletons
	}
	if opts.include {
		backendOpts.IncludeName = cfg.IncludePath(b)
		run.Include = &out.include
	}
	return run
}

func TestRun_Execute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "syntax.generator")
	defer teardown()

	tests := []struct {
		caption  string
		decl     *grammarDecl
		opts     runOpts
		output   []string
		order    []string
		excludes []string
		include  []string
	}{
		{
			caption: "C with a packed table and an include file",
			decl: &grammarDecl{
				actions: []string{"{ $$ = $1 + $3; }", "{\n  $$ = $1;\n}"},
				trailer: "int main() { return StxParse(); }\n",
			},
			opts: runOpts{
				lang:    language.IDC,
				mode:    compressor.ModePacked,
				include: true,
			},
			output: []string{
				"#include \"calc.h\"",
				"/* user declarations */",
				"#line 10 \"testdata/calc.toml\"",
				"    StxStack[pStxStack-2].num = StxStack[pStxStack-2].num + StxStack[pStxStack].num;",
				"    StxStack[pStxStack].num = StxStack[pStxStack].num;",
				"#line 40 \"testdata/calc.toml\"\nint main() { return StxParse(); }\n",
			},
			order: []string{
				"int StxCode(int rule)",
				"TStxAction StxActionTable",
				"TStxGoto StxGotoTable",
				"TStxParsingTable StxParsingTable",
				"char * StxErrorTable[]",
				"int StxRecoverTable[]",
				"TStxGrammarTable StxGrammarTable",
				"int StxRecover(void)",
				"int main()",
			},
			excludes: []string{
				"#define PLUS 43",
				"StxParsingError",
			},
			include: []string{
				"#define PLUS 43",
				"typedef union {",
			},
		},
		{
			caption: "C with a tabular table and no line directives",
			decl: &grammarDecl{
				actions: []string{"{ $$ = $1 + $3; }", ""},
			},
			opts: runOpts{
				lang:   language.IDC,
				mode:   compressor.ModeTabular,
				noLine: true,
			},
			output: []string{
				"#define PLUS 43",
				"int StxParsingTable[STATES][TOKENS+NON_TERMINALS]",
			},
			excludes: []string{
				"#line",
				"#include \"calc.h\"",
				"/* expr → num */",
			},
		},
		{
			caption: "Java with lexer actions",
			decl: &grammarDecl{
				actions: []string{"{ $$ = $1 + $3; }", "{ $$ = $1; }"},
				lexer: []*grammar.LexerAction{
					{Mode: "default", Action: "{ $v = $c; }", Row: 20},
					{Mode: "string", Action: "{ $+; }", Row: 21},
					{Mode: "default", Action: "{ return 0; }", Row: 22},
				},
			},
			opts: runOpts{
				lang: language.IDJava,
				mode: compressor.ModeTabular,
			},
			output: []string{
				"class Calc {",
				"      stack[stackTop-2] = ((int) stack[stackTop-2]) + ((int) stack[stackTop]);",
				"protected static final int LEXER_MODE_DEFAULT = 0;",
				"protected static final int LEXER_MODE_STRING = 1;",
				"    lexicalValue = currentChar;\n    return 0;\n",
				"    getNextCharacter();",
			},
			order: []string{
				"private boolean ruleAction(int rule)",
				"protected int lexerDefault()",
				"protected int lexerString()",
				"protected int lexer()",
				"private static final int[][] parsingTable",
				"public int parse()",
			},
			excludes: []string{
				"#line",
			},
		},
		{
			caption: "Pascal with a missing skeleton",
			decl: &grammarDecl{
				actions: []string{"{ $$ := $1 + $3; }", ""},
				trailer: "begin\nend.",
			},
			opts: runOpts{
				lang:      language.IDPascal,
				mode:      compressor.ModePacked,
				skeletons: fstest.MapFS{},
			},
			output: []string{
				"function StxCode(rule: integer): boolean;",
				"      StxStack[pStxStack-2].num := StxStack[pStxStack-2].num + StxStack[pStxStack].num;",
				"(* The skeleton parser/packed/packed.pas was not found. Only the tables were generated. *)\nbegin\nend.\n",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			a := genAutomaton(t, tt.decl)
			var out outputs
			run := newRun(t, a, tt.opts, &out)
			sum, err := run.Execute()
			require.NoError(t, err)

			text := out.output.String()
			for _, s := range tt.output {
				assert.Contains(t, text, s)
			}
			pos := -1
			for _, s := range tt.order {
				i := strings.Index(text, s)
				if !assert.True(t, i > pos, "%v is out of order", s) {
					break
				}
				pos = i
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, text, s)
			}
			for _, s := range tt.include {
				assert.Contains(t, out.include.String(), s)
			}
			if !tt.opts.include {
				assert.Empty(t, out.include.String())
			}

			assert.Equal(t, len(a.States), sum.States)
			assert.Equal(t, 4, sum.Tokens)
			assert.Equal(t, 4, sum.Rules)
			assert.Equal(t, 1, sum.Errors)
			assert.Contains(t, out.report.String(), "Non Terminals")
			if tt.opts.skeletons != nil {
				assert.Len(t, sum.Warnings, 1)
			} else {
				assert.Empty(t, sum.Warnings)
			}
		})
	}
}

func TestRun_ExecuteCollectsErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "syntax.generator")
	defer teardown()

	a := genAutomaton(t, &grammarDecl{
		actions: []string{"{ $$ = $<unknown>1; }", "{ $$ = $2; }"},
	})
	var out outputs
	run := newRun(t, a, runOpts{
		lang: language.IDC,
		mode: compressor.ModePacked,
	}, &out)
	_, err := run.Execute()
	require.Error(t, err)

	var specErrs verr.SpecErrors
	require.True(t, errors.As(err, &specErrs))
	require.Len(t, specErrs, 2)
	assert.Equal(t, 10, specErrs[0].Row)
	assert.Equal(t, 11, specErrs[1].Row)
	assert.Equal(t, "calc.toml", specErrs[0].SourceName)
	assert.Empty(t, out.output.String())
	assert.Empty(t, out.report.String())
}

func TestSummary_WriteReport(t *testing.T) {
	a := genAutomaton(t, &grammarDecl{
		actions:  []string{"", ""},
		conflict: true,
	})
	var out outputs
	run := newRun(t, a, runOpts{
		lang: language.IDC,
		mode: compressor.ModeTabular,
	}, &out)
	run.Config.Verbose = true
	sum, err := run.Execute()
	require.NoError(t, err)

	require.NotEmpty(t, sum.Conflicts)
	assert.Equal(t, "testdata/calc.c", sum.Output)
	assert.Greater(t, sum.Displaced, 0)
	report := out.report.String()
	assert.Contains(t, report, "shift/reduce")
	assert.Contains(t, report, "Row Displacement")
	assert.Contains(t, report, "state 0\n")
}
