package language

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/translator"
)

type pascalBackend struct {
	opts *Options
}

func newPascalBackend(opts *Options) *pascalBackend {
	return &pascalBackend{
		opts: opts,
	}
}

func (b *pascalBackend) ID() ID {
	return IDPascal
}

func (b *pascalBackend) Extension() string {
	return ".pas"
}

func (b *pascalBackend) IncludeExtension() string {
	return ".inc"
}

func (b *pascalBackend) DefaultInclude() bool {
	return false
}

func (b *pascalBackend) SkeletonName(driver Driver, mode compressor.Mode) string {
	return skeletonName(driver, mode, b.Extension())
}

// Conventions has no escape character because a quote in a Pascal string is doubled.
func (b *pascalBackend) Conventions() translator.Conventions {
	return translator.Conventions{
		Quotes:            []rune{'\''},
		LineComment:       "//",
		BlockCommentOpen:  "(*",
		BlockCommentClose: "*)",
	}
}

func (b *pascalBackend) Slots() translator.Slots {
	return pascalSlots{}
}

type pascalSlots struct{}

func (pascalSlots) ValueSlot(offset int, typ *grammar.Type, result bool) string {
	slot := "StxStack[" + stackIndex("pStxStack", offset) + "]"
	if typ != nil {
		return slot + "." + typ.Name
	}
	return slot
}

func (pascalSlots) NextChar() string {
	return "StxNextChar"
}

func (pascalSlots) CurrentChar() string {
	return "StxChar"
}

func (pascalSlots) LexicalValue() string {
	return "StxValue"
}

func pascalComment(s string) string {
	return "(* " + strings.ReplaceAll(s, "*)", "* )") + " *)"
}

func (b *pascalBackend) Header(p *Printer, g *grammar.Grammar) {
	p.Println("(* Generated by syntax. Do not edit. *)")
	if g.Declarations != "" {
		p.Println(strings.TrimRight(g.Declarations, "\n"))
	}
	p.Println("")
	if b.opts.IncludeName != "" {
		p.Printf("{$I %v}\n\n", filepath.Base(b.opts.IncludeName))
	}
}

func (b *pascalBackend) Declarations(p *Printer, g *grammar.Grammar) {
	consts := tokenConstants(g)
	if len(consts) > 0 {
		p.Println("const")
		for _, t := range consts {
			p.Line(1, "%v = %v;", constantName(t.Name), t.Code)
		}
		p.Println("")
	}
	p.Println("type")
	if len(g.Types) == 0 {
		p.Line(1, "TSTACK = longint;")
	} else {
		p.Line(1, "TSTACK = record")
		p.Line(2, "case integer of")
		for i, t := range g.Types {
			p.Line(3, "%v: (%v: %v);", i, t.Name, t.Expression)
		}
		p.Line(1, "end;")
	}
	p.Println("")
}

func (b *pascalBackend) Include(p *Printer, g *grammar.Grammar) {
	p.Println("(* Generated by syntax. Do not edit. *)")
	p.Println("")
	b.Declarations(p, g)
}

func (b *pascalBackend) StackDeclarations(p *Printer, g *grammar.Grammar) {
	p.Println("const")
	p.Line(1, "TOKENS = %v;", len(g.Terminals))
	p.Line(1, "NON_TERMINALS = %v;", len(g.NonTerminals))
	p.Line(1, "STACK_DEPTH = %v;", stackDepth)
	p.Println("")
	p.Println("var")
	p.Line(1, "StxStack: array[0..STACK_DEPTH-1] of TSTACK; (* Value stack *)")
	p.Line(1, "pStxStack: integer;                        (* Top of the stacks *)")
	p.Line(1, "StxValue: TSTACK;                          (* Value of the current token *)")
	p.Line(1, "StxChar: char;                             (* Current character *)")
	p.Println("")
}

func (b *pascalBackend) ActionLevel() int {
	return 3
}

func (b *pascalBackend) LexerActionLevel() int {
	return 1
}

func (b *pascalBackend) RuleActionsOpen(p *Printer) {
	p.Println("function StxCode(rule: integer): boolean;")
	p.Println("begin")
	p.Line(1, "case rule of")
	p.Line(2, "0: ;")
}

func (b *pascalBackend) RuleActionCaseOpen(p *Printer, g *grammar.Grammar, r *grammar.Rule) {
	p.Line(2, "%v: begin %v", r.Index, pascalComment(g.RuleString(r, -1)))
}

func (b *pascalBackend) RuleActionCaseClose(p *Printer) {
	p.Line(2, "end;")
}

func (b *pascalBackend) RuleActionsClose(p *Printer) {
	p.Line(1, "end;")
	p.Line(1, "StxCode := true;")
	p.Println("end;")
	p.Println("")
}

func (b *pascalBackend) LexerActionsOpen(p *Printer, modes []string) {
	p.Println("{$DEFINE STX_LEXER}")
	p.Println("const")
	for i, mode := range modes {
		p.Line(1, "LEXER_MODE_%v = %v;", strings.ToUpper(identifierOf(mode)), i)
	}
	p.Println("")
	p.Println("var")
	p.Line(1, "StxLexerMode: integer = 0;")
	p.Println("")
	p.Println("function StxNextChar: char; forward;")
	p.Println("")
}

func (b *pascalBackend) LexerActionOpen(p *Printer, mode string) {
	name := "StxLexer_" + identifierOf(mode)
	p.Printf("function %v: longint;\n", name)
	p.Println("begin")
	p.Line(1, "%v := 0;", name)
}

func (b *pascalBackend) LexerActionClose(p *Printer) {
	p.Println("end;")
	p.Println("")
}

func (b *pascalBackend) LexerActionsClose(p *Printer, modes []string) {
	p.Println("function StxLexer: longint;")
	p.Println("begin")
	p.Line(1, "StxLexer := 0;")
	p.Line(1, "case StxLexerMode of")
	for i, mode := range modes {
		p.Line(2, "%v: StxLexer := StxLexer_%v;", i, identifierOf(mode))
	}
	p.Line(1, "end;")
	p.Println("end;")
	p.Println("")
}

func (b *pascalBackend) LineDirective(p *Printer, row int, file string) {
}

func (b *pascalBackend) TabularTable(p *Printer, tab *compressor.TabularTable) {
	p.Println("const")
	p.Line(1, "STATES = %v;", len(tab.Rows))
	p.Println("")
	p.Line(1, "StxParsingTable: array[0..STATES-1, 0..TOKENS+NON_TERMINALS-1] of integer = (")
	for i, row := range tab.Rows {
		p.Printf("%v{ %v } (", p.Indent(2), i)
		p.Items(3, ints(row))
		p.Println(listEnd(")", i, len(tab.Rows)))
	}
	p.Line(1, ");")
	p.Println("")
	p.Line(1, "StxParsingError: array[0..STATES-1] of integer = (")
	p.Items(2, ints(tab.Messages))
	p.Println("")
	p.Line(1, ");")
	p.Println("")
}

// array writes a constant two-dimensional array. An empty array gets a placeholder row.
func (b *pascalBackend) array(p *Printer, name string, width int, rows [][]int) {
	p.Line(1, "%v: array[0..%v, 0..%v] of integer = (", name, atLeastOne(len(rows))-1, width-1)
	if len(rows) == 0 {
		p.Line(2, "(%v)", strings.Join(ints(make([]int, width)), ", "))
	}
	records(p, 2, rows, "{ %v }", "(", ")")
	p.Line(1, ");")
	p.Println("")
}

func (b *pascalBackend) PackedActions(p *Printer, tab *compressor.PackedTable) {
	p.Println("const")
	p.Line(1, "ACTIONS = %v;", len(tab.Entries))
	p.Println("")
	b.array(p, "StxActionTable", 2, actionRows(tab))
}

func (b *pascalBackend) PackedGoTos(p *Printer, tab *compressor.PackedTable) {
	p.Println("const")
	p.Line(1, "GOTOS = %v;", len(tab.GoToEntries))
	p.Println("")
	b.array(p, "StxGotoTable", 2, goToRows(tab))
	b.array(p, "StxGotoIndex", 3, goToIndexRows(tab))
}

func (b *pascalBackend) PackedStates(p *Printer, tab *compressor.PackedTable) {
	p.Println("const")
	p.Line(1, "STATES = %v;", len(tab.States))
	p.Println("")
	b.array(p, "StxParsingTable", 4, stateRows(tab))
}

func (b *pascalBackend) stringArray(p *Printer, name string, ss []string) {
	p.Line(1, "%v: array[0..%v] of string = (", name, atLeastOne(len(ss))-1)
	if len(ss) == 0 {
		p.Line(2, "''")
	}
	for i, s := range ss {
		p.Printf("%v{ %v } %v%v\n", p.Indent(2), i, quote(s, '\'', true), listEnd("", i, len(ss)))
	}
	p.Line(1, ");")
	p.Println("")
}

func (b *pascalBackend) ErrorTable(p *Printer, messages []string) {
	p.Println("const")
	p.Line(1, "ERRORS = %v;", len(messages))
	p.Println("")
	b.stringArray(p, "StxErrorTable", messages)
}

func (b *pascalBackend) RecoveryTable(p *Printer, tokens []*grammar.Terminal) {
	p.Println("const")
	p.Line(1, "RECOVERS = %v;", len(tokens))
	p.Println("")
	codes := tokenCodes(tokens)
	if len(codes) == 0 {
		codes = []int{0}
	}
	p.Line(1, "StxRecoverTable: array[0..%v] of integer = (", len(codes)-1)
	p.Items(2, ints(codes))
	p.Println("")
	p.Line(1, ");")
	p.Println("")
}

func (b *pascalBackend) GrammarTable(p *Printer, g *grammar.Grammar) {
	p.Println("const")
	names := make([]string, len(g.Terminals))
	for i, t := range g.Terminals {
		names[i] = t.Name
	}
	b.stringArray(p, "StxTokenNames", names)
	p.Line(1, "StxTokenCodes: array[0..TOKENS-1] of integer = (")
	p.Items(2, ints(tokenCodes(g.Terminals)))
	p.Println("")
	p.Line(1, ");")
	p.Println("")
	p.Line(1, "RULES = %v;", len(g.Rules))
	p.Println("")
	b.array(p, "StxGrammarTable", 2, ruleRows(g))
}

func (b *pascalBackend) MissingSkeleton(p *Printer, name string) {
	p.Println(pascalComment(fmt.Sprintf("The skeleton %v was not found. Only the tables were generated.", name)))
}

func (b *pascalBackend) Footer(p *Printer) {
}
