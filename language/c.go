package language

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/translator"
)

const stackDepth = 5000

type cBackend struct {
	opts *Options
}

func newCBackend(opts *Options) *cBackend {
	return &cBackend{
		opts: opts,
	}
}

func (b *cBackend) ID() ID {
	return IDC
}

func (b *cBackend) Extension() string {
	return ".c"
}

func (b *cBackend) IncludeExtension() string {
	return ".h"
}

func (b *cBackend) DefaultInclude() bool {
	return true
}

func (b *cBackend) SkeletonName(driver Driver, mode compressor.Mode) string {
	return skeletonName(driver, mode, b.Extension())
}

func (b *cBackend) Conventions() translator.Conventions {
	return translator.Conventions{
		Quotes:            []rune{'"', '\''},
		Escape:            '\\',
		LineComment:       "//",
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
	}
}

func (b *cBackend) Slots() translator.Slots {
	return cSlots{}
}

type cSlots struct{}

func (cSlots) ValueSlot(offset int, typ *grammar.Type, result bool) string {
	slot := "StxStack[" + stackIndex("pStxStack", offset) + "]"
	if typ != nil {
		return slot + "." + typ.Name
	}
	return slot
}

func (cSlots) NextChar() string {
	return "StxNextChar()"
}

func (cSlots) CurrentChar() string {
	return "StxChar"
}

func (cSlots) LexicalValue() string {
	return "StxValue"
}

// stackIndex renders the index of the slot offset elements below top.
func stackIndex(top string, offset int) string {
	switch {
	case offset > 0:
		return fmt.Sprintf("%v-%v", top, offset)
	case offset < 0:
		return fmt.Sprintf("%v+%v", top, -offset)
	}
	return top
}

func (b *cBackend) Header(p *Printer, g *grammar.Grammar) {
	p.Println("/* Generated by syntax. Do not edit. */")
	p.Println("#include <stdio.h>")
	p.Println("#include <stdlib.h>")
	p.Println("#include <string.h>")
	if b.opts.IncludeName != "" {
		p.Printf("#include \"%v\"\n", filepath.Base(b.opts.IncludeName))
	}
	p.Println("")
	if g.Declarations != "" {
		p.Println(strings.TrimRight(g.Declarations, "\n"))
		p.Println("")
	}
}

func (b *cBackend) Declarations(p *Printer, g *grammar.Grammar) {
	for _, t := range tokenConstants(g) {
		p.Printf("#define %v %v\n", constantName(t.Name), t.Code)
	}
	p.Println("")
	if len(g.Types) == 0 {
		p.Println("typedef int TSTACK;")
	} else {
		p.Println("typedef union {")
		for _, t := range g.Types {
			p.Line(1, "%v %v;", t.Expression, t.Name)
		}
		p.Println("} TSTACK;")
	}
	p.Println("")
}

func (b *cBackend) Include(p *Printer, g *grammar.Grammar) {
	guard := strings.ToUpper(identifierOf(b.opts.Name)) + "_TOKENS_H"
	p.Printf("#ifndef %v\n", guard)
	p.Printf("#define %v\n\n", guard)
	b.Declarations(p, g)
	p.Printf("#endif /* %v */\n", guard)
}

func (b *cBackend) StackDeclarations(p *Printer, g *grammar.Grammar) {
	p.Printf("#define TOKENS %v\n", len(g.Terminals))
	p.Printf("#define NON_TERMINALS %v\n", len(g.NonTerminals))
	p.Printf("#define STACK_DEPTH %v\n\n", stackDepth)
	p.Println("TSTACK StxStack[STACK_DEPTH]; /* Value stack */")
	p.Println("int    pStxStack;              /* Top of the stacks */")
	p.Println("TSTACK StxValue;               /* Value of the current token */")
	p.Println("char   StxChar;                /* Current character */")
	p.Println("")
}

func (b *cBackend) ActionLevel() int {
	return 2
}

func (b *cBackend) LexerActionLevel() int {
	return 1
}

func (b *cBackend) RuleActionsOpen(p *Printer) {
	p.Println("int StxCode(int rule)")
	p.Println("{")
	p.Line(1, "switch(rule) {")
}

func (b *cBackend) RuleActionCaseOpen(p *Printer, g *grammar.Grammar, r *grammar.Rule) {
	p.Line(1, "case %v: /* %v */", r.Index, ruleComment(g, r))
}

func (b *cBackend) RuleActionCaseClose(p *Printer) {
	p.Line(2, "break;")
}

func (b *cBackend) RuleActionsClose(p *Printer) {
	p.Line(1, "}")
	p.Line(1, "return 1;")
	p.Println("}")
	p.Println("")
}

func (b *cBackend) LexerActionsOpen(p *Printer, modes []string) {
	p.Println("#define STX_LEXER")
	for i, mode := range modes {
		p.Printf("#define LEXER_MODE_%v %v\n", strings.ToUpper(identifierOf(mode)), i)
	}
	p.Println("")
	p.Println("char StxNextChar();")
	p.Println("int  StxLexerMode = 0;")
	p.Println("")
}

func (b *cBackend) LexerActionOpen(p *Printer, mode string) {
	p.Printf("unsigned long int StxLexer_%v()\n", identifierOf(mode))
	p.Println("{")
}

func (b *cBackend) LexerActionClose(p *Printer) {
	p.Line(1, "return 0;")
	p.Println("}")
	p.Println("")
}

func (b *cBackend) LexerActionsClose(p *Printer, modes []string) {
	p.Println("unsigned long int StxLexer()")
	p.Println("{")
	p.Line(1, "switch(StxLexerMode) {")
	for i, mode := range modes {
		p.Line(1, "case %v:", i)
		p.Line(2, "return StxLexer_%v();", identifierOf(mode))
	}
	p.Line(1, "}")
	p.Line(1, "return 0;")
	p.Println("}")
	p.Println("")
}

func (b *cBackend) LineDirective(p *Printer, row int, file string) {
	if !b.opts.LineDirectives || row <= 0 {
		return
	}
	if p.Column() != 0 {
		p.Println("")
	}
	p.Printf("#line %v %v\n", row, quote(file, '"', false))
}

func (b *cBackend) TabularTable(p *Printer, tab *compressor.TabularTable) {
	p.Printf("#define STATES %v\n\n", len(tab.Rows))
	p.Println("int StxParsingTable[STATES][TOKENS+NON_TERMINALS] = {")
	for i, row := range tab.Rows {
		p.Printf("%v/* %v */ {", p.Indent(1), i)
		p.Items(2, ints(row))
		p.Println(listEnd("}", i, len(tab.Rows)))
	}
	p.Println("};")
	p.Println("")
	p.Println("int StxParsingError[STATES] = {")
	p.Items(1, ints(tab.Messages))
	p.Println("")
	p.Println("};")
	p.Println("")
}

// cArray writes an array of structures. An empty array gets a placeholder element.
func cArray(p *Printer, decl string, rows [][]int, placeholder string) {
	p.Printf("%v = {\n", decl)
	if len(rows) == 0 {
		p.Line(1, "%v", placeholder)
	}
	records(p, 1, rows, "/* %v */", "{", "}")
	p.Println("};")
	p.Println("")
}

func (b *cBackend) PackedActions(p *Printer, tab *compressor.PackedTable) {
	p.Println("typedef struct {")
	p.Line(1, "int symbol;")
	p.Line(1, "int action;")
	p.Println("} TStxAction;")
	p.Println("")
	p.Printf("#define ACTIONS %v\n\n", len(tab.Entries))
	cArray(p, fmt.Sprintf("TStxAction StxActionTable[%v]", atLeastOne(len(tab.Entries))), actionRows(tab), "{-1, 0}")
}

func (b *cBackend) PackedGoTos(p *Printer, tab *compressor.PackedTable) {
	p.Println("typedef struct {")
	p.Line(1, "int origin;")
	p.Line(1, "int destination;")
	p.Println("} TStxGoto;")
	p.Println("")
	p.Printf("#define GOTOS %v\n\n", len(tab.GoToEntries))
	cArray(p, fmt.Sprintf("TStxGoto StxGotoTable[%v]", atLeastOne(len(tab.GoToEntries))), goToRows(tab), "{-1, 0}")
	p.Println("typedef struct {")
	p.Line(1, "int position;")
	p.Line(1, "int elements;")
	p.Line(1, "int defa;")
	p.Println("} TStxGotoIndex;")
	p.Println("")
	cArray(p, fmt.Sprintf("TStxGotoIndex StxGotoIndex[%v]", atLeastOne(len(tab.GoTos))), goToIndexRows(tab), "{0, 0, 0}")
}

func (b *cBackend) PackedStates(p *Printer, tab *compressor.PackedTable) {
	p.Println("typedef struct {")
	p.Line(1, "int position;")
	p.Line(1, "int defa;")
	p.Line(1, "int elements;")
	p.Line(1, "int msg;")
	p.Println("} TStxParsingTable;")
	p.Println("")
	p.Printf("#define STATES %v\n\n", len(tab.States))
	cArray(p, "TStxParsingTable StxParsingTable[STATES]", stateRows(tab), "{0, 0, 0, -1}")
}

func (b *cBackend) ErrorTable(p *Printer, messages []string) {
	p.Printf("#define ERRORS %v\n\n", len(messages))
	p.Println("char * StxErrorTable[] = {")
	if len(messages) == 0 {
		p.Line(1, "\"\"")
	}
	for i, m := range messages {
		p.Printf("%v/* %v */ %v%v\n", p.Indent(1), i, quote(m, '"', false), listEnd("", i, len(messages)))
	}
	p.Println("};")
	p.Println("")
}

func (b *cBackend) RecoveryTable(p *Printer, tokens []*grammar.Terminal) {
	p.Printf("#define RECOVERS %v\n\n", len(tokens))
	p.Println("int StxRecoverTable[] = {")
	codes := tokenCodes(tokens)
	if len(codes) == 0 {
		codes = []int{0}
	}
	p.Items(1, ints(codes))
	p.Println("")
	p.Println("};")
	p.Println("")
}

func (b *cBackend) GrammarTable(p *Printer, g *grammar.Grammar) {
	p.Println("typedef struct {")
	p.Line(1, "char * name;")
	p.Line(1, "int    token;")
	p.Println("} TStxTokenDef;")
	p.Println("")
	p.Println("TStxTokenDef StxTokenDefs[TOKENS] = {")
	for i, t := range g.Terminals {
		p.Printf("%v{%v, %v}%v\n", p.Indent(1), quote(t.Name, '"', false), t.Code, listEnd("", i, len(g.Terminals)))
	}
	p.Println("};")
	p.Println("")
	p.Println("typedef struct {")
	p.Line(1, "int symbol;")
	p.Line(1, "int reductions;")
	p.Println("} TStxGrammarTable;")
	p.Println("")
	p.Printf("#define RULES %v\n\n", len(g.Rules))
	cArray(p, "TStxGrammarTable StxGrammarTable[RULES]", ruleRows(g), "{0, 0}")
}

func (b *cBackend) MissingSkeleton(p *Printer, name string) {
	p.Printf("/* The skeleton %v was not found. Only the tables were generated. */\n", quote(name, '"', false))
}

func (b *cBackend) Footer(p *Printer) {
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// identifierOf replaces the characters that cannot appear in an identifier with underscores.
func identifierOf(name string) string {
	var b strings.Builder
	for i, c := range name {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			b.WriteRune(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
