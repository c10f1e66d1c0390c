package language

import (
	"strings"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/translator"
	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
)

type javaBackend struct {
	opts      *Options
	className string
}

func newJavaBackend(opts *Options) *javaBackend {
	return &javaBackend{
		opts:      opts,
		className: typeName(opts.Name),
	}
}

// typeName turns a grammar name such as `my_calc` into `MyCalc`.
func typeName(name string) string {
	caser := cases.Title(xlanguage.Und)
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(c rune) bool {
		return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
	}) {
		b.WriteString(caser.String(part))
	}
	if b.Len() == 0 {
		return "Parser"
	}
	s := b.String()
	if s[0] >= '0' && s[0] <= '9' {
		s = "Parser" + s
	}
	return s
}

func (b *javaBackend) ID() ID {
	return IDJava
}

func (b *javaBackend) Extension() string {
	return ".java"
}

func (b *javaBackend) IncludeExtension() string {
	return "Tokens.java"
}

func (b *javaBackend) DefaultInclude() bool {
	return false
}

func (b *javaBackend) SkeletonName(driver Driver, mode compressor.Mode) string {
	return skeletonName(driver, mode, b.Extension())
}

func (b *javaBackend) Conventions() translator.Conventions {
	return translator.Conventions{
		Quotes:            []rune{'"', '\''},
		Escape:            '\\',
		LineComment:       "//",
		BlockCommentOpen:  "/*",
		BlockCommentClose: "*/",
	}
}

func (b *javaBackend) Slots() translator.Slots {
	return javaSlots{}
}

type javaSlots struct{}

func (javaSlots) ValueSlot(offset int, typ *grammar.Type, result bool) string {
	slot := "stack[" + stackIndex("stackTop", offset) + "]"
	if typ == nil || result {
		return slot
	}
	return "((" + typ.Expression + ") " + slot + ")"
}

func (javaSlots) NextChar() string {
	return "getNextCharacter()"
}

func (javaSlots) CurrentChar() string {
	return "currentChar"
}

func (javaSlots) LexicalValue() string {
	return "lexicalValue"
}

func (b *javaBackend) Header(p *Printer, g *grammar.Grammar) {
	p.Println("// Generated by syntax. Do not edit.")
	if g.Declarations != "" {
		p.Println(strings.TrimRight(g.Declarations, "\n"))
	}
	p.Println("")
	if b.opts.IncludeName != "" {
		p.Printf("class %v implements %vTokens {\n", b.className, b.className)
	} else {
		p.Printf("class %v {\n", b.className)
	}
}

func (b *javaBackend) Declarations(p *Printer, g *grammar.Grammar) {
	b.tokenConstants(p, g, "public static final ")
}

func (b *javaBackend) tokenConstants(p *Printer, g *grammar.Grammar, modifiers string) {
	for _, t := range tokenConstants(g) {
		p.Line(1, "%vint %v = %v;", modifiers, constantName(t.Name), t.Code)
	}
	p.Println("")
}

func (b *javaBackend) Include(p *Printer, g *grammar.Grammar) {
	p.Println("// Generated by syntax. Do not edit.")
	p.Println("")
	p.Printf("interface %vTokens {\n", b.className)
	b.tokenConstants(p, g, "")
	p.Println("}")
}

func (b *javaBackend) StackDeclarations(p *Printer, g *grammar.Grammar) {
	p.Line(1, "private static final int TOKENS = %v;", len(g.Terminals))
	p.Line(1, "private static final int NON_TERMINALS = %v;", len(g.NonTerminals))
	p.Line(1, "private static final int STACK_DEPTH = %v;", stackDepth)
	p.Println("")
	p.Line(1, "private Object[] stack = new Object[STACK_DEPTH];")
	p.Line(1, "private int stackTop;")
	p.Line(1, "protected Object lexicalValue;")
	p.Line(1, "protected char currentChar;")
	p.Println("")
}

func (b *javaBackend) ActionLevel() int {
	return 3
}

func (b *javaBackend) LexerActionLevel() int {
	return 2
}

func (b *javaBackend) RuleActionsOpen(p *Printer) {
	p.Line(1, "private boolean ruleAction(int rule) {")
	p.Line(2, "switch (rule) {")
}

func (b *javaBackend) RuleActionCaseOpen(p *Printer, g *grammar.Grammar, r *grammar.Rule) {
	p.Line(2, "case %v: // %v", r.Index, g.RuleString(r, -1))
}

func (b *javaBackend) RuleActionCaseClose(p *Printer) {
	p.Line(3, "break;")
}

func (b *javaBackend) RuleActionsClose(p *Printer) {
	p.Line(2, "}")
	p.Line(2, "return true;")
	p.Line(1, "}")
	p.Println("")
}

func (b *javaBackend) LexerActionsOpen(p *Printer, modes []string) {
	for i, mode := range modes {
		p.Line(1, "protected static final int LEXER_MODE_%v = %v;", strings.ToUpper(identifierOf(mode)), i)
	}
	p.Println("")
	p.Line(1, "protected int lexerMode = 0;")
	p.Println("")
}

func (b *javaBackend) LexerActionOpen(p *Printer, mode string) {
	p.Line(1, "protected int lexer%v() {", typeName(mode))
}

func (b *javaBackend) LexerActionClose(p *Printer) {
	p.Line(2, "return 0;")
	p.Line(1, "}")
	p.Println("")
}

func (b *javaBackend) LexerActionsClose(p *Printer, modes []string) {
	p.Line(1, "protected int lexer() {")
	p.Line(2, "switch (lexerMode) {")
	for i, mode := range modes {
		p.Line(2, "case %v:", i)
		p.Line(3, "return lexer%v();", typeName(mode))
	}
	p.Line(2, "}")
	p.Line(2, "return 0;")
	p.Line(1, "}")
	p.Println("")
}

func (b *javaBackend) LineDirective(p *Printer, row int, file string) {
}

func (b *javaBackend) TabularTable(p *Printer, tab *compressor.TabularTable) {
	p.Line(1, "private static final int STATES = %v;", len(tab.Rows))
	p.Println("")
	p.Line(1, "private static final int[][] parsingTable = {")
	for i, row := range tab.Rows {
		p.Printf("%v/* %v */ {", p.Indent(2), i)
		p.Items(3, ints(row))
		p.Println(listEnd("}", i, len(tab.Rows)))
	}
	p.Line(1, "};")
	p.Println("")
	p.Line(1, "private static final int[] parsingError = {")
	p.Items(2, ints(tab.Messages))
	p.Println("")
	p.Line(1, "};")
	p.Println("")
}

func (b *javaBackend) array(p *Printer, name string, rows [][]int) {
	p.Line(1, "private static final int[][] %v = {", name)
	records(p, 2, rows, "/* %v */", "{", "}")
	p.Line(1, "};")
	p.Println("")
}

func (b *javaBackend) PackedActions(p *Printer, tab *compressor.PackedTable) {
	p.Line(1, "private static final int ACTIONS = %v;", len(tab.Entries))
	p.Println("")
	b.array(p, "actionTable", actionRows(tab))
}

func (b *javaBackend) PackedGoTos(p *Printer, tab *compressor.PackedTable) {
	p.Line(1, "private static final int GOTOS = %v;", len(tab.GoToEntries))
	p.Println("")
	b.array(p, "gotoTable", goToRows(tab))
	b.array(p, "gotoIndex", goToIndexRows(tab))
}

func (b *javaBackend) PackedStates(p *Printer, tab *compressor.PackedTable) {
	p.Line(1, "private static final int STATES = %v;", len(tab.States))
	p.Println("")
	b.array(p, "parsingTable", stateRows(tab))
}

func (b *javaBackend) ErrorTable(p *Printer, messages []string) {
	p.Line(1, "private static final String[] errorTable = {")
	for i, m := range messages {
		p.Printf("%v/* %v */ %v%v\n", p.Indent(2), i, quote(m, '"', false), listEnd("", i, len(messages)))
	}
	p.Line(1, "};")
	p.Println("")
}

func (b *javaBackend) RecoveryTable(p *Printer, tokens []*grammar.Terminal) {
	p.Line(1, "private static final int[] recoverTable = {")
	if len(tokens) > 0 {
		p.Items(2, ints(tokenCodes(tokens)))
		p.Println("")
	}
	p.Line(1, "};")
	p.Println("")
}

func (b *javaBackend) GrammarTable(p *Printer, g *grammar.Grammar) {
	p.Line(1, "private static final String[] tokenNames = {")
	for i, t := range g.Terminals {
		p.Printf("%v%v%v\n", p.Indent(2), quote(t.Name, '"', false), listEnd("", i, len(g.Terminals)))
	}
	p.Line(1, "};")
	p.Println("")
	p.Line(1, "private static final int[] tokenCodes = {")
	p.Items(2, ints(tokenCodes(g.Terminals)))
	p.Println("")
	p.Line(1, "};")
	p.Println("")
	b.array(p, "grammarTable", ruleRows(g))
}

func (b *javaBackend) MissingSkeleton(p *Printer, name string) {
	p.Line(1, "// The skeleton %v was not found. Only the tables were generated.", quote(name, '"', false))
}

func (b *javaBackend) Footer(p *Printer) {
	p.Println("}")
}
