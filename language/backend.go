package language

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/translator"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("syntax.language")
}

//go:embed skeleton
var skeletons embed.FS

// Skeletons returns the skeletons built into the generator. The names are relative to the root.
func Skeletons() fs.FS {
	sub, err := fs.Sub(skeletons, "skeleton")
	if err != nil {
		panic(err)
	}
	return sub
}

type ID string

const (
	IDC      = ID("c")
	IDJava   = ID("java")
	IDPascal = ID("pascal")
)

func ParseID(s string) (ID, error) {
	switch strings.ToLower(s) {
	case "c":
		return IDC, nil
	case "j", "java":
		return IDJava, nil
	case "p", "pascal":
		return IDPascal, nil
	}
	return "", fmt.Errorf("unknown language: %v", s)
}

// Driver is the kind of the generated runtime. A parser pulls tokens from a lexer, while a scanner
// is fed one token at a time.
type Driver string

const (
	DriverParser  = Driver("parser")
	DriverScanner = Driver("scanner")
)

func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(s) {
	case "parser":
		return DriverParser, nil
	case "scanner":
		return DriverScanner, nil
	}
	return "", fmt.Errorf("unknown driver: %v", s)
}

type Options struct {
	// Name is the name of the grammar. Java and Pascal derive the names of the class and the unit from it.
	Name string

	// IncludeName is the file name of the include file, or empty when the declarations are written
	// into the output.
	IncludeName string

	LineDirectives bool
}

// Backend writes the parts of a parser in one target language. The generator calls the methods in
// the order the parts appear in the output.
type Backend interface {
	ID() ID
	Extension() string
	IncludeExtension() string
	DefaultInclude() bool
	SkeletonName(driver Driver, mode compressor.Mode) string
	Conventions() translator.Conventions
	Slots() translator.Slots

	// Header writes the prologue and the user declarations.
	Header(p *Printer, g *grammar.Grammar)
	// Declarations writes the token constants and the value type.
	Declarations(p *Printer, g *grammar.Grammar)
	// Include writes the contents of the include file.
	Include(p *Printer, g *grammar.Grammar)
	StackDeclarations(p *Printer, g *grammar.Grammar)

	// ActionLevel and LexerActionLevel are the indentation levels of translated action bodies.
	ActionLevel() int
	LexerActionLevel() int

	RuleActionsOpen(p *Printer)
	RuleActionCaseOpen(p *Printer, g *grammar.Grammar, r *grammar.Rule)
	RuleActionCaseClose(p *Printer)
	RuleActionsClose(p *Printer)

	LexerActionsOpen(p *Printer, modes []string)
	LexerActionOpen(p *Printer, mode string)
	LexerActionClose(p *Printer)
	LexerActionsClose(p *Printer, modes []string)

	LineDirective(p *Printer, row int, file string)

	TabularTable(p *Printer, tab *compressor.TabularTable)
	PackedActions(p *Printer, tab *compressor.PackedTable)
	PackedGoTos(p *Printer, tab *compressor.PackedTable)
	PackedStates(p *Printer, tab *compressor.PackedTable)
	ErrorTable(p *Printer, messages []string)
	RecoveryTable(p *Printer, tokens []*grammar.Terminal)
	GrammarTable(p *Printer, g *grammar.Grammar)

	MissingSkeleton(p *Printer, name string)
	Footer(p *Printer)
}

var (
	_ Backend = &cBackend{}
	_ Backend = &javaBackend{}
	_ Backend = &pascalBackend{}
)

func New(id ID, opts *Options) (Backend, error) {
	if opts == nil {
		opts = &Options{}
	}
	switch id {
	case IDC:
		return newCBackend(opts), nil
	case IDJava:
		return newJavaBackend(opts), nil
	case IDPascal:
		return newPascalBackend(opts), nil
	}
	return nil, fmt.Errorf("unknown language: %v", id)
}

// skeletonName builds `<driver>/<packing>/<packing>.<extension>`.
func skeletonName(driver Driver, mode compressor.Mode, ext string) string {
	return fmt.Sprintf("%v/%v/%v%v", driver, mode, mode, ext)
}

// identifier reports whether a symbol name can be used as a constant name in the target languages.
func identifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// tokenConstants returns the terminals having a constant in the generated code. `$end` and
// terminals named after their literals have none.
func tokenConstants(g *grammar.Grammar) []*grammar.Terminal {
	var terms []*grammar.Terminal
	for _, t := range g.Terminals {
		if t.Index == 0 || !identifier(t.Name) {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

func constantName(name string) string {
	return strings.ToUpper(name)
}

func ruleComment(g *grammar.Grammar, r *grammar.Rule) string {
	return strings.ReplaceAll(g.RuleString(r, -1), "*/", "* /")
}

func quote(s string, q byte, doubled bool) string {
	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == q && doubled:
			b.WriteByte(q)
			b.WriteByte(q)
		case c == q || c == '\\':
			if doubled {
				b.WriteByte(c)
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			if doubled {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func ints(vs []int) []string {
	items := make([]string, len(vs))
	for i, v := range vs {
		items[i] = fmt.Sprint(v)
	}
	return items
}

// records writes one row per line. label is a format for the row number, and open and close
// enclose the values.
func records(p *Printer, level int, rows [][]int, label, open, close string) {
	for i, row := range rows {
		p.Printf("%v"+label+" %v%v%v%v\n", p.Indent(level), i, open, strings.Join(ints(row), ", "), close, listEnd("", i, len(rows)))
	}
}

func listEnd(s string, i, n int) string {
	if i < n-1 {
		return s + ","
	}
	return s
}

func actionRows(tab *compressor.PackedTable) [][]int {
	rows := make([][]int, len(tab.Entries))
	for i, e := range tab.Entries {
		rows[i] = []int{e.Terminal, e.Action}
	}
	return rows
}

func goToRows(tab *compressor.PackedTable) [][]int {
	rows := make([][]int, len(tab.GoToEntries))
	for i, e := range tab.GoToEntries {
		rows[i] = []int{e.Source, e.Target}
	}
	return rows
}

func goToIndexRows(tab *compressor.PackedTable) [][]int {
	rows := make([][]int, len(tab.GoTos))
	for i, g := range tab.GoTos {
		rows[i] = []int{g.Position, g.Count, g.Default}
	}
	return rows
}

func stateRows(tab *compressor.PackedTable) [][]int {
	rows := make([][]int, len(tab.States))
	for i, s := range tab.States {
		rows[i] = []int{s.Position, s.Default, s.Count, s.Message}
	}
	return rows
}

func ruleRows(g *grammar.Grammar) [][]int {
	rows := make([][]int, len(g.Rules))
	for i, r := range g.Rules {
		rows[i] = []int{r.LHS.Index, len(r.RHS)}
	}
	return rows
}

func tokenCodes(terms []*grammar.Terminal) []int {
	codes := make([]int, len(terms))
	for i, t := range terms {
		codes[i] = t.Code
	}
	return codes
}
