package spec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	verr "github.com/nihei9/syntax/error"
	"github.com/nihei9/syntax/grammar"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("syntax.spec")
}

const defaultLexerMode = "default"

// Load reads the grammar description at path.
func Load(path string) (*grammar.Grammar, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src, path)
}

// Parse builds a grammar from a description. Every problem found is reported in the returned
// verr.SpecErrors, positioned in the file at filePath.
func Parse(src []byte, filePath string) (*grammar.Grammar, error) {
	l := &loader{
		filePath:   filePath,
		sourceName: filepath.Base(filePath),
		lines:      strings.Split(string(src), "\n"),
	}

	var desc Description
	md, err := toml.Decode(string(src), &desc)
	if err != nil {
		row := 0
		var pErr toml.ParseError
		if errors.As(err, &pErr) {
			row = pErr.Position.Line
		}
		l.addError(synErrInvalidTOML, err.Error(), row)
		return nil, l.errs
	}
	for _, key := range md.Undecoded() {
		l.addError(synErrUnknownKey, key.String(), l.keyRow(key[len(key)-1], 1, len(l.lines)))
	}
	if len(desc.Rules) == 0 {
		l.addError(synErrNoRule, "", 0)
	}
	if len(l.errs) > 0 {
		return nil, l.errs
	}

	name := desc.Name
	if name == "" {
		name = strings.TrimSuffix(l.sourceName, filepath.Ext(l.sourceName))
	}
	b := grammar.NewBuilder(name)
	l.build(b, &desc)
	if len(l.errs) > 0 {
		return nil, l.errs
	}

	g, err := b.Build()
	if err != nil {
		var specErrs verr.SpecErrors
		if errors.As(err, &specErrs) {
			for _, e := range specErrs {
				e.FilePath = l.filePath
				e.SourceName = l.sourceName
			}
			return nil, specErrs
		}
		return nil, err
	}
	tracer().Infof("loaded grammar %v from %v", g.Name, filePath)
	return g, nil
}

type loader struct {
	filePath   string
	sourceName string
	lines      []string
	errs       verr.SpecErrors
}

func (l *loader) addError(cause error, detail string, row int) {
	l.errs = append(l.errs, &verr.SpecError{
		Cause:      cause,
		Detail:     detail,
		FilePath:   l.filePath,
		SourceName: l.sourceName,
		Row:        row,
	})
}

func (l *loader) build(b *grammar.Builder, desc *Description) {
	b.Start(desc.Start, l.keyRow("start", 1, l.firstTableRow()))
	b.Declarations(desc.Declarations)
	if desc.Trailer != "" {
		b.Trailer(desc.Trailer, l.valueRow("trailer", 1, l.firstTableRow()))
	}

	typeRows := l.tableRows("types")
	for i, t := range desc.Types {
		row := rowAt(typeRows, i)
		if t.Name == "" || t.Expression == "" {
			l.addError(synErrNoTypeName, t.Name, row)
			continue
		}
		b.Type(t.Name, t.Expression, row)
	}

	declared := map[string]bool{}
	termRows := l.tableRows("terminals")
	for i, t := range desc.Terminals {
		row := rowAt(termRows, i)
		if t.Name == "" {
			l.addError(synErrNoTermName, "", row)
			continue
		}
		declared[t.Name] = true
		b.Terminal(&grammar.TerminalDecl{
			Name:    t.Name,
			Code:    t.Code,
			Literal: t.Literal,
			Pattern: t.Pattern,
			Type:    t.Type,
			Skip:    t.Skip,
			Row:     row,
		})
	}

	// Literals written in quotes declare themselves in the order they first appear.
	precRows := l.tableRows("precedence")
	ruleRows := l.tableRows("rules")
	literal := func(sym string, row int) string {
		name, lit, ok, err := parseLiteral(sym)
		if err != nil {
			l.addError(err, sym, row)
			return sym
		}
		if ok && !declared[name] {
			declared[name] = true
			b.Terminal(&grammar.TerminalDecl{
				Name:    name,
				Literal: lit,
				Row:     row,
			})
		}
		return name
	}

	for i, p := range desc.Precedence {
		row := rowAt(precRows, i)
		assoc, err := grammar.ParseAssoc(p.Assoc)
		if err != nil {
			l.addError(err, "", row)
			continue
		}
		syms := make([]string, len(p.Symbols))
		for j, sym := range p.Symbols {
			syms[j] = literal(sym, row)
		}
		b.Precedence(&grammar.PrecedenceDecl{
			Assoc:   assoc,
			Level:   p.Level,
			Symbols: syms,
			Row:     row,
		})
	}

	nonTermRows := l.tableRows("nonterminals")
	for i, n := range desc.NonTerminals {
		b.NonTerminal(n.Name, n.Type, rowAt(nonTermRows, i))
	}

	errRow := l.keyRow("errors", 1, l.firstTableRow())
	for _, name := range desc.Errors {
		b.ErrorToken(name, errRow)
	}

	for i, r := range desc.Rules {
		row := rowAt(ruleRows, i)
		if r.LHS == "" {
			l.addError(synErrNoLHS, "", row)
			continue
		}
		rhs := make([]string, len(r.RHS))
		for j, sym := range r.RHS {
			rhs[j] = literal(sym, row)
		}
		prec := r.Prec
		if prec != "" {
			prec = literal(prec, row)
		}
		decl := &grammar.RuleDecl{
			LHS:     r.LHS,
			RHS:     rhs,
			Prec:    prec,
			Message: r.Message,
			Row:     row,
		}
		if r.Action != "" {
			act, err := braced(r.Action)
			if err != nil {
				l.addError(err, "", row)
				continue
			}
			decl.Action = act
			decl.ActionRow = r.Line
			if decl.ActionRow == 0 {
				decl.ActionRow = l.valueRow("action", row, nextRow(ruleRows, i, len(l.lines)))
			}
		}
		b.Rule(decl)
	}

	lexRows := l.tableRows("lexer")
	for i, lex := range desc.Lexer {
		row := rowAt(lexRows, i)
		act, err := braced(lex.Action)
		if err != nil {
			l.addError(err, "", row)
			continue
		}
		mode := lex.Mode
		if mode == "" {
			mode = defaultLexerMode
		}
		b.LexerAction(mode, act, l.valueRow("action", row, nextRow(lexRows, i, len(l.lines))))
	}
}

// parseLiteral recognizes a symbol written as 'x'. The terminal is named after the quoted text.
func parseLiteral(sym string) (name, lit string, ok bool, err error) {
	if !strings.HasPrefix(sym, "'") {
		return sym, "", false, nil
	}
	if len(sym) < 2 || !strings.HasSuffix(sym, "'") {
		return "", "", false, synErrUnclosedQuote
	}
	lit = sym[1 : len(sym)-1]
	if lit == "" {
		return "", "", false, synErrEmptyLiteral
	}
	return sym, lit, true, nil
}

// braced encloses an action in braces unless it already starts with one.
func braced(action string) (string, error) {
	trimmed := strings.TrimSpace(action)
	if trimmed == "" {
		return "", synErrEmptyAction
	}
	if strings.HasPrefix(trimmed, "{") {
		return action, nil
	}
	return fmt.Sprintf("{%v}", action), nil
}

// tableRows returns the rows of the [[name]] headers.
func (l *loader) tableRows(name string) []int {
	header := "[[" + name + "]]"
	var rows []int
	for i, line := range l.lines {
		if strings.TrimSpace(stripComment(line)) == header {
			rows = append(rows, i+1)
		}
	}
	return rows
}

// firstTableRow returns the row of the first table header, that is, the end of the top-level keys.
func (l *loader) firstTableRow() int {
	for i, line := range l.lines {
		if strings.HasPrefix(strings.TrimSpace(line), "[") {
			return i + 1
		}
	}
	return len(l.lines)
}

// keyRow finds the row of a key in the rows [from, to]. It returns from when the key is missing.
func (l *loader) keyRow(key string, from, to int) int {
	for row := from; row <= to && row <= len(l.lines); row++ {
		line := strings.TrimSpace(l.lines[row-1])
		if !strings.HasPrefix(line, key) {
			continue
		}
		rest := strings.TrimSpace(line[len(key):])
		if strings.HasPrefix(rest, "=") {
			return row
		}
	}
	return from
}

// valueRow is keyRow for keys with string values. A multi-line string whose opening delimiter
// ends its line starts on the next row.
func (l *loader) valueRow(key string, from, to int) int {
	row := l.keyRow(key, from, to)
	if row < 1 || row > len(l.lines) {
		return row
	}
	line := strings.TrimSpace(l.lines[row-1])
	if !strings.HasPrefix(line, key) {
		return row
	}
	value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[len(key):]), "="))
	if value == `"""` || value == `'''` {
		return row + 1
	}
	return row
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return line[:i]
	}
	return line
}

func rowAt(rows []int, i int) int {
	if i < len(rows) {
		return rows[i]
	}
	return 0
}

func nextRow(rows []int, i int, last int) int {
	if i+1 < len(rows) {
		return rows[i+1] - 1
	}
	return last
}
