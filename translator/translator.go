package translator

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	verr "github.com/nihei9/syntax/error"
	"github.com/nihei9/syntax/grammar"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("syntax.translator")
}

type TranslateError struct {
	message string
}

func newTranslateError(message string) *TranslateError {
	return &TranslateError{
		message: message,
	}
}

func (e *TranslateError) Error() string {
	return e.message
}

var (
	errNotBraced           = newTranslateError("an action must start with an opening brace")
	errUnfinishedAction    = newTranslateError("unfinished action")
	errUnknownType         = newTranslateError("unknown type")
	errElementOutOfRange   = newTranslateError("element reference is out of range")
	errUnterminatedString  = newTranslateError("unterminated string")
	errEOLInString         = newTranslateError("end of line on string literal")
	errUnterminatedComment = newTranslateError("unterminated comment")
	errLexerEscape         = newTranslateError("a lexer escape can be used only in a lexer action")
	errRuleEscape          = newTranslateError("a rule element cannot be referenced in a lexer action")
	errTextAfterAction     = newTranslateError("text after the closing brace of an action")
)

// Conventions describes the lexical elements of a target language an action may contain.
// Literals and comments are copied as they are.
type Conventions struct {
	Quotes []rune

	// Escape is the escape character in literals. 0 means the language has none.
	Escape rune

	LineComment       string
	BlockCommentOpen  string
	BlockCommentClose string
}

// Slots renders the target-language expressions escapes are rewritten to.
type Slots interface {
	// ValueSlot renders the stack slot offset elements below the top of the stack. A negative
	// offset is above the top. typ is nil for an untyped reference, and result is true for `$$`.
	ValueSlot(offset int, typ *grammar.Type, result bool) string

	NextChar() string
	CurrentChar() string
	LexicalValue() string
}

// Action is a piece of embedded code. Code includes the outer braces.
type Action struct {
	Code string
	Row  int

	// Lexer is true for a lexer action. The rule context below is ignored then.
	Lexer bool

	ElementCount int
	ResultType   *grammar.Type
	ElementTypes []*grammar.Type
}

// TypeLookup resolves the name of a declared type.
type TypeLookup func(name string) (*grammar.Type, bool)

type Translator struct {
	conv       Conventions
	slots      Slots
	lookupType TypeLookup
	indent     string
	filePath   string
	sourceName string
}

type TranslatorOption func(t *Translator)

// Indent sets the text written after each newline of an action.
func Indent(indent string) TranslatorOption {
	return func(t *Translator) {
		t.indent = indent
	}
}

// Source sets the grammar the actions come from. It is used in error messages.
func Source(filePath, sourceName string) TranslatorOption {
	return func(t *Translator) {
		t.filePath = filePath
		t.sourceName = sourceName
	}
}

func New(conv Conventions, slots Slots, lookupType TypeLookup, opts ...TranslatorOption) *Translator {
	t := &Translator{
		conv:       conv,
		slots:      slots,
		lookupType: lookupType,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate writes the body of an action with its escapes rewritten. Nothing is written when the
// action contains an error.
func (t *Translator) Translate(w io.Writer, act *Action) error {
	var b bytes.Buffer
	tr := &translation{
		Translator: t,
		act:        act,
		c:          NewCursor(strings.NewReader(act.Code), act.Row),
		out:        &b,
	}
	err := tr.run()
	if err != nil {
		tracer().Debugf("failed to translate the action at row %v: %v", act.Row, err)
		return err
	}
	_, err = w.Write(b.Bytes())
	return err
}

type translation struct {
	*Translator
	act *Action
	c   *Cursor
	out *bytes.Buffer
}

func (tr *translation) errorf(cause error, row, col int, format string, a ...interface{}) error {
	return &verr.SpecError{
		Cause:      cause,
		Detail:     fmt.Sprintf(format, a...),
		FilePath:   tr.filePath,
		SourceName: tr.sourceName,
		Row:        row,
		Col:        col,
	}
}

func (tr *translation) run() error {
	c := tr.c
	for !c.EOF() && isSpace(c.Current()) {
		c.Next()
	}
	if c.EOF() || c.Current() != '{' {
		return tr.errorf(errNotBraced, c.Row(), c.Col(), "")
	}
	c.Next()

	depth := 1
	for !c.EOF() {
		ch := c.Current()
		switch {
		case ch == '{':
			depth++
			tr.out.WriteRune(ch)
			c.Next()
		case ch == '}':
			depth--
			if depth == 0 {
				c.Next()
				return tr.rest()
			}
			tr.out.WriteRune(ch)
			c.Next()
		case ch == '\n':
			tr.out.WriteRune(ch)
			tr.out.WriteString(tr.indent)
			c.Next()
		case ch == '$':
			err := tr.escape()
			if err != nil {
				return err
			}
		case tr.isQuote(ch):
			err := tr.literal()
			if err != nil {
				return err
			}
		default:
			done, err := tr.comment()
			if err != nil {
				return err
			}
			if !done {
				tr.out.WriteRune(ch)
				c.Next()
			}
		}
	}
	if err := c.Err(); err != nil {
		return err
	}
	return tr.errorf(errUnfinishedAction, tr.act.Row, 0, "a closing brace is missing")
}

// rest allows only white spaces after the closing brace.
func (tr *translation) rest() error {
	c := tr.c
	for !c.EOF() && isSpace(c.Current()) {
		c.Next()
	}
	if !c.EOF() {
		return tr.errorf(errTextAfterAction, c.Row(), c.Col(), "%q", string(c.Current()))
	}
	return c.Err()
}

func (tr *translation) isQuote(ch rune) bool {
	for _, q := range tr.conv.Quotes {
		if ch == q {
			return true
		}
	}
	return false
}

func (tr *translation) literal() error {
	c := tr.c
	row, col := c.Row(), c.Col()
	quote := c.Current()
	tr.out.WriteRune(quote)
	c.Next()
	for !c.EOF() {
		ch := c.Current()
		switch {
		case ch == '\n':
			return tr.errorf(errEOLInString, row, col, "")
		case ch == quote:
			tr.out.WriteRune(ch)
			c.Next()
			return nil
		case tr.conv.Escape != 0 && ch == tr.conv.Escape:
			tr.out.WriteRune(ch)
			c.Next()
			if c.EOF() {
				return tr.errorf(errUnterminatedString, row, col, "")
			}
			if c.Current() == '\n' {
				return tr.errorf(errEOLInString, row, col, "")
			}
			tr.out.WriteRune(c.Current())
			c.Next()
		default:
			tr.out.WriteRune(ch)
			c.Next()
		}
	}
	return tr.errorf(errUnterminatedString, row, col, "")
}

// comment copies a comment starting at the current character. It returns false and consumes
// nothing when no comment starts there.
func (tr *translation) comment() (bool, error) {
	c := tr.c
	ch := c.Current()
	line := []rune(tr.conv.LineComment)
	block := []rune(tr.conv.BlockCommentOpen)
	lineStarts := len(line) == 2 && line[0] == ch
	blockStarts := len(block) == 2 && block[0] == ch
	if !lineStarts && !blockStarts {
		return false, nil
	}

	row, col := c.Row(), c.Col()
	c.Next()
	next := c.Current()
	switch {
	case !c.EOF() && lineStarts && next == line[1]:
		tr.out.WriteRune(ch)
		for !c.EOF() && c.Current() != '\n' {
			tr.out.WriteRune(c.Current())
			c.Next()
		}
		return true, nil
	case !c.EOF() && blockStarts && next == block[1]:
		tr.out.WriteRune(ch)
		tr.out.WriteRune(next)
		c.Next()
		closing := []rune(tr.conv.BlockCommentClose)
		for !c.EOF() {
			cur := c.Current()
			if cur == closing[0] {
				c.Next()
				if c.Current() == closing[1] {
					tr.out.WriteRune(cur)
					tr.out.WriteRune(c.Current())
					c.Next()
					return true, nil
				}
				tr.out.WriteRune(cur)
				continue
			}
			tr.out.WriteRune(cur)
			if cur == '\n' {
				tr.out.WriteString(tr.indent)
			}
			c.Next()
		}
		return false, tr.errorf(errUnterminatedComment, row, col, "")
	}

	// The first character stands alone. The current one is processed by the caller.
	tr.out.WriteRune(ch)
	return true, nil
}

func (tr *translation) escape() error {
	c := tr.c
	row, col := c.Row(), c.Col()
	c.Next()
	if c.EOF() {
		tr.out.WriteRune('$')
		return nil
	}

	switch ch := c.Current(); {
	case ch == '+' || ch == 'c' || ch == 'v':
		if !tr.act.Lexer {
			return tr.errorf(errLexerEscape, row, col, "$%c", ch)
		}
		c.Next()
		switch ch {
		case '+':
			tr.out.WriteString(tr.slots.NextChar())
		case 'c':
			tr.out.WriteString(tr.slots.CurrentChar())
		case 'v':
			tr.out.WriteString(tr.slots.LexicalValue())
		}
		return nil
	case ch == '<':
		c.Next()
		var name strings.Builder
		for !c.EOF() && c.Current() != '>' && c.Current() != '\n' {
			name.WriteRune(c.Current())
			c.Next()
		}
		if c.Current() != '>' {
			return tr.errorf(errUnknownType, row, col, "a type name must be closed with '>'")
		}
		c.Next()
		typ, ok := tr.lookupType(name.String())
		if !ok {
			return tr.errorf(errUnknownType, row, col, "%v", name.String())
		}
		return tr.reference(row, col, typ)
	case ch == '$' || ch == '-' || isDigit(ch):
		return tr.reference(row, col, nil)
	}

	tr.out.WriteRune('$')
	return nil
}

// reference rewrites `$$` or `$N` following a `$` and an optional type. typ is nil when the
// reference is not explicitly typed.
func (tr *translation) reference(row, col int, typ *grammar.Type) error {
	c := tr.c
	count := tr.act.ElementCount
	if c.Current() == '$' {
		c.Next()
		if tr.act.Lexer {
			return tr.errorf(errRuleEscape, row, col, "$$")
		}
		if typ == nil {
			typ = tr.act.ResultType
		}
		tr.out.WriteString(tr.slots.ValueSlot(count-1, typ, true))
		return nil
	}

	var digits strings.Builder
	if c.Current() == '-' {
		digits.WriteRune('-')
		c.Next()
	}
	for !c.EOF() && isDigit(c.Current()) {
		digits.WriteRune(c.Current())
		c.Next()
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		if digits.String() == "-" && typ == nil {
			tr.out.WriteString("$-")
			return nil
		}
		return tr.errorf(errElementOutOfRange, row, col, "an element number is missing")
	}
	if tr.act.Lexer {
		return tr.errorf(errRuleEscape, row, col, "$%v", n)
	}
	if n > count {
		return tr.errorf(errElementOutOfRange, row, col, "$%v (the rule has %v elements)", n, count)
	}
	if typ == nil && n >= 1 && n <= len(tr.act.ElementTypes) {
		typ = tr.act.ElementTypes[n-1]
	}
	tr.out.WriteString(tr.slots.ValueSlot(count-n, typ, false))
	return nil
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
