package language

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Printer writes generated source. It keeps track of the current column so that the items of a
// table wrap before the right margin.
type Printer struct {
	w      io.Writer
	err    error
	col    int
	margin int
	indent int
}

func NewPrinter(w io.Writer, marginColumns, indentSpaces int) *Printer {
	return &Printer{
		w:      w,
		margin: marginColumns,
		indent: indentSpaces,
	}
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) write(s string) {
	if p.err != nil || s == "" {
		return
	}
	_, p.err = io.WriteString(p.w, s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.col = utf8.RuneCountInString(s[i+1:])
	} else {
		p.col += utf8.RuneCountInString(s)
	}
}

func (p *Printer) Print(s string) {
	p.write(s)
}

func (p *Printer) Printf(format string, a ...interface{}) {
	p.write(fmt.Sprintf(format, a...))
}

func (p *Printer) Println(s string) {
	p.write(s)
	p.write("\n")
}

// Indent returns the indentation of n levels.
func (p *Printer) Indent(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n*p.indent)
}

// Line writes a line indented by n levels.
func (p *Printer) Line(n int, format string, a ...interface{}) {
	p.write(p.Indent(n))
	p.write(fmt.Sprintf(format, a...))
	p.write("\n")
}

// Items writes a comma separated list. A new line indented by n levels is started whenever the
// next item would cross the margin.
func (p *Printer) Items(n int, items []string) {
	for i, item := range items {
		if i < len(items)-1 {
			item += ","
		}
		width := utf8.RuneCountInString(item)
		switch {
		case i == 0:
			if p.col == 0 {
				p.write(p.Indent(n))
			}
		case p.col+1+width > p.margin:
			p.write("\n")
			p.write(p.Indent(n))
		default:
			p.write(" ")
		}
		p.write(item)
	}
}

// Column returns the column the next character is written at, starting from 0.
func (p *Printer) Column() int {
	return p.col
}
