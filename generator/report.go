package generator

import (
	"fmt"
	"io"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/language"
)

const reportWidth = 80

// Summary describes a finished run.
type Summary struct {
	Source    string
	Output    string
	Include   string
	Algorithm grammar.Algorithm
	Language  language.ID
	Packing   compressor.Mode
	Driver    language.Driver

	Tokens       int
	NonTerminals int
	Types        int
	Rules        int
	Errors       int
	Actions      int
	GoTos        int
	Recoveries   int
	States       int

	// TableSize is the number of integers in the emitted tables. UniqueRows and Displaced are
	// the sizes the tabular table would shrink to, or 0 when not computed.
	TableSize  int
	UniqueRows int
	Displaced  int

	Conflicts []*grammar.Conflict
	Warnings  []string
}

func (r *Run) summarize(warnings []string) *Summary {
	a := r.Automaton
	g := a.Grammar
	s := &Summary{
		Source:       r.Config.Source,
		Output:       r.Config.OutputPath(r.Backend),
		Algorithm:    a.Algorithm,
		Language:     r.Backend.ID(),
		Packing:      r.Table.Mode(),
		Driver:       r.Config.Driver,
		Tokens:       len(g.Terminals),
		NonTerminals: len(g.NonTerminals),
		Types:        len(g.Types),
		Rules:        len(g.Rules),
		Errors:       len(g.Messages),
		Actions:      a.ActionCount(),
		GoTos:        a.GoToCount(),
		Recoveries:   a.RecoveryCount(),
		States:       len(a.States),
		Conflicts:    a.Conflicts,
		Warnings:     warnings,
	}
	if r.Include != nil {
		s.Include = r.Config.IncludePath(r.Backend)
	}

	switch tab := r.Table.(type) {
	case *compressor.TabularTable:
		s.TableSize = len(tab.Rows)*(tab.TerminalCount+tab.NonTerminalCount) + len(tab.Messages)
		for _, c := range []struct {
			comp compressor.Compressor
			size *int
		}{
			{comp: compressor.NewUniqueRowsTable(), size: &s.UniqueRows},
			{comp: compressor.NewRowDisplacementTable(compressor.ActionError), size: &s.Displaced},
		} {
			size, err := tab.Compress(c.comp)
			if err != nil {
				tracer().Debugf("compression failed: %v", err)
				continue
			}
			*c.size = size
		}
	case *compressor.PackedTable:
		s.TableSize = 2*len(tab.Entries) + 2*len(tab.GoToEntries) + 3*len(tab.GoTos) + 4*len(tab.States)
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Rows returns the fields of the summary as name and value pairs.
func (s *Summary) Rows() [][]string {
	include := s.Include
	if include == "" {
		include = "-"
	}
	rows := [][]string{
		{"Source", s.Source},
		{"Output", s.Output},
		{"Include", include},
		{"Algorithm", string(s.Algorithm)},
		{"Language", string(s.Language)},
		{"Packed", yesNo(s.Packing == compressor.ModePacked)},
		{"Driver", string(s.Driver)},
		{"Tokens", fmt.Sprint(s.Tokens)},
		{"Non Terminals", fmt.Sprint(s.NonTerminals)},
		{"Types", fmt.Sprint(s.Types)},
		{"Rules", fmt.Sprint(s.Rules)},
		{"Errors", fmt.Sprint(s.Errors)},
		{"Actions", fmt.Sprint(s.Actions)},
		{"Gotos", fmt.Sprint(s.GoTos)},
		{"Recoveries", fmt.Sprint(s.Recoveries)},
		{"States", fmt.Sprint(s.States)},
		{"Table Size", fmt.Sprint(s.TableSize)},
	}
	if s.UniqueRows > 0 {
		rows = append(rows, []string{"Unique Rows", fmt.Sprint(s.UniqueRows)})
	}
	if s.Displaced > 0 {
		rows = append(rows, []string{"Row Displacement", fmt.Sprint(s.Displaced)})
	}
	return rows
}

// WriteReport writes the summary, the conflicts, and with verbose the states of the automaton.
func (s *Summary) WriteReport(w io.Writer, a *grammar.Automaton, verbose bool) error {
	var b strings.Builder
	b.WriteString(rosed.Edit("").
		InsertTableOpts(0, s.Rows(), reportWidth, rosed.Options{
			TableBorders: true,
		}).
		String())
	b.WriteString("\n")

	fmt.Fprintf(&b, "\n%v conflicts\n", len(s.Conflicts))
	for _, c := range s.Conflicts {
		b.WriteString(rosed.Edit(c.String()).Wrap(reportWidth).String())
		b.WriteString("\n")
	}
	for _, msg := range s.Warnings {
		fmt.Fprintf(&b, "warning: %v\n", msg)
	}
	if verbose && a != nil {
		b.WriteString("\n")
		a.Describe(&b)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
