// Package generator writes a parser. It threads the translated actions and the compressed tables
// of one grammar through a language backend and a skeleton.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/config"
	verr "github.com/nihei9/syntax/error"
	"github.com/nihei9/syntax/grammar"
	"github.com/nihei9/syntax/language"
	"github.com/nihei9/syntax/translator"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("syntax.generator")
}

// Run is the context of one generation. Include and Report may be nil.
type Run struct {
	Config    *config.Config
	Automaton *grammar.Automaton
	Table     compressor.Table
	Backend   language.Backend
	Skeletons fs.FS

	Output  io.Writer
	Include io.Writer
	Report  io.Writer
}

// Execute renders the parser. The output streams are written only when every part was rendered
// without errors; otherwise the collected errors are returned as verr.SpecErrors.
func (r *Run) Execute() (*Summary, error) {
	g := r.Automaton.Grammar

	var out bytes.Buffer
	w := &writer{
		Run: r,
		g:   g,
		p:   language.NewPrinter(&out, r.Config.MarginColumns, r.Config.IndentSpaces),
	}
	conv := r.Backend.Conventions()
	slots := r.Backend.Slots()
	src := translator.Source(r.Config.Source, filepath.Base(r.Config.Source))
	w.ruleTr = translator.New(conv, slots, g.LookupType, src, translator.Indent(w.p.Indent(r.Backend.ActionLevel())))
	w.lexTr = translator.New(conv, slots, g.LookupType, src, translator.Indent(w.p.Indent(r.Backend.LexerActionLevel())))

	w.header()
	w.tables()
	err := w.skeleton()
	if err != nil {
		return nil, err
	}
	r.Backend.Footer(w.p)

	if len(w.errs) > 0 {
		tracer().Errorf("%v errors found; nothing was written", len(w.errs))
		return nil, w.errs
	}
	if err := w.p.Err(); err != nil {
		return nil, err
	}

	var incl bytes.Buffer
	if r.Include != nil {
		ip := language.NewPrinter(&incl, r.Config.MarginColumns, r.Config.IndentSpaces)
		r.Backend.Include(ip, g)
		if err := ip.Err(); err != nil {
			return nil, err
		}
	}

	if _, err := r.Output.Write(out.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write the parser: %w", err)
	}
	if r.Include != nil {
		if _, err := r.Include.Write(incl.Bytes()); err != nil {
			return nil, fmt.Errorf("failed to write the include file: %w", err)
		}
	}

	sum := r.summarize(w.warnings)
	if r.Report != nil {
		if err := sum.WriteReport(r.Report, r.Automaton, r.Config.Verbose); err != nil {
			return nil, fmt.Errorf("failed to write the report: %w", err)
		}
	}
	return sum, nil
}

type writer struct {
	*Run
	g        *grammar.Grammar
	p        *language.Printer
	ruleTr   *translator.Translator
	lexTr    *translator.Translator
	errs     verr.SpecErrors
	warnings []string
}

func (w *writer) header() {
	b := w.Backend
	b.Header(w.p, w.g)
	if w.Include == nil {
		b.Declarations(w.p, w.g)
	}
	b.StackDeclarations(w.p, w.g)

	b.RuleActionsOpen(w.p)
	for _, r := range w.g.Rules {
		if r.IsAugmented() || r.Action == "" {
			continue
		}
		b.RuleActionCaseOpen(w.p, w.g, r)
		b.LineDirective(w.p, r.ActionRow, w.Config.Source)
		elemTypes := make([]*grammar.Type, len(r.RHS))
		for i, sym := range r.RHS {
			elemTypes[i] = w.g.SymbolType(sym)
		}
		w.translate(w.ruleTr, b.ActionLevel(), &translator.Action{
			Code:         r.Action,
			Row:          r.ActionRow,
			ElementCount: len(r.RHS),
			ResultType:   r.LHS.Type,
			ElementTypes: elemTypes,
		})
		b.RuleActionCaseClose(w.p)
	}
	b.RuleActionsClose(w.p)

	if len(w.g.LexerActions) == 0 {
		return
	}
	var modes []string
	byMode := map[string][]*grammar.LexerAction{}
	for _, act := range w.g.LexerActions {
		if _, ok := byMode[act.Mode]; !ok {
			modes = append(modes, act.Mode)
		}
		byMode[act.Mode] = append(byMode[act.Mode], act)
	}
	b.LexerActionsOpen(w.p, modes)
	for _, mode := range modes {
		b.LexerActionOpen(w.p, mode)
		for _, act := range byMode[mode] {
			b.LineDirective(w.p, act.Row, w.Config.Source)
			w.translate(w.lexTr, b.LexerActionLevel(), &translator.Action{
				Code:  act.Action,
				Row:   act.Row,
				Lexer: true,
			})
		}
		b.LexerActionClose(w.p)
	}
	b.LexerActionsClose(w.p, modes)
}

// translate writes one action. A failed translation is collected and the run goes on so that every
// error is reported at once.
func (w *writer) translate(tr *translator.Translator, level int, act *translator.Action) {
	var b strings.Builder
	err := tr.Translate(&b, act)
	if err != nil {
		var specErr *verr.SpecError
		if !errors.As(err, &specErr) {
			specErr = &verr.SpecError{
				Cause:      err,
				FilePath:   w.Config.Source,
				SourceName: filepath.Base(w.Config.Source),
				Row:        act.Row,
			}
		}
		w.errs = append(w.errs, specErr)
		return
	}
	code := strings.TrimSpace(b.String())
	if code != "" {
		w.p.Line(level, "%v", code)
	}
}

func (w *writer) tables() {
	b := w.Backend
	switch tab := w.Table.(type) {
	case *compressor.TabularTable:
		b.TabularTable(w.p, tab)
	case *compressor.PackedTable:
		b.PackedActions(w.p, tab)
		b.PackedGoTos(w.p, tab)
		b.PackedStates(w.p, tab)
	}
	b.ErrorTable(w.p, w.g.Messages)
	b.RecoveryTable(w.p, w.g.ErrorTokens)
	b.GrammarTable(w.p, w.g)
}

// skeleton copies the runtime of the parser and then the trailing source. A missing skeleton
// leaves the tables alone in the output.
func (w *writer) skeleton() error {
	name := w.Backend.SkeletonName(w.Config.Driver, w.Table.Mode())
	src, err := fs.ReadFile(w.Skeletons, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		msg := fmt.Sprintf("the skeleton %v was not found; only the tables were generated", name)
		tracer().Infof("%v", msg)
		w.warnings = append(w.warnings, msg)
		w.Backend.MissingSkeleton(w.p, name)
	case err != nil:
		return fmt.Errorf("failed to read the skeleton %v: %w", name, err)
	default:
		w.p.Print(string(src))
		if len(src) > 0 && src[len(src)-1] != '\n' {
			w.p.Println("")
		}
	}

	if w.g.Trailer != "" {
		w.Backend.LineDirective(w.p, w.g.TrailerRow, w.Config.Source)
		w.p.Println(strings.TrimRight(w.g.Trailer, "\n"))
	}
	return nil
}
