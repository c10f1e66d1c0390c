package driver

import (
	"fmt"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/nihei9/syntax/grammar"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("syntax.driver")
}

// LexSpec is a compiled lexical specification together with the mapping from its kinds to
// terminal indexes.
type LexSpec struct {
	spec           *mlspec.CompiledLexSpec
	kindToTerminal []int
	skip           []bool
}

// CompileLexSpec builds a lexer for the terminals of a grammar. Literals take precedence over
// patterns. Terminals with neither, error tokens included, are never produced by the lexer.
func CompileLexSpec(g *grammar.Grammar) (*LexSpec, error) {
	var literals []*mlspec.LexEntry
	var patterns []*mlspec.LexEntry
	kind2Term := map[mlspec.LexKindName]*grammar.Terminal{}
	for _, term := range g.Terminals[1:] {
		if term.Error {
			continue
		}
		kind := mlspec.LexKindName(fmt.Sprintf("t_%v", term.Index))
		switch {
		case term.Pattern != "":
			patterns = append(patterns, &mlspec.LexEntry{
				Kind:    kind,
				Pattern: mlspec.LexPattern(term.Pattern),
			})
		case term.Literal != "":
			literals = append(literals, &mlspec.LexEntry{
				Kind:    kind,
				Pattern: mlspec.LexPattern(mlspec.EscapePattern(term.Literal)),
			})
		default:
			continue
		}
		kind2Term[kind] = term
	}
	if len(kind2Term) == 0 {
		return nil, fmt.Errorf("no terminal of %v has a pattern or a literal", g.Name)
	}

	clspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    lexSpecName(g.Name),
		Entries: append(literals, patterns...),
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			for i, cErr := range cErrs {
				if i > 0 {
					fmt.Fprintf(&b, "\n")
				}
				writeCompileError(&b, kind2Term, cErr)
			}
			return nil, fmt.Errorf("%v", b.String())
		}
		return nil, err
	}

	lex := &LexSpec{
		spec:           clspec,
		kindToTerminal: make([]int, len(clspec.KindNames)),
		skip:           make([]bool, len(clspec.KindNames)),
	}
	for i, k := range clspec.KindNames {
		term, ok := kind2Term[k]
		if !ok {
			lex.kindToTerminal[i] = -1
			continue
		}
		lex.kindToTerminal[i] = term.Index
		lex.skip[i] = term.Skip
	}
	tracer().Debugf("lexical specification of %v: %v kinds", g.Name, len(kind2Term))

	return lex, nil
}

// lexSpecName turns a grammar name into a snake_case identifier, the only form of name a lexical
// specification accepts. Runs of other characters become one underscore.
func lexSpecName(name string) string {
	var b strings.Builder
	sep := false
	for _, c := range strings.ToLower(name) {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(c)
			continue
		}
		sep = true
	}
	s := b.String()
	switch {
	case s == "":
		return "grammar"
	case s[0] >= '0' && s[0] <= '9':
		return "g_" + s
	}
	return s
}

func writeCompileError(b *strings.Builder, kind2Term map[mlspec.LexKindName]*grammar.Terminal, cErr *mlcompiler.CompileError) {
	name := cErr.Kind.String()
	if term, ok := kind2Term[cErr.Kind]; ok {
		name = term.Name
	}
	fmt.Fprintf(b, "%v: %v", name, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(b, ": %v", cErr.Detail)
	}
}
