package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/driver"
	"github.com/nihei9/syntax/grammar"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	algorithm *string
	packing   *string
	onlyParse *bool
	decisions *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | syntax parse calc.toml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.algorithm = cmd.Flags().StringP("algorithm", "a", "lalr", "automaton construction (s|slr, l|lalr)")
	parseFlags.packing = cmd.Flags().StringP("packing", "p", "packed", "table layout (p|packed, t|tabular)")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "when this option is enabled, the parser performs only parse and doesn't build a tree")
	parseFlags.decisions = cmd.Flags().Bool("decisions", false, "print the decisions of the parser")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		retErr = fmt.Errorf("an unexpected error occurred: %v", v)
		fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
	}()

	alg, err := grammar.ParseAlgorithm(*parseFlags.algorithm)
	if err != nil {
		return err
	}
	mode, err := compressor.ParseMode(*parseFlags.packing)
	if err != nil {
		return err
	}

	a, err := readAutomaton(args[0], alg)
	if err != nil {
		return err
	}
	warnConflicts(a)
	tab, err := compressor.Pack(a, mode)
	if err != nil {
		return fmt.Errorf("Cannot pack the tables: %w", err)
	}
	lex, err := driver.CompileLexSpec(a.Grammar)
	if err != nil {
		return fmt.Errorf("Cannot compile the lexical specification: %w", err)
	}

	var p *driver.Parser
	var treeAct *driver.SyntaxTreeActionSet
	{
		src := os.Stdin
		if *parseFlags.source != "" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			src = f
		}

		toks, err := driver.NewTokenStream(lex, src)
		if err != nil {
			return err
		}

		var opts []driver.ParserOption
		if !*parseFlags.onlyParse {
			treeAct = driver.NewSyntaxTreeActionSet(a.Grammar)
			opts = append(opts, driver.SemanticAction(treeAct))
		}

		p, err = driver.NewParser(a, tab, toks, opts...)
		if err != nil {
			return err
		}
	}

	err = p.Parse()
	if err != nil {
		return err
	}

	if *parseFlags.decisions {
		for _, d := range p.Decisions() {
			fmt.Fprintln(os.Stdout, d)
		}
	}

	synErrs := p.SyntaxErrors()
	for _, synErr := range synErrs {
		tok := synErr.Token

		var msg string
		switch {
		case tok.EOF():
			msg = "<eof>"
		case tok.Invalid():
			msg = fmt.Sprintf("'%s' (<invalid>)", tok.Lexeme())
		default:
			msg = fmt.Sprintf("'%s' (%v)", tok.Lexeme(), a.Grammar.Terminals[tok.TerminalID()].Name)
		}

		fmt.Fprintf(os.Stderr, "%v:%v: %v: %v", synErr.Row, synErr.Col, synErr.Message, msg)
		if len(synErr.ExpectedTerminals) > 0 {
			fmt.Fprintf(os.Stderr, "; expected: %v", strings.Join(synErr.ExpectedTerminals, ", "))
		}
		fmt.Fprintf(os.Stderr, "\n")
	}

	if !p.Accepted() {
		return fmt.Errorf("the input was not accepted")
	}
	if len(synErrs) == 0 && treeAct != nil {
		driver.PrintTree(os.Stdout, treeAct.CST())
	}

	return nil
}
