package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/nihei9/syntax/compressor"
	"github.com/nihei9/syntax/config"
	"github.com/nihei9/syntax/generator"
	"github.com/nihei9/syntax/language"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var generateFlags = struct {
	cfg    *config.Config
	config *string
}{
	cfg: config.New(),
}

func init() {
	cmd := &cobra.Command{
		Use:     "generate <grammar file path>",
		Short:   "Generate a parser from a grammar description",
		Example: `  syntax generate -l java -p tabular calc.toml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runGenerate,
	}
	generateFlags.cfg.BindFlags(cmd.Flags())
	generateFlags.config = cmd.Flags().StringP("config", "c", "", "run-config file (TOML); flags override its settings")
	rootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) (retErr error) {
	cfg := generateFlags.cfg
	cfg.Source = args[0]
	if *generateFlags.config != "" {
		err := cfg.LoadFile(*generateFlags.config, cmd.Flags().Changed)
		if err != nil {
			return err
		}
	}
	err := cfg.Validate()
	if err != nil {
		return err
	}

	a, err := readAutomaton(cfg.Source, cfg.Algorithm)
	if err != nil {
		return err
	}
	tab, err := compressor.Pack(a, cfg.Packing)
	if err != nil {
		return fmt.Errorf("Cannot pack the tables: %w", err)
	}

	opts := &language.Options{
		Name:           a.Grammar.Name,
		LineDirectives: cfg.EmitLineDirectives,
	}
	b, err := language.New(cfg.Language, opts)
	if err != nil {
		return err
	}

	var skeletons fs.FS
	if cfg.SkeletonDir != "" {
		skeletons = os.DirFS(cfg.SkeletonDir)
	} else {
		skeletons = language.Skeletons()
	}

	output := newLazyFile(cfg.OutputPath(b))
	defer closeFile(output, &retErr)
	run := &generator.Run{
		Config:    cfg,
		Automaton: a,
		Table:     tab,
		Backend:   b,
		Skeletons: skeletons,
		Output:    output,
	}
	if path := cfg.IncludePath(b); path != "" {
		opts.IncludeName = path
		include := newLazyFile(path)
		defer closeFile(include, &retErr)
		run.Include = include
	}
	if path := cfg.ReportPath(); path != "" {
		report := newLazyFile(path)
		defer closeFile(report, &retErr)
		run.Report = report
	}

	sum, err := run.Execute()
	if err != nil {
		return err
	}

	warnConflicts(a)
	for _, msg := range sum.Warnings {
		pterm.Warning.Println(msg)
	}
	pterm.Info.Println(fmt.Sprintf("%v: %v states, %v table entries", sum.Output, sum.States, sum.TableSize))

	return nil
}
