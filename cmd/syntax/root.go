package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

// tracerKeys lists the tracers of the packages a run goes through.
var tracerKeys = []string{
	"syntax.spec",
	"syntax.config",
	"syntax.grammar",
	"syntax.compressor",
	"syntax.translator",
	"syntax.language",
	"syntax.generator",
	"syntax.driver",
}

var rootFlags = struct {
	trace *string
}{}

var rootCmd = &cobra.Command{
	Use:   "syntax",
	Short: "Generate an SLR(1) or LALR(1) parser from a grammar",
	Long: `syntax provides three features:
- Generates a C, Java or Pascal parser from a grammar description.
- Describes the automaton of a grammar and its conflicts.
- Parses a text stream with the tables of a grammar.
  This feature is primarily aimed at debugging the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := tracing.TraceLevelFromString(*rootFlags.trace)
		for _, key := range tracerKeys {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	return rootCmd.Execute()
}
