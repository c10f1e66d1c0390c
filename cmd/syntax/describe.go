package main

import (
	"os"

	"github.com/nihei9/syntax/grammar"
	"github.com/spf13/cobra"
)

var describeFlags = struct {
	algorithm *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "describe <grammar file path>",
		Short:   "Print the states of the automaton of a grammar",
		Example: `  syntax describe -a slr calc.toml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	describeFlags.algorithm = cmd.Flags().StringP("algorithm", "a", "lalr", "automaton construction (s|slr, l|lalr)")
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	alg, err := grammar.ParseAlgorithm(*describeFlags.algorithm)
	if err != nil {
		return err
	}
	a, err := readAutomaton(args[0], alg)
	if err != nil {
		return err
	}

	a.Describe(os.Stdout)
	warnConflicts(a)

	return nil
}
