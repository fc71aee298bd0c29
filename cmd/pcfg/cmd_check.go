package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pcfg "github.com/ling0322/pcfgparser"
)

func newCheckCmd(flags *globalFlags) *cobra.Command {
	var printGrammar bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load a grammar and report categories unreachable from its start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			g, err := pcfg.LoadGrammar(cfg.Grammar)
			if err != nil {
				return err
			}
			return runCheck(g, cfg.Start, printGrammar, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&printGrammar, "print", false, "print the grammar after normalization")

	return cmd
}

func runCheck(g *pcfg.Grammar, start string, printGrammar bool, w io.Writer) error {
	startSymbol := g.Start
	if start != "" {
		startSymbol = pcfg.Symbol(start)
	}

	fmt.Fprintf(w, "%d rules, %d categories, start <%s>\n", len(g.Rules), len(g.Nonterminals()), startSymbol)
	if !g.IsLexical(startSymbol) && len(g.BinaryRules(startSymbol)) == 0 {
		fmt.Fprintf(w, "warning: start <%s> has no rules, only cky parses will succeed\n", startSymbol)
	}
	for _, s := range g.Unreachable(startSymbol) {
		fmt.Fprintf(w, "unreachable: <%s>\n", s)
	}

	if printGrammar {
		return g.Print(w)
	}
	return nil
}
