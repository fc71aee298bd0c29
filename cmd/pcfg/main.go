package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pcfg "github.com/ling0322/pcfgparser"
	"github.com/ling0322/pcfgparser/internal/config"
)

// globalFlags are shared by every command and override the config file
type globalFlags struct {
	configPath string
	grammar    string
	algorithm  string
	beamWidth  int
	start      string
	debug      bool
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "pcfg",
		Short:        "Most probable parse trees under a probabilistic context free grammar",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&flags.grammar, "grammar", "g", "", "grammar file")
	pf.StringVarP(&flags.algorithm, "algorithm", "a", "", "parsing algorithm: cky or earley")
	pf.IntVar(&flags.beamWidth, "beam", pcfg.DefaultBeamWidth, "Earley prediction beam, 0 disables pruning")
	pf.StringVar(&flags.start, "start", "", "start category of Earley parses")
	pf.BoolVar(&flags.debug, "debug", false, "log chart statistics")

	rootCmd.AddCommand(newParseCmd(flags))
	rootCmd.AddCommand(newBulkParseCmd(flags))
	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newCheckCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// load reads the config file, applies the flags set on the command line and
// installs the logger
func (f *globalFlags) load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("grammar") {
		cfg.Grammar = f.grammar
	}
	if changed("algorithm") {
		cfg.Algorithm = f.algorithm
	}
	if changed("beam") {
		cfg.BeamWidth = f.beamWidth
	}
	if changed("start") {
		cfg.Start = f.start
	}
	if changed("debug") {
		cfg.Debug = f.debug
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, nil, errors.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Debug {
		pcfg.SetLogger(logger)
	}
	return cfg, logger, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
