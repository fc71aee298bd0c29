// Package config loads the settings shared by the pcfg commands and server.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	pcfg "github.com/ling0322/pcfgparser"
)

// Config holds the settings of a parsing session. Command line flags override
// the values read from file
type Config struct {
	Grammar   string `yaml:"grammar"`    // Path of the grammar text file
	Algorithm string `yaml:"algorithm"`  // "cky" or "earley"
	BeamWidth int    `yaml:"beam_width"` // Earley prediction beam, 0 disables pruning
	Start     string `yaml:"start"`      // Overrides the start directive of the grammar
	Workers   int    `yaml:"workers"`    // Goroutines used by bulk parsing
	Addr      string `yaml:"addr"`       // Listen address of the HTTP server
	Debug     bool   `yaml:"debug"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Algorithm: string(pcfg.AlgorithmCKY),
		BeamWidth: pcfg.DefaultBeamWidth,
		Workers:   4,
		Addr:      ":8080",
	}
}

// Load reads a YAML file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config '%s'", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config '%s'", path)
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, errors.Errorf("invalid config '%s': %s", path, strings.Join(problems, "; "))
	}
	return cfg, nil
}

// Validate returns every problem found in the configuration
func (c *Config) Validate() []string {
	var problems []string

	if strings.TrimSpace(c.Grammar) == "" {
		problems = append(problems, "grammar path cannot be empty")
	}
	if _, err := pcfg.ParseAlgorithm(c.Algorithm); err != nil {
		problems = append(problems, err.Error())
	}
	if c.BeamWidth < 0 {
		problems = append(problems, "beam_width cannot be negative")
	}
	if c.Workers < 1 {
		problems = append(problems, "workers must be at least 1")
	}
	if c.Start != "" && strings.ContainsAny(c.Start, "<> \t\"") {
		problems = append(problems, "start must be a bare category name")
	}

	return problems
}

// Options converts the configuration to parser options
func (c *Config) Options() ([]pcfg.Option, error) {
	algorithm, err := pcfg.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return nil, err
	}

	earleyOptions := []pcfg.EarleyOption{pcfg.WithBeamWidth(c.BeamWidth)}
	if c.Start != "" {
		earleyOptions = append(earleyOptions, pcfg.WithStartSymbol(pcfg.Symbol(c.Start)))
	}
	return []pcfg.Option{
		pcfg.WithAlgorithm(algorithm),
		pcfg.WithEarleyOptions(earleyOptions...),
	}, nil
}

// NewParser loads the grammar and builds a parser from the configuration
func (c *Config) NewParser() (*pcfg.Parser, error) {
	grammar, err := pcfg.LoadGrammar(c.Grammar)
	if err != nil {
		return nil, err
	}
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return pcfg.NewParser(grammar, opts...), nil
}
