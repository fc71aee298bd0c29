package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcfg "github.com/ling0322/pcfgparser"
)

const toyGrammar = "../../testdata/toy.grammar"

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pcfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
grammar: ../../testdata/toy.grammar
algorithm: earley
workers: 8
debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, toyGrammar, cfg.Grammar)
	assert.Equal(t, "earley", cfg.Algorithm)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Debug)

	// Missing keys keep their defaults
	assert.Equal(t, pcfg.DefaultBeamWidth, cfg.BeamWidth)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadFailures(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "grammar: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "grammar: toy.grammar\nworkers: 0\n"))
	assert.ErrorContains(t, err, "workers")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(c *Config)
		problems int
	}{
		{"valid", func(c *Config) {}, 0},
		{"empty grammar", func(c *Config) { c.Grammar = " " }, 1},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "lr" }, 1},
		{"negative beam", func(c *Config) { c.BeamWidth = -1 }, 1},
		{"bracketed start", func(c *Config) { c.Start = "<S>" }, 1},
		{"several problems", func(c *Config) { c.Grammar = ""; c.Workers = 0 }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Grammar = toyGrammar
			tt.modify(cfg)
			assert.Len(t, cfg.Validate(), tt.problems)
		})
	}
}

func TestNewParser(t *testing.T) {
	cfg := Default()
	cfg.Grammar = toyGrammar
	cfg.Algorithm = "Earley"
	cfg.BeamWidth = 0

	p, err := cfg.NewParser()
	require.NoError(t, err)
	assert.Equal(t, pcfg.AlgorithmEarley, p.Algorithm())

	tree, err := p.Parse("the man saw a dog")
	require.NoError(t, err)
	assert.Equal(t, pcfg.Symbol("S"), tree.Symbol)

	// A start category missing from the grammar makes every Earley parse fail
	cfg.Start = "NOPE"
	p, err = cfg.NewParser()
	require.NoError(t, err)
	_, err = p.Parse("the man saw a dog")
	assert.ErrorIs(t, err, pcfg.ErrParseFailure)

	cfg.Grammar = "missing.grammar"
	_, err = cfg.NewParser()
	assert.Error(t, err)
}
