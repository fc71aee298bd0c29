package pcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	// TestCase-1
	r, err := ParseRule("<S> ::= <NP> <VP>")
	require.NoError(t, err)
	require.Len(t, r, 1)
	assert.Equal(t, "<S> ::= <NP> <VP> ; 1.000", r[0].String())
	assert.True(t, r[0].IsBinary())

	// TestCase-2
	r, err = ParseRule(`<NP|2> ::= <DT> <NN> ; 0.7 | dog ; 0.2 | "cat";0.1`)
	require.NoError(t, err)
	require.Len(t, r, 3)
	assert.Equal(t, "<NP|2> ::= <DT> <NN> ; 0.700", r[0].String())
	assert.Equal(t, Symbol("NP|2"), r[0].Left)
	assert.Equal(t, []Symbol{"DT", "NN"}, r[0].Right)
	assert.Equal(t, "<NP|2> ::= dog ; 0.200", r[1].String())
	assert.True(t, r[1].IsLexical())
	assert.Equal(t, "cat", r[2].Word)
	assert.InDelta(t, 0.1, r[2].Weight, 1e-12)

	// TestCase-3: quoted words keep characters that bare words can't hold
	r, err = ParseRule(`<PUNC> ::= "|" ; 0.5 | "<" ; 0.5`)
	require.NoError(t, err)
	require.Len(t, r, 2)
	assert.Equal(t, "|", r[0].Word)
	assert.Equal(t, `<PUNC> ::= "|" ; 0.500`, r[0].String())
	assert.Equal(t, "<", r[1].Word)
}

func TestParseRuleFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unbalanced bracket", "<S> ::= <NP <VP> ; 0.3"},
		{"terminal on the left", "s ::= <NP> <VP>"},
		{"missing ::=", "<S> <NP> <VP>"},
		{"unit rule", "<S> ::= <VP>"},
		{"three symbols", "<S> ::= <NP> <VP> <PP>"},
		{"terminal in binary rule", "<S> ::= <NP> barks"},
		{"empty alternative", "<S> ::= <NP> <VP> | ; 0.2"},
		{"bad weight", "<S> ::= <NP> <VP> ; high"},
		{"negative weight", "<NP> ::= dog ; -0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestSymbolBase(t *testing.T) {
	assert.Equal(t, Symbol("NP"), Symbol("NP|3").Base())
	assert.Equal(t, Symbol("NP"), Symbol("NP|3|x").Base())
	assert.Equal(t, Symbol("VP"), Symbol("VP").Base())
}
