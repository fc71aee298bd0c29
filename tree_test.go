package pcfg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapBacktracer resolves references through a map, like a tiny chart
type mapBacktracer map[string]struct {
	symbol   Symbol
	word     string
	children []string
}

func (m mapBacktracer) backtrace(ref string) (Symbol, string, []string) {
	entry := m[ref]
	return entry.symbol, entry.word, entry.children
}

func TestConstructParsingTree(t *testing.T) {
	chart := mapBacktracer{
		"s":  {symbol: "S|2", children: []string{"np", "vp"}},
		"np": {symbol: "NP|1", word: "dog"},
		"vp": {symbol: "VP", word: "barks"},
	}

	tree := newTree[string](chart, "s", 0.25)
	assert.Equal(t, Symbol("S"), tree.Symbol)
	assert.Equal(t, 0.25, tree.Probability)

	data, err := json.Marshal(tree)
	require.NoError(t, err)
	// Only the root label is stripped
	assert.Equal(t, `["S",["NP|1","dog"],["VP","barks"]]`, string(data))
}

func TestNodeString(t *testing.T) {
	node := &Node{
		Symbol: "S",
		Children: []*Node{
			{Symbol: "NP", Word: "dog"},
			{Symbol: "VP", Word: "barks"},
		},
	}
	assert.Equal(t, "(S \n  (NP dog) \n  (VP barks))", node.String())
}

func TestNodeScore(t *testing.T) {
	g := mustParseGrammar(t, unambiguousGrammar)

	tree, err := CYK(g, tokensOf(g, "the dog saw a cat"))
	require.NoError(t, err)
	assert.InDelta(t, 0.6*0.5*0.7*0.4*0.5, tree.Score(g), 1e-15)

	// A tree shape the grammar can't produce scores 0
	node := &Node{Symbol: "S", Children: []*Node{{Symbol: "DT", Word: "the"}}}
	assert.Equal(t, 0.0, node.Score(g))
}

func TestTreeScoreSuffixedRoot(t *testing.T) {
	g := mustParseGrammar(t, `
		;!start: <NP|3>
		<NP|3> ::= <DT> <NN> ; 0.8
		<DT> ::= the ; 0.5
		<NN> ::= dog ; 0.25
	`)
	tokens := tokensOf(g, "the dog")

	cyk, err := CYK(g, tokens)
	require.NoError(t, err)
	earley, err := Earley(g, tokens, WithStartSymbol(g.Start))
	require.NoError(t, err)

	for _, tree := range []*Tree{cyk, earley} {
		assert.Equal(t, Symbol("NP"), tree.Symbol)
		assert.InDelta(t, 0.1, tree.Probability, 1e-15)
		assert.InDelta(t, tree.Probability, tree.Score(g), 1e-15)
	}

	// The stripped label alone has no rules
	assert.Equal(t, 0.0, cyk.Node.Score(g))
}
