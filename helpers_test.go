package pcfg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const dogGrammar = `
<S> ::= <NP> <VP> ; 1.0
<NP> ::= dog ; 1.0
<VP> ::= barks ; 1.0
`

const unambiguousGrammar = `
; every sentence has at most one derivation
<S> ::= <NP> <VP> ; 1.0
<NP> ::= <DT> <NN> ; 1.0
<VP> ::= <VB> <NP> ; 1.0
<DT> ::= the ; 0.6 | a ; 0.4
<NN> ::= dog ; 0.5 | cat ; 0.5
<VB> ::= saw ; 0.7 | chased ; 0.3
`

// ppGrammar is ambiguous on prepositional phrase attachment
const ppGrammar = `
<S>  ::= <NP> <VP> ; 1.0
<VP> ::= <V> <NP> ; 0.6 | <VP> <PP> ; 0.4
<NP> ::= <NP> <PP> ; 0.3 | <DT> <NN> ; 0.7
<PP> ::= <P> <NP> ; 1.0
<DT> ::= the ; 1.0
<NN> ::= man ; 0.4 | dog ; 0.3 | telescope ; 0.3
<V>  ::= saw ; 1.0
<P>  ::= with ; 1.0
`

// firstWinsGrammar makes the Earley completer see the worse derivation of
// <S> -> <X> <Z> over the whole sentence first
const firstWinsGrammar = `
<S>  ::= <X> <Z> ; 1.0
<Z>  ::= <B2> <C> ; 0.5 | <B> <C> ; 0.5
<X>  ::= a ; 1.0
<B2> ::= b ; 0.1
<B>  ::= b ; 0.9
<C>  ::= c ; 1.0
`

func mustParseGrammar(t *testing.T, text string) *Grammar {
	t.Helper()
	g, err := ParseGrammar(text)
	require.NoError(t, err)
	return g
}

func tokensOf(g Model, sentence string) []Token {
	return NormalizeTokens(g, Tokenize(sentence))
}

func treeJSON(t *testing.T, tree *Tree) string {
	t.Helper()
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	return string(data)
}

// identityModel wraps a grammar but never maps words to the rare placeholder
type identityModel struct {
	*Grammar
}

func (m identityModel) Normalize(word string) string {
	return word
}
