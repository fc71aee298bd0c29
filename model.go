package pcfg

// Model is the read-only probability oracle both parsing engines consume.
// Missing entries are reported as probability 0, never as an error.
type Model interface {
	// Nonterminals returns every category in a fixed order. The order is used
	// to break ties, so it must not change between calls
	Nonterminals() []Symbol

	// IsLexical reports whether symbol is a preterminal category
	IsLexical(symbol Symbol) bool

	// BinaryRules returns the right hand sides of rules headed by lhs, in
	// grammar order
	BinaryRules(lhs Symbol) [][2]Symbol

	// LexicalProb returns q1(category -> word)
	LexicalProb(category Symbol, word string) float64

	// RuleProb returns q2(lhs -> left right)
	RuleProb(lhs, left, right Symbol) float64

	// Normalize maps a surface word to the form used for lexical lookups: the
	// word itself when known, a rare-word placeholder otherwise
	Normalize(word string) string
}

// Token is a word of the sentence. Norm is used for grammar lookups while
// Surface is what ends up in the parse tree
type Token struct {
	Norm    string
	Surface string
}

// NormalizeTokens pairs every word with its normalized form under g
func NormalizeTokens(g Model, words []string) []Token {
	tokens := make([]Token, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, Token{Norm: g.Normalize(word), Surface: word})
	}
	return tokens
}
