package pcfg

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	openingPunctuation = "([{\"`"
	closingPunctuation = ")]}\",;:?!"
)

// contractions are split off the word they end, Penn Treebank style
var contractions = []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"}

// Tokenize splits a sentence into words:
//   - whitespace separates words
//   - brackets, quotes and , ; : ? ! become words of their own
//   - a final period is split from the last word only, so "U.S." survives
//     inside the sentence
//   - contractions are split: "don't" -> "do", "n't"
//
// The text is NFC normalized first so composed and decomposed forms of a word
// look up the same grammar entry.
func Tokenize(sentence string) []string {
	fields := strings.Fields(norm.NFC.String(sentence))
	tokens := make([]string, 0, len(fields))
	for i, field := range fields {
		tokens = append(tokens, splitField(field, i == len(fields)-1)...)
	}
	return tokens
}

// splitField tokenizes a single whitespace-free field
func splitField(field string, last bool) []string {
	leading := []string{}
	for len(field) > 1 && strings.IndexByte(openingPunctuation, field[0]) >= 0 {
		leading = append(leading, field[:1])
		field = field[1:]
	}

	// Collected right to left
	trailing := []string{}
	for len(field) > 1 {
		c := field[len(field)-1]
		if strings.IndexByte(closingPunctuation, c) < 0 && !(last && c == '.') {
			break
		}
		trailing = append(trailing, field[len(field)-1:])
		field = field[:len(field)-1]
	}

	tokens := append(leading, splitContraction(field)...)
	for i := len(trailing) - 1; i >= 0; i-- {
		tokens = append(tokens, trailing[i])
	}
	return tokens
}

func splitContraction(word string) []string {
	lower := strings.ToLower(word)
	for _, suffix := range contractions {
		if len(lower) > len(suffix) && strings.HasSuffix(lower, suffix) {
			cut := len(word) - len(suffix)
			return []string{word[:cut], word[cut:]}
		}
	}
	return []string{word}
}
