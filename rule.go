package pcfg

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Symbol is the name of a grammar category, like "NP" or "NP|3". Terminal words
// are plain strings and never Symbols.
type Symbol string

// RootSymbol is the implicit start of every Earley chart. Angle brackets never
// survive symbol parsing, so it can't collide with a grammar category.
const RootSymbol = Symbol("<root>")

// SuffixSeparator splits a category from a grammar-internal annotation
const SuffixSeparator = "|"

// Base returns the symbol without its grammar-internal suffix:
//
//	NP|3 -> NP
//	VP   -> VP
func (s Symbol) Base() Symbol {
	if i := strings.Index(string(s), SuffixSeparator); i >= 0 {
		return s[:i]
	}
	return s
}

var (
	nonterminalRegexp    = regexp.MustCompile(`^<[^<>\s"]+>$`)
	terminalRegexp       = regexp.MustCompile(`^[^<>\s"|;]+$`)
	quotedTerminalRegexp = regexp.MustCompile(`^"[^"\s]+"$`)
)

// parseSymbol parses a single right or left hand side token. It returns the
// bare name and whether the token is a terminal word
func parseSymbol(token string) (name string, terminal bool, err error) {
	switch {
	case nonterminalRegexp.MatchString(token):
		return token[1 : len(token)-1], false, nil
	case quotedTerminalRegexp.MatchString(token):
		return token[1 : len(token)-1], true, nil
	case terminalRegexp.MatchString(token):
		return token, true, nil
	}
	return "", false, errors.Errorf("unexpected symbol '%s'", token)
}

// Rule is a PCFG rule. Only two shapes are supported: binary rules A -> B C
// and lexical rules A -> word
type Rule struct {
	Left Symbol

	// Right holds both categories of a binary rule, nil for lexical rules
	Right []Symbol

	// Word is the terminal of a lexical rule
	Word string

	Weight float64
}

// IsBinary returns true if it's a binary rule, like A -> BC
func (r *Rule) IsBinary() bool {
	return len(r.Right) == 2
}

// IsLexical returns true if it's a lexical rule, like A -> word
func (r *Rule) IsLexical() bool {
	return len(r.Right) == 0
}

// indexOutside returns the index of the first sep in s that is neither inside
// <...> nor inside "...", or -1
func indexOutside(s string, sep byte) int {
	inAngle, inQuote := false, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' && !inAngle:
			inQuote = !inQuote
		case c == '<' && !inQuote:
			inAngle = true
		case c == '>' && !inQuote:
			inAngle = false
		case c == sep && !inAngle && !inQuote:
			return i
		}
	}
	return -1
}

// splitOutside splits s on every sep found by indexOutside
func splitOutside(s string, sep byte) []string {
	parts := []string{}
	for {
		i := indexOutside(s, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

// ParseRule parse rules from string
// The rule would be like:
//
//	<NP|2> ::= <DT> <NN> ; 0.7 | dog ; 0.2 | "cat" ; 0.1
//
// Then returns
//
//	[{"NP|2", ["DT", "NN"], "", 0.7},
//	 {"NP|2", nil, "dog", 0.2},
//	 {"NP|2", nil, "cat", 0.1}]
func ParseRule(ruleText string) (rules []*Rule, err error) {
	rules = make([]*Rule, 0)
	fields := strings.Split(ruleText, "::=")
	if len(fields) != 2 {
		return nil, errors.Errorf("ParseRule: unexpected number of ::= token in '%s'", ruleText)
	}

	// Left part
	left, terminal, err := parseSymbol(strings.TrimSpace(fields[0]))
	if err != nil {
		return nil, errors.Wrapf(err, "ParseRule: '%s'", ruleText)
	}
	if terminal {
		return nil, errors.Errorf("ParseRule: '%s': terminal symbol in the left", ruleText)
	}

	// Right part
	for _, right := range splitOutside(fields[1], '|') {
		rule := &Rule{Left: Symbol(left), Weight: 1.0}

		body := right
		if i := indexOutside(right, ';'); i >= 0 {
			body = right[:i]
			weightText := strings.TrimSpace(right[i+1:])
			rule.Weight, err = strconv.ParseFloat(weightText, 64)
			if err != nil {
				return nil, errors.Errorf(
					"ParseRule: float expected but '%s' found in '%s'",
					weightText,
					ruleText)
			}
			if rule.Weight < 0 || math.IsNaN(rule.Weight) || math.IsInf(rule.Weight, 0) {
				return nil, errors.Errorf("ParseRule: invalid weight %s in '%s'", weightText, ruleText)
			}
		}

		tokens := strings.Fields(body)
		switch len(tokens) {
		case 1:
			word, terminal, err := parseSymbol(tokens[0])
			if err != nil {
				return nil, errors.Wrapf(err, "ParseRule: '%s'", ruleText)
			}
			if !terminal {
				return nil, errors.Errorf("ParseRule: '%s': unit rules are not supported", ruleText)
			}
			rule.Word = word
		case 2:
			for _, token := range tokens {
				name, terminal, err := parseSymbol(token)
				if err != nil {
					return nil, errors.Wrapf(err, "ParseRule: '%s'", ruleText)
				}
				if terminal {
					return nil, errors.Errorf("ParseRule: '%s': terminal '%s' in a binary rule", ruleText, name)
				}
				rule.Right = append(rule.Right, Symbol(name))
			}
		default:
			return nil, errors.Errorf(
				"ParseRule: '%s': expected a word or two categories, found %d symbols",
				ruleText,
				len(tokens))
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// formatWord quotes the word when it can't be written bare
func formatWord(word string) string {
	if terminalRegexp.MatchString(word) {
		return word
	}
	return `"` + word + `"`
}

// String converts rule to string format
func (r *Rule) String() string {
	symbols := []string{}
	if r.IsLexical() {
		symbols = append(symbols, formatWord(r.Word))
	}
	for _, symbol := range r.Right {
		symbols = append(symbols, "<"+string(symbol)+">")
	}
	return fmt.Sprintf(
		"<%s> ::= %s ; %.3f",
		string(r.Left),
		strings.Join(symbols, " "),
		r.Weight)
}
