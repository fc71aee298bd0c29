package pcfg

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultRareWord is the placeholder unknown words are normalized to
	DefaultRareWord = "_RARE_"

	// DefaultStartSymbol is the category the Earley root state predicts
	DefaultStartSymbol = Symbol("S")
)

type lexicalKey struct {
	category Symbol
	word     string
}

type binaryKey struct {
	left        Symbol
	first, next Symbol
}

// Grammar is a PCFG restricted to binary and lexical rules. It implements Model
type Grammar struct {
	Rules []*Rule

	// Start is the category sentences are expected to derive from
	Start Symbol

	// RareWord is what Normalize returns for unknown words
	RareWord string

	symbols []Symbol
	seen    map[Symbol]bool
	lexical map[Symbol]bool
	binary  map[Symbol][][2]Symbol
	q1      map[lexicalKey]float64
	q2      map[binaryKey]float64
	words   map[string]bool
}

// NewGrammar creates an empty grammar
func NewGrammar() *Grammar {
	return &Grammar{
		Rules:    []*Rule{},
		Start:    DefaultStartSymbol,
		RareWord: DefaultRareWord,
		seen:     map[Symbol]bool{},
		lexical:  map[Symbol]bool{},
		binary:   map[Symbol][][2]Symbol{},
		q1:       map[lexicalKey]float64{},
		q2:       map[binaryKey]float64{},
		words:    map[string]bool{},
	}
}

// addSymbol registers s in first-appearance order
func (g *Grammar) addSymbol(s Symbol) {
	if !g.seen[s] {
		g.seen[s] = true
		g.symbols = append(g.symbols, s)
	}
}

// AddRule adds a new rule into grammar
func (g *Grammar) AddRule(rule *Rule) error {
	if rule.Weight < 0 {
		return errors.Errorf("AddRule: negative weight in '%s'", rule)
	}

	switch {
	case rule.IsLexical():
		if len(g.binary[rule.Left]) != 0 {
			return errors.Errorf("AddRule: '%s': <%s> already has binary rules", rule, rule.Left)
		}
		key := lexicalKey{rule.Left, rule.Word}
		if _, ok := g.q1[key]; ok {
			return errors.Errorf("AddRule: duplicate rule '%s'", rule)
		}
		g.addSymbol(rule.Left)
		g.lexical[rule.Left] = true
		g.q1[key] = rule.Weight
		g.words[rule.Word] = true
	case rule.IsBinary():
		if g.lexical[rule.Left] {
			return errors.Errorf("AddRule: '%s': <%s> already has lexical rules", rule, rule.Left)
		}
		key := binaryKey{rule.Left, rule.Right[0], rule.Right[1]}
		if _, ok := g.q2[key]; ok {
			return errors.Errorf("AddRule: duplicate rule '%s'", rule)
		}
		g.addSymbol(rule.Left)
		g.addSymbol(rule.Right[0])
		g.addSymbol(rule.Right[1])
		g.binary[rule.Left] = append(g.binary[rule.Left], [2]Symbol{rule.Right[0], rule.Right[1]})
		g.q2[key] = rule.Weight
	default:
		return errors.Errorf("AddRule: unsupported rule shape '%s'", rule)
	}

	g.Rules = append(g.Rules, rule)
	return nil
}

// Validate checks every category referenced by a rule is defined by some rule.
// The start symbol isn't checked: only Earley parses depend on it
func (g *Grammar) Validate() error {
	for _, s := range g.symbols {
		if !g.lexical[s] && len(g.binary[s]) == 0 {
			return errors.Errorf("Validate: <%s> is referenced but has no rules", s)
		}
	}
	return nil
}

// NormalizeWeights normalize the weight of rules. Make sure that the sum of
// weight from the same left symbol is 1.0
func (g *Grammar) NormalizeWeights() {
	weights := map[Symbol]float64{}
	for _, rule := range g.Rules {
		weights[rule.Left] += rule.Weight
	}
	for _, rule := range g.Rules {
		if weights[rule.Left] == 0 {
			continue
		}
		rule.Weight /= weights[rule.Left]
		if rule.IsLexical() {
			g.q1[lexicalKey{rule.Left, rule.Word}] = rule.Weight
		} else {
			g.q2[binaryKey{rule.Left, rule.Right[0], rule.Right[1]}] = rule.Weight
		}
	}
}

// Unreachable returns the categories no derivation from start can produce, in
// grammar order
func (g *Grammar) Unreachable(start Symbol) []Symbol {
	graph := NewDirectedGraph()
	for _, rule := range g.Rules {
		if rule.IsBinary() {
			graph.Add(rule.Left, rule.Right[0])
			graph.Add(rule.Left, rule.Right[1])
		}
	}

	reachable := graph.Reachable(start)
	unreachable := []Symbol{}
	for _, s := range g.symbols {
		if s != start && !reachable[s] {
			unreachable = append(unreachable, s)
		}
	}
	return unreachable
}

// Nonterminals returns every category in order of first appearance. The
// returned slice must not be modified
func (g *Grammar) Nonterminals() []Symbol {
	return g.symbols
}

// IsLexical reports whether symbol has lexical rules
func (g *Grammar) IsLexical(symbol Symbol) bool {
	return g.lexical[symbol]
}

// BinaryRules returns the right hand sides of the binary rules of lhs
func (g *Grammar) BinaryRules(lhs Symbol) [][2]Symbol {
	return g.binary[lhs]
}

// LexicalProb returns the probability of category -> word
func (g *Grammar) LexicalProb(category Symbol, word string) float64 {
	return g.q1[lexicalKey{category, word}]
}

// RuleProb returns the probability of lhs -> left right
func (g *Grammar) RuleProb(lhs, left, right Symbol) float64 {
	return g.q2[binaryKey{lhs, left, right}]
}

// Normalize returns word if any lexical rule produces it, otherwise RareWord
func (g *Grammar) Normalize(word string) string {
	if g.words[word] {
		return word
	}
	return g.RareWord
}

// Print writes the grammar in its text format
func (g *Grammar) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, ";!start: <%s>\n;!rare: %s\n", g.Start, formatWord(g.RareWord)); err != nil {
		return err
	}
	for _, rule := range g.Rules {
		if _, err := fmt.Fprintln(w, rule.String()); err != nil {
			return err
		}
	}
	return nil
}

// parseDirective applies a ";!name: value" line to the grammar. It returns
// whether the weights should be normalized once all rules are read
func (g *Grammar) parseDirective(line string) (normalize bool, err error) {
	name, value, _ := strings.Cut(line[len(";!"):], ":")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	switch name {
	case "start":
		symbol, terminal, err := parseSymbol(value)
		if err != nil || terminal {
			return false, errors.Errorf("unexpected start symbol: '%s'", value)
		}
		g.Start = Symbol(symbol)
	case "rare":
		word, terminal, err := parseSymbol(value)
		if err != nil || !terminal {
			return false, errors.Errorf("unexpected rare word: '%s'", value)
		}
		g.RareWord = word
	case "normalize":
		return true, nil
	default:
		return false, errors.Errorf("unknown directive: '%s'", name)
	}
	return false, nil
}

// ParseGrammar parses grammar from string. Lines starting with ';' are
// comments, except the directives:
//
//	;!start: <S>      start symbol of the grammar
//	;!rare: _RARE_    placeholder of unknown words
//	;!normalize       normalize the weights of each left symbol to sum 1
func ParseGrammar(grammarText string) (*Grammar, error) {
	grammar := NewGrammar()
	normalize := false

	lines := strings.Split(grammarText, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, ";!") {
			n, err := grammar.parseDirective(line)
			if err != nil {
				return nil, errors.Wrapf(err, "ParseGrammar: line %d", i+1)
			}
			normalize = normalize || n
			continue
		}

		// Comments
		if line == "" || line[0] == ';' {
			continue
		}

		rules, err := ParseRule(line)
		if err != nil {
			return nil, errors.Wrapf(err, "ParseGrammar: line %d", i+1)
		}
		for _, rule := range rules {
			if err := grammar.AddRule(rule); err != nil {
				return nil, errors.Wrapf(err, "ParseGrammar: line %d", i+1)
			}
		}
	}

	if normalize {
		grammar.NormalizeWeights()
	}
	if err := grammar.Validate(); err != nil {
		return nil, errors.Wrap(err, "ParseGrammar")
	}
	return grammar, nil
}

// LoadGrammar reads and parses the grammar file at path
func LoadGrammar(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "LoadGrammar")
	}
	grammar, err := ParseGrammar(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "LoadGrammar: %s", path)
	}
	return grammar, nil
}
