package pcfg

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Algorithm selects the parsing engine
type Algorithm string

const (
	AlgorithmCKY    Algorithm = "cky"
	AlgorithmEarley Algorithm = "earley"
)

// ParseAlgorithm parses an algorithm name, case-insensitive
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cky", "cyk":
		return AlgorithmCKY, nil
	case "earley":
		return AlgorithmEarley, nil
	}
	return "", errors.Errorf("unknown algorithm '%s'", name)
}

// logger receives the debug output of the engines. Replace it before parsing
var logger = zap.NewNop()

// SetLogger sets the logger of the package, nil restores the no-op logger
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// DebugMode logs chart statistics of every parse to stderr. The package logger
// is left unchanged when the development logger can't be built
func DebugMode() error {
	l, err := zap.NewDevelopment()
	if err != nil {
		return errors.Wrap(err, "DebugMode")
	}
	logger = l
	return nil
}

// Parser is the struct for PCFG parsing
type Parser struct {
	grammar       Model
	algorithm     Algorithm
	earleyOptions []EarleyOption
}

// Option configures a Parser
type Option func(*Parser)

// WithAlgorithm sets the engine used by Parse
func WithAlgorithm(a Algorithm) Option {
	return func(p *Parser) {
		p.algorithm = a
	}
}

// WithEarleyOptions sets the options of every Earley parse
func WithEarleyOptions(opts ...EarleyOption) Option {
	return func(p *Parser) {
		p.earleyOptions = append(p.earleyOptions, opts...)
	}
}

// NewParser creates a new instance of PCFG parser with grammar. The grammar is
// only read, so one grammar may back several parsers
func NewParser(grammar Model, opts ...Option) *Parser {
	p := &Parser{
		grammar:   grammar,
		algorithm: AlgorithmCKY,
	}
	if g, ok := grammar.(*Grammar); ok {
		p.earleyOptions = append(p.earleyOptions, WithStartSymbol(g.Start))
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grammar returns the grammar of the parser
func (p *Parser) Grammar() Model {
	return p.grammar
}

// Algorithm returns the engine used by Parse
func (p *Parser) Algorithm() Algorithm {
	return p.algorithm
}

// Tokens tokenizes sentence and normalizes every word against the grammar
func (p *Parser) Tokens(sentence string) []Token {
	return NormalizeTokens(p.grammar, Tokenize(sentence))
}

// Parse parses sentence with the configured algorithm
func (p *Parser) Parse(sentence string) (*Tree, error) {
	return p.ParseWith(p.algorithm, sentence)
}

// ParseWith parses sentence with algorithm a
func (p *Parser) ParseWith(a Algorithm, sentence string) (*Tree, error) {
	switch a {
	case AlgorithmCKY:
		return p.ParseCKY(sentence)
	case AlgorithmEarley:
		return p.ParseEarley(sentence)
	}
	return nil, errors.Errorf("unknown algorithm '%s'", a)
}

// ParseCKY parses sentence using CKY algorithm
func (p *Parser) ParseCKY(sentence string) (*Tree, error) {
	return CYK(p.grammar, p.Tokens(sentence))
}

// ParseEarley parses sentence using Earley algorithm
func (p *Parser) ParseEarley(sentence string) (*Tree, error) {
	return Earley(p.grammar, p.Tokens(sentence), p.earleyOptions...)
}
