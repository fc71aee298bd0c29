package pcfg

import (
	"go.uber.org/zap"
)

// cykBack records how a cell was derived. Lexical cells have split < 0
type cykBack struct {
	// Category ids of the children
	left, right int

	// Last position covered by the left child
	split int
}

// cykCell addresses a cell of the table, spans are inclusive
type cykCell struct {
	start, end int
	symbol     int
}

// cykTable is the CYK chart. score[start][end][symbol] is 0 when no
// derivation of symbol spans [start, end]
type cykTable struct {
	grammar *CNFGrammar
	tokens  []Token
	score   [][][]float64
	back    [][][]cykBack
}

func newCYKTable(grammar *CNFGrammar, tokens []Token) *cykTable {
	n := len(tokens)
	table := &cykTable{
		grammar: grammar,
		tokens:  tokens,
		score:   make([][][]float64, n),
		back:    make([][][]cykBack, n),
	}
	for start := 0; start < n; start++ {
		table.score[start] = make([][]float64, n)
		table.back[start] = make([][]cykBack, n)
		for end := start; end < n; end++ {
			table.score[start][end] = make([]float64, len(grammar.Symbols))
			table.back[start][end] = make([]cykBack, len(grammar.Symbols))
		}
	}
	return table
}

func (t *cykTable) backtrace(c cykCell) (Symbol, string, []cykCell) {
	symbol := t.grammar.Symbols[c.symbol]
	back := t.back[c.start][c.end][c.symbol]
	if back.split < 0 {
		return symbol, t.tokens[c.start].Surface, nil
	}
	return symbol, "", []cykCell{
		{start: c.start, end: back.split, symbol: back.left},
		{start: back.split + 1, end: c.end, symbol: back.right},
	}
}

// filled counts the non-zero cells of spans with the given length
func (t *cykTable) filled(length int) int {
	count := 0
	for start := 0; start+length <= len(t.tokens); start++ {
		for _, score := range t.score[start][start+length-1] {
			if score > 0 {
				count++
			}
		}
	}
	return count
}

// CYK parses tokens using CKY algorithm and returns the most probable tree
// whatever its root category. When no category spans the whole sentence the
// error matches ErrParseFailure
func CYK(g Model, tokens []Token) (*Tree, error) {
	n := len(tokens)
	if n == 0 {
		return nil, newParseError(AlgorithmCKY, "empty sentence")
	}
	grammar := NewCNFGrammar(g)
	table := newCYKTable(grammar, tokens)

	// Length 1: apply lexical rules
	for i, tok := range tokens {
		for id, symbol := range grammar.Symbols[:grammar.NumNonterminals] {
			if p := g.LexicalProb(symbol, tok.Norm); p > 0 {
				table.score[i][i][id] = p
				table.back[i][i][id] = cykBack{split: -1}
			}
		}
	}
	if ce := logger.Check(zap.DebugLevel, "cyk row"); ce != nil {
		ce.Write(zap.Int("length", 1), zap.Int("cells", table.filled(1)))
	}

	// Length 2 to n: apply binary rules
	for length := 2; length <= n; length++ {
		for start := 0; start+length <= n; start++ {
			end := start + length - 1
			for source, rules := range grammar.Rules {
				if len(rules) == 0 {
					continue
				}

				// Ties keep the first candidate by split point, then by rule
				best := 0.0
				var bestBack cykBack
				for split := start; split < end; split++ {
					left := table.score[start][split]
					right := table.score[split+1][end]
					for _, rule := range rules {
						leftScore := left[rule.FirstTarget]
						if leftScore <= 0 {
							continue
						}
						rightScore := right[rule.SecondTarget]
						if rightScore <= 0 {
							continue
						}
						if score := rule.Probability * leftScore * rightScore; score > best {
							best = score
							bestBack = cykBack{left: rule.FirstTarget, right: rule.SecondTarget, split: split}
						}
					}
				}

				if best > 0 {
					table.score[start][end][source] = best
					table.back[start][end][source] = bestBack
				}
			}
		}
		if ce := logger.Check(zap.DebugLevel, "cyk row"); ce != nil {
			ce.Write(zap.Int("length", length), zap.Int("cells", table.filled(length)))
		}
	}

	// Find the best root node and construct the parsing tree
	root := -1
	maxProb := 0.0
	for id, score := range table.score[0][n-1][:grammar.NumNonterminals] {
		if score > maxProb {
			maxProb = score
			root = id
		}
	}
	if root < 0 {
		return nil, newParseError(AlgorithmCKY, "no category spans the sentence")
	}

	return newTree[cykCell](table, cykCell{start: 0, end: n - 1, symbol: root}, maxProb), nil
}
