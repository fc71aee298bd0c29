package pcfg

// CNFRule stores a binary rule with every symbol represented by its id
type CNFRule struct {
	Source      int
	Probability float64

	// SymbolIds in the right of rule
	FirstTarget  int
	SecondTarget int
}

// CNFGrammar is a Model compiled into symbol-id form, so the CYK table can be
// a dense array indexed by category
type CNFGrammar struct {
	// Map from symbol name to its id
	SymbolIds map[Symbol]int

	// Map from symbolId to symbol name. The first NumNonterminals entries are
	// Model.Nonterminals() in order
	Symbols []Symbol

	NumNonterminals int

	// Rules[source] lists the binary rules of source in grammar order
	Rules [][]*CNFRule
}

// NewCNFGrammar compiles g. Rules with probability 0 are dropped since they
// can't win any cell
func NewCNFGrammar(g Model) *CNFGrammar {
	cnf := &CNFGrammar{
		SymbolIds: map[Symbol]int{},
		Symbols:   []Symbol{},
	}
	nonterminals := g.Nonterminals()
	for _, s := range nonterminals {
		cnf.getSymbolId(s)
	}
	cnf.NumNonterminals = len(cnf.Symbols)

	for _, lhs := range nonterminals {
		source := cnf.SymbolIds[lhs]
		for _, rhs := range g.BinaryRules(lhs) {
			probability := g.RuleProb(lhs, rhs[0], rhs[1])
			if probability <= 0 {
				continue
			}
			cnf.addRule(&CNFRule{
				Source:       source,
				Probability:  probability,
				FirstTarget:  cnf.getSymbolId(rhs[0]),
				SecondTarget: cnf.getSymbolId(rhs[1]),
			})
		}
	}
	return cnf
}

// getSymbolId get the id of given symbol. If the symbol not exist in grammar
// insert a new one
func (g *CNFGrammar) getSymbolId(s Symbol) int {
	if symbolId, ok := g.SymbolIds[s]; ok {
		return symbolId
	}
	symbolId := len(g.Symbols)
	g.SymbolIds[s] = symbolId
	g.Symbols = append(g.Symbols, s)
	return symbolId
}

func (g *CNFGrammar) addRule(rule *CNFRule) {
	for len(g.Rules) < len(g.Symbols) {
		g.Rules = append(g.Rules, nil)
	}
	g.Rules[rule.Source] = append(g.Rules[rule.Source], rule)
}
