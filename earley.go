package pcfg

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultBeamWidth is how many states a single prediction may add
const DefaultBeamWidth = 15

// StateID locates a state in its chart: the index of the state set and the
// slot inside that set
type StateID struct {
	Set  int
	Slot int
}

func (id StateID) String() string {
	return fmt.Sprintf("%d.%d", id.Set, id.Slot)
}

// State is an Earley item with viterbi probabilities. States are never
// modified once added to a chart
type State struct {
	LHS Symbol

	// RHS of the rule. A lexical state holds the normalized word it scanned
	RHS []Symbol

	// Span [Start, End) of the sentence covered so far
	Start, End int

	// Dot is the number of RHS symbols matched
	Dot int

	// Forward is the probability of the whole path from the root to this
	// state, Inner the probability of the subtree under it
	Forward, Inner float64

	// Back references the completed children, in RHS order
	Back []StateID

	// Word is the surface word of a lexical state
	Word string

	ID StateID
}

// Completed returns true when every RHS symbol is matched
func (s *State) Completed() bool {
	return s.Dot == len(s.RHS)
}

// Next returns the symbol after the dot. Only valid on incomplete states
func (s *State) Next() Symbol {
	return s.RHS[s.Dot]
}

// isLexical returns true for states built by the scanner
func (s *State) isLexical() bool {
	return s.Completed() && len(s.Back) == 0
}

func (s *State) String() string {
	symbols := make([]string, 0, len(s.RHS)+1)
	for i, symbol := range s.RHS {
		if i == s.Dot {
			symbols = append(symbols, "·")
		}
		symbols = append(symbols, string(symbol))
	}
	if s.Completed() {
		symbols = append(symbols, "·")
	}
	return fmt.Sprintf("[%s -> %s, %d:%d] %g", s.LHS, strings.Join(symbols, " "), s.Start, s.End, s.Inner)
}

// stateKey is the identity of a state for deduplication. Probabilities and
// backpointers are not part of it
type stateKey struct {
	lhs        Symbol
	rhs        string
	start, end int
	dot        int
}

func (s *State) key() stateKey {
	var rhs strings.Builder
	for _, symbol := range s.RHS {
		rhs.WriteString(string(symbol))
		rhs.WriteByte(0)
	}
	return stateKey{lhs: s.LHS, rhs: rhs.String(), start: s.Start, end: s.End, dot: s.Dot}
}

// StateSet is the ordered list of states ending at one position
type StateSet struct {
	position int
	states   []*State
	index    map[stateKey]bool
}

func newStateSet(position int) *StateSet {
	return &StateSet{
		position: position,
		states:   []*State{},
		index:    map[stateKey]bool{},
	}
}

// add appends state and assigns its ID. A state equal to one already in the
// set is dropped, whatever its probability
func (s *StateSet) add(state *State) bool {
	key := state.key()
	if s.index[key] {
		return false
	}
	s.index[key] = true
	state.ID = StateID{Set: s.position, Slot: len(s.states)}
	s.states = append(s.states, state)
	return true
}

// Len returns the number of states in the set
func (s *StateSet) Len() int {
	return len(s.states)
}

// States returns the states in insertion order. The slice must not be modified
func (s *StateSet) States() []*State {
	return s.states
}

// Chart owns every state of one parse, one set per sentence position
type Chart struct {
	sets []*StateSet
}

func newChart(n int) *Chart {
	chart := &Chart{sets: make([]*StateSet, n+1)}
	for i := range chart.sets {
		chart.sets[i] = newStateSet(i)
	}
	return chart
}

// Len returns the number of state sets
func (c *Chart) Len() int {
	return len(c.sets)
}

// Set returns the state set at position i
func (c *Chart) Set(i int) *StateSet {
	return c.sets[i]
}

// State resolves id
func (c *Chart) State(id StateID) *State {
	return c.sets[id.Set].states[id.Slot]
}

func (c *Chart) backtrace(id StateID) (Symbol, string, []StateID) {
	state := c.State(id)
	if state.isLexical() {
		return state.LHS, state.Word, nil
	}
	return state.LHS, "", state.Back
}

// EarleyOption configures an EarleyParser
type EarleyOption func(*EarleyParser)

// WithBeamWidth sets how many sibling states a prediction keeps. k <= 0
// disables pruning
func WithBeamWidth(k int) EarleyOption {
	return func(p *EarleyParser) {
		p.beamWidth = k
	}
}

// WithStartSymbol sets the category predicted by the root state
func WithStartSymbol(s Symbol) EarleyOption {
	return func(p *EarleyParser) {
		p.start = s
	}
}

// EarleyParser is an Earley chart parser with viterbi probabilities and
// per-prediction beam pruning. A parser is not safe for concurrent use, the
// grammar may be shared
type EarleyParser struct {
	grammar   Model
	beamWidth int
	start     Symbol

	tokens []Token
	chart  *Chart
}

// NewEarleyParser creates a parser for grammar g
func NewEarleyParser(g Model, opts ...EarleyOption) *EarleyParser {
	p := &EarleyParser{
		grammar:   g,
		beamWidth: DefaultBeamWidth,
		start:     DefaultStartSymbol,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Chart returns the chart of the last call to Parse
func (p *EarleyParser) Chart() *Chart {
	return p.chart
}

// Earley parses tokens with a new EarleyParser
func Earley(g Model, tokens []Token, opts ...EarleyOption) (*Tree, error) {
	return NewEarleyParser(g, opts...).Parse(tokens)
}

// Parse builds the chart of tokens and returns the tree of the completed root
// state with the highest inner probability
func (p *EarleyParser) Parse(tokens []Token) (*Tree, error) {
	n := len(tokens)
	if n == 0 {
		return nil, newParseError(AlgorithmEarley, "empty sentence")
	}
	if !p.grammar.IsLexical(p.start) && len(p.grammar.BinaryRules(p.start)) == 0 {
		return nil, newParseError(AlgorithmEarley, fmt.Sprintf("start symbol <%s> has no rules", p.start))
	}
	p.tokens = tokens
	p.chart = newChart(n)
	p.chart.sets[0].add(&State{
		LHS:     RootSymbol,
		RHS:     []Symbol{p.start},
		Forward: 1.0,
		Inner:   1.0,
	})

	for i := 0; i <= n; i++ {
		// States are appended to set i while it is processed
		set := p.chart.sets[i]
		for j := 0; j < len(set.states); j++ {
			state := set.states[j]
			switch {
			case state.Completed():
				p.completer(state)
			case p.grammar.IsLexical(state.Next()):
				p.scanner(state)
			default:
				p.predictor(state)
			}
		}
		if ce := logger.Check(zap.DebugLevel, "earley set"); ce != nil {
			ce.Write(zap.Int("position", i), zap.Int("states", set.Len()))
		}

		if i < n && p.chart.sets[i+1].Len() == 0 {
			return nil, &ParseError{
				Algorithm: AlgorithmEarley,
				Position:  i,
				Token:     tokens[i].Surface,
				Reason:    "no state accepts the token",
			}
		}
	}

	var root *State
	for _, state := range p.chart.sets[n].states {
		if state.LHS != RootSymbol || !state.Completed() || state.Start != 0 {
			continue
		}
		if root == nil || state.Inner > root.Inner {
			root = state
		}
	}
	if root == nil {
		return nil, newParseError(AlgorithmEarley, "no complete root state")
	}

	return newTree[StateID](p.chart, root.Back[0], root.Inner), nil
}

// predictor adds the rules of the symbol expected by state to the set state
// ends at. Only the beamWidth most probable candidates are kept
func (p *EarleyParser) predictor(state *State) {
	next := state.Next()
	j := state.End

	rules := p.grammar.BinaryRules(next)
	candidates := make([]*State, 0, len(rules))
	for _, rhs := range rules {
		probability := p.grammar.RuleProb(next, rhs[0], rhs[1])
		if probability <= 0 {
			continue
		}
		candidates = append(candidates, &State{
			LHS:     next,
			RHS:     []Symbol{rhs[0], rhs[1]},
			Start:   j,
			End:     j,
			Forward: state.Forward * probability,
			Inner:   probability,
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Forward > candidates[b].Forward
	})
	if p.beamWidth > 0 && len(candidates) > p.beamWidth {
		if ce := logger.Check(zap.DebugLevel, "earley beam prune"); ce != nil {
			ce.Write(zap.String("symbol", string(next)), zap.Int("position", j),
				zap.Int("dropped", len(candidates)-p.beamWidth))
		}
		candidates = candidates[:p.beamWidth]
	}

	for _, candidate := range candidates {
		p.chart.sets[j].add(candidate)
	}
}

// scanner matches the lexical category expected by state against the next
// token
func (p *EarleyParser) scanner(state *State) {
	j := state.End
	if j >= len(p.tokens) {
		return
	}
	next := state.Next()
	token := p.tokens[j]

	probability := p.grammar.LexicalProb(next, token.Norm)
	if probability <= 0 {
		return
	}
	p.chart.sets[j+1].add(&State{
		LHS:     next,
		RHS:     []Symbol{Symbol(token.Norm)},
		Start:   j,
		End:     j + 1,
		Dot:     1,
		Forward: probability,
		Inner:   probability,
		Word:    token.Surface,
	})
}

// completer advances every state of set[state.Start] waiting for state.LHS
func (p *EarleyParser) completer(state *State) {
	origin := p.chart.sets[state.Start]
	target := p.chart.sets[state.End]
	for k := 0; k < len(origin.states); k++ {
		parent := origin.states[k]
		if parent.Completed() || parent.Next() != state.LHS {
			continue
		}

		back := make([]StateID, len(parent.Back), len(parent.Back)+1)
		copy(back, parent.Back)
		target.add(&State{
			LHS:     parent.LHS,
			RHS:     parent.RHS,
			Start:   parent.Start,
			End:     state.End,
			Dot:     parent.Dot + 1,
			Forward: parent.Forward * state.Inner,
			Inner:   parent.Inner * state.Inner,
			Back:    append(back, state.ID),
		})
	}
}
