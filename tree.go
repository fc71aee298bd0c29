package pcfg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node represents a single node in parsing tree
type Node struct {
	// Children nodes, nil for a leaf
	Children []*Node

	// Symbol in current node
	Symbol Symbol

	// Word is the surface word of a leaf
	Word string
}

// Tree represents the parsing tree
type Tree struct {
	*Node

	// Probability of the derivation that produced the tree
	Probability float64

	// root is the grammar category of the root before its suffix was stripped
	root Symbol
}

// IsLeaf returns true for a lexical node
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Convert the node to string
func (n *Node) String() string {
	return n.repr(0)
}

// Repr get the string representation of the node recursively
func (n *Node) repr(level int) string {
	prefix := strings.Repeat(" ", level*2)
	if level != 0 {
		prefix = "\n" + prefix
	}

	if n.IsLeaf() {
		return fmt.Sprintf("%s(%s %s)", prefix, n.Symbol, n.Word)
	}

	childrenReprs := []string{}
	for _, child := range n.Children {
		childrenReprs = append(childrenReprs, child.repr(level+1))
	}
	return fmt.Sprintf(
		"%s(%s %s)",
		prefix,
		n.Symbol,
		strings.Join(childrenReprs, " "))
}

// list converts the node into nested slices: [category, word] for a leaf and
// [label, child, child...] otherwise
func (n *Node) list() []interface{} {
	if n.IsLeaf() {
		return []interface{}{string(n.Symbol), n.Word}
	}
	l := []interface{}{string(n.Symbol)}
	for _, child := range n.Children {
		l = append(l, child.list())
	}
	return l
}

// MarshalJSON encodes the node as nested arrays, like
//
//	["S", ["NP", "dog"], ["VP", "barks"]]
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.list())
}

// Score computes the probability of the derivation under g: the product of
// every rule used by the tree. Leaves are scored by their normalized word
func (n *Node) Score(g Model) float64 {
	return n.score(g, n.Symbol)
}

// score is Score with symbol in place of the label of n
func (n *Node) score(g Model, symbol Symbol) float64 {
	if n.IsLeaf() {
		return g.LexicalProb(symbol, g.Normalize(n.Word))
	}
	if len(n.Children) != 2 {
		return 0
	}
	left, right := n.Children[0], n.Children[1]
	return g.RuleProb(symbol, left.Symbol, right.Symbol) * left.Score(g) * right.Score(g)
}

// Score computes the probability of the derivation under g, using the root
// category the engine derived rather than the stripped label
func (t *Tree) Score(g Model) float64 {
	if t.root == "" {
		return t.Node.Score(g)
	}
	return t.Node.score(g, t.root)
}

// backtracer resolves a reference to a derivation recorded by a parsing
// engine. Lexical derivations return the surface word and no children
type backtracer[R any] interface {
	backtrace(ref R) (symbol Symbol, word string, children []R)
}

// constructParsingTree materializes the derivation ref recursively
func constructParsingTree[R any](b backtracer[R], ref R) *Node {
	symbol, word, children := b.backtrace(ref)
	if len(children) == 0 {
		return &Node{Symbol: symbol, Word: word}
	}

	node := &Node{
		Symbol:   symbol,
		Children: make([]*Node, 0, len(children)),
	}
	for _, child := range children {
		node.Children = append(node.Children, constructParsingTree(b, child))
	}
	return node
}

// newTree builds the output tree of derivation ref. The root label loses its
// grammar-internal suffix
func newTree[R any](b backtracer[R], ref R, probability float64) *Tree {
	node := constructParsingTree(b, ref)
	root := node.Symbol
	node.Symbol = root.Base()
	return &Tree{
		Node:        node,
		Probability: probability,
		root:        root,
	}
}
