package pcfg

// DirectedGraph represents the derivation graph of a grammar: an arc A -> B
// means B occurs in the right hand side of some rule of A
type DirectedGraph struct {
	// Arcs keeps the targets of every vertex in insertion order
	Arcs     map[Symbol][]Symbol
	Vertices map[Symbol]bool
}

// NewDirectedGraph creates a new DirectedGraph
func NewDirectedGraph() *DirectedGraph {
	g := new(DirectedGraph)
	g.Arcs = make(map[Symbol][]Symbol)
	g.Vertices = make(map[Symbol]bool)
	return g
}

// Add adds an arc into graph
func (g *DirectedGraph) Add(s, t Symbol) {
	if !g.HasArc(s, t) {
		g.Arcs[s] = append(g.Arcs[s], t)
	}
	g.Vertices[s] = true
	g.Vertices[t] = true
}

// HasArc returns whether arc (s, t) exists in this graph
func (g *DirectedGraph) HasArc(s, t Symbol) bool {
	for _, target := range g.Arcs[s] {
		if target == t {
			return true
		}
	}
	return false
}

// DFS runs depth-first search on graph and returns the vertices visited by
// deep-first order.
// It will not visit the vertices where visited[V] == true.
// After finished, it will update the visited map
func (g *DirectedGraph) DFS(s Symbol, visited map[Symbol]bool) []Symbol {
	if visited[s] || !g.Vertices[s] {
		return []Symbol{}
	}
	visited[s] = true

	order := []Symbol{s}
	for _, next := range g.Arcs[s] {
		order = append(order, g.DFS(next, visited)...)
	}
	return order
}

// Reachable returns the set of vertices reachable from s, s included
func (g *DirectedGraph) Reachable(s Symbol) map[Symbol]bool {
	visited := map[Symbol]bool{}
	g.DFS(s, visited)
	return visited
}
