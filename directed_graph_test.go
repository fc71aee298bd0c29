package pcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectedGraph(t *testing.T) {
	g := NewDirectedGraph()
	g.Add("S", "NP")
	g.Add("S", "VP")
	g.Add("S", "NP")
	g.Add("VP", "V")
	g.Add("VP", "NP")
	g.Add("PP", "P")

	assert.True(t, g.HasArc("S", "NP"))
	assert.False(t, g.HasArc("NP", "S"))
	assert.Len(t, g.Arcs["S"], 2)

	assert.Equal(t, []Symbol{"S", "NP", "VP", "V"}, g.DFS("S", map[Symbol]bool{}))
	assert.Equal(t, map[Symbol]bool{"VP": true, "V": true, "NP": true}, g.Reachable("VP"))
	assert.Empty(t, g.DFS("X", map[Symbol]bool{}))
}
