package aggregates

import (
	"testing"

	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func n(id string, tier int) entities.Node {
	return entities.NewNode(valueobjects.NodeID(id), "label "+id, valueobjects.Tier(tier), valueobjects.Origin)
}

// 0 -> a -> c
// 0 -> b
// b -> c (second incoming edge of c, not its parent link)
func sampleGraph() Graph {
	return NewGraph(
		[]entities.Node{n("0", 0), n("a", 1), n("b", 1), n("c", 2)},
		[]entities.Edge{
			entities.NewEdge("0", "a", "causes"),
			entities.NewEdge("0", "b", ""),
			entities.NewEdge("a", "c", ""),
			entities.NewEdge("b", "c", "also"),
		},
	)
}

func TestGraph_ParentRuleFirstEdgeWins(t *testing.T) {
	g := sampleGraph()

	parent, ok := g.ParentOf("c")
	require.True(t, ok)
	assert.Equal(t, valueobjects.NodeID("a"), parent)
	assert.Equal(t, valueobjects.NodeID("a"), g.ParentMap()["c"])

	_, ok = g.ParentOf("0")
	assert.False(t, ok)
}

func TestGraph_ChildrenOf(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, []valueobjects.NodeID{"a", "b"}, g.ChildrenOf("0"))
	assert.Equal(t, []valueobjects.NodeID{"c"}, g.ChildrenOf("a"))
	assert.Empty(t, g.ChildrenOf("b"), "c already has a parent link through a")
}

func TestGraph_ConnectedEdges(t *testing.T) {
	g := sampleGraph()
	edges := g.ConnectedEdges("c")
	require.Len(t, edges, 2)
	assert.Equal(t, valueobjects.EdgeID("e-a-c"), edges[0].ID)
	assert.Equal(t, valueobjects.EdgeID("e-b-c"), edges[1].ID)
}

func TestGraph_RootAndLookup(t *testing.T) {
	g := sampleGraph()
	root, ok := g.Root()
	require.True(t, ok)
	assert.Equal(t, valueobjects.RootNodeID, root.ID)

	_, ok = g.Node("missing")
	assert.False(t, ok)
	assert.True(t, g.HasEdgeBetween("a", "c"))
	assert.False(t, g.HasEdgeBetween("c", "a"))
}

func TestGraph_Descendants(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, []valueobjects.NodeID{"a", "b", "c"}, g.Descendants("0"))
	assert.Equal(t, []valueobjects.NodeID{"c"}, g.Descendants("a"))
	assert.Empty(t, g.Descendants("c"))
}

func TestGraph_PathFromRoot(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, []valueobjects.NodeID{"0", "a", "c"}, g.PathFromRoot("c"))
	assert.Equal(t, []valueobjects.NodeID{"0"}, g.PathFromRoot("0"))

	cyclic := NewGraph(
		[]entities.Node{n("x", 1), n("y", 1)},
		[]entities.Edge{entities.NewEdge("x", "y", ""), entities.NewEdge("y", "x", "")},
	)
	assert.Equal(t, []valueobjects.NodeID{"x", "y"}, cyclic.PathFromRoot("y"))
}

func TestGraph_MutatorsCopyOnWrite(t *testing.T) {
	g := sampleGraph()

	updated, ok := g.UpdateNode("a", func(node *entities.Node) {
		node.Data.Label = "changed"
		node.Data.Votes = map[string]int{"u": 5}
	})
	require.True(t, ok)

	original, _ := g.Node("a")
	assert.Equal(t, "label a", original.Data.Label)
	assert.Nil(t, original.Data.Votes)
	changed, _ := updated.Node("a")
	assert.Equal(t, "changed", changed.Data.Label)

	_, ok = g.UpdateNode("nope", func(*entities.Node) {})
	assert.False(t, ok)
}

func TestGraph_WithoutNodesDropsEdges(t *testing.T) {
	g := sampleGraph().WithoutNodes("a", "c")
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, valueobjects.EdgeID("e-0-b"), g.Edges[0].ID)
}

func TestGraph_EdgeMutators(t *testing.T) {
	g := sampleGraph()

	relabeled, ok := g.UpdateEdge("e-b-c", func(e *entities.Edge) { e.Label = "accelerates" })
	require.True(t, ok)
	e, _ := relabeled.Edge("e-b-c")
	assert.Equal(t, "accelerates", e.Label)
	orig, _ := g.Edge("e-b-c")
	assert.Equal(t, "also", orig.Label)

	removed, ok := g.WithoutEdge("e-0-a")
	require.True(t, ok)
	assert.Len(t, removed.Edges, 3)
	assert.Len(t, g.Edges, 4)

	_, ok = g.WithoutEdge("missing")
	assert.False(t, ok)
}
