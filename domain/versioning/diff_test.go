package versioning

import (
	"testing"

	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	a := addChild(rootGraph(), "a")
	b := addChild(rootGraph(), "a")

	sumA, err := Checksum(a)
	require.NoError(t, err)
	sumB, err := Checksum(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)
	assert.Len(t, sumA, 64)

	c := addChild(rootGraph(), "b")
	sumC, err := Checksum(c)
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumC)
}

func TestDiff(t *testing.T) {
	from := addChild(addChild(rootGraph(), "a"), "b")

	to, _ := from.UpdateNode("a", func(n *entities.Node) { n.Data.Label = "renamed" })
	to, _ = to.UpdateNode(valueobjects.RootNodeID, func(n *entities.Node) { n.Position = valueobjects.NewPosition(5, 5) })
	to = to.WithoutNodes("b")
	to = addChild(to, "c")
	to, _ = to.UpdateEdge("e-0-a", func(e *entities.Edge) { e.Label = "leads to" })

	d := Diff(from, to)
	assert.Equal(t, []valueobjects.NodeID{"c"}, d.NodesAdded)
	assert.Equal(t, []valueobjects.NodeID{"b"}, d.NodesRemoved)
	assert.Equal(t, []valueobjects.NodeID{"a"}, d.NodesUpdated)
	assert.Equal(t, []valueobjects.NodeID{valueobjects.RootNodeID}, d.NodesMoved)
	assert.Equal(t, []valueobjects.EdgeID{"e-0-c"}, d.EdgesAdded)
	assert.Equal(t, []valueobjects.EdgeID{"e-0-b"}, d.EdgesRemoved)
	assert.Equal(t, []valueobjects.EdgeID{"e-0-a"}, d.EdgesUpdated)
	assert.False(t, d.IsEmpty())

	assert.True(t, Diff(from, from.Clone()).IsEmpty())
}
