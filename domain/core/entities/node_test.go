package entities

import (
	"testing"

	"axon-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
)

func TestNodeCloneDoesNotShareVotes(t *testing.T) {
	n := NewNode("a", "Remote work", 1, valueobjects.NewPosition(1, 2))
	n.Data.Votes = map[string]int{"u1": 4}

	c := n.Clone()
	c.Data.Votes["u1"] = 1
	c.Data.Votes["u2"] = 2

	assert.Equal(t, map[string]int{"u1": 4}, n.Data.Votes)
	assert.Len(t, c.Data.Votes, 2)
}

func TestNodeWithPosition(t *testing.T) {
	n := NewNode("a", "x", 2, valueobjects.Origin)
	moved := n.WithPosition(valueobjects.NewPosition(10, 10))

	assert.Equal(t, valueobjects.Origin, n.Position)
	assert.Equal(t, valueobjects.NewPosition(10, 10), moved.Position)
	assert.False(t, moved.IsRoot())
	assert.True(t, NewNode(valueobjects.RootNodeID, "idea", 0, valueobjects.Origin).IsRoot())
}

func TestNewEdge(t *testing.T) {
	e := NewEdge("0", "b", "leads to")
	assert.Equal(t, valueobjects.EdgeID("e-0-b"), e.ID)
	assert.True(t, e.Touches("0"))
	assert.True(t, e.Touches("b"))
	assert.False(t, e.Touches("c"))
}
