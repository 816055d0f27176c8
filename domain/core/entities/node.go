package entities

import (
	"axon-backend/domain/core/valueobjects"
)

// NodeData is the semantic payload of a node
type NodeData struct {
	Label       string            `json:"label" dynamodbav:"label"`
	Tier        valueobjects.Tier `json:"tier" dynamodbav:"tier"`
	Color       string            `json:"color,omitempty" dynamodbav:"color,omitempty"`
	Description string            `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Collapsed   bool              `json:"collapsed,omitempty" dynamodbav:"collapsed,omitempty"`
	Votes       map[string]int    `json:"votes,omitempty" dynamodbav:"votes,omitempty"`
	// Probability is derived from Votes and only written by the vote aggregator
	Probability float64 `json:"probability" dynamodbav:"probability"`
}

// Node is a consequence (or the central idea) placed on the canvas.
// Nodes are plain values; use Clone before handing one to another owner.
type Node struct {
	ID       valueobjects.NodeID   `json:"id" dynamodbav:"id"`
	Type     string                `json:"type,omitempty" dynamodbav:"type,omitempty"`
	Position valueobjects.Position `json:"position" dynamodbav:"position"`
	Data     NodeData              `json:"data" dynamodbav:"data"`
	Width    float64               `json:"width,omitempty" dynamodbav:"width,omitempty"`
	Height   float64               `json:"height,omitempty" dynamodbav:"height,omitempty"`
	Hidden   bool                  `json:"hidden,omitempty" dynamodbav:"hidden,omitempty"`
}

// NewNode creates a node at the given tier
func NewNode(id valueobjects.NodeID, label string, tier valueobjects.Tier, position valueobjects.Position) Node {
	return Node{
		ID:       id,
		Position: position,
		Data: NodeData{
			Label: label,
			Tier:  tier,
		},
	}
}

// Tier returns the node's depth
func (n Node) Tier() valueobjects.Tier {
	return n.Data.Tier
}

// IsRoot reports whether n is the central idea
func (n Node) IsRoot() bool {
	return n.Data.Tier.IsRoot()
}

// Clone returns a deep copy; the vote map is not shared
func (n Node) Clone() Node {
	c := n
	if n.Data.Votes != nil {
		c.Data.Votes = make(map[string]int, len(n.Data.Votes))
		for user, v := range n.Data.Votes {
			c.Data.Votes[user] = v
		}
	}
	return c
}

// WithPosition returns a copy of n moved to p
func (n Node) WithPosition(p valueobjects.Position) Node {
	c := n.Clone()
	c.Position = p
	return c
}
