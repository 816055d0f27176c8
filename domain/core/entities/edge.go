package entities

import "axon-backend/domain/core/valueobjects"

// Edge is a labeled relationship from a cause to one of its consequences
type Edge struct {
	ID     valueobjects.EdgeID `json:"id" dynamodbav:"id"`
	Source valueobjects.NodeID `json:"source" dynamodbav:"source"`
	Target valueobjects.NodeID `json:"target" dynamodbav:"target"`
	Label  string              `json:"label,omitempty" dynamodbav:"label,omitempty"`
	Type   string              `json:"type,omitempty" dynamodbav:"type,omitempty"`
	Hidden bool                `json:"hidden,omitempty" dynamodbav:"hidden,omitempty"`
}

// NewEdge links source to target using the conventional edge id
func NewEdge(source, target valueobjects.NodeID, label string) Edge {
	return Edge{
		ID:     valueobjects.EdgeIDFor(source, target),
		Source: source,
		Target: target,
		Label:  label,
	}
}

// Touches reports whether id is either endpoint of e
func (e Edge) Touches(id valueobjects.NodeID) bool {
	return e.Source == id || e.Target == id
}
