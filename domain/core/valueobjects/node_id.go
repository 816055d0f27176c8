package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "axon-backend/pkg/errors"

	"github.com/google/uuid"
)

// RootNodeID is the id every wheel gives its central idea
const RootNodeID NodeID = "0"

// NodeID identifies a node within one wheel. Stored diagrams carry
// arbitrary client ids, so only emptiness is rejected.
type NodeID string

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID(uuid.New().String())
}

// ParseNodeID validates a NodeID coming from outside the domain
func ParseNodeID(id string) (NodeID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.NewValidationError("node ID cannot be empty")
	}
	return NodeID(id), nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return string(id)
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id == ""
}

// EdgeID identifies an edge within one wheel
type EdgeID string

// EdgeIDFor derives the conventional id of the edge source -> target
func EdgeIDFor(source, target NodeID) EdgeID {
	return EdgeID(fmt.Sprintf("e-%s-%s", source, target))
}

// String returns the string representation of the EdgeID
func (id EdgeID) String() string {
	return string(id)
}
