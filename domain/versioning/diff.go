package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/valueobjects"
)

// Checksum returns a content hash of g. Two graphs with equal nodes and
// edges in the same order hash the same.
func Checksum(g aggregates.Graph) (string, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// GraphDiff summarises what changed between two graph versions
type GraphDiff struct {
	NodesAdded   []valueobjects.NodeID `json:"nodes_added,omitempty"`
	NodesRemoved []valueobjects.NodeID `json:"nodes_removed,omitempty"`
	NodesUpdated []valueobjects.NodeID `json:"nodes_updated,omitempty"`
	// NodesMoved lists nodes whose only change is their position
	NodesMoved   []valueobjects.NodeID `json:"nodes_moved,omitempty"`
	EdgesAdded   []valueobjects.EdgeID `json:"edges_added,omitempty"`
	EdgesRemoved []valueobjects.EdgeID `json:"edges_removed,omitempty"`
	EdgesUpdated []valueobjects.EdgeID `json:"edges_updated,omitempty"`
}

// IsEmpty reports whether the two versions were identical
func (d GraphDiff) IsEmpty() bool {
	return len(d.NodesAdded)+len(d.NodesRemoved)+len(d.NodesUpdated)+len(d.NodesMoved)+
		len(d.EdgesAdded)+len(d.EdgesRemoved)+len(d.EdgesUpdated) == 0
}

// Diff compares from against to. Results follow the order of to for
// additions and updates and the order of from for removals.
func Diff(from, to aggregates.Graph) GraphDiff {
	var d GraphDiff

	for _, n := range to.Nodes {
		old, ok := from.Node(n.ID)
		switch {
		case !ok:
			d.NodesAdded = append(d.NodesAdded, n.ID)
		case !reflect.DeepEqual(old.Data, n.Data) || old.Type != n.Type || old.Hidden != n.Hidden:
			d.NodesUpdated = append(d.NodesUpdated, n.ID)
		case old.Position != n.Position:
			d.NodesMoved = append(d.NodesMoved, n.ID)
		}
	}
	for _, n := range from.Nodes {
		if !to.HasNode(n.ID) {
			d.NodesRemoved = append(d.NodesRemoved, n.ID)
		}
	}

	for _, e := range to.Edges {
		old, ok := from.Edge(e.ID)
		switch {
		case !ok:
			d.EdgesAdded = append(d.EdgesAdded, e.ID)
		case old != e:
			d.EdgesUpdated = append(d.EdgesUpdated, e.ID)
		}
	}
	for _, e := range from.Edges {
		if _, ok := to.Edge(e.ID); !ok {
			d.EdgesRemoved = append(d.EdgesRemoved, e.ID)
		}
	}
	return d
}
