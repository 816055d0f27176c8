package session

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/domain/layout"
	pkgerrors "axon-backend/pkg/errors"
	"axon-backend/pkg/utils"

	"go.uber.org/zap"
)

// edit runs fn against the current graph under the lock. When fn returns a
// changed graph the pre-edit state is snapshotted first, so a failed or
// no-op edit leaves history alone.
func (s *Session) edit(fn func(g aggregates.Graph) (aggregates.Graph, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return pkgerrors.NewValidationError("no wheel loaded")
	}

	next, changed, err := fn(s.graph)
	if err != nil || !changed {
		return err
	}
	s.history.Snapshot(s.graph)
	s.graph = next
	return nil
}

func (s *Session) node(g aggregates.Graph, id valueobjects.NodeID) (entities.Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return entities.Node{}, pkgerrors.NewNotFoundError("Node")
	}
	return n, nil
}

// AddChild adds a consequence below parentID and re-runs the layout.
// Adding below the deepest tier is a StructuralLimitError.
func (s *Session) AddChild(parentID valueobjects.NodeID) (valueobjects.NodeID, error) {
	id := valueobjects.NewNodeID()
	err := s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		parent, err := s.node(g, parentID)
		if err != nil {
			return g, false, err
		}
		tier, err := parent.Tier().ChildWithConfig(s.cfg)
		if err != nil {
			return g, false, err
		}

		child := entities.NewNode(id, s.cfg.NewNodeLabel, tier,
			parent.Position.Translate(0, s.cfg.NodeSpacingY()))
		child.Type = s.cfg.NewNodeType
		child.Width = s.cfg.NodeWidth
		child.Height = s.cfg.NodeHeight

		next := g.WithNode(child).WithEdge(entities.NewEdge(parentID, id, ""))
		return s.engine.Apply(s.strategy, next), true, nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug("node added", zap.String("parent", parentID.String()), zap.String("node", id.String()))
	return id, nil
}

// DeleteNode removes id together with everything below it and every edge
// touching them. The root cannot be deleted.
func (s *Session) DeleteNode(id valueobjects.NodeID) error {
	return s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		n, err := s.node(g, id)
		if err != nil {
			return g, false, err
		}
		if n.IsRoot() {
			return g, false, pkgerrors.NewStructuralLimitError("the central idea cannot be deleted")
		}
		doomed := append([]valueobjects.NodeID{id}, g.Descendants(id)...)
		return g.WithoutNodes(doomed...), true, nil
	})
}

func (s *Session) checkLabel(label string) error {
	if utf8.RuneCountInString(label) > s.cfg.MaxLabelLength {
		return pkgerrors.NewValidationError(fmt.Sprintf("label exceeds %d characters", s.cfg.MaxLabelLength))
	}
	return nil
}

// updateData applies fn to node id's data, skipping the edit when nothing changed
func (s *Session) updateData(id valueobjects.NodeID, fn func(d *entities.NodeData) bool) error {
	return s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		n, err := s.node(g, id)
		if err != nil {
			return g, false, err
		}
		data := n.Clone().Data
		if !fn(&data) {
			return g, false, nil
		}
		next, _ := g.UpdateNode(id, func(n *entities.Node) { n.Data = data })
		return next, true, nil
	})
}

// UpdateLabel renames a node
func (s *Session) UpdateLabel(id valueobjects.NodeID, label string) error {
	if err := s.checkLabel(label); err != nil {
		return err
	}
	return s.updateData(id, func(d *entities.NodeData) bool {
		if d.Label == label {
			return false
		}
		d.Label = label
		return true
	})
}

// UpdateDescription sets a node's free-text description
func (s *Session) UpdateDescription(id valueobjects.NodeID, description string) error {
	return s.updateData(id, func(d *entities.NodeData) bool {
		if d.Description == description {
			return false
		}
		d.Description = description
		return true
	})
}

// UpdateColor sets a node's color; empty clears it
func (s *Session) UpdateColor(id valueobjects.NodeID, color string) error {
	color = strings.TrimSpace(color)
	if err := utils.ValidateVar("color", color, "omitempty,hexcolor"); err != nil {
		return err
	}
	return s.updateData(id, func(d *entities.NodeData) bool {
		if d.Color == color {
			return false
		}
		d.Color = color
		return true
	})
}

// ToggleCollapsed folds or unfolds the subtree below id. Nodes under any
// collapsed ancestor are hidden, as are edges touching them.
func (s *Session) ToggleCollapsed(id valueobjects.NodeID) error {
	return s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		if _, err := s.node(g, id); err != nil {
			return g, false, err
		}
		next, _ := g.UpdateNode(id, func(n *entities.Node) { n.Data.Collapsed = !n.Data.Collapsed })
		return applyCollapse(next), true, nil
	})
}

func applyCollapse(g aggregates.Graph) aggregates.Graph {
	collapsed := make(map[valueobjects.NodeID]bool)
	for _, n := range g.Nodes {
		if n.Data.Collapsed {
			collapsed[n.ID] = true
		}
	}
	hidden := make(map[valueobjects.NodeID]bool)
	for id := range collapsed {
		for _, d := range g.Descendants(id) {
			hidden[d] = true
		}
	}

	out := g.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Hidden = hidden[out.Nodes[i].ID]
	}
	for i := range out.Edges {
		out.Edges[i].Hidden = hidden[out.Edges[i].Source] || hidden[out.Edges[i].Target]
	}
	return out
}

// Connect draws a free edge from source to target. The root cannot be a
// target and an edge between the same pair may exist only once.
func (s *Session) Connect(source, target valueobjects.NodeID, label string) (valueobjects.EdgeID, error) {
	id := valueobjects.EdgeIDFor(source, target)
	err := s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		if _, err := s.node(g, source); err != nil {
			return g, false, err
		}
		t, err := s.node(g, target)
		if err != nil {
			return g, false, err
		}
		switch {
		case source == target:
			return g, false, pkgerrors.NewValidationError("a node cannot connect to itself")
		case t.IsRoot():
			return g, false, pkgerrors.NewValidationError("the central idea cannot have incoming edges")
		case g.HasEdgeBetween(source, target):
			return g, false, pkgerrors.NewConflictError("edge already exists")
		}
		if _, taken := g.Edge(id); taken {
			return g, false, pkgerrors.NewConflictError("edge already exists")
		}
		return g.WithEdge(entities.NewEdge(source, target, label)), true, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateEdgeLabel relabels an edge
func (s *Session) UpdateEdgeLabel(id valueobjects.EdgeID, label string) error {
	if err := s.checkLabel(label); err != nil {
		return err
	}
	return s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		e, ok := g.Edge(id)
		if !ok {
			return g, false, pkgerrors.NewNotFoundError("Edge")
		}
		if e.Label == label {
			return g, false, nil
		}
		next, _ := g.UpdateEdge(id, func(e *entities.Edge) { e.Label = label })
		return next, true, nil
	})
}

// DeleteEdge removes an edge. Nodes it connected stay.
func (s *Session) DeleteEdge(id valueobjects.EdgeID) error {
	return s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		next, ok := g.WithoutEdge(id)
		if !ok {
			return g, false, pkgerrors.NewNotFoundError("Edge")
		}
		return next, true, nil
	})
}

func (s *Session) setPosition(g aggregates.Graph, id valueobjects.NodeID, p valueobjects.Position) (aggregates.Graph, bool, error) {
	n, err := s.node(g, id)
	if err != nil {
		return g, false, err
	}
	if n.Position == p {
		return g, false, nil
	}
	next, _ := g.UpdateNode(id, func(n *entities.Node) { n.Position = p })
	return next, true, nil
}

// MoveNode places a node in one discrete step, such as a drop
func (s *Session) MoveNode(id valueobjects.NodeID, p valueobjects.Position) error {
	return s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		return s.setPosition(g, id, p)
	})
}

// DragNode moves a node as part of a continuous drag. The whole drag, up to
// EndDrag, undoes as a single step.
func (s *Session) DragNode(id valueobjects.NodeID, p valueobjects.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return pkgerrors.NewValidationError("no wheel loaded")
	}

	next, changed, err := s.setPosition(s.graph, id, p)
	if err != nil || !changed {
		return err
	}
	s.history.BeginGesture(s.graph)
	s.graph = next
	return nil
}

// EndDrag closes the current drag gesture
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.EndGesture()
}

// CastVote records the session user's vote on a node and recomputes its
// probability
func (s *Session) CastVote(id valueobjects.NodeID, value float64) (float64, error) {
	var probability float64
	err := s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		n, err := s.node(g, id)
		if err != nil {
			return g, false, err
		}
		voted, err := s.votes.Cast(n, s.userID, value)
		if err != nil {
			return g, false, err
		}
		probability = voted.Data.Probability
		next, _ := g.UpdateNode(id, func(n *entities.Node) { *n = voted })
		return next, true, nil
	})
	return probability, err
}

// ResetLayout recomputes every position with strategy, which also becomes
// the layout used for later additions. Empty strategy keeps the current one.
func (s *Session) ResetLayout(strategy layout.Strategy) error {
	if strategy != "" {
		parsed, err := layout.ParseStrategy(string(strategy))
		if err != nil {
			return err
		}
		strategy = parsed
	}

	s.mu.Lock()
	if strategy != "" {
		s.strategy = strategy
	}
	strategy = s.strategy
	s.mu.Unlock()

	return s.edit(func(g aggregates.Graph) (aggregates.Graph, bool, error) {
		next := s.engine.Apply(strategy, g)
		return next, true, nil
	})
}
