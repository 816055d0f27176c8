// Package reconcile folds authoritative wheel state fetched from the server
// into a live editing session.
package reconcile

import (
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/domain/layout"
	"axon-backend/domain/versioning"

	"go.uber.org/zap"
)

// Result is the outcome of a merge
type Result struct {
	Graph aggregates.Graph
	// Diff lists what the merge changed relative to the local graph
	Diff versioning.GraphDiff
}

// Reconciler merges remote graphs into local ones
type Reconciler struct {
	engine   *layout.Engine
	strategy layout.Strategy
	logger   *zap.Logger
}

// NewReconciler creates a reconciler that lays out initial loads with strategy
func NewReconciler(engine *layout.Engine, strategy layout.Strategy, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strategy == "" {
		strategy = layout.StrategyTree
	}
	return &Reconciler{engine: engine, strategy: strategy, logger: logger.Named("reconcile")}
}

// Load is the initial-load mode: remote replaces whatever was there and is
// laid out from scratch
func (r *Reconciler) Load(remote aggregates.Graph) aggregates.Graph {
	return r.engine.Apply(r.strategy, remote)
}

// Merge is the background-refresh mode. Remote wins for everything except
// where local nodes sit on the canvas:
//
//   - nodes in both keep their local position and take every other field
//     from remote
//   - nodes only in remote are appended at their remote position
//   - nodes only in local are dropped
//   - edges are replaced by remote's
//
// Neither input is modified.
func (r *Reconciler) Merge(local, remote aggregates.Graph) Result {
	remoteByID := make(map[valueobjects.NodeID]entities.Node, len(remote.Nodes))
	for _, n := range remote.Nodes {
		remoteByID[n.ID] = n
	}

	merged := aggregates.Graph{
		Nodes: make([]entities.Node, 0, len(remote.Nodes)),
		Edges: make([]entities.Edge, len(remote.Edges)),
	}
	kept := make(map[valueobjects.NodeID]bool, len(local.Nodes))
	for _, ln := range local.Nodes {
		rn, ok := remoteByID[ln.ID]
		if !ok {
			continue
		}
		n := rn.Clone()
		n.Position = ln.Position
		merged.Nodes = append(merged.Nodes, n)
		kept[ln.ID] = true
	}
	for _, rn := range remote.Nodes {
		if !kept[rn.ID] {
			merged.Nodes = append(merged.Nodes, rn.Clone())
			kept[rn.ID] = true
		}
	}
	copy(merged.Edges, remote.Edges)

	diff := versioning.Diff(local, merged)
	if !diff.IsEmpty() {
		r.logger.Debug("merged remote changes",
			zap.Int("added", len(diff.NodesAdded)),
			zap.Int("removed", len(diff.NodesRemoved)),
			zap.Int("updated", len(diff.NodesUpdated)),
			zap.Int("edges_added", len(diff.EdgesAdded)),
			zap.Int("edges_removed", len(diff.EdgesRemoved)))
	}
	return Result{Graph: merged, Diff: diff}
}
