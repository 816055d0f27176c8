package aggregates

import (
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
)

// Graph is the node and edge set of a wheel. It is the unit of snapshotting,
// persistence and layout, and is treated as an immutable value: every
// mutator returns a new Graph and leaves the receiver untouched.
//
// Edge order is significant. When a node has several incoming edges the
// first one in Edges is its parent link.
type Graph struct {
	Nodes []entities.Node `json:"nodes"`
	Edges []entities.Edge `json:"edges"`
}

// NewGraph builds a graph from copies of nodes and edges
func NewGraph(nodes []entities.Node, edges []entities.Edge) Graph {
	return Graph{Nodes: nodes, Edges: edges}.Clone()
}

// Clone returns a deep copy of g
func (g Graph) Clone() Graph {
	c := Graph{
		Nodes: make([]entities.Node, len(g.Nodes)),
		Edges: make([]entities.Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		c.Nodes[i] = n.Clone()
	}
	copy(c.Edges, g.Edges)
	return c
}

// IsEmpty reports whether g has no nodes
func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

func (g Graph) nodeIndex(id valueobjects.NodeID) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (g Graph) edgeIndex(id valueobjects.EdgeID) int {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns a copy of the node with the given id
func (g Graph) Node(id valueobjects.NodeID) (entities.Node, bool) {
	if i := g.nodeIndex(id); i >= 0 {
		return g.Nodes[i].Clone(), true
	}
	return entities.Node{}, false
}

// HasNode reports whether id is in g
func (g Graph) HasNode(id valueobjects.NodeID) bool {
	return g.nodeIndex(id) >= 0
}

// Edge returns the edge with the given id
func (g Graph) Edge(id valueobjects.EdgeID) (entities.Edge, bool) {
	if i := g.edgeIndex(id); i >= 0 {
		return g.Edges[i], true
	}
	return entities.Edge{}, false
}

// HasEdgeBetween reports whether an edge source -> target already exists
func (g Graph) HasEdgeBetween(source, target valueobjects.NodeID) bool {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// Root returns the first tier-0 node
func (g Graph) Root() (entities.Node, bool) {
	for _, n := range g.Nodes {
		if n.IsRoot() {
			return n.Clone(), true
		}
	}
	return entities.Node{}, false
}

// ParentMap maps each node with an incoming edge to its parent.
// The first edge in edge order wins.
func (g Graph) ParentMap() map[valueobjects.NodeID]valueobjects.NodeID {
	parents := make(map[valueobjects.NodeID]valueobjects.NodeID, len(g.Edges))
	for _, e := range g.Edges {
		if _, seen := parents[e.Target]; !seen {
			parents[e.Target] = e.Source
		}
	}
	return parents
}

// ParentOf returns the parent link of id
func (g Graph) ParentOf(id valueobjects.NodeID) (valueobjects.NodeID, bool) {
	for _, e := range g.Edges {
		if e.Target == id {
			return e.Source, true
		}
	}
	return "", false
}

// ChildrenOf returns the nodes whose parent link is id, in edge order
func (g Graph) ChildrenOf(id valueobjects.NodeID) []valueobjects.NodeID {
	return g.ChildMap()[id]
}

// ChildMap groups every node under its parent link, children in edge order
func (g Graph) ChildMap() map[valueobjects.NodeID][]valueobjects.NodeID {
	children := make(map[valueobjects.NodeID][]valueobjects.NodeID)
	seen := make(map[valueobjects.NodeID]bool, len(g.Edges))
	for _, e := range g.Edges {
		if seen[e.Target] {
			continue
		}
		seen[e.Target] = true
		children[e.Source] = append(children[e.Source], e.Target)
	}
	return children
}

// ConnectedEdges returns every edge touching id
func (g Graph) ConnectedEdges(id valueobjects.NodeID) []entities.Edge {
	var out []entities.Edge
	for _, e := range g.Edges {
		if e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// Descendants returns id's subtree below it following parent links,
// breadth first. Cycles are cut at the first revisit.
func (g Graph) Descendants(id valueobjects.NodeID) []valueobjects.NodeID {
	children := g.ChildMap()
	visited := map[valueobjects.NodeID]bool{id: true}
	queue := []valueobjects.NodeID{id}
	var out []valueobjects.NodeID

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// PathFromRoot walks parent links from id up to a parentless node and
// returns the ids root first. A cycle ends the walk.
func (g Graph) PathFromRoot(id valueobjects.NodeID) []valueobjects.NodeID {
	parents := g.ParentMap()
	visited := make(map[valueobjects.NodeID]bool)
	var reversed []valueobjects.NodeID

	current := id
	for !visited[current] {
		visited[current] = true
		reversed = append(reversed, current)
		parent, ok := parents[current]
		if !ok {
			break
		}
		current = parent
	}

	path := make([]valueobjects.NodeID, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}

// WithNode returns g plus node appended
func (g Graph) WithNode(node entities.Node) Graph {
	c := g.Clone()
	c.Nodes = append(c.Nodes, node.Clone())
	return c
}

// WithEdge returns g plus edge appended
func (g Graph) WithEdge(edge entities.Edge) Graph {
	c := g.Clone()
	c.Edges = append(c.Edges, edge)
	return c
}

// UpdateNode returns g with fn applied to a copy of node id.
// The second result is false when id is absent.
func (g Graph) UpdateNode(id valueobjects.NodeID, fn func(*entities.Node)) (Graph, bool) {
	i := g.nodeIndex(id)
	if i < 0 {
		return g, false
	}
	c := g.Clone()
	fn(&c.Nodes[i])
	c.Nodes[i].ID = id
	return c, true
}

// UpdateEdge returns g with fn applied to a copy of edge id
func (g Graph) UpdateEdge(id valueobjects.EdgeID, fn func(*entities.Edge)) (Graph, bool) {
	i := g.edgeIndex(id)
	if i < 0 {
		return g, false
	}
	c := g.Clone()
	fn(&c.Edges[i])
	c.Edges[i].ID = id
	return c, true
}

// WithoutNodes returns g minus the given nodes and every edge touching them
func (g Graph) WithoutNodes(ids ...valueobjects.NodeID) Graph {
	drop := make(map[valueobjects.NodeID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	c := Graph{
		Nodes: make([]entities.Node, 0, len(g.Nodes)),
		Edges: make([]entities.Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		if !drop[n.ID] {
			c.Nodes = append(c.Nodes, n.Clone())
		}
	}
	for _, e := range g.Edges {
		if !drop[e.Source] && !drop[e.Target] {
			c.Edges = append(c.Edges, e)
		}
	}
	return c
}

// WithoutEdge returns g minus edge id
func (g Graph) WithoutEdge(id valueobjects.EdgeID) (Graph, bool) {
	i := g.edgeIndex(id)
	if i < 0 {
		return g, false
	}
	c := g.Clone()
	c.Edges = append(c.Edges[:i], c.Edges[i+1:]...)
	return c, true
}

// Positions returns every node position keyed by id
func (g Graph) Positions() map[valueobjects.NodeID]valueobjects.Position {
	out := make(map[valueobjects.NodeID]valueobjects.Position, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.ID] = n.Position
	}
	return out
}
