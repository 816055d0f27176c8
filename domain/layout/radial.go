package layout

import (
	"math"
	"sort"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
)

// Radial places the root at the origin and every other node on the ring of
// its tier. Children of the root share the full circle, starting at the top;
// deeper children fan out over a window centred on their parent's angle that
// narrows with depth.
//
// The result lists the root first, then each tier ordered by angle. Nodes the
// walk never reaches keep their position and come last.
func (e *Engine) Radial(g aggregates.Graph) aggregates.Graph {
	if e.skip("radial", g) {
		return g.Clone()
	}
	root, _ := g.Root()
	angles := e.radialAngles(g, root)

	var (
		placed   = make(map[valueobjects.Tier][]entities.Node)
		tiers    []valueobjects.Tier
		unplaced []entities.Node
		rootNode entities.Node
	)
	for _, n := range g.Nodes {
		n = n.Clone()
		if n.ID == root.ID {
			n.Position = valueobjects.Origin
			rootNode = n
			continue
		}
		angle, ok := angles[n.ID]
		if !ok || n.Tier() <= valueobjects.RootTier {
			unplaced = append(unplaced, n)
			continue
		}
		r := e.cfg.RadiusForTier(int(n.Tier()))
		n.Position = valueobjects.NewPosition(r*math.Cos(angle), r*math.Sin(angle))
		if _, seen := placed[n.Tier()]; !seen {
			tiers = append(tiers, n.Tier())
		}
		placed[n.Tier()] = append(placed[n.Tier()], n)
	}

	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })

	out := aggregates.Graph{
		Nodes: make([]entities.Node, 0, len(g.Nodes)),
		Edges: g.Clone().Edges,
	}
	out.Nodes = append(out.Nodes, rootNode)
	for _, t := range tiers {
		ring := placed[t]
		sort.SliceStable(ring, func(i, j int) bool { return angles[ring[i].ID] < angles[ring[j].ID] })
		out.Nodes = append(out.Nodes, ring...)
	}
	out.Nodes = append(out.Nodes, unplaced...)
	return out
}

// radialAngles walks parent links breadth first from the root and returns
// the angle of every node reached
func (e *Engine) radialAngles(g aggregates.Graph, root entities.Node) map[valueobjects.NodeID]float64 {
	children := g.ChildMap()
	tiers := make(map[valueobjects.NodeID]valueobjects.Tier, len(g.Nodes))
	for _, n := range g.Nodes {
		tiers[n.ID] = n.Tier()
	}

	angles := map[valueobjects.NodeID]float64{root.ID: -math.Pi / 2}
	visited := map[valueobjects.NodeID]bool{root.ID: true}
	queue := []valueobjects.NodeID{root.ID}

	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		var kids []valueobjects.NodeID
		for _, id := range children[parentID] {
			if _, known := tiers[id]; known && !visited[id] {
				kids = append(kids, id)
			}
		}
		if len(kids) == 0 {
			continue
		}

		parentTier := tiers[parentID]
		n := float64(len(kids))
		for i, id := range kids {
			var angle float64
			if parentTier.IsRoot() {
				angle = float64(i)*(2*math.Pi/n) - math.Pi/2
			} else {
				spread := math.Pi / (3 * float64(parentTier+1))
				angle = angles[parentID] - spread*(n-1)/2 + float64(i)*spread
			}
			angles[id] = angle
			visited[id] = true
			queue = append(queue, id)
		}
	}
	return angles
}
