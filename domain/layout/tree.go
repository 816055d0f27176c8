package layout

import (
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// treeNode is the working state of the Buchheim walk for one wheel node
type treeNode struct {
	id       valueobjects.NodeID
	parent   *treeNode
	children []*treeNode
	index    int // position among siblings
	depth    int

	prelim   float64
	modifier float64
	change   float64
	shift    float64
	thread   *treeNode
	ancestor *treeNode
	// default ancestor, only set on internal nodes
	defaultAncestor *treeNode

	x float64
}

// Tree lays g out as a tidy tree in linear time (Buchheim, Jünger and
// Leipert's improvement of Walker's algorithm). The root sits at the origin,
// each depth level one NodeSpacingY below the previous, and neighbours one
// NodeSpacingX apart, widened by CousinSeparation when their parents differ.
//
// Nodes not reachable from the root through parent links keep their
// position.
func (e *Engine) Tree(g aggregates.Graph) aggregates.Graph {
	out := g.Clone()
	if e.skip("tree", g) {
		return out
	}
	root, _ := g.Root()

	tree, count := buildTree(root.ID, g.ChildMap())
	if count < len(g.Nodes) {
		e.logger.Debug("tree layout leaves unreachable nodes in place",
			zap.Int("placed", count),
			zap.Int("total", len(g.Nodes)))
	}

	// sentinel parent so the root can be handled like any other node
	sentinel := &treeNode{children: []*treeNode{tree}}
	tree.parent = sentinel

	postOrder(tree, e.firstWalk)
	sentinel.modifier = -tree.prelim
	preOrder(tree, secondWalk)

	dx, dy := e.cfg.NodeSpacingX(), e.cfg.NodeSpacingY()
	placed := make(map[valueobjects.NodeID]valueobjects.Position, count)
	preOrder(tree, func(v *treeNode) {
		placed[v.id] = valueobjects.NewPosition(v.x*dx, float64(v.depth)*dy)
	})

	for i := range out.Nodes {
		if p, ok := placed[out.Nodes[i].ID]; ok {
			out.Nodes[i].Position = p
		}
	}
	return out
}

// buildTree materialises the parent-link tree below rootID. Children keep
// edge order; a node already placed is never visited twice, which cuts cycles.
func buildTree(rootID valueobjects.NodeID, children map[valueobjects.NodeID][]valueobjects.NodeID) (*treeNode, int) {
	root := &treeNode{id: rootID}
	root.ancestor = root
	visited := map[valueobjects.NodeID]bool{rootID: true}
	count := 1

	queue := []*treeNode{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, childID := range children[current.id] {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			child := &treeNode{
				id:     childID,
				parent: current,
				index:  len(current.children),
				depth:  current.depth + 1,
			}
			child.ancestor = child
			current.children = append(current.children, child)
			queue = append(queue, child)
			count++
		}
	}
	return root, count
}

func (e *Engine) separation(a, b *treeNode) float64 {
	if a.parent == b.parent {
		return 1
	}
	return e.cfg.CousinSeparation
}

func (e *Engine) firstWalk(v *treeNode) {
	siblings := v.parent.children
	var left *treeNode
	if v.index > 0 {
		left = siblings[v.index-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].prelim + v.children[len(v.children)-1].prelim) / 2
		if left != nil {
			v.prelim = left.prelim + e.separation(v, left)
			v.modifier = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if left != nil {
		v.prelim = left.prelim + e.separation(v, left)
	}

	ancestor := v.parent.defaultAncestor
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.defaultAncestor = e.apportion(v, left, ancestor)
}

func secondWalk(v *treeNode) {
	v.x = v.prelim + v.parent.modifier
	v.modifier += v.parent.modifier
}

// apportion pushes the subtree of v right until its left contour clears the
// right contour of every sibling subtree before it.
func (e *Engine) apportion(v, left, ancestor *treeNode) *treeNode {
	if left == nil {
		return ancestor
	}

	insideRight, outsideRight := v, v
	insideLeft, outsideLeft := left, v.parent.children[0]
	sumInsideRight, sumOutsideRight := insideRight.modifier, outsideRight.modifier
	sumInsideLeft, sumOutsideLeft := insideLeft.modifier, outsideLeft.modifier

	for {
		insideLeft = nextRight(insideLeft)
		insideRight = nextLeft(insideRight)
		if insideLeft == nil || insideRight == nil {
			break
		}
		outsideLeft = nextLeft(outsideLeft)
		outsideRight = nextRight(outsideRight)
		outsideRight.ancestor = v

		shift := insideLeft.prelim + sumInsideLeft - insideRight.prelim - sumInsideRight +
			e.separation(insideLeft, insideRight)
		if shift > 0 {
			moveSubtree(nextAncestor(insideLeft, v, ancestor), v, shift)
			sumInsideRight += shift
			sumOutsideRight += shift
		}
		sumInsideLeft += insideLeft.modifier
		sumInsideRight += insideRight.modifier
		sumOutsideLeft += outsideLeft.modifier
		sumOutsideRight += outsideRight.modifier
	}

	if insideLeft != nil && nextRight(outsideRight) == nil {
		outsideRight.thread = insideLeft
		outsideRight.modifier += sumInsideLeft - sumOutsideRight
	}
	if insideRight != nil && nextLeft(outsideLeft) == nil {
		outsideLeft.thread = insideRight
		outsideLeft.modifier += sumInsideRight - sumOutsideLeft
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func nextAncestor(insideLeft, v, ancestor *treeNode) *treeNode {
	if insideLeft.ancestor.parent == v.parent {
		return insideLeft.ancestor
	}
	return ancestor
}

func moveSubtree(from, to *treeNode, shift float64) {
	change := shift / float64(to.index-from.index)
	to.change -= change
	to.shift += shift
	from.change += change
	to.prelim += shift
	to.modifier += shift
}

func executeShifts(v *treeNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.modifier += shift
		change += w.change
		shift += w.shift + change
	}
}

func postOrder(v *treeNode, fn func(*treeNode)) {
	for _, c := range v.children {
		postOrder(c, fn)
	}
	fn(v)
}

func preOrder(v *treeNode, fn func(*treeNode)) {
	fn(v)
	for _, c := range v.children {
		preOrder(c, fn)
	}
}
