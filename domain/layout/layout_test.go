package layout

import (
	"math"
	"testing"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func node(id string, tier int, x, y float64) entities.Node {
	return entities.NewNode(valueobjects.NodeID(id), id, valueobjects.Tier(tier), valueobjects.NewPosition(x, y))
}

func edge(s, t string) entities.Edge {
	return entities.NewEdge(valueobjects.NodeID(s), valueobjects.NodeID(t), "")
}

func positions(g aggregates.Graph) map[valueobjects.NodeID]valueobjects.Position {
	return g.Positions()
}

// 0 ─┬─ a ─┬─ c
//    │     └─ d
//    └─ b ─── e ─── f
func wheel() aggregates.Graph {
	return aggregates.NewGraph(
		[]entities.Node{
			node("0", 0, 5, 5), node("a", 1, 1, 1), node("b", 1, 2, 2),
			node("c", 2, 3, 3), node("d", 2, 4, 4), node("e", 2, 6, 6), node("f", 3, 7, 7),
		},
		[]entities.Edge{edge("0", "a"), edge("0", "b"), edge("a", "c"), edge("a", "d"), edge("b", "e"), edge("e", "f")},
	)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyTree, s)

	s, err = ParseStrategy(" Radial ")
	require.NoError(t, err)
	assert.Equal(t, StrategyRadial, s)

	_, err = ParseStrategy("force")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestTree_SingleNodeIsNoop(t *testing.T) {
	e := NewEngine(nil, nil)
	g := aggregates.NewGraph([]entities.Node{node("0", 0, 42, 17)}, nil)

	out := e.Tree(g)
	assert.Equal(t, g, out)
}

func TestTree_NoRootIsNoopAndLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(nil, zap.New(core))
	g := aggregates.NewGraph(
		[]entities.Node{node("a", 1, 1, 2), node("b", 2, 3, 4)},
		[]entities.Edge{edge("a", "b")},
	)

	out := e.Tree(g)
	assert.Equal(t, g, out)
	assert.Equal(t, 1, logs.FilterMessage("layout skipped: no tier-0 root").Len())
}

func TestTree_ChildBelowRoot(t *testing.T) {
	e := NewEngine(nil, nil)
	g := aggregates.NewGraph(
		[]entities.Node{node("0", 0, 300, 300), node("a", 1, 0, 0)},
		[]entities.Edge{edge("0", "a")},
	)

	p := positions(e.Tree(g))
	assert.Equal(t, valueobjects.Origin, p["0"])
	assert.Equal(t, valueobjects.NewPosition(0, 150), p["a"])
}

func TestTree_SiblingAndCousinSeparation(t *testing.T) {
	e := NewEngine(nil, nil)

	siblings := aggregates.NewGraph(
		[]entities.Node{node("0", 0, 0, 0), node("a", 1, 0, 0), node("b", 1, 0, 0)},
		[]entities.Edge{edge("0", "a"), edge("0", "b")},
	)
	p := positions(e.Tree(siblings))
	assert.InDelta(t, 200, p["b"].X-p["a"].X, 1e-9)
	assert.InDelta(t, 0, p["a"].X+p["b"].X, 1e-9, "parent centred over children")

	cousins := aggregates.NewGraph(
		[]entities.Node{node("0", 0, 0, 0), node("a", 1, 0, 0), node("b", 1, 0, 0), node("c", 2, 0, 0), node("d", 2, 0, 0)},
		[]entities.Edge{edge("0", "a"), edge("0", "b"), edge("a", "c"), edge("b", "d")},
	)
	p = positions(e.Tree(cousins))
	assert.InDelta(t, 250, p["d"].X-p["c"].X, 1e-9)
	assert.InDelta(t, 300, p["c"].Y, 1e-9)
	assert.Equal(t, valueobjects.Origin, p["0"])
}

func TestTree_DepthsAndOrdering(t *testing.T) {
	e := NewEngine(nil, nil)
	p := positions(e.Tree(wheel()))

	assert.Equal(t, valueobjects.Origin, p["0"])
	for id, depth := range map[valueobjects.NodeID]float64{"a": 1, "b": 1, "c": 2, "d": 2, "e": 2, "f": 3} {
		assert.InDelta(t, depth*150, p[id].Y, 1e-9, "node %s", id)
	}
	assert.Less(t, p["a"].X, p["b"].X)
	assert.Less(t, p["c"].X, p["d"].X)
	assert.Less(t, p["d"].X, p["e"].X)
	assert.InDelta(t, p["e"].X, p["f"].X, 1e-9, "single child sits under its parent")
}

func TestTree_Idempotent(t *testing.T) {
	e := NewEngine(nil, nil)
	once := e.Tree(wheel())
	twice := e.Tree(once)
	assert.Equal(t, once, twice)
}

func TestTree_DoesNotMutateInput(t *testing.T) {
	e := NewEngine(nil, nil)
	g := wheel()
	before := g.Clone()
	_ = e.Tree(g)
	assert.Equal(t, before, g)
}

func TestTree_UnreachableAndCyclicNodes(t *testing.T) {
	e := NewEngine(nil, nil)
	g := aggregates.NewGraph(
		[]entities.Node{node("0", 0, 0, 0), node("a", 1, 9, 9), node("x", 1, 77, 88), node("y", 2, 11, 12)},
		[]entities.Edge{edge("0", "a"), edge("a", "0"), edge("x", "y"), edge("y", "x")},
	)

	p := positions(e.Tree(g))
	assert.Equal(t, valueobjects.NewPosition(0, 150), p["a"])
	assert.Equal(t, valueobjects.NewPosition(77, 88), p["x"])
	assert.Equal(t, valueobjects.NewPosition(11, 12), p["y"])
}

func TestTree_FirstEdgeIsParent(t *testing.T) {
	e := NewEngine(nil, nil)
	g := aggregates.NewGraph(
		[]entities.Node{node("0", 0, 0, 0), node("a", 1, 0, 0), node("b", 1, 0, 0), node("c", 2, 0, 0)},
		[]entities.Edge{edge("0", "a"), edge("0", "b"), edge("b", "c"), edge("a", "c")},
	)

	p := positions(e.Tree(g))
	assert.InDelta(t, p["b"].X, p["c"].X, 1e-9)
}

func TestRadial_RootAtOriginAndRingDistances(t *testing.T) {
	e := NewEngine(nil, nil)
	out := e.Radial(wheel())

	radii := map[valueobjects.Tier]float64{1: 250, 2: 500, 3: 750}
	for _, n := range out.Nodes {
		if n.IsRoot() {
			assert.Equal(t, valueobjects.Origin, n.Position)
			continue
		}
		assert.InDelta(t, radii[n.Tier()], n.Position.DistanceTo(valueobjects.Origin), 1e-6, "node %s", n.ID)
	}
}

func TestRadial_Angles(t *testing.T) {
	e := NewEngine(nil, nil)
	p := positions(e.Radial(wheel()))

	// two tier-1 children: top of the circle, then the bottom
	assert.InDelta(t, 0, p["a"].X, 1e-9)
	assert.InDelta(t, -250, p["a"].Y, 1e-9)
	assert.InDelta(t, 250, p["b"].Y, 1e-9)

	// c and d fan out around a by a window of π/6
	spread := math.Pi / 6
	angleC := math.Atan2(p["c"].Y, p["c"].X)
	angleD := math.Atan2(p["d"].Y, p["d"].X)
	assert.InDelta(t, -math.Pi/2-spread/2, angleC, 1e-9)
	assert.InDelta(t, -math.Pi/2+spread/2, angleD, 1e-9)

	// single children sit on their parent's angle
	angleE := math.Atan2(p["e"].Y, p["e"].X)
	angleF := math.Atan2(p["f"].Y, p["f"].X)
	assert.InDelta(t, math.Pi/2, angleE, 1e-9)
	assert.InDelta(t, angleE, angleF, 1e-9)
}

func TestRadial_OrderAndRestartSafety(t *testing.T) {
	e := NewEngine(nil, nil)
	once := e.Radial(wheel())

	ids := make([]valueobjects.NodeID, len(once.Nodes))
	for i, n := range once.Nodes {
		ids[i] = n.ID
	}
	assert.Equal(t, []valueobjects.NodeID{"0", "a", "b", "c", "d", "e", "f"}, ids)

	twice := e.Radial(once)
	assert.Equal(t, once, twice)
}

func TestRadial_NoopCases(t *testing.T) {
	e := NewEngine(nil, nil)

	single := aggregates.NewGraph([]entities.Node{node("0", 0, 3, 4)}, nil)
	assert.Equal(t, single, e.Radial(single))

	rootless := aggregates.NewGraph([]entities.Node{node("a", 1, 3, 4), node("b", 1, 5, 6)}, nil)
	assert.Equal(t, rootless, e.Radial(rootless))
}

func TestRadial_UnreachableKeepsPosition(t *testing.T) {
	e := NewEngine(nil, nil)
	g := aggregates.NewGraph(
		[]entities.Node{node("z", 2, 13, 14), node("0", 0, 1, 1), node("a", 1, 0, 0)},
		[]entities.Edge{edge("0", "a")},
	)

	out := e.Radial(g)
	require.Len(t, out.Nodes, 3)
	assert.Equal(t, valueobjects.NodeID("z"), out.Nodes[2].ID)
	assert.Equal(t, valueobjects.NewPosition(13, 14), out.Nodes[2].Position)
	assert.Len(t, out.Edges, 1)
}

func TestApply(t *testing.T) {
	e := NewEngine(nil, nil)
	g := wheel()
	assert.Equal(t, e.Tree(g), e.Apply(StrategyTree, g))
	assert.Equal(t, e.Radial(g), e.Apply(StrategyRadial, g))
	assert.Equal(t, g, e.Apply("spiral", g))
}
