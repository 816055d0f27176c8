package report

import (
	"testing"
	"time"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voted(id, label string, tier int, probability float64) entities.Node {
	n := entities.NewNode(valueobjects.NodeID(id), label, valueobjects.Tier(tier), valueobjects.Origin)
	n.Data.Probability = probability
	return n
}

func sample() aggregates.Graph {
	return aggregates.NewGraph(
		[]entities.Node{
			voted("0", "Remote work", 0, 5),
			voted("a", "Fewer commutes", 1, 4),
			voted("b", "Office vacancies", 1, 2),
			voted("c", "Cleaner air", 2, 4.5),
			voted("d", "Lower rents", 2, 3.5),
		},
		[]entities.Edge{
			entities.NewEdge("0", "a", "causes"),
			entities.NewEdge("0", "b", ""),
			entities.NewEdge("a", "c", "enables"),
			entities.NewEdge("b", "d", ""),
		},
	)
}

func fixedAnalyzer() *Analyzer {
	a := NewAnalyzer(nil)
	a.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return a
}

func TestAnalyze_KeyOutcomes(t *testing.T) {
	r, err := fixedAnalyzer().Analyze("Remote work", sample())
	require.NoError(t, err)

	assert.Equal(t, "Futures Wheel Analysis: Remote work", r.Title)
	require.Len(t, r.KeyOutcomes, 3)
	assert.Equal(t, valueobjects.NodeID("c"), r.KeyOutcomes[0].NodeID)
	assert.Equal(t, valueobjects.NodeID("a"), r.KeyOutcomes[1].NodeID)
	assert.Equal(t, valueobjects.NodeID("d"), r.KeyOutcomes[2].NodeID, "threshold is inclusive")
	for _, o := range r.KeyOutcomes {
		assert.NotEqual(t, valueobjects.RootTier, o.Tier, "the central idea is never an outcome")
	}
	assert.Contains(t, r.Summary, "3 key outcomes")
}

func TestAnalyze_Scenarios(t *testing.T) {
	r, err := fixedAnalyzer().Analyze("Remote work", sample())
	require.NoError(t, err)
	require.Len(t, r.Scenarios, 3)

	first := r.Scenarios[0]
	require.Len(t, first.Path, 3)
	assert.Equal(t, "Remote work", first.Path[0].Label)
	assert.Equal(t, "Cleaner air", first.Path[2].Label)
	assert.Equal(t, 4.5, first.FinalOutcomeProbability)
	assert.False(t, first.Detached)
	assert.Equal(t,
		`The scenario begins with the central concept of "Remote work".`+
			` This leads to "Fewer commutes" as a "causes".`+
			` This leads to "Cleaner air" as a "enables".`,
		first.Narrative)

	last := r.Scenarios[2]
	assert.Equal(t,
		`The scenario begins with the central concept of "Remote work".`+
			` This leads to "Office vacancies".`+
			` This leads to "Lower rents".`,
		last.Narrative)
}

func TestAnalyze_DetachedScenario(t *testing.T) {
	g := aggregates.NewGraph(
		[]entities.Node{
			voted("0", "Remote work", 0, 0),
			voted("x", "Orphaned idea", 1, 1),
			voted("y", "Side effect", 2, 4),
		},
		[]entities.Edge{entities.NewEdge("x", "y", "")},
	)

	r, err := fixedAnalyzer().Analyze("Remote work", g)
	require.NoError(t, err)
	require.Len(t, r.Scenarios, 1)

	s := r.Scenarios[0]
	assert.True(t, s.Detached)
	assert.Equal(t, "Orphaned idea", s.Path[0].Label)
	assert.Equal(t,
		`The scenario begins with "Orphaned idea", which is not connected to the central concept.`+
			` This leads to "Side effect".`,
		s.Narrative)
	assert.NotContains(t, s.Narrative, "central concept of")
}

func TestAnalyze_NoRoot(t *testing.T) {
	g := aggregates.NewGraph([]entities.Node{voted("a", "x", 1, 5)}, nil)
	_, err := fixedAnalyzer().Analyze("t", g)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAnalyze_NothingVoted(t *testing.T) {
	g := aggregates.NewGraph([]entities.Node{voted("0", "idea", 0, 0), voted("a", "x", 1, 0)}, nil)
	r, err := fixedAnalyzer().Analyze("t", g)
	require.NoError(t, err)
	assert.Empty(t, r.KeyOutcomes)
	assert.NotNil(t, r.KeyOutcomes)
	assert.Empty(t, r.Scenarios)
	assert.Contains(t, r.Markdown(), "No consequence reached the key-outcome threshold.")
}

func TestReport_Markdown(t *testing.T) {
	r, err := fixedAnalyzer().Analyze("Remote work", sample())
	require.NoError(t, err)

	md := r.Markdown()
	assert.Contains(t, md, "# Futures Wheel Analysis: Remote work")
	assert.Contains(t, md, "- **Cleaner air** (tier 2, probability 4.50)")
	assert.Contains(t, md, "### 1. Remote work → Fewer commutes → Cleaner air")
}
