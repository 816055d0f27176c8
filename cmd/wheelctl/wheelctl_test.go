package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"axon-backend/application/report"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/domain/layout"
	"axon-backend/domain/versioning"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	color.NoColor = true
}

func sampleDoc() aggregates.WheelDocument {
	root := entities.NewNode(valueobjects.RootNodeID, "Remote work", valueobjects.RootTier, valueobjects.Origin)
	a := entities.NewNode("a", "Fewer commutes", 1, valueobjects.Origin)
	a.Data.Probability = 4
	b := entities.NewNode("b", "Office vacancies", 1, valueobjects.Origin)
	b.Data.Probability = 2
	return aggregates.WheelDocument{
		ID:      "w1",
		Title:   "Remote work",
		OwnerID: "u1",
		Nodes:   []entities.Node{root, a, b},
		Edges: []entities.Edge{
			entities.NewEdge(valueobjects.RootNodeID, "a", "causes"),
			entities.NewEdge(valueobjects.RootNodeID, "b", ""),
		},
	}
}

func TestLayoutDocument_SpreadsChildren(t *testing.T) {
	for _, s := range []layout.Strategy{layout.StrategyTree, layout.StrategyRadial} {
		t.Run(string(s), func(t *testing.T) {
			out, err := layoutDocument(sampleDoc(), s, nil, zap.NewNop())
			require.NoError(t, err)
			require.Len(t, out.Nodes, 3)

			g := out.Graph()
			a, _ := g.Node("a")
			b, _ := g.Node("b")
			assert.NotEqual(t, a.Position, b.Position)
			assert.Equal(t, "w1", out.ID)
			assert.Len(t, out.Edges, 2)
		})
	}
}

func TestLayoutDocument_RejectsBrokenStructure(t *testing.T) {
	doc := sampleDoc()
	doc.Edges = append(doc.Edges, entities.NewEdge("a", "missing", ""))

	_, err := layoutDocument(doc, layout.StrategyTree, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestReadDocument_Stdin(t *testing.T) {
	raw, err := json.Marshal(sampleDoc())
	require.NoError(t, err)

	doc, err := readDocument("-", bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Remote work", doc.Title)
	assert.Len(t, doc.Nodes, 3)

	_, err = readDocument("-", strings.NewReader("{"))
	assert.Error(t, err)
}

func TestDescribeDiff(t *testing.T) {
	assert.Empty(t, describeDiff(versioning.GraphDiff{}))

	d := versioning.GraphDiff{
		NodesAdded: []valueobjects.NodeID{"a", "b"},
		EdgesAdded: []valueobjects.EdgeID{"e0-a"},
	}
	assert.Equal(t, "2 nodes added, 1 edges added", describeDiff(d))
}

func TestPrintReport(t *testing.T) {
	doc := sampleDoc()
	rep, err := report.NewAnalyzer(nil).Analyze(doc.Title, doc.Graph())
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, printReport(&text, rep, "text"))
	assert.Contains(t, text.String(), "Fewer commutes")
	assert.Contains(t, text.String(), "4.0")
	assert.NotContains(t, text.String(), "Office vacancies")

	var js bytes.Buffer
	require.NoError(t, printReport(&js, rep, "json"))
	var decoded report.Report
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, rep.Title, decoded.Title)

	var md bytes.Buffer
	require.NoError(t, printReport(&md, rep, "markdown"))
	assert.True(t, strings.HasPrefix(md.String(), "# "))

	assert.Error(t, printReport(&bytes.Buffer{}, rep, "pdf"))
}

func TestWheelRows(t *testing.T) {
	doc := sampleDoc()
	doc.Visibility = valueobjects.VisibilityPublic
	rows := wheelRows([]aggregates.WheelDocument{doc})

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"w1", "Remote work", "3", string(valueobjects.VisibilityPublic), "-"}, rows[0])
}

func TestRootCmd_LayoutFromStdin(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "test")

	raw, err := json.Marshal(sampleDoc())
	require.NoError(t, err)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetIn(bytes.NewReader(raw))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"layout", "-", "--strategy", "radial"})
	require.NoError(t, root.Execute())

	var doc aggregates.WheelDocument
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Len(t, doc.Nodes, 3)
}

func TestRootCmd_TokenRefusesWithoutSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("JWT_SECRET", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token", "u1"})
	assert.Error(t, root.Execute())
}
