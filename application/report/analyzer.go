// Package report turns a voted wheel into a written analysis: the consequences
// the crowd rated most likely and the causal path leading to each.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"axon-backend/domain/config"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/valueobjects"
	pkgerrors "axon-backend/pkg/errors"
)

// Outcome is a consequence rated at or above the key-outcome threshold
type Outcome struct {
	NodeID      valueobjects.NodeID `json:"nodeId"`
	Label       string              `json:"label"`
	Probability float64             `json:"probability"`
	Tier        valueobjects.Tier   `json:"tier"`
	Description string              `json:"description,omitempty"`
}

// PathStep is one node on the way from the central idea to an outcome
type PathStep struct {
	NodeID valueobjects.NodeID `json:"nodeId"`
	Label  string              `json:"label"`
	Tier   valueobjects.Tier   `json:"tier"`
}

// Scenario is the chain of consequences ending in a key outcome
type Scenario struct {
	Path                    []PathStep `json:"path"`
	FinalOutcomeProbability float64    `json:"finalOutcomeProbability"`
	Narrative               string     `json:"narrative"`
	// Detached is set when no parent chain links the outcome to the central idea
	Detached bool `json:"detached,omitempty"`
}

// Report is the analysis of one wheel
type Report struct {
	Title       string     `json:"title"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Summary     string     `json:"summary"`
	KeyOutcomes []Outcome  `json:"keyOutcomes"`
	Scenarios   []Scenario `json:"scenarios"`
}

// Analyzer builds reports
type Analyzer struct {
	threshold float64
	now       func() time.Time
}

// NewAnalyzer creates an analyzer using cfg's key-outcome threshold
func NewAnalyzer(cfg *config.DomainConfig) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Analyzer{threshold: cfg.KeyOutcomeThreshold, now: time.Now}
}

// Analyze reports on g. A graph without a central idea cannot be analysed.
func (a *Analyzer) Analyze(title string, g aggregates.Graph) (*Report, error) {
	root, ok := g.Root()
	if !ok {
		return nil, pkgerrors.NewValidationError("Central node not found for analysis.")
	}

	var outcomes []Outcome
	for _, n := range g.Nodes {
		if n.IsRoot() || n.Data.Probability < a.threshold {
			continue
		}
		outcomes = append(outcomes, Outcome{
			NodeID:      n.ID,
			Label:       n.Data.Label,
			Probability: n.Data.Probability,
			Tier:        n.Tier(),
			Description: n.Data.Description,
		})
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Probability > outcomes[j].Probability
	})

	scenarios := make([]Scenario, 0, len(outcomes))
	for _, o := range outcomes {
		scenarios = append(scenarios, a.scenario(g, root.ID, o))
	}
	if outcomes == nil {
		outcomes = []Outcome{}
	}

	return &Report{
		Title:       "Futures Wheel Analysis: " + title,
		GeneratedAt: a.now(),
		Summary: fmt.Sprintf(`This report analyzes the futures wheel for "%s". `+
			"It identifies %d key outcomes with a high probability (average score >= %g). "+
			"These outcomes form the basis of %d likely scenarios, tracing potential pathways from the central concept.",
			title, len(outcomes), a.threshold, len(scenarios)),
		KeyOutcomes: outcomes,
		Scenarios:   scenarios,
	}, nil
}

func (a *Analyzer) scenario(g aggregates.Graph, rootID valueobjects.NodeID, o Outcome) Scenario {
	ids := g.PathFromRoot(o.NodeID)
	path := make([]PathStep, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.Node(id); ok {
			path = append(path, PathStep{NodeID: id, Label: n.Data.Label, Tier: n.Tier()})
		}
	}

	detached := path[0].NodeID != rootID

	var b strings.Builder
	if detached {
		fmt.Fprintf(&b, `The scenario begins with "%s", which is not connected to the central concept.`, path[0].Label)
	} else {
		fmt.Fprintf(&b, `The scenario begins with the central concept of "%s".`, path[0].Label)
	}
	for i := 0; i+1 < len(path); i++ {
		fmt.Fprintf(&b, ` This leads to "%s"`, path[i+1].Label)
		if label := edgeLabel(g, path[i].NodeID, path[i+1].NodeID); label != "" {
			fmt.Fprintf(&b, ` as a "%s"`, label)
		}
		b.WriteString(".")
	}

	return Scenario{Path: path, FinalOutcomeProbability: o.Probability, Narrative: b.String(), Detached: detached}
}

// edgeLabel returns the label of the first edge source -> target
func edgeLabel(g aggregates.Graph, source, target valueobjects.NodeID) string {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return e.Label
		}
	}
	return ""
}

// Markdown renders r as a markdown document
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "_Generated %s_\n\n", r.GeneratedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "%s\n\n", r.Summary)

	b.WriteString("## Key outcomes\n\n")
	if len(r.KeyOutcomes) == 0 {
		b.WriteString("No consequence reached the key-outcome threshold.\n\n")
	}
	for _, o := range r.KeyOutcomes {
		fmt.Fprintf(&b, "- **%s** (tier %d, probability %.2f)", o.Label, o.Tier, o.Probability)
		if o.Description != "" {
			fmt.Fprintf(&b, ": %s", o.Description)
		}
		b.WriteString("\n")
	}

	if len(r.Scenarios) > 0 {
		b.WriteString("\n## Scenarios\n\n")
	}
	for i, s := range r.Scenarios {
		labels := make([]string, len(s.Path))
		for j, p := range s.Path {
			labels[j] = p.Label
		}
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, strings.Join(labels, " → "))
		fmt.Fprintf(&b, "%s\n\n", s.Narrative)
	}
	return b.String()
}
