package validators

import (
	"unicode/utf8"

	"axon-backend/domain/config"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/pkg/errors"
)

// GraphValidator checks the shape rules a stored wheel must satisfy
type GraphValidator struct {
	cfg *config.DomainConfig
}

// NewGraphValidator creates a validator for the given domain rules
func NewGraphValidator(cfg *config.DomainConfig) *GraphValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GraphValidator{cfg: cfg}
}

// ValidateStructure checks that ids are unique and non-empty and that every
// edge points at existing nodes. Anything failing this cannot be edited safely.
func (v *GraphValidator) ValidateStructure(g aggregates.Graph) error {
	fe := errors.NewFieldErrors()
	v.checkStructure(g, fe)
	return fe.Err()
}

// Validate runs the structural checks plus the hierarchy rules: exactly one
// central idea, no edge into it, tiers within range and bounded label length.
func (v *GraphValidator) Validate(g aggregates.Graph) error {
	fe := errors.NewFieldErrors()
	v.checkStructure(g, fe)

	roots := 0
	for _, n := range g.Nodes {
		if n.IsRoot() {
			roots++
		}
		if !n.Data.Tier.Valid(v.cfg) {
			fe.Addf("nodes", "node %s has tier %d outside 0..%d", n.ID, n.Data.Tier, v.cfg.MaxTier)
		}
		if utf8.RuneCountInString(n.Data.Label) > v.cfg.MaxLabelLength {
			fe.Addf("nodes", "node %s label exceeds %d characters", n.ID, v.cfg.MaxLabelLength)
		}
		for user, vote := range n.Data.Votes {
			if vote < v.cfg.MinVote || vote > v.cfg.MaxVote {
				fe.Addf("nodes", "node %s has out of range vote %d from %s", n.ID, vote, user)
			}
		}
	}
	switch {
	case roots == 0:
		fe.Add("nodes", "missing central idea (tier 0 node)")
	case roots > 1:
		fe.Addf("nodes", "expected one central idea, found %d", roots)
	}

	if root, ok := g.Root(); ok {
		for _, e := range g.Edges {
			if e.Target == root.ID {
				fe.Addf("edges", "edge %s points into the central idea", e.ID)
			}
		}
	}

	return fe.Err()
}

func (v *GraphValidator) checkStructure(g aggregates.Graph, fe *errors.FieldErrors) {
	nodeIDs := make(map[valueobjects.NodeID]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID.IsZero() {
			fe.Add("nodes", "node with empty id")
			continue
		}
		if nodeIDs[n.ID] {
			fe.Addf("nodes", "duplicate node id %s", n.ID)
		}
		nodeIDs[n.ID] = true
	}

	edgeIDs := make(map[valueobjects.EdgeID]bool, len(g.Edges))
	for _, e := range g.Edges {
		if e.ID == "" {
			fe.Add("edges", "edge with empty id")
		} else if edgeIDs[e.ID] {
			fe.Addf("edges", "duplicate edge id %s", e.ID)
		}
		edgeIDs[e.ID] = true

		if !nodeIDs[e.Source] {
			fe.Addf("edges", "edge %s references unknown source %s", e.ID, e.Source)
		}
		if !nodeIDs[e.Target] {
			fe.Addf("edges", "edge %s references unknown target %s", e.ID, e.Target)
		}
	}
}
