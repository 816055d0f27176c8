package config

// DomainConfig holds the business rules of a consequence wheel
type DomainConfig struct {
	// Hierarchy constraints
	MaxTier int

	// Voting
	MinVote int
	MaxVote int

	// Radial layout: ring radius per tier, index is the tier
	TierRadii []float64

	// Tidy tree layout box. NodeWidth and NodeHeight are the rendered node
	// size; the gaps are added on top to get the spacing between slots.
	NodeWidth     float64
	NodeHeight    float64
	HorizontalGap float64
	VerticalGap   float64
	// Multiplier applied to the horizontal slot between cousins
	CousinSeparation float64

	// History
	HistoryLimit int // 0 means unbounded

	// Reporting
	KeyOutcomeThreshold float64

	// Defaults for newly created content
	RootColor      string
	NewNodeLabel   string
	NewNodeType    string
	MaxTitleLength int
	MaxLabelLength int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxTier: 3,

		MinVote: 1,
		MaxVote: 5,

		TierRadii: []float64{0, 250, 500, 750},

		NodeWidth:        160,
		NodeHeight:       60,
		HorizontalGap:    40,
		VerticalGap:      90,
		CousinSeparation: 1.25,

		HistoryLimit: 100,

		KeyOutcomeThreshold: 3.5,

		RootColor:      "#4f46e5",
		NewNodeLabel:   "New Consequence",
		NewNodeType:    "custom",
		MaxTitleLength: 200,
		MaxLabelLength: 500,
	}
}

// RadiusForTier returns the ring radius for tier, extrapolating past the table
func (c *DomainConfig) RadiusForTier(tier int) float64 {
	if tier < 0 {
		return 0
	}
	if tier < len(c.TierRadii) {
		return c.TierRadii[tier]
	}
	if len(c.TierRadii) < 2 {
		return 0
	}
	last := len(c.TierRadii) - 1
	step := c.TierRadii[last] - c.TierRadii[last-1]
	return c.TierRadii[last] + float64(tier-last)*step
}

// NodeSpacingX is the horizontal slot width of the tree layout
func (c *DomainConfig) NodeSpacingX() float64 {
	return c.NodeWidth + c.HorizontalGap
}

// NodeSpacingY is the vertical distance between tree depths
func (c *DomainConfig) NodeSpacingY() float64 {
	return c.NodeHeight + c.VerticalGap
}
