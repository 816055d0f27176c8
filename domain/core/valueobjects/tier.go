package valueobjects

import (
	"fmt"

	"axon-backend/domain/config"
	pkgerrors "axon-backend/pkg/errors"
)

// Tier is the depth of a node in the hierarchy; tier 0 is the central idea
type Tier int

// RootTier is the tier of the central idea
const RootTier Tier = 0

// IsRoot reports whether t is the central idea tier
func (t Tier) IsRoot() bool {
	return t == RootTier
}

// Child derives the tier of a new child of a node at tier t
func (t Tier) Child() (Tier, error) {
	return t.ChildWithConfig(config.DefaultDomainConfig())
}

// ChildWithConfig derives the child tier, rejecting anything past cfg.MaxTier
func (t Tier) ChildWithConfig(cfg *config.DomainConfig) (Tier, error) {
	next := t + 1
	if int(next) > cfg.MaxTier {
		return t, pkgerrors.NewStructuralLimitError(
			fmt.Sprintf("cannot add a child below tier %d: maximum depth is %d", t, cfg.MaxTier))
	}
	return next, nil
}

// Valid reports whether t lies in 0..cfg.MaxTier
func (t Tier) Valid(cfg *config.DomainConfig) bool {
	return t >= 0 && int(t) <= cfg.MaxTier
}
