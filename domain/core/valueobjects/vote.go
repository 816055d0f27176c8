package valueobjects

import (
	"fmt"
	"math"

	"axon-backend/domain/config"
	pkgerrors "axon-backend/pkg/errors"
)

// Vote is one user's likelihood rating of a consequence
type Vote int

// NewVote validates a raw vote using the default bounds
func NewVote(value float64) (Vote, error) {
	return NewVoteWithConfig(value, config.DefaultDomainConfig())
}

// NewVoteWithConfig validates that value is an integer in cfg.MinVote..cfg.MaxVote.
// Raw votes arrive as JSON numbers, hence the float input.
func NewVoteWithConfig(value float64, cfg *config.DomainConfig) (Vote, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, pkgerrors.NewValidationError(
			fmt.Sprintf("vote must be an integer between %d and %d", cfg.MinVote, cfg.MaxVote))
	}
	if value < float64(cfg.MinVote) || value > float64(cfg.MaxVote) {
		return 0, pkgerrors.NewValidationError(
			fmt.Sprintf("vote must be an integer between %d and %d", cfg.MinVote, cfg.MaxVote))
	}
	return Vote(value), nil
}

// Int returns the vote as an int
func (v Vote) Int() int {
	return int(v)
}
