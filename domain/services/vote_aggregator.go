package services

import (
	"strings"

	"axon-backend/domain/config"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	pkgerrors "axon-backend/pkg/errors"
)

// VoteAggregator turns per-user likelihood votes into a node's consensus probability.
// The same rules apply to votes cast in an editing session and through the API.
type VoteAggregator struct {
	cfg *config.DomainConfig
}

// NewVoteAggregator creates a vote aggregator
func NewVoteAggregator(cfg *config.DomainConfig) *VoteAggregator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &VoteAggregator{cfg: cfg}
}

// Cast records userID's vote on a copy of node and recomputes its probability.
// A repeat vote by the same user overwrites the previous one. On error the
// returned node is the unchanged input.
func (a *VoteAggregator) Cast(node entities.Node, userID string, value float64) (entities.Node, error) {
	if strings.TrimSpace(userID) == "" {
		return node, pkgerrors.NewValidationError("userId is required to vote")
	}

	vote, err := valueobjects.NewVoteWithConfig(value, a.cfg)
	if err != nil {
		return node, err
	}

	updated := node.Clone()
	if updated.Data.Votes == nil {
		updated.Data.Votes = make(map[string]int, 1)
	}
	updated.Data.Votes[userID] = vote.Int()
	updated.Data.Probability = Probability(updated.Data.Votes)
	return updated, nil
}

// Probability is the mean of votes, or 0 when there are none
func Probability(votes map[string]int) float64 {
	if len(votes) == 0 {
		return 0
	}
	sum := 0
	for _, v := range votes {
		sum += v
	}
	return float64(sum) / float64(len(votes))
}
