package handlers

import (
	"context"

	"axon-backend/application/commands"
	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/domain/services"
	pkgerrors "axon-backend/pkg/errors"

	"go.uber.org/zap"
)

// maxVoteAttempts bounds retries when concurrent writers race on one wheel
const maxVoteAttempts = 3

// CastVoteHandler handles the CastVoteCommand
type CastVoteHandler struct {
	repo      ports.WheelRepository
	publisher ports.EventPublisher
	votes     *services.VoteAggregator
	logger    *zap.Logger
}

// NewCastVoteHandler creates a new handler instance
func NewCastVoteHandler(
	repo ports.WheelRepository,
	publisher ports.EventPublisher,
	votes *services.VoteAggregator,
	logger *zap.Logger,
) *CastVoteHandler {
	return &CastVoteHandler{repo: repo, publisher: publisher, votes: votes, logger: logger}
}

// Handle records the vote as a read-modify-write on the wheel, retrying
// from a fresh read when another write landed in between
func (h *CastVoteHandler) Handle(ctx context.Context, cmd commands.CastVoteCommand) error {
	var lastErr error
	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		wheel, err := h.repo.GetByID(ctx, aggregates.WheelID(cmd.WheelID))
		if err != nil {
			return err
		}
		node, err := wheel.CastVote(h.votes, cmd.UserID, valueobjects.NodeID(cmd.NodeID), cmd.Vote)
		if err != nil {
			return err
		}

		err = h.repo.Save(ctx, wheel)
		if err == nil {
			h.logger.Debug("Vote recorded",
				zap.String("wheel_id", cmd.WheelID),
				zap.String("node_id", cmd.NodeID),
				zap.Float64("probability", node.Data.Probability))
			publishEvents(ctx, h.publisher, wheel, h.logger)
			return nil
		}
		if !pkgerrors.IsConflict(err) {
			return err
		}
		lastErr = err
		h.logger.Debug("Vote write conflicted, retrying",
			zap.String("wheel_id", cmd.WheelID),
			zap.Int("attempt", attempt))
	}
	return lastErr
}
