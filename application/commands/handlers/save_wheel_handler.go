package handlers

import (
	"context"

	"axon-backend/application/commands"
	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/validators"
	"axon-backend/domain/services"
	pkgerrors "axon-backend/pkg/errors"

	"go.uber.org/zap"
)

// SaveWheelHandler handles the SaveWheelCommand
type SaveWheelHandler struct {
	repo      ports.WheelRepository
	publisher ports.EventPublisher
	validator *validators.GraphValidator
	logger    *zap.Logger
}

// NewSaveWheelHandler creates a new handler instance
func NewSaveWheelHandler(
	repo ports.WheelRepository,
	publisher ports.EventPublisher,
	validator *validators.GraphValidator,
	logger *zap.Logger,
) *SaveWheelHandler {
	return &SaveWheelHandler{repo: repo, publisher: publisher, validator: validator, logger: logger}
}

// Handle replaces the stored diagram. Only the owner may save, and the
// diagram must pass every graph rule. Probabilities are recomputed from the
// submitted votes rather than trusted.
func (h *SaveWheelHandler) Handle(ctx context.Context, cmd commands.SaveWheelCommand) error {
	wheel, err := h.repo.GetByID(ctx, aggregates.WheelID(cmd.WheelID))
	if err != nil {
		return err
	}
	if !wheel.IsOwner(cmd.UserID) {
		return pkgerrors.NewForbiddenError("Forbidden")
	}

	graph := aggregates.NewGraph(cmd.Nodes, cmd.Edges)
	for i := range graph.Nodes {
		graph.Nodes[i].Data.Probability = services.Probability(graph.Nodes[i].Data.Votes)
	}
	if err := h.validator.Validate(graph); err != nil {
		return err
	}

	if err := wheel.Replace(cmd.UserID, cmd.Title, graph); err != nil {
		return err
	}
	if err := h.repo.Save(ctx, wheel); err != nil {
		return err
	}

	h.logger.Info("Wheel saved",
		zap.String("wheel_id", cmd.WheelID),
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)),
		zap.Int("version", wheel.Version()))
	publishEvents(ctx, h.publisher, wheel, h.logger)
	return nil
}
