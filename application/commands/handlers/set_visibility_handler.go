package handlers

import (
	"context"

	"axon-backend/application/commands"
	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// SetVisibilityHandler handles the SetVisibilityCommand
type SetVisibilityHandler struct {
	repo      ports.WheelRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewSetVisibilityHandler creates a new handler instance
func NewSetVisibilityHandler(repo ports.WheelRepository, publisher ports.EventPublisher, logger *zap.Logger) *SetVisibilityHandler {
	return &SetVisibilityHandler{repo: repo, publisher: publisher, logger: logger}
}

// Handle executes the set visibility command
func (h *SetVisibilityHandler) Handle(ctx context.Context, cmd commands.SetVisibilityCommand) error {
	visibility, err := valueobjects.ParseVisibility(cmd.Visibility)
	if err != nil {
		return err
	}
	wheel, err := h.repo.GetByID(ctx, aggregates.WheelID(cmd.WheelID))
	if err != nil {
		return err
	}
	if err := wheel.SetVisibility(cmd.UserID, visibility); err != nil {
		return err
	}
	if len(wheel.GetUncommittedEvents()) == 0 {
		return nil
	}
	if err := h.repo.Save(ctx, wheel); err != nil {
		return err
	}

	h.logger.Info("Wheel visibility changed",
		zap.String("wheel_id", cmd.WheelID),
		zap.String("visibility", string(visibility)))
	publishEvents(ctx, h.publisher, wheel, h.logger)
	return nil
}
