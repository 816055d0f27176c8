package handlers

import (
	"context"

	"axon-backend/application/commands"
	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"

	"go.uber.org/zap"
)

// DeleteWheelHandler handles the DeleteWheelCommand
type DeleteWheelHandler struct {
	repo      ports.WheelRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeleteWheelHandler creates a new handler instance
func NewDeleteWheelHandler(repo ports.WheelRepository, publisher ports.EventPublisher, logger *zap.Logger) *DeleteWheelHandler {
	return &DeleteWheelHandler{repo: repo, publisher: publisher, logger: logger}
}

// Handle deletes the wheel if the requester owns it
func (h *DeleteWheelHandler) Handle(ctx context.Context, cmd commands.DeleteWheelCommand) error {
	wheel, err := h.repo.GetByID(ctx, aggregates.WheelID(cmd.WheelID))
	if err != nil {
		return err
	}
	if err := wheel.MarkDeleted(cmd.UserID); err != nil {
		return err
	}
	if err := h.repo.Delete(ctx, wheel.ID()); err != nil {
		return err
	}

	h.logger.Info("Wheel deleted", zap.String("wheel_id", cmd.WheelID))
	publishEvents(ctx, h.publisher, wheel, h.logger)
	return nil
}
