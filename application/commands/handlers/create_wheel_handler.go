package handlers

import (
	"context"

	"axon-backend/application/commands"
	"axon-backend/application/ports"
	"axon-backend/domain/config"
	"axon-backend/domain/core/aggregates"

	"go.uber.org/zap"
)

// CreateWheelHandler handles the CreateWheelCommand
type CreateWheelHandler struct {
	repo      ports.WheelRepository
	publisher ports.EventPublisher
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewCreateWheelHandler creates a new handler instance
func NewCreateWheelHandler(
	repo ports.WheelRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *CreateWheelHandler {
	return &CreateWheelHandler{repo: repo, publisher: publisher, cfg: cfg, logger: logger}
}

// Handle executes the create wheel command
func (h *CreateWheelHandler) Handle(ctx context.Context, cmd commands.CreateWheelCommand) error {
	wheel, err := aggregates.NewWheelWithID(aggregates.WheelID(cmd.WheelID), cmd.Title, cmd.UserID, h.cfg)
	if err != nil {
		return err
	}
	if err := h.repo.Save(ctx, wheel); err != nil {
		return err
	}

	h.logger.Info("Wheel created",
		zap.String("wheel_id", cmd.WheelID),
		zap.String("user_id", cmd.UserID))
	publishEvents(ctx, h.publisher, wheel, h.logger)
	return nil
}
