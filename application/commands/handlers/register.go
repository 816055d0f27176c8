package handlers

import (
	"axon-backend/application/commands"
	"axon-backend/application/commands/bus"
	"axon-backend/application/ports"
	"axon-backend/domain/config"
	"axon-backend/domain/core/validators"
	"axon-backend/domain/services"

	"go.uber.org/zap"
)

// Register wires every wheel command handler into b
func Register(b *bus.CommandBus, repo ports.WheelRepository, publisher ports.EventPublisher, cfg *config.DomainConfig, logger *zap.Logger) error {
	create := NewCreateWheelHandler(repo, publisher, cfg, logger)
	save := NewSaveWheelHandler(repo, publisher, validators.NewGraphValidator(cfg), logger)
	visibility := NewSetVisibilityHandler(repo, publisher, logger)
	del := NewDeleteWheelHandler(repo, publisher, logger)
	vote := NewCastVoteHandler(repo, publisher, services.NewVoteAggregator(cfg), logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateWheelCommand{}, bus.Typed(create.Handle)},
		{commands.SaveWheelCommand{}, bus.Typed(save.Handle)},
		{commands.SetVisibilityCommand{}, bus.Typed(visibility.Handle)},
		{commands.DeleteWheelCommand{}, bus.Typed(del.Handle)},
		{commands.CastVoteCommand{}, bus.Typed(vote.Handle)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
