package handlers

import (
	"context"

	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"

	"go.uber.org/zap"
)

// publishEvents sends the wheel's pending events. The write already
// succeeded, so a publish failure is logged rather than returned.
func publishEvents(ctx context.Context, publisher ports.EventPublisher, wheel *aggregates.Wheel, logger *zap.Logger) {
	pending := wheel.GetUncommittedEvents()
	if len(pending) == 0 || publisher == nil {
		wheel.MarkEventsAsCommitted()
		return
	}
	if err := publisher.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish wheel events",
			zap.String("wheel_id", wheel.ID().String()),
			zap.Int("count", len(pending)),
			zap.Error(err))
	}
	wheel.MarkEventsAsCommitted()
}
