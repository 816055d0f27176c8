package observability

import (
	"context"

	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"
	pkgobs "axon-backend/pkg/observability"
)

// InstrumentedWheelRepository records an X-Ray subsegment and a latency
// timing around every repository call
type InstrumentedWheelRepository struct {
	next    ports.WheelRepository
	tracer  *pkgobs.Tracer
	metrics ports.Metrics
}

// NewInstrumentedWheelRepository wraps next
func NewInstrumentedWheelRepository(next ports.WheelRepository, tracer *pkgobs.Tracer, metrics ports.Metrics) *InstrumentedWheelRepository {
	if metrics == nil {
		metrics = Nop{}
	}
	return &InstrumentedWheelRepository{next: next, tracer: tracer, metrics: metrics}
}

func (r *InstrumentedWheelRepository) observe(ctx context.Context, op, wheelID string, fn func(context.Context) error) error {
	timer := r.metrics.StartTimer("repository_duration", op)
	defer timer.Stop()

	var annotations []string
	if wheelID != "" {
		annotations = []string{"wheel_id", wheelID}
	}
	err := r.tracer.Trace(ctx, "WheelRepository."+op, fn, annotations...)
	if err != nil {
		r.metrics.Increment("repository_errors", op)
	}
	return err
}

func (r *InstrumentedWheelRepository) Save(ctx context.Context, wheel *aggregates.Wheel) error {
	return r.observe(ctx, "Save", wheel.ID().String(), func(ctx context.Context) error {
		return r.next.Save(ctx, wheel)
	})
}

func (r *InstrumentedWheelRepository) GetByID(ctx context.Context, id aggregates.WheelID) (*aggregates.Wheel, error) {
	var wheel *aggregates.Wheel
	err := r.observe(ctx, "GetByID", id.String(), func(ctx context.Context) error {
		var err error
		wheel, err = r.next.GetByID(ctx, id)
		return err
	})
	return wheel, err
}

func (r *InstrumentedWheelRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregates.Wheel, error) {
	var wheels []*aggregates.Wheel
	err := r.observe(ctx, "ListByOwner", "", func(ctx context.Context) error {
		var err error
		wheels, err = r.next.ListByOwner(ctx, ownerID)
		return err
	})
	return wheels, err
}

func (r *InstrumentedWheelRepository) Delete(ctx context.Context, id aggregates.WheelID) error {
	return r.observe(ctx, "Delete", id.String(), func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	})
}
