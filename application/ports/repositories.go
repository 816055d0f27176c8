package ports

import (
	"context"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/events"
)

// WheelRepository defines the interface for wheel persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type WheelRepository interface {
	// Save creates or replaces a wheel. It fails with a conflict error when
	// storage no longer holds wheel.PersistedVersion(), and marks the wheel
	// persisted on success.
	Save(ctx context.Context, wheel *aggregates.Wheel) error

	// GetByID retrieves a wheel by its ID
	GetByID(ctx context.Context, id aggregates.WheelID) (*aggregates.Wheel, error)

	// ListByOwner retrieves every wheel owned by ownerID, most recently
	// modified first
	ListByOwner(ctx context.Context, ownerID string) ([]*aggregates.Wheel, error)

	// Delete removes a wheel
	Delete(ctx context.Context, id aggregates.WheelID) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// Metrics records application measurements
type Metrics interface {
	StartTimer(metric, label string) Timer
	Increment(metric, label string)
}

// Timer measures one operation
type Timer interface {
	Stop()
}
