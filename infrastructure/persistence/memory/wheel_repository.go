// Package memory keeps wheels in process memory. It backs local development,
// the CLI and tests, and honours the same versioning contract as DynamoDB.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/valueobjects"
	pkgerrors "axon-backend/pkg/errors"
)

type record struct {
	title        string
	ownerID      string
	visibility   valueobjects.Visibility
	graph        aggregates.Graph
	createdAt    time.Time
	lastModified time.Time
	version      int
}

// WheelRepository is an in-memory ports.WheelRepository
type WheelRepository struct {
	mu     sync.RWMutex
	wheels map[aggregates.WheelID]record
}

// NewWheelRepository creates an empty repository
func NewWheelRepository() *WheelRepository {
	return &WheelRepository{wheels: make(map[aggregates.WheelID]record)}
}

// Save stores a copy of wheel if storage still holds the version it was read at
func (r *WheelRepository) Save(ctx context.Context, wheel *aggregates.Wheel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.wheels[wheel.ID()]
	switch {
	case !exists && wheel.PersistedVersion() != 0:
		return pkgerrors.NewConflictError("wheel was deleted")
	case exists && current.version != wheel.PersistedVersion():
		return pkgerrors.NewConflictError("wheel was modified concurrently").WithCode("STALE_VERSION")
	}

	r.wheels[wheel.ID()] = record{
		title:        wheel.Title(),
		ownerID:      wheel.OwnerID(),
		visibility:   wheel.Visibility(),
		graph:        wheel.Graph(),
		createdAt:    wheel.CreatedAt(),
		lastModified: wheel.LastModified(),
		version:      wheel.Version(),
	}
	wheel.MarkPersisted()
	return nil
}

// GetByID returns a fresh copy of the stored wheel
func (r *WheelRepository) GetByID(ctx context.Context, id aggregates.WheelID) (*aggregates.Wheel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.wheels[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("Wheel")
	}
	return rec.wheel(id), nil
}

// ListByOwner returns ownerID's wheels, most recently modified first
func (r *WheelRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregates.Wheel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*aggregates.Wheel, 0)
	for id, rec := range r.wheels {
		if rec.ownerID == ownerID {
			out = append(out, rec.wheel(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastModified().Equal(out[j].LastModified()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].LastModified().After(out[j].LastModified())
	})
	return out, nil
}

// Delete removes a wheel
func (r *WheelRepository) Delete(ctx context.Context, id aggregates.WheelID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wheels[id]; !ok {
		return pkgerrors.NewNotFoundError("Wheel")
	}
	delete(r.wheels, id)
	return nil
}

func (rec record) wheel(id aggregates.WheelID) *aggregates.Wheel {
	return aggregates.ReconstructWheel(id, rec.title, rec.ownerID, rec.visibility,
		rec.graph, rec.createdAt, rec.lastModified, rec.version)
}
