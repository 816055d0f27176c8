package cache

import (
	"context"

	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"
	pkgerrors "axon-backend/pkg/errors"

	"go.uber.org/zap"
)

// DefaultTTL is how long, in seconds, a wheel stays cached
const DefaultTTL = 30

// WheelRepository is a read-through cache in front of another repository.
// Only single-wheel reads are cached; every write evicts the entry, and so
// does a version conflict, since it means the cached copy is stale.
type WheelRepository struct {
	next   ports.WheelRepository
	cache  ports.Cache
	ttl    int
	logger *zap.Logger
}

// NewWheelRepository wraps next with cache
func NewWheelRepository(next ports.WheelRepository, cache ports.Cache, ttl int, logger *zap.Logger) *WheelRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WheelRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(id aggregates.WheelID) string {
	return "wheel:" + id.String()
}

// Save writes through and evicts the cached copy
func (r *WheelRepository) Save(ctx context.Context, wheel *aggregates.Wheel) error {
	err := r.next.Save(ctx, wheel)
	r.evict(ctx, wheel.ID())
	return err
}

// GetByID serves from cache when possible. Callers always get their own copy.
func (r *WheelRepository) GetByID(ctx context.Context, id aggregates.WheelID) (*aggregates.Wheel, error) {
	if v, ok := r.cache.Get(ctx, cacheKey(id)); ok {
		if w, ok := v.(*aggregates.Wheel); ok {
			r.logger.Debug("Wheel cache hit", zap.String("wheelID", id.String()))
			return w.Clone(), nil
		}
	}

	w, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cacheKey(id), w.Clone(), r.ttl); err != nil {
		r.logger.Warn("Failed to cache wheel", zap.String("wheelID", id.String()), zap.Error(err))
	}
	return w, nil
}

// ListByOwner is not cached
func (r *WheelRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregates.Wheel, error) {
	return r.next.ListByOwner(ctx, ownerID)
}

// Delete removes the wheel and its cached copy
func (r *WheelRepository) Delete(ctx context.Context, id aggregates.WheelID) error {
	err := r.next.Delete(ctx, id)
	if err == nil || pkgerrors.IsNotFound(err) {
		r.evict(ctx, id)
	}
	return err
}

func (r *WheelRepository) evict(ctx context.Context, id aggregates.WheelID) {
	if err := r.cache.Delete(ctx, cacheKey(id)); err != nil {
		r.logger.Warn("Failed to evict wheel from cache", zap.String("wheelID", id.String()), zap.Error(err))
	}
}
