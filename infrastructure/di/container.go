package di

import (
	"context"
	"net/http"
	"time"

	"axon-backend/application/commands/bus"
	"axon-backend/application/ports"
	querybus "axon-backend/application/queries/bus"
	"axon-backend/infrastructure/config"
	"axon-backend/infrastructure/observability"
	"axon-backend/infrastructure/persistence/cache"
	"axon-backend/pkg/auth"
	pkgobs "axon-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Cache        *cache.InMemoryCache
	WheelRepo    ports.WheelRepository
	Publisher    ports.EventPublisher
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Collector    *observability.Collector
	CloudWatch   *observability.CloudWatchMetrics
	Tracer       *pkgobs.Tracer
	KeyedLimiter *auth.KeyedLimiter
	VoteLimiter  auth.RateLimiter
	Handler      http.Handler
}

// RunBackground starts the periodic maintenance loops and blocks until ctx
// is done
func (c *Container) RunBackground(ctx context.Context) {
	if c.CloudWatch != nil {
		go c.CloudWatch.Run(ctx, time.Minute)
	}
	c.KeyedLimiter.Run(ctx, 5*time.Minute)
}

// ApplyConfig pushes the hot-reloadable settings of cfg into running
// components
func (c *Container) ApplyConfig(cfg *config.Config) {
	c.KeyedLimiter.SetLimit(cfg.VoteRateLimit, cfg.VoteBurst)
	c.Logger.Info("Configuration applied",
		zap.Float64("voteRateLimit", cfg.VoteRateLimit),
		zap.Int("voteBurst", cfg.VoteBurst),
	)
}

// Close flushes buffered metrics and releases resources
func (c *Container) Close(ctx context.Context) {
	if c.CloudWatch != nil {
		if err := c.CloudWatch.Flush(ctx); err != nil {
			c.Logger.Warn("Failed to flush metrics", zap.Error(err))
		}
	}
	c.Cache.Close()
	_ = c.Logger.Sync()
}
