//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"axon-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideTracer,
	ProvideCollector,
	ProvideCloudWatchMetrics,
	ProvideMetrics,
	ProvideCache,
	ProvideWheelRepository,
	ProvideEventPublisher,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideKeyedLimiter,
	ProvideVoteLimiter,
	ProvideJWTValidator,
	ProvideErrorHandler,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
