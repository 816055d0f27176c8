package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"axon-backend/application/commands/bus"
	commandhandlers "axon-backend/application/commands/handlers"
	"axon-backend/application/ports"
	querybus "axon-backend/application/queries/bus"
	queryhandlers "axon-backend/application/queries/handlers"
	"axon-backend/domain/events"
	"axon-backend/infrastructure/config"
	"axon-backend/infrastructure/messaging/eventbridge"
	"axon-backend/infrastructure/observability"
	"axon-backend/infrastructure/persistence/cache"
	"axon-backend/infrastructure/persistence/dynamodb"
	"axon-backend/infrastructure/persistence/memory"
	"axon-backend/interfaces/http/rest"
	"axon-backend/pkg/auth"
	pkgerrors "axon-backend/pkg/errors"
	pkgobs "axon-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "axon-backend"

// ProvideLogger creates a new logger instance at the configured level
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName), zap.String("environment", cfg.Environment)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTracer creates the X-Ray tracer, a no-op unless tracing is enabled
func ProvideTracer(cfg *config.Config) *pkgobs.Tracer {
	return pkgobs.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideCollector creates the Prometheus collector, nil when metrics are off
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("axon")
}

// ProvideCloudWatchMetrics creates the CloudWatch sink. Only Lambda
// deployments push to CloudWatch; long-running servers are scraped instead.
func ProvideCloudWatchMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.CloudWatchMetrics {
	if !cfg.EnableMetrics || !cfg.IsLambda {
		return nil
	}
	namespace := fmt.Sprintf("Axon/%s", cfg.Environment)
	return observability.NewCloudWatchMetrics(namespace, client, logger)
}

// ProvideMetrics fans measurements out to every enabled sink
func ProvideMetrics(collector *observability.Collector, cw *observability.CloudWatchMetrics) ports.Metrics {
	var sinks observability.Fanout
	if collector != nil {
		sinks = append(sinks, collector)
	}
	if cw != nil {
		sinks = append(sinks, cw)
	}
	if len(sinks) == 0 {
		return observability.Nop{}
	}
	return sinks
}

// ProvideCache creates the in-process cache used in front of the store
func ProvideCache() *cache.InMemoryCache {
	return cache.NewInMemoryCache(time.Minute)
}

// ProvideWheelRepository selects the storage backend and decorates it with
// caching and instrumentation
func ProvideWheelRepository(
	client *awsdynamodb.Client,
	store *cache.InMemoryCache,
	tracer *pkgobs.Tracer,
	metrics ports.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) ports.WheelRepository {
	var repo ports.WheelRepository
	switch cfg.StorageBackend {
	case "memory":
		repo = memory.NewWheelRepository()
	default:
		repo = dynamodb.NewWheelRepository(client, cfg.TableName, cfg.OwnerIndexName, logger)
		if cfg.CacheTTL > 0 {
			repo = cache.NewWheelRepository(repo, store, cfg.CacheTTL, logger)
		}
	}
	return observability.NewInstrumentedWheelRepository(repo, tracer, metrics)
}

// ProvideEventPublisher publishes to EventBridge, or only logs events when
// no bus is available
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.StorageBackend == "memory" || cfg.EventBusName == "" {
		return &logPublisher{logger: logger}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// logPublisher records events in the log instead of sending them anywhere
type logPublisher struct {
	logger *zap.Logger
}

func (p *logPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

func (p *logPublisher) PublishBatch(_ context.Context, domainEvents []events.DomainEvent) error {
	for _, e := range domainEvents {
		p.logger.Debug("Domain event",
			zap.String("type", e.GetEventType()),
			zap.String("aggregateID", e.GetAggregateID()),
		)
	}
	return nil
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repo ports.WheelRepository,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(&busLogger{logger: logger.Named("commands")}),
		bus.MetricsMiddleware(metrics),
	)
	if err := commandhandlers.Register(commandBus, repo, publisher, cfg.DomainConfig(), logger); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// busLogger adapts zap.Logger to the key/value logger of the command bus
type busLogger struct {
	logger *zap.Logger
}

func (a *busLogger) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, fieldsToZap(keysAndValues)...)
}

func (a *busLogger) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, fieldsToZap(keysAndValues)...)
}

func fieldsToZap(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.WheelRepository,
	metrics ports.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.MetricsMiddleware(metrics))
	if err := queryhandlers.Register(queryBus, repo, cfg.DomainConfig(), logger); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideKeyedLimiter creates the in-process vote limiter. It always exists
// so config reloads have a target, a zero rate allowing everything.
func ProvideKeyedLimiter(cfg *config.Config) *auth.KeyedLimiter {
	return auth.NewKeyedLimiter(cfg.VoteRateLimit, cfg.VoteBurst)
}

// ProvideVoteLimiter picks the limiter guarding the vote endpoint. Lambda
// instances share counters through DynamoDB.
func ProvideVoteLimiter(client *awsdynamodb.Client, keyed *auth.KeyedLimiter, cfg *config.Config) auth.RateLimiter {
	if cfg.IsLambda && cfg.StorageBackend == "dynamodb" && cfg.VoteRateLimit > 0 {
		perMinute := int(cfg.VoteRateLimit * 60)
		if perMinute < 1 {
			perMinute = 1
		}
		return auth.NewDistributedRateLimiter(client, cfg.TableName, perMinute, time.Minute, "VOTE")
	}
	return keyed
}

// ProvideJWTValidator creates the token validator, nil when auth is off
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.EnableAuth {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideErrorHandler creates the HTTP error renderer
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideHTTPHandler builds the routed HTTP handler
func ProvideHTTPHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	validator *auth.JWTValidator,
	voteLimiter auth.RateLimiter,
	collector *observability.Collector,
	tracer *pkgobs.Tracer,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	opts := rest.Options{
		Validator:   validator,
		VoteLimiter: voteLimiter,
		Tracer:      tracer,
	}
	if collector != nil {
		opts.Metrics = collector
	}
	return rest.NewRouter(commandBus, queryBus, cfg, errs, opts, logger).Setup()
}
