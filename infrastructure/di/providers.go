package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"promptbuilder/application/commands"
	"promptbuilder/application/commands/bus"
	commandhandlers "promptbuilder/application/commands/handlers"
	"promptbuilder/application/ports"
	"promptbuilder/application/queries"
	querybus "promptbuilder/application/queries/bus"
	queryhandlers "promptbuilder/application/queries/handlers"
	"promptbuilder/application/services"
	domainconfig "promptbuilder/domain/config"
	"promptbuilder/infrastructure/config"
	"promptbuilder/infrastructure/messaging/eventbridge"
	"promptbuilder/infrastructure/persistence"
	"promptbuilder/infrastructure/persistence/badger"
	"promptbuilder/infrastructure/persistence/dynamodb"
	"promptbuilder/infrastructure/persistence/memory"
	"promptbuilder/infrastructure/resilience"
	"promptbuilder/pkg/auth"
	"promptbuilder/pkg/observability"
)

const serviceName = "promptbuilder"

// devJWTSecret signs tokens when no secret is configured outside production
const devJWTSecret = "development-secret-change-in-production"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideDomainConfig selects business limits for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	dc := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := dc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain config: %w", err)
	}
	return dc, nil
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

// ProvideMetrics creates the metrics registry. Samples are pushed to
// CloudWatch only when enabled.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	var publisher observability.MetricsPublisher
	if cfg.EnableCloudWatch {
		publisher = client
	}
	namespace := fmt.Sprintf("PromptBuilder/%s", cfg.Environment)
	return observability.NewMetrics(namespace, publisher, logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer(serviceName)
}

// ProvidePromptStoreBreaker builds the DynamoDB prompt store behind a circuit
// breaker. It returns nil when prompts are kept in memory.
func ProvidePromptStoreBreaker(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *resilience.PromptRepository {
	if cfg.PromptStore != config.BackendDynamoDB {
		return nil
	}
	store := dynamodb.NewPromptRepository(client, cfg.DynamoDBTable, logger)
	return resilience.NewPromptRepository(store, resilience.BreakerConfig{
		Name:        "prompt-store",
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, logger)
}

// ProvidePromptRepository returns the instrumented prompt store
func ProvidePromptRepository(
	breaker *resilience.PromptRepository,
	cfg *config.Config,
	metrics *observability.Metrics,
) ports.PromptRepository {
	var repo ports.PromptRepository = memory.NewPromptRepository()
	if breaker != nil {
		repo = breaker
	}
	return persistence.NewInstrumentedPromptRepository(repo, metrics, cfg.PromptStore)
}

// ProvideDraftRepository returns the instrumented draft store. The cleanup
// closes the badger database.
func ProvideDraftRepository(
	cfg *config.Config,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (ports.DraftRepository, func(), error) {
	if cfg.DraftStore != config.BackendBadger {
		repo := memory.NewDraftRepository(domainCfg.MaxDraftsPerUser)
		return persistence.NewInstrumentedDraftRepository(repo, metrics, cfg.DraftStore), func() {}, nil
	}

	db, err := badger.Open(cfg.BadgerPath, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close badger database", zap.Error(err))
		}
	}
	repo := badger.NewDraftRepository(db, domainCfg.MaxDraftsPerUser, logger)
	return persistence.NewInstrumentedDraftRepository(repo, metrics, cfg.DraftStore), cleanup, nil
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// to the log otherwise
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return eventbridge.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCache creates the query result cache
func ProvideCache(metrics *observability.Metrics) (ports.Cache, func()) {
	cache := NewInMemoryCache(metrics)
	return cache, cache.Close
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = devJWTSecret
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
	})
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	prompts ports.PromptRepository,
	drafts ports.DraftRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	cfg *config.Config,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	middlewares := []bus.Middleware{
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	}
	if cfg.EnableTracing {
		middlewares = append(middlewares, bus.TracingMiddleware(tracer))
	}
	commandBus := bus.NewCommandBus(middlewares...)

	savePrompt := commandhandlers.NewSavePromptHandler(prompts, publisher, cache, domainCfg, logger)
	updatePrompt := commandhandlers.NewUpdatePromptHandler(prompts, publisher, cache, domainCfg, logger)
	deletePrompt := commandhandlers.NewDeletePromptHandler(prompts, publisher, cache, logger)
	saveDraft := commandhandlers.NewSaveDraftHandler(drafts, publisher, domainCfg, logger)
	deleteDraft := commandhandlers.NewDeleteDraftHandler(drafts, publisher, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.SavePromptCommand{}, bus.Handler(savePrompt.Handle)},
		{commands.UpdatePromptCommand{}, bus.Handler(updatePrompt.Handle)},
		{commands.DeletePromptCommand{}, bus.Handler(deletePrompt.Handle)},
		{commands.SaveDraftCommand{}, bus.Handler(saveDraft.Handle)},
		{commands.DeleteDraftCommand{}, bus.Handler(deleteDraft.Handle)},
	}
	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers. The tag
// registry is cached; command handlers invalidate it on every prompt write.
func ProvideQueryBus(
	prompts ports.PromptRepository,
	drafts ports.DraftRepository,
	cache ports.Cache,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(metrics)

	promptQueries := queryhandlers.NewPromptQueryHandler(prompts, logger)
	draftQueries := queryhandlers.NewDraftQueryHandler(drafts, logger)
	tagCache := querybus.NewCachingMiddleware(cache, int(domainCfg.TagCacheTTL.Seconds()))

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.ListPromptsQuery{}, querybus.Handler(promptQueries.ListPrompts)},
		{queries.GetPromptQuery{}, querybus.Handler(promptQueries.GetPrompt)},
		{queries.ListTagsQuery{}, tagCache.Wrap(querybus.Handler(promptQueries.ListTags))},
		{queries.ListDraftsQuery{}, querybus.Handler(draftQueries.ListDrafts)},
		{queries.GetDraftQuery{}, querybus.Handler(draftQueries.GetDraft)},
	}
	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

// ProvideDocumentService creates the stateless document engine service
func ProvideDocumentService(
	prompts ports.PromptRepository,
	metrics *observability.Metrics,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.DocumentService {
	return services.NewDocumentService(prompts, metrics, domainCfg, logger)
}
