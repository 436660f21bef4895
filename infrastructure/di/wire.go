//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"promptbuilder/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideTracer,
	ProvidePromptStoreBreaker,
	ProvidePromptRepository,
	ProvideDraftRepository,
	ProvideEventPublisher,
	ProvideCache,
	ProvideJWTValidator,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideDocumentService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
