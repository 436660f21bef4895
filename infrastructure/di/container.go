package di

import (
	"go.uber.org/zap"

	"promptbuilder/application/commands/bus"
	"promptbuilder/application/ports"
	querybus "promptbuilder/application/queries/bus"
	"promptbuilder/application/services"
	domainconfig "promptbuilder/domain/config"
	"promptbuilder/infrastructure/config"
	"promptbuilder/infrastructure/resilience"
	"promptbuilder/pkg/auth"
	"promptbuilder/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	DomainConfig   *domainconfig.DomainConfig
	Logger         *zap.Logger
	PromptRepo     ports.PromptRepository
	DraftRepo      ports.DraftRepository
	EventPublisher ports.EventPublisher
	Cache          ports.Cache
	Metrics        *observability.Metrics
	Tracer         *observability.Tracer
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Documents      *services.DocumentService
	JWTValidator   *auth.JWTValidator

	// nil unless prompts live in DynamoDB
	PromptStoreBreaker *resilience.PromptRepository
}

// ReadinessChecks reports the state of each guarded dependency
func (c *Container) ReadinessChecks() map[string]string {
	checks := map[string]string{
		"prompt_store": c.Config.PromptStore,
		"draft_store":  c.Config.DraftStore,
	}
	if c.PromptStoreBreaker != nil {
		checks["prompt_store_breaker"] = c.PromptStoreBreaker.State()
	}
	return checks
}

// Ready reports whether every dependency can serve requests
func (c *Container) Ready() bool {
	return c.PromptStoreBreaker == nil || c.PromptStoreBreaker.State() != "open"
}
