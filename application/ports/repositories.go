package ports

import (
	"context"

	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/events"
)

// PromptRepository persists a user's saved-prompt library.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type PromptRepository interface {
	// Save persists a prompt (create or update)
	Save(ctx context.Context, prompt *entities.SavedPrompt) error

	// GetByID retrieves one of the user's prompts; a miss is a NotFound AppError
	GetByID(ctx context.Context, userID, promptID string) (*entities.SavedPrompt, error)

	// ListByUser returns all of the user's prompts, newest first
	ListByUser(ctx context.Context, userID string) ([]*entities.SavedPrompt, error)

	// Delete removes a prompt; a miss is a NotFound AppError
	Delete(ctx context.Context, userID, promptID string) error
}

// DraftRepository persists the per-user draft history. Save is an upsert:
// an existing draft keeps its place and creation time, a new one goes to the
// front and the oldest entries beyond the configured cap are evicted.
type DraftRepository interface {
	Save(ctx context.Context, draft *entities.Draft) error
	GetByID(ctx context.Context, userID, draftID string) (*entities.Draft, error)

	// ListByUser returns the user's drafts, newest first by creation time
	ListByUser(ctx context.Context, userID string) ([]*entities.Draft, error)

	Delete(ctx context.Context, userID, draftID string) error
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
