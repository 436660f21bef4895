package handlers

import (
	"context"

	"go.uber.org/zap"

	"promptbuilder/application/ports"
	"promptbuilder/application/queries"
	querybus "promptbuilder/application/queries/bus"
	"promptbuilder/domain/events"
)

type eventSource interface {
	GetUncommittedEvents() []events.DomainEvent
	MarkEventsAsCommitted()
}

// publishEvents sends an entity's pending events. The state change has
// already been persisted, so a publishing failure is logged, not returned.
func publishEvents(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, src eventSource) {
	pending := src.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := publisher.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(pending)),
			zap.String("type", pending[0].GetEventType()),
			zap.Error(err),
		)
	}
	src.MarkEventsAsCommitted()
}

// invalidateTags drops the cached tag list of a user after their library changed.
func invalidateTags(ctx context.Context, cache ports.Cache, userID string) {
	if cache == nil {
		return
	}
	_ = cache.Delete(ctx, querybus.CacheKey(queries.ListTagsQuery{UserID: userID}))
}
