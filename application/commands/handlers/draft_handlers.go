package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"promptbuilder/application/commands"
	"promptbuilder/application/ports"
	"promptbuilder/domain/config"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/events"
	"promptbuilder/domain/services"
	pkgerrors "promptbuilder/pkg/errors"
)

// SaveDraftHandler handles SaveDraftCommand
type SaveDraftHandler struct {
	repo      ports.DraftRepository
	publisher ports.EventPublisher
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewSaveDraftHandler creates a new handler instance
func NewSaveDraftHandler(
	repo ports.DraftRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *SaveDraftHandler {
	return &SaveDraftHandler{repo: repo, publisher: publisher, cfg: cfg, logger: logger}
}

// Handle upserts the draft. The document is normalised through the block
// sequence first, so what is stored is exactly what a reload produces.
func (h *SaveDraftHandler) Handle(ctx context.Context, cmd commands.SaveDraftCommand) error {
	doc := services.DocumentFromTree(cmd.Document)
	if !doc.HasContent() {
		h.logger.Debug("Skipping draft save of empty document", zap.String("draftID", cmd.DraftID))
		return nil
	}
	if doc.Len() > h.cfg.MaxBlocksPerDocument {
		return pkgerrors.NewValidationError("document has too many blocks").WithCode(pkgerrors.CodeDocumentTooLarge)
	}

	content, err := services.Serialize(services.TreeFromDocument(doc))
	if err != nil {
		return pkgerrors.NewInternalError("failed to serialize document").WithCause(err)
	}
	if len(content) > h.cfg.MaxDocumentBytes {
		return pkgerrors.NewValidationError("document is too large").WithCode(pkgerrors.CodeDocumentTooLarge)
	}

	draft, err := h.repo.GetByID(ctx, cmd.UserID, cmd.DraftID)
	switch {
	case err == nil:
		draft.Revise(cmd.Title, content, h.cfg)
	case pkgerrors.IsNotFound(err):
		draft, err = entities.NewDraft(cmd.DraftID, cmd.UserID, cmd.Title, content, h.cfg)
		if err != nil {
			return err
		}
	default:
		return err
	}

	if err := h.repo.Save(ctx, draft); err != nil {
		return err
	}

	publishEvents(ctx, h.publisher, h.logger, draft)
	return nil
}

// DeleteDraftHandler handles DeleteDraftCommand
type DeleteDraftHandler struct {
	repo      ports.DraftRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeleteDraftHandler creates a new handler instance
func NewDeleteDraftHandler(repo ports.DraftRepository, publisher ports.EventPublisher, logger *zap.Logger) *DeleteDraftHandler {
	return &DeleteDraftHandler{repo: repo, publisher: publisher, logger: logger}
}

// Handle removes the draft from the history
func (h *DeleteDraftHandler) Handle(ctx context.Context, cmd commands.DeleteDraftCommand) error {
	if err := h.repo.Delete(ctx, cmd.UserID, cmd.DraftID); err != nil {
		return err
	}

	if err := h.publisher.Publish(ctx, events.NewDraftDeleted(cmd.DraftID, cmd.UserID, time.Now())); err != nil {
		h.logger.Warn("Failed to publish deletion event", zap.String("draftID", cmd.DraftID), zap.Error(err))
	}
	return nil
}
