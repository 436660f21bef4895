package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"promptbuilder/application/commands"
	"promptbuilder/application/ports"
	"promptbuilder/domain/config"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
	"promptbuilder/domain/events"
)

// SavePromptHandler handles SavePromptCommand
type SavePromptHandler struct {
	repo      ports.PromptRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewSavePromptHandler creates a new handler instance
func NewSavePromptHandler(
	repo ports.PromptRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *SavePromptHandler {
	return &SavePromptHandler{repo: repo, publisher: publisher, cache: cache, cfg: cfg, logger: logger}
}

// Handle trims title and content, rejects blanks and stores the prompt
func (h *SavePromptHandler) Handle(ctx context.Context, cmd commands.SavePromptCommand) error {
	content, err := valueobjects.NewPromptContentWithConfig(cmd.Title, cmd.Content, h.cfg)
	if err != nil {
		return err
	}

	prompt, err := entities.NewSavedPromptWithID(cmd.PromptID, cmd.UserID, content, cmd.Tags, h.cfg)
	if err != nil {
		return err
	}

	if err := h.repo.Save(ctx, prompt); err != nil {
		return err
	}

	h.logger.Info("Prompt saved",
		zap.String("promptID", prompt.ID()),
		zap.String("userID", cmd.UserID),
		zap.Int("tags", len(prompt.Tags())),
	)

	invalidateTags(ctx, h.cache, cmd.UserID)
	publishEvents(ctx, h.publisher, h.logger, prompt)
	return nil
}

// UpdatePromptHandler handles UpdatePromptCommand
type UpdatePromptHandler struct {
	repo      ports.PromptRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewUpdatePromptHandler creates a new handler instance
func NewUpdatePromptHandler(
	repo ports.PromptRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *UpdatePromptHandler {
	return &UpdatePromptHandler{repo: repo, publisher: publisher, cache: cache, cfg: cfg, logger: logger}
}

// Handle applies the provided fields to the stored prompt
func (h *UpdatePromptHandler) Handle(ctx context.Context, cmd commands.UpdatePromptCommand) error {
	prompt, err := h.repo.GetByID(ctx, cmd.UserID, cmd.PromptID)
	if err != nil {
		return err
	}

	title := prompt.Content().Title()
	if cmd.Title != nil {
		title = *cmd.Title
	}
	body := prompt.Content().Body()
	if cmd.Content != nil {
		body = *cmd.Content
	}
	tags := prompt.Tags()
	if cmd.Tags != nil {
		tags = *cmd.Tags
	}

	content, err := valueobjects.NewPromptContentWithConfig(title, body, h.cfg)
	if err != nil {
		return err
	}

	before := prompt.Version()
	if err := prompt.Update(content, tags, h.cfg); err != nil {
		return err
	}
	if prompt.Version() == before {
		return nil
	}

	if err := h.repo.Save(ctx, prompt); err != nil {
		return err
	}

	invalidateTags(ctx, h.cache, cmd.UserID)
	publishEvents(ctx, h.publisher, h.logger, prompt)
	return nil
}

// DeletePromptHandler handles DeletePromptCommand
type DeletePromptHandler struct {
	repo      ports.PromptRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewDeletePromptHandler creates a new handler instance
func NewDeletePromptHandler(
	repo ports.PromptRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *DeletePromptHandler {
	return &DeletePromptHandler{repo: repo, publisher: publisher, cache: cache, logger: logger}
}

// Handle removes the prompt. Documents holding a snapshot of it are untouched.
func (h *DeletePromptHandler) Handle(ctx context.Context, cmd commands.DeletePromptCommand) error {
	if err := h.repo.Delete(ctx, cmd.UserID, cmd.PromptID); err != nil {
		return err
	}

	invalidateTags(ctx, h.cache, cmd.UserID)

	if err := h.publisher.Publish(ctx, events.NewPromptDeleted(cmd.PromptID, cmd.UserID, time.Now())); err != nil {
		h.logger.Warn("Failed to publish deletion event", zap.String("promptID", cmd.PromptID), zap.Error(err))
	}
	return nil
}
