package handlers

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"promptbuilder/application/ports"
	"promptbuilder/application/queries"
	"promptbuilder/pkg/common"
)

// PromptQueryHandler answers the saved-prompt queries
type PromptQueryHandler struct {
	repo   ports.PromptRepository
	logger *zap.Logger
}

// NewPromptQueryHandler creates a new handler instance
func NewPromptQueryHandler(repo ports.PromptRepository, logger *zap.Logger) *PromptQueryHandler {
	return &PromptQueryHandler{repo: repo, logger: logger}
}

// ListPrompts filters the library and returns the requested page
func (h *PromptQueryHandler) ListPrompts(ctx context.Context, q queries.ListPromptsQuery) (*queries.ListPromptsResult, error) {
	prompts, err := h.repo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]queries.PromptView, 0, len(prompts))
	for _, p := range prompts {
		if q.Tag != "" && !p.HasTag(q.Tag) {
			continue
		}
		if !p.Matches(q.Search) {
			continue
		}
		views = append(views, queries.NewPromptView(p))
	}

	params := q.Pagination
	if params.Page == 0 || params.PageSize == 0 {
		params = common.DefaultPaginationParams()
	}
	page, meta := common.Paginate(views, params)

	return &queries.ListPromptsResult{Prompts: page, Pagination: meta}, nil
}

// GetPrompt returns one prompt
func (h *PromptQueryHandler) GetPrompt(ctx context.Context, q queries.GetPromptQuery) (*queries.PromptView, error) {
	p, err := h.repo.GetByID(ctx, q.UserID, q.PromptID)
	if err != nil {
		return nil, err
	}
	view := queries.NewPromptView(p)
	return &view, nil
}

// ListTags collects the sorted, de-duplicated tags of every prompt
func (h *PromptQueryHandler) ListTags(ctx context.Context, q queries.ListTagsQuery) (*queries.ListTagsResult, error) {
	prompts, err := h.repo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0)
	for _, p := range prompts {
		tags = append(tags, p.Tags()...)
	}
	slices.Sort(tags)
	tags = slices.Compact(tags)

	h.logger.Debug("Listed tags", zap.String("userID", q.UserID), zap.Int("count", len(tags)))
	return &queries.ListTagsResult{Tags: tags}, nil
}
