package handlers

import (
	"context"

	"go.uber.org/zap"

	"promptbuilder/application/ports"
	"promptbuilder/application/queries"
	"promptbuilder/domain/services"
)

// DraftQueryHandler answers the draft-history queries
type DraftQueryHandler struct {
	repo   ports.DraftRepository
	logger *zap.Logger
}

// NewDraftQueryHandler creates a new handler instance
func NewDraftQueryHandler(repo ports.DraftRepository, logger *zap.Logger) *DraftQueryHandler {
	return &DraftQueryHandler{repo: repo, logger: logger}
}

// ListDrafts returns the history, newest first, filtered by title
func (h *DraftQueryHandler) ListDrafts(ctx context.Context, q queries.ListDraftsQuery) (*queries.ListDraftsResult, error) {
	drafts, err := h.repo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]queries.DraftSummary, 0, len(drafts))
	for _, d := range drafts {
		if d.Matches(q.Search) {
			out = append(out, queries.NewDraftSummary(d))
		}
	}
	return &queries.ListDraftsResult{Drafts: out}, nil
}

// GetDraft loads a draft. Unreadable content is replaced by an empty
// document rather than failing the request.
func (h *DraftQueryHandler) GetDraft(ctx context.Context, q queries.GetDraftQuery) (*queries.DraftView, error) {
	d, err := h.repo.GetByID(ctx, q.UserID, q.DraftID)
	if err != nil {
		return nil, err
	}

	tree, ok := services.Deserialize(d.Content())
	if !ok {
		h.logger.Warn("Draft content is unreadable, loading empty document",
			zap.String("draftID", d.ID()),
			zap.Int("bytes", len(d.Content())),
		)
	}
	doc := services.DocumentFromTree(tree)

	return &queries.DraftView{
		DraftSummary: queries.NewDraftSummary(d),
		Document:     services.TreeFromDocument(doc),
		Blocks:       doc.Blocks(),
		Corrupt:      !ok,
	}, nil
}
