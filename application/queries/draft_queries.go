package queries

import (
	"errors"
	"time"

	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
)

// ListDraftsQuery lists the draft history, optionally filtered by title
type ListDraftsQuery struct {
	UserID string
	Search string
}

// Validate validates the query
func (q ListDraftsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// ListDraftsResult represents the draft history
type ListDraftsResult struct {
	Drafts []DraftSummary `json:"drafts"`
}

// DraftSummary is a history entry without its content
type DraftSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// NewDraftSummary maps the entity to its summary
func NewDraftSummary(d *entities.Draft) DraftSummary {
	return DraftSummary{
		ID:        d.ID(),
		Title:     d.Title(),
		CreatedAt: d.CreatedAt().Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt().Format(time.RFC3339),
	}
}

// GetDraftQuery loads a draft and decodes its document
type GetDraftQuery struct {
	UserID  string
	DraftID string
}

// Validate validates the query
func (q GetDraftQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.DraftID == "" {
		return errors.New("draft ID is required")
	}
	return nil
}

// DraftView is a draft with its decoded document. Corrupt is set when the
// stored content could not be read and an empty document was substituted.
type DraftView struct {
	DraftSummary
	Document valueobjects.ContentTree `json:"document"`
	Blocks   []entities.Block         `json:"blocks"`
	Corrupt  bool                     `json:"corrupt,omitempty"`
}
