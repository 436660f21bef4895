package queries

import (
	"errors"
	"time"

	"promptbuilder/domain/core/entities"
	"promptbuilder/pkg/common"
)

// ListPromptsQuery lists a user's library. Search matches title or content
// case-insensitively; Tag keeps only prompts carrying that exact tag.
type ListPromptsQuery struct {
	UserID     string
	Search     string
	Tag        string
	Pagination common.PaginationParams
}

// Validate validates the query
func (q ListPromptsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.Pagination.Page < 0 || q.Pagination.PageSize < 0 {
		return errors.New("pagination cannot be negative")
	}
	return nil
}

// ListPromptsResult represents the result of listing prompts
type ListPromptsResult struct {
	Prompts    []PromptView           `json:"prompts"`
	Pagination *common.PaginationInfo `json:"pagination"`
}

// GetPromptQuery fetches a single prompt
type GetPromptQuery struct {
	UserID   string
	PromptID string
}

// Validate validates the GetPromptQuery
func (q GetPromptQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.PromptID == "" {
		return errors.New("prompt ID is required")
	}
	return nil
}

// ListTagsQuery returns the sorted union of the tags of a user's prompts
type ListTagsQuery struct {
	UserID string
}

// Validate validates the query
func (q ListTagsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// ListTagsResult holds the tag registry
type ListTagsResult struct {
	Tags []string `json:"tags"`
}

// PromptView is the read model of a saved prompt
type PromptView struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Version   int      `json:"version"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// NewPromptView maps the entity to its read model
func NewPromptView(p *entities.SavedPrompt) PromptView {
	return PromptView{
		ID:        p.ID(),
		Title:     p.Content().Title(),
		Content:   p.Content().Body(),
		Tags:      p.Tags(),
		Version:   p.Version(),
		CreatedAt: p.CreatedAt().UnixMilli(),
		UpdatedAt: p.UpdatedAt().Format(time.RFC3339),
	}
}
