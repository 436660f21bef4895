package valueobjects

import (
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "promptbuilder/pkg/errors"
)

var payloadValidator = validator.New()

// PromptRef is the snapshot of a saved prompt taken at insertion time.
// A PromptBlock keeps its snapshot even if the source prompt later
// changes or disappears.
type PromptRef struct {
	SourceID  string   `json:"promptId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"createdAt"`
}

// NewPromptRef builds a snapshot, copying tags so later edits to the
// caller's slice cannot leak into the document.
func NewPromptRef(sourceID, title, content string, tags []string, createdAt int64) PromptRef {
	return PromptRef{
		SourceID:  sourceID,
		Title:     title,
		Content:   content,
		Tags:      copyTags(tags),
		CreatedAt: createdAt,
	}
}

// Clone returns a deep copy of the snapshot
func (r PromptRef) Clone() PromptRef {
	return NewPromptRef(r.SourceID, r.Title, r.Content, r.Tags, r.CreatedAt)
}

// Equals compares two snapshots field by field
func (r PromptRef) Equals(other PromptRef) bool {
	if r.SourceID != other.SourceID || r.Title != other.Title ||
		r.Content != other.Content || r.CreatedAt != other.CreatedAt {
		return false
	}
	if len(r.Tags) != len(other.Tags) {
		return false
	}
	for i := range r.Tags {
		if r.Tags[i] != other.Tags[i] {
			return false
		}
	}
	return true
}

// PromptPayload is the wire shape of a dragged or inserted prompt reference.
// The source prompt is named by sourceId; editor clients that send the
// saved prompt's own id are accepted too. Content is a pointer because an
// empty body is legal but a missing one is not.
type PromptPayload struct {
	SourceID  string   `json:"sourceId" validate:"required_without=ID"`
	ID        string   `json:"id" validate:"required_without=SourceID"`
	Title     string   `json:"title" validate:"required"`
	Content   *string  `json:"content" validate:"required"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt *int64   `json:"createdAt,omitempty"`
}

// Source returns the referenced prompt id, preferring sourceId
func (p PromptPayload) Source() string {
	if p.SourceID != "" {
		return p.SourceID
	}
	return p.ID
}

// Validate checks the payload has a source id, a title and a content field
func (p PromptPayload) Validate() error {
	if err := payloadValidator.Struct(p); err != nil {
		return pkgerrors.NewValidationError("malformed prompt reference").WithCause(err)
	}
	return nil
}

// ToRef validates the payload and converts it into a snapshot. Missing tags
// default to empty and a missing creation time defaults to now.
func (p PromptPayload) ToRef(now time.Time) (PromptRef, error) {
	if err := p.Validate(); err != nil {
		return PromptRef{}, err
	}

	createdAt := now.UnixMilli()
	if p.CreatedAt != nil {
		createdAt = *p.CreatedAt
	}

	return NewPromptRef(p.Source(), p.Title, *p.Content, p.Tags, createdAt), nil
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
