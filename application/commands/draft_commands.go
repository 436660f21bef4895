package commands

import (
	"promptbuilder/domain/core/valueobjects"
	"promptbuilder/pkg/utils"
)

// SaveDraftCommand auto-saves the document being edited into the user's
// draft history. A document without content is not saved.
type SaveDraftCommand struct {
	UserID   string                   `json:"userId" validate:"required"`
	DraftID  string                   `json:"draftId" validate:"required"`
	Title    string                   `json:"title" validate:"max=200"`
	Document valueobjects.ContentTree `json:"document"`
}

// Validate checks required fields
func (c SaveDraftCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteDraftCommand removes one draft from the history
type DeleteDraftCommand struct {
	UserID  string `json:"userId" validate:"required"`
	DraftID string `json:"draftId" validate:"required"`
}

// Validate checks required fields
func (c DeleteDraftCommand) Validate() error {
	return utils.ValidateStruct(c)
}
