package commands

import (
	"promptbuilder/pkg/utils"
)

// SavePromptCommand adds a prompt to the user's library. PromptID is chosen
// by the caller so the result can be read back with GetPromptQuery.
type SavePromptCommand struct {
	UserID   string   `json:"userId" validate:"required"`
	PromptID string   `json:"promptId" validate:"required"`
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content" validate:"required,max=50000"`
	Tags     []string `json:"tags" validate:"max=20,dive,max=30"`
}

// Validate checks required fields and limits
func (c SavePromptCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UpdatePromptCommand changes any subset of a prompt's title, content and
// tags. Nil fields keep their current value.
type UpdatePromptCommand struct {
	UserID   string    `json:"userId" validate:"required"`
	PromptID string    `json:"promptId" validate:"required"`
	Title    *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Content  *string   `json:"content,omitempty" validate:"omitempty,max=50000"`
	Tags     *[]string `json:"tags,omitempty"`
}

// Validate checks required fields and limits
func (c UpdatePromptCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeletePromptCommand removes a prompt from the library. Documents that
// embed it keep their snapshot.
type DeletePromptCommand struct {
	UserID   string `json:"userId" validate:"required"`
	PromptID string `json:"promptId" validate:"required"`
}

// Validate checks required fields
func (c DeletePromptCommand) Validate() error {
	return utils.ValidateStruct(c)
}
