package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"promptbuilder/domain/config"
	pkgerrors "promptbuilder/pkg/errors"
)

// PromptContent is the title and body of a saved prompt
type PromptContent struct {
	title string
	body  string
}

// NewPromptContent creates content with validation using default configuration
func NewPromptContent(title, body string) (PromptContent, error) {
	return NewPromptContentWithConfig(title, body, config.DefaultDomainConfig())
}

// NewPromptContentWithConfig trims both fields and rejects blank or oversized values
func NewPromptContentWithConfig(title, body string, cfg *config.DomainConfig) (PromptContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	if title == "" {
		return PromptContent{}, pkgerrors.NewValidationError("title cannot be empty")
	}
	if body == "" {
		return PromptContent{}, pkgerrors.NewValidationError("content cannot be empty")
	}

	if utf8.RuneCountInString(title) > cfg.MaxTitleLength {
		return PromptContent{}, pkgerrors.NewValidationError(
			fmt.Sprintf("title exceeds maximum length of %d characters", cfg.MaxTitleLength))
	}
	if utf8.RuneCountInString(body) > cfg.MaxContentLength {
		return PromptContent{}, pkgerrors.NewValidationError(
			fmt.Sprintf("content exceeds maximum length of %d characters", cfg.MaxContentLength))
	}

	return PromptContent{title: title, body: body}, nil
}

// Title returns the content title
func (c PromptContent) Title() string {
	return c.title
}

// Body returns the content body
func (c PromptContent) Body() string {
	return c.body
}

// IsEmpty checks if content is empty
func (c PromptContent) IsEmpty() bool {
	return c.title == "" && c.body == ""
}

// Equals checks if two contents are equal
func (c PromptContent) Equals(other PromptContent) bool {
	return c.title == other.title && c.body == other.body
}

// Matches reports whether the lowercase query occurs in the title or body
func (c PromptContent) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.title), q) ||
		strings.Contains(strings.ToLower(c.body), q)
}

// Summary returns a truncated summary of the body
func (c PromptContent) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(c.body) <= maxLength {
		return c.body
	}
	if maxLength <= 3 {
		return string([]rune(c.body)[:maxLength])
	}
	runes := []rune(c.body)
	return string(runes[:maxLength-3]) + "..."
}
