package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"promptbuilder/domain/config"
	"promptbuilder/domain/core/valueobjects"
	"promptbuilder/domain/events"
	pkgerrors "promptbuilder/pkg/errors"
)

// SavedPrompt is a reusable prompt in a user's library. Documents embed
// snapshots of it, never references.
type SavedPrompt struct {
	id        string
	userID    string
	content   valueobjects.PromptContent
	tags      []string
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewSavedPrompt creates a prompt with a fresh id
func NewSavedPrompt(userID string, content valueobjects.PromptContent, tags []string) (*SavedPrompt, error) {
	return NewSavedPromptWithID(uuid.New().String(), userID, content, tags, config.DefaultDomainConfig())
}

// NewSavedPromptWithID creates a prompt with a caller-chosen id, applying
// the tag rules of cfg.
func NewSavedPromptWithID(id, userID string, content valueobjects.PromptContent, tags []string, cfg *config.DomainConfig) (*SavedPrompt, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("prompt id cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}

	normalized, err := NormalizeTags(tags, cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	prompt := &SavedPrompt{
		id:        id,
		userID:    userID,
		content:   content,
		tags:      normalized,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	prompt.addEvent(events.NewPromptCreated(id, userID, content.Title(), prompt.Tags(), now))

	return prompt, nil
}

// ReconstructSavedPrompt rebuilds a prompt from repository data with preserved timestamps
func ReconstructSavedPrompt(
	id, userID string,
	content valueobjects.PromptContent,
	tags []string,
	createdAt, updatedAt time.Time,
	version int,
) (*SavedPrompt, error) {
	if id == "" || userID == "" {
		return nil, pkgerrors.NewValidationError("prompt id and userID are required")
	}
	if version < 1 {
		version = 1
	}

	t := make([]string, len(tags))
	copy(t, tags)

	return &SavedPrompt{
		id:        id,
		userID:    userID,
		content:   content,
		tags:      t,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the prompt's unique identifier
func (p *SavedPrompt) ID() string {
	return p.id
}

// UserID returns the owner's ID
func (p *SavedPrompt) UserID() string {
	return p.userID
}

// Content returns the prompt's title and body
func (p *SavedPrompt) Content() valueobjects.PromptContent {
	return p.content
}

// Tags returns a copy of the tags
func (p *SavedPrompt) Tags() []string {
	tags := make([]string, len(p.tags))
	copy(tags, p.tags)
	return tags
}

// Version returns the prompt's version for optimistic locking
func (p *SavedPrompt) Version() int {
	return p.version
}

// CreatedAt returns when the prompt was created
func (p *SavedPrompt) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the prompt was last updated
func (p *SavedPrompt) UpdatedAt() time.Time {
	return p.updatedAt
}

// Update replaces content and tags. A call that changes nothing is a no-op.
func (p *SavedPrompt) Update(content valueobjects.PromptContent, tags []string, cfg *config.DomainConfig) error {
	if content.IsEmpty() {
		return pkgerrors.NewValidationError("content cannot be empty")
	}

	normalized, err := NormalizeTags(tags, cfg)
	if err != nil {
		return err
	}

	if content.Equals(p.content) && equalStrings(normalized, p.tags) {
		return nil
	}

	oldTitle := p.content.Title()
	p.content = content
	p.tags = normalized
	p.updatedAt = time.Now()
	p.version++

	p.addEvent(events.NewPromptUpdated(p.id, p.userID, oldTitle, content.Title(), p.Tags(), p.version, p.updatedAt))

	return nil
}

// MarkDeleted records the deletion event
func (p *SavedPrompt) MarkDeleted() {
	p.addEvent(events.NewPromptDeleted(p.id, p.userID, time.Now()))
}

// HasTag reports whether the prompt carries the tag
func (p *SavedPrompt) HasTag(tag string) bool {
	for _, t := range p.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matches reports whether the prompt matches a free-text query
func (p *SavedPrompt) Matches(query string) bool {
	return p.content.Matches(query)
}

// ToRef snapshots the prompt for embedding in a document
func (p *SavedPrompt) ToRef() valueobjects.PromptRef {
	return valueobjects.NewPromptRef(p.id, p.content.Title(), p.content.Body(), p.tags, p.createdAt.UnixMilli())
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *SavedPrompt) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *SavedPrompt) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *SavedPrompt) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

// NormalizeTags trims tags, drops blanks and duplicates, and enforces the
// configured count and length limits.
func NormalizeTags(tags []string, cfg *config.DomainConfig) ([]string, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		if len([]rune(tag)) > cfg.MaxTagLength {
			return nil, pkgerrors.NewValidationError(
				fmt.Sprintf("tag %q exceeds maximum length of %d characters", tag, cfg.MaxTagLength))
		}
		seen[tag] = true
		out = append(out, tag)
	}

	if len(out) > cfg.MaxTagsPerPrompt {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("maximum tags reached: %d", cfg.MaxTagsPerPrompt))
	}

	return out, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
