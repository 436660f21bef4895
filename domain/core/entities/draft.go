package entities

import (
	"strings"
	"time"

	"promptbuilder/domain/config"
	"promptbuilder/domain/events"
	pkgerrors "promptbuilder/pkg/errors"
)

// Draft is an auto-saved chat-history entry: a title plus the serialized
// content tree of the document being edited.
type Draft struct {
	id        string
	userID    string
	title     string
	content   string
	createdAt time.Time
	updatedAt time.Time

	events []events.DomainEvent
}

// NewDraft creates a draft. A blank title falls back to the configured default.
func NewDraft(id, userID, title, content string, cfg *config.DomainConfig) (*Draft, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("draft id cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}

	now := time.Now()
	d := &Draft{
		id:        id,
		userID:    userID,
		title:     draftTitle(title, cfg),
		content:   content,
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}
	d.addEvent(events.NewDraftSaved(id, userID, d.title, true, now))

	return d, nil
}

// ReconstructDraft rebuilds a draft from repository data
func ReconstructDraft(id, userID, title, content string, createdAt, updatedAt time.Time) *Draft {
	return &Draft{
		id:        id,
		userID:    userID,
		title:     title,
		content:   content,
		createdAt: createdAt,
		updatedAt: updatedAt,
		events:    []events.DomainEvent{},
	}
}

func (d *Draft) ID() string           { return d.id }
func (d *Draft) UserID() string       { return d.userID }
func (d *Draft) Title() string        { return d.title }
func (d *Draft) Content() string      { return d.content }
func (d *Draft) CreatedAt() time.Time { return d.createdAt }
func (d *Draft) UpdatedAt() time.Time { return d.updatedAt }

// Revise overwrites title and content and refreshes the update time.
// The creation time, and with it the history position, is kept.
func (d *Draft) Revise(title, content string, cfg *config.DomainConfig) {
	d.title = draftTitle(title, cfg)
	d.content = content
	d.updatedAt = time.Now()
	d.addEvent(events.NewDraftSaved(d.id, d.userID, d.title, false, d.updatedAt))
}

// MarkDeleted records the deletion event
func (d *Draft) MarkDeleted() {
	d.addEvent(events.NewDraftDeleted(d.id, d.userID, time.Now()))
}

// Matches reports whether the title contains the query, case-insensitively
func (d *Draft) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.title), q)
}

// GetUncommittedEvents returns all uncommitted domain events
func (d *Draft) GetUncommittedEvents() []events.DomainEvent {
	return d.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (d *Draft) MarkEventsAsCommitted() {
	d.events = []events.DomainEvent{}
}

func (d *Draft) addEvent(event events.DomainEvent) {
	d.events = append(d.events, event)
}

func draftTitle(title string, cfg *config.DomainConfig) string {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return cfg.DefaultDraftTitle
	}
	return title
}
