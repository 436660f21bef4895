package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event type names, also used as EventBridge detail types
const (
	TypePromptCreated = "prompt.created"
	TypePromptUpdated = "prompt.updated"
	TypePromptDeleted = "prompt.deleted"
	TypeDraftSaved    = "draft.saved"
	TypeDraftDeleted  = "draft.deleted"
)

// Prompt Events

// PromptCreated is raised when a prompt is saved to the library
type PromptCreated struct {
	BaseEvent
	PromptID string   `json:"prompt_id"`
	UserID   string   `json:"user_id"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
}

// NewPromptCreated creates a PromptCreated event
func NewPromptCreated(promptID, userID, title string, tags []string, timestamp time.Time) PromptCreated {
	return PromptCreated{
		BaseEvent: BaseEvent{
			AggregateID: promptID,
			EventType:   TypePromptCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		PromptID: promptID,
		UserID:   userID,
		Title:    title,
		Tags:     tags,
	}
}

// PromptUpdated is raised when a saved prompt's content or tags change
type PromptUpdated struct {
	BaseEvent
	PromptID string   `json:"prompt_id"`
	UserID   string   `json:"user_id"`
	OldTitle string   `json:"old_title"`
	NewTitle string   `json:"new_title"`
	Tags     []string `json:"tags"`
}

// NewPromptUpdated creates a PromptUpdated event
func NewPromptUpdated(promptID, userID, oldTitle, newTitle string, tags []string, version int, timestamp time.Time) PromptUpdated {
	return PromptUpdated{
		BaseEvent: BaseEvent{
			AggregateID: promptID,
			EventType:   TypePromptUpdated,
			Timestamp:   timestamp,
			Version:     version,
		},
		PromptID: promptID,
		UserID:   userID,
		OldTitle: oldTitle,
		NewTitle: newTitle,
		Tags:     tags,
	}
}

// PromptDeleted is raised when a prompt is removed from the library.
// Documents that embed it keep their snapshots.
type PromptDeleted struct {
	BaseEvent
	PromptID string `json:"prompt_id"`
	UserID   string `json:"user_id"`
}

// NewPromptDeleted creates a PromptDeleted event
func NewPromptDeleted(promptID, userID string, timestamp time.Time) PromptDeleted {
	return PromptDeleted{
		BaseEvent: BaseEvent{
			AggregateID: promptID,
			EventType:   TypePromptDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		PromptID: promptID,
		UserID:   userID,
	}
}

// Draft Events

// DraftSaved is raised when a draft is auto-saved
type DraftSaved struct {
	BaseEvent
	DraftID string `json:"draft_id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Created bool   `json:"created"`
}

// NewDraftSaved creates a DraftSaved event
func NewDraftSaved(draftID, userID, title string, created bool, timestamp time.Time) DraftSaved {
	return DraftSaved{
		BaseEvent: BaseEvent{
			AggregateID: draftID,
			EventType:   TypeDraftSaved,
			Timestamp:   timestamp,
			Version:     1,
		},
		DraftID: draftID,
		UserID:  userID,
		Title:   title,
		Created: created,
	}
}

// DraftDeleted is raised when a draft is removed from history
type DraftDeleted struct {
	BaseEvent
	DraftID string `json:"draft_id"`
	UserID  string `json:"user_id"`
}

// NewDraftDeleted creates a DraftDeleted event
func NewDraftDeleted(draftID, userID string, timestamp time.Time) DraftDeleted {
	return DraftDeleted{
		BaseEvent: BaseEvent{
			AggregateID: draftID,
			EventType:   TypeDraftDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		DraftID: draftID,
		UserID:  userID,
	}
}
