package memory

import (
	"context"
	"slices"
	"sync"

	"promptbuilder/domain/core/entities"
	pkgerrors "promptbuilder/pkg/errors"
)

// DraftRepository keeps each user's draft history as an ordered list,
// newest first, capped at maxPerUser entries.
type DraftRepository struct {
	mu         sync.RWMutex
	byUser     map[string][]*entities.Draft
	maxPerUser int
}

// NewDraftRepository creates an empty repository
func NewDraftRepository(maxPerUser int) *DraftRepository {
	return &DraftRepository{byUser: make(map[string][]*entities.Draft), maxPerUser: maxPerUser}
}

// Save updates an existing draft in place or puts a new one at the front,
// dropping the oldest entries beyond the cap.
func (r *DraftRepository) Save(ctx context.Context, draft *entities.Draft) error {
	if err := pkgerrors.FromContext(ctx, "save draft"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.byUser[draft.UserID()]
	stored := copyDraft(draft)

	if i := indexOfDraft(history, draft.ID()); i >= 0 {
		history[i] = stored
		return nil
	}

	history = slices.Insert(history, 0, stored)
	if r.maxPerUser > 0 && len(history) > r.maxPerUser {
		history = history[:r.maxPerUser]
	}
	r.byUser[draft.UserID()] = history
	return nil
}

// GetByID returns a copy of the stored draft
func (r *DraftRepository) GetByID(ctx context.Context, userID, draftID string) (*entities.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.byUser[userID]
	i := indexOfDraft(history, draftID)
	if i < 0 {
		return nil, pkgerrors.NewNotFoundError("draft").WithCode(pkgerrors.CodeDraftNotFound)
	}
	return copyDraft(history[i]), nil
}

// ListByUser returns the history in order
func (r *DraftRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.byUser[userID]
	out := make([]*entities.Draft, len(history))
	for i, d := range history {
		out[i] = copyDraft(d)
	}
	return out, nil
}

// Delete removes a draft from the history
func (r *DraftRepository) Delete(ctx context.Context, userID, draftID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.byUser[userID]
	i := indexOfDraft(history, draftID)
	if i < 0 {
		return pkgerrors.NewNotFoundError("draft").WithCode(pkgerrors.CodeDraftNotFound)
	}
	r.byUser[userID] = slices.Delete(history, i, i+1)
	return nil
}

func indexOfDraft(history []*entities.Draft, id string) int {
	return slices.IndexFunc(history, func(d *entities.Draft) bool { return d.ID() == id })
}

func copyDraft(d *entities.Draft) *entities.Draft {
	return entities.ReconstructDraft(d.ID(), d.UserID(), d.Title(), d.Content(), d.CreatedAt(), d.UpdatedAt())
}
