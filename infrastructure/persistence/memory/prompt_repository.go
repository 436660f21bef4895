// Package memory holds process-local repositories used by the local server
// when no AWS table is configured, and as fakes in tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"promptbuilder/domain/core/entities"
	pkgerrors "promptbuilder/pkg/errors"
)

type promptRecord struct {
	prompt *entities.SavedPrompt
	seq    int
}

// PromptRepository keeps saved prompts in a map keyed by user
type PromptRepository struct {
	mu      sync.RWMutex
	byUser  map[string]map[string]promptRecord
	nextSeq int
}

// NewPromptRepository creates an empty repository
func NewPromptRepository() *PromptRepository {
	return &PromptRepository{byUser: make(map[string]map[string]promptRecord)}
}

// Save stores a copy of the prompt
func (r *PromptRepository) Save(ctx context.Context, prompt *entities.SavedPrompt) error {
	if err := pkgerrors.FromContext(ctx, "save prompt"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	prompts, ok := r.byUser[prompt.UserID()]
	if !ok {
		prompts = make(map[string]promptRecord)
		r.byUser[prompt.UserID()] = prompts
	}

	rec, exists := prompts[prompt.ID()]
	if !exists {
		r.nextSeq++
		rec.seq = r.nextSeq
	}
	rec.prompt = copyPrompt(prompt)
	prompts[prompt.ID()] = rec
	return nil
}

// GetByID returns a copy of the stored prompt
func (r *PromptRepository) GetByID(ctx context.Context, userID, promptID string) (*entities.SavedPrompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byUser[userID][promptID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("prompt").WithCode(pkgerrors.CodePromptNotFound)
	}
	return copyPrompt(rec.prompt), nil
}

// ListByUser returns the user's prompts, most recently created first
func (r *PromptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.SavedPrompt, error) {
	r.mu.RLock()
	recs := make([]promptRecord, 0, len(r.byUser[userID]))
	for _, rec := range r.byUser[userID] {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	slices.SortFunc(recs, func(a, b promptRecord) int { return b.seq - a.seq })

	out := make([]*entities.SavedPrompt, len(recs))
	for i, rec := range recs {
		out[i] = copyPrompt(rec.prompt)
	}
	return out, nil
}

// Delete removes the prompt
func (r *PromptRepository) Delete(ctx context.Context, userID, promptID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[userID][promptID]; !ok {
		return pkgerrors.NewNotFoundError("prompt").WithCode(pkgerrors.CodePromptNotFound)
	}
	delete(r.byUser[userID], promptID)
	return nil
}

func copyPrompt(p *entities.SavedPrompt) *entities.SavedPrompt {
	c, _ := entities.ReconstructSavedPrompt(p.ID(), p.UserID(), p.Content(), p.Tags(), p.CreatedAt(), p.UpdatedAt(), p.Version())
	return c
}
