// Package persistence holds decorators shared by every repository backend.
package persistence

import (
	"context"
	"time"

	"promptbuilder/application/ports"
	"promptbuilder/domain/core/entities"
)

// OperationRecorder receives the timing of every repository call
type OperationRecorder interface {
	RecordRepositoryOperation(store, operation string, duration time.Duration, err error)
}

// InstrumentedPromptRepository times calls into a prompt repository
type InstrumentedPromptRepository struct {
	next     ports.PromptRepository
	recorder OperationRecorder
	store    string
}

// NewInstrumentedPromptRepository wraps next; store labels the backend
func NewInstrumentedPromptRepository(next ports.PromptRepository, recorder OperationRecorder, store string) *InstrumentedPromptRepository {
	return &InstrumentedPromptRepository{next: next, recorder: recorder, store: store}
}

func (r *InstrumentedPromptRepository) observe(op string, start time.Time, err error) {
	r.recorder.RecordRepositoryOperation(r.store, op, time.Since(start), err)
}

func (r *InstrumentedPromptRepository) Save(ctx context.Context, prompt *entities.SavedPrompt) error {
	start := time.Now()
	err := r.next.Save(ctx, prompt)
	r.observe("save", start, err)
	return err
}

func (r *InstrumentedPromptRepository) GetByID(ctx context.Context, userID, promptID string) (*entities.SavedPrompt, error) {
	start := time.Now()
	p, err := r.next.GetByID(ctx, userID, promptID)
	r.observe("get", start, err)
	return p, err
}

func (r *InstrumentedPromptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.SavedPrompt, error) {
	start := time.Now()
	ps, err := r.next.ListByUser(ctx, userID)
	r.observe("list", start, err)
	return ps, err
}

func (r *InstrumentedPromptRepository) Delete(ctx context.Context, userID, promptID string) error {
	start := time.Now()
	err := r.next.Delete(ctx, userID, promptID)
	r.observe("delete", start, err)
	return err
}

// InstrumentedDraftRepository times calls into a draft repository
type InstrumentedDraftRepository struct {
	next     ports.DraftRepository
	recorder OperationRecorder
	store    string
}

// NewInstrumentedDraftRepository wraps next; store labels the backend
func NewInstrumentedDraftRepository(next ports.DraftRepository, recorder OperationRecorder, store string) *InstrumentedDraftRepository {
	return &InstrumentedDraftRepository{next: next, recorder: recorder, store: store}
}

func (r *InstrumentedDraftRepository) Save(ctx context.Context, draft *entities.Draft) error {
	start := time.Now()
	err := r.next.Save(ctx, draft)
	r.recorder.RecordRepositoryOperation(r.store, "save", time.Since(start), err)
	return err
}

func (r *InstrumentedDraftRepository) GetByID(ctx context.Context, userID, draftID string) (*entities.Draft, error) {
	start := time.Now()
	d, err := r.next.GetByID(ctx, userID, draftID)
	r.recorder.RecordRepositoryOperation(r.store, "get", time.Since(start), err)
	return d, err
}

func (r *InstrumentedDraftRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Draft, error) {
	start := time.Now()
	ds, err := r.next.ListByUser(ctx, userID)
	r.recorder.RecordRepositoryOperation(r.store, "list", time.Since(start), err)
	return ds, err
}

func (r *InstrumentedDraftRepository) Delete(ctx context.Context, userID, draftID string) error {
	start := time.Now()
	err := r.next.Delete(ctx, userID, draftID)
	r.recorder.RecordRepositoryOperation(r.store, "delete", time.Since(start), err)
	return err
}
