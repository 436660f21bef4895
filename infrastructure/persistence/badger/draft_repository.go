package badger

import (
	"context"
	"errors"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"

	"promptbuilder/domain/core/entities"
	pkgerrors "promptbuilder/pkg/errors"
)

// draftRecord is the stored form of a draft
type draftRecord struct {
	ID           string
	UserID       string `badgerhold:"index"`
	Title        string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedNanos int64
}

func recordKey(userID, draftID string) string {
	return userID + "/" + draftID
}

func toRecord(d *entities.Draft) draftRecord {
	return draftRecord{
		ID:           d.ID(),
		UserID:       d.UserID(),
		Title:        d.Title(),
		Content:      d.Content(),
		CreatedAt:    d.CreatedAt(),
		UpdatedAt:    d.UpdatedAt(),
		CreatedNanos: d.CreatedAt().UnixNano(),
	}
}

func (r draftRecord) toEntity() *entities.Draft {
	return entities.ReconstructDraft(r.ID, r.UserID, r.Title, r.Content, r.CreatedAt, r.UpdatedAt)
}

func newestFirst(userID string) *badgerhold.Query {
	return badgerhold.Where("UserID").Eq(userID).Index("UserID").
		SortBy("CreatedNanos", "ID").Reverse()
}

// DraftRepository implements ports.DraftRepository on badgerhold
type DraftRepository struct {
	db         *DB
	maxPerUser int
	logger     *zap.Logger

	// serializes writers so capped inserts never race into a txn conflict
	mu sync.Mutex
}

// NewDraftRepository creates a repository keeping at most maxPerUser drafts
// per user; zero means unlimited.
func NewDraftRepository(db *DB, maxPerUser int, logger *zap.Logger) *DraftRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftRepository{db: db, maxPerUser: maxPerUser, logger: logger}
}

// Save upserts the draft. Inserting a new draft evicts the user's oldest
// drafts beyond the cap in the same transaction.
func (r *DraftRepository) Save(ctx context.Context, draft *entities.Draft) error {
	if err := pkgerrors.FromContext(ctx, "save draft"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	store := r.db.Store()
	key := recordKey(draft.UserID(), draft.ID())
	rec := toRecord(draft)

	var evicted int
	err := store.Badger().Update(func(tx *badgerdb.Txn) error {
		var existing draftRecord
		err := store.TxGet(tx, key, &existing)
		isNew := errors.Is(err, badgerhold.ErrNotFound)
		if err != nil && !isNew {
			return err
		}

		if err := store.TxUpsert(tx, key, rec); err != nil {
			return err
		}
		if !isNew || r.maxPerUser <= 0 {
			return nil
		}

		var history []draftRecord
		if err := store.TxFind(tx, &history, newestFirst(draft.UserID())); err != nil {
			return err
		}
		for i := r.maxPerUser; i < len(history); i++ {
			old := history[i]
			if err := store.TxDelete(tx, recordKey(old.UserID, old.ID), draftRecord{}); err != nil {
				return err
			}
			evicted++
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save draft",
			zap.String("draftID", draft.ID()),
			zap.String("userID", draft.UserID()),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("save draft", err)
	}

	if evicted > 0 {
		r.logger.Debug("Evicted old drafts",
			zap.String("userID", draft.UserID()),
			zap.Int("count", evicted))
	}
	return nil
}

// GetByID loads one draft
func (r *DraftRepository) GetByID(ctx context.Context, userID, draftID string) (*entities.Draft, error) {
	var rec draftRecord
	if err := r.db.Store().Get(recordKey(userID, draftID), &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, pkgerrors.NewNotFoundError("draft").WithCode(pkgerrors.CodeDraftNotFound)
		}
		return nil, pkgerrors.NewDatabaseError("get draft", err)
	}
	return rec.toEntity(), nil
}

// ListByUser returns the user's drafts, newest first
func (r *DraftRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Draft, error) {
	var recs []draftRecord
	if err := r.db.Store().Find(&recs, newestFirst(userID)); err != nil {
		return nil, pkgerrors.NewDatabaseError("list drafts", err)
	}

	out := make([]*entities.Draft, len(recs))
	for i, rec := range recs {
		out[i] = rec.toEntity()
	}
	return out, nil
}

// Delete removes a draft
func (r *DraftRepository) Delete(ctx context.Context, userID, draftID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Store().Delete(recordKey(userID, draftID), draftRecord{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return pkgerrors.NewNotFoundError("draft").WithCode(pkgerrors.CodeDraftNotFound)
		}
		return pkgerrors.NewDatabaseError("delete draft", err)
	}
	return nil
}
