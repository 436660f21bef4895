package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/core/entities"
	"promptbuilder/infrastructure/persistence/memory"
)

type recordedOp struct {
	store, op string
	failed    bool
}

type opRecorder struct{ ops []recordedOp }

func (r *opRecorder) RecordRepositoryOperation(store, operation string, _ time.Duration, err error) {
	r.ops = append(r.ops, recordedOp{store: store, op: operation, failed: err != nil})
}

func TestInstrumentedDraftRepository(t *testing.T) {
	rec := &opRecorder{}
	repo := NewInstrumentedDraftRepository(memory.NewDraftRepository(10), rec, "memory")
	ctx := context.Background()

	d := entities.ReconstructDraft("d1", "u1", "Title", "{}", time.Now(), time.Now())
	require.NoError(t, repo.Save(ctx, d))
	_, err := repo.GetByID(ctx, "u1", "d1")
	require.NoError(t, err)
	_, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "u1", "d1"))
	assert.Error(t, repo.Delete(ctx, "u1", "d1"))

	assert.Equal(t, []recordedOp{
		{"memory", "save", false},
		{"memory", "get", false},
		{"memory", "list", false},
		{"memory", "delete", false},
		{"memory", "delete", true},
	}, rec.ops)
}

func TestInstrumentedPromptRepository_RecordsFailures(t *testing.T) {
	rec := &opRecorder{}
	repo := NewInstrumentedPromptRepository(memory.NewPromptRepository(), rec, "dynamodb")

	_, err := repo.GetByID(context.Background(), "u1", "missing")
	require.Error(t, err)
	_, err = repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []recordedOp{
		{"dynamodb", "get", true},
		{"dynamodb", "list", false},
	}, rec.ops)
}
