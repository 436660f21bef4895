package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/core/entities"
	pkgerrors "promptbuilder/pkg/errors"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func draftAt(id, user string, offset time.Duration) *entities.Draft {
	ts := base.Add(offset)
	return entities.ReconstructDraft(id, user, "Draft "+id, `{"type":"doc"}`, ts, ts)
}

func ids(drafts []*entities.Draft) []string {
	out := make([]string, len(drafts))
	for i, d := range drafts {
		out[i] = d.ID()
	}
	return out
}

func TestDraftRepository_SaveGetList(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t), 0, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, draftAt("d1", "u1", 0)))
	require.NoError(t, repo.Save(ctx, draftAt("d2", "u1", time.Minute)))
	require.NoError(t, repo.Save(ctx, draftAt("x1", "u2", 2*time.Minute)))

	got, err := repo.GetByID(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "Draft d1", got.Title())
	assert.True(t, base.Equal(got.CreatedAt()))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d1"}, ids(list))

	list, err = repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDraftRepository_UpdateKeepsPosition(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t), 0, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, draftAt("d1", "u1", 0)))
	require.NoError(t, repo.Save(ctx, draftAt("d2", "u1", time.Minute)))

	revised := entities.ReconstructDraft("d1", "u1", "Renamed", "{}", base, base.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, revised))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d1"}, ids(list))
	assert.Equal(t, "Renamed", list[1].Title())
}

func TestDraftRepository_CapEvictsOldest(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t), 3, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, draftAt(fmt.Sprintf("d%d", i), "u1", time.Duration(i)*time.Minute)))
	}
	require.NoError(t, repo.Save(ctx, draftAt("other", "u2", 0)))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d4", "d3", "d2"}, ids(list))

	_, err = repo.GetByID(ctx, "u1", "d0")
	assert.True(t, pkgerrors.IsNotFound(err))

	other, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestDraftRepository_Delete(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t), 0, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, draftAt("d1", "u1", 0)))
	require.NoError(t, repo.Delete(ctx, "u1", "d1"))

	_, err := repo.GetByID(ctx, "u1", "d1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDraftNotFound, pkgerrors.GetAppError(err).Code)

	err = repo.Delete(ctx, "u1", "d1")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDraftRepository_CancelledContext(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t), 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, repo.Save(ctx, draftAt("d1", "u1", 0)))
}
