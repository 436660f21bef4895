package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/config"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
	pkgerrors "promptbuilder/pkg/errors"
)

func newPrompt(t *testing.T, id, userID, title string) *entities.SavedPrompt {
	t.Helper()
	content, err := valueobjects.NewPromptContent(title, "body of "+title)
	require.NoError(t, err)
	p, err := entities.NewSavedPromptWithID(id, userID, content, []string{"tag"}, config.DefaultDomainConfig())
	require.NoError(t, err)
	return p
}

func TestPromptRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptRepository()

	require.NoError(t, repo.Save(ctx, newPrompt(t, "p1", "u1", "First")))
	require.NoError(t, repo.Save(ctx, newPrompt(t, "p2", "u1", "Second")))
	require.NoError(t, repo.Save(ctx, newPrompt(t, "p3", "u2", "Other user")))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID(), "newest first")
	assert.Equal(t, "p1", list[1].ID())

	got, err := repo.GetByID(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Content().Title())

	_, err = repo.GetByID(ctx, "u2", "p1")
	assert.True(t, pkgerrors.IsNotFound(err), "prompts are scoped per user")

	require.NoError(t, repo.Delete(ctx, "u1", "p1"))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, "u1", "p1")))
}

func TestPromptRepository_UpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptRepository()
	cfg := config.DefaultDomainConfig()

	first := newPrompt(t, "p1", "u1", "First")
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, newPrompt(t, "p2", "u1", "Second")))

	content, err := valueobjects.NewPromptContent("First, edited", "new body")
	require.NoError(t, err)
	require.NoError(t, first.Update(content, nil, cfg))
	require.NoError(t, repo.Save(ctx, first))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p2", list[0].ID())
	assert.Equal(t, "First, edited", list[1].Content().Title())
	assert.Equal(t, 2, list[1].Version())
}

func TestPromptRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewPromptRepository()
	require.NoError(t, repo.Save(ctx, newPrompt(t, "p1", "u1", "First")))

	got, err := repo.GetByID(ctx, "u1", "p1")
	require.NoError(t, err)
	content, _ := valueobjects.NewPromptContent("Changed", "x")
	require.NoError(t, got.Update(content, nil, nil))

	again, err := repo.GetByID(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "First", again.Content().Title())
}

func TestDraftRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultDomainConfig()
	repo := NewDraftRepository(3)

	a, err := entities.NewDraft("a", "u1", "A", "{}", cfg)
	require.NoError(t, err)
	b, err := entities.NewDraft("b", "u1", "B", "{}", cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	created := a.CreatedAt()
	time.Sleep(time.Millisecond)
	a.Revise("A2", `{"type":"doc"}`, cfg)
	require.NoError(t, repo.Save(ctx, a))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID(), "update keeps position")
	assert.Equal(t, "A2", list[1].Title())
	assert.Equal(t, created, list[1].CreatedAt())
	assert.True(t, list[1].UpdatedAt().After(created))
}

func TestDraftRepository_Cap(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultDomainConfig()
	repo := NewDraftRepository(3)

	for i := 1; i <= 5; i++ {
		d, err := entities.NewDraft(fmt.Sprintf("d%d", i), "u1", "", "{}", cfg)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, d))
	}

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"d5", "d4", "d3"}, []string{list[0].ID(), list[1].ID(), list[2].ID()})
	assert.Equal(t, "Untitled", list[0].Title())

	_, err = repo.GetByID(ctx, "u1", "d1")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDraftRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(50)
	d, err := entities.NewDraft("d1", "u1", "T", "{}", config.DefaultDomainConfig())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, d))

	require.NoError(t, repo.Delete(ctx, "u1", "d1"))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, "u1", "d1")))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
