package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"promptbuilder/domain/config"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
	domainservices "promptbuilder/domain/services"
	"promptbuilder/infrastructure/persistence/memory"
	pkgerrors "promptbuilder/pkg/errors"
)

type countingMetrics struct {
	calls map[string][]bool
}

func (m *countingMetrics) RecordDocumentOperation(op string, applied bool) {
	if m.calls == nil {
		m.calls = map[string][]bool{}
	}
	m.calls[op] = append(m.calls[op], applied)
}

func id(t *testing.T, s string) valueobjects.BlockID {
	t.Helper()
	b, err := valueobjects.NewBlockIDFromString(s)
	require.NoError(t, err)
	return b
}

func greetingRef() valueobjects.PromptRef {
	return valueobjects.NewPromptRef("p1", "Greeting", "Hi there", []string{"social"}, 1_700_000_000_000)
}

// sample is [Text(hello) t1, Prompt(Greeting) b1, Text() t2]
func sample(t *testing.T) valueobjects.ContentTree {
	return domainservices.ToTree([]entities.Block{
		entities.ReconstructTextBlock(id(t, "t1"), "hello"),
		entities.ReconstructPromptBlock(id(t, "b1"), greetingRef()),
		entities.ReconstructTextBlock(id(t, "t2"), ""),
	})
}

func newService(t *testing.T) (*DocumentService, *memory.PromptRepository, *countingMetrics) {
	t.Helper()
	repo := memory.NewPromptRepository()
	m := &countingMetrics{}
	return NewDocumentService(repo, m, config.DefaultDomainConfig(), zap.NewNop()), repo, m
}

func payload(id, title, content string) valueobjects.PromptPayload {
	return valueobjects.PromptPayload{ID: id, Title: title, Content: &content}
}

func TestDocumentService_Move(t *testing.T) {
	svc, _, m := newService(t)

	res, err := svc.Move(sample(t), "b1", 0)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, "[Prompt(Greeting), Text(hello), Text()]", res.Document.String())

	for _, dest := range []int{1, 2} {
		res, err = svc.Move(sample(t), "b1", dest)
		require.NoError(t, err)
		assert.False(t, res.Applied, "dest %d", dest)
	}

	res, err = svc.Move(sample(t), "unknown", 0)
	require.NoError(t, err)
	assert.False(t, res.Applied)

	assert.Equal(t, []bool{true, false, false, false}, m.calls["move"])
}

func TestDocumentService_DropBlock(t *testing.T) {
	svc, _, _ := newService(t)
	boxes := []valueobjects.BoundingBox{
		valueobjects.NewBoundingBox(0, 20),
		valueobjects.NewBoundingBox(20, 60),
		valueobjects.NewBoundingBox(60, 80),
	}

	res, err := svc.DropBlock(sample(t), "t2", 5, boxes)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, id(t, "t2"), res.Document.At(0).ID())

	res, err = svc.DropBlock(sample(t), "missing", 5, boxes)
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestDocumentService_InsertPrompt(t *testing.T) {
	svc, _, _ := newService(t)

	t.Run("scenario hello plus greeting", func(t *testing.T) {
		start := valueobjects.ContentTree{Type: "doc", Content: []valueobjects.TreeNode{valueobjects.Paragraph("hello")}}
		res, err := svc.AppendPrompt(start, payload("p1", "Greeting", "Hi there"))
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.Equal(t, "[Text(hello), Prompt(Greeting), Text()]", res.Document.String())

		text, err := svc.Export(res.Tree())
		require.NoError(t, err)
		assert.Equal(t, "hello\n\nHi there", text)
	})

	t.Run("malformed payload is ignored", func(t *testing.T) {
		bad := valueobjects.PromptPayload{ID: "p1"}
		res, err := svc.InsertPrompt(sample(t), bad, 0)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, 3, res.Document.Len())

		res, err = svc.InsertPrompt(sample(t), bad, 99)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, 3, res.Index)
	})

	t.Run("index is clamped", func(t *testing.T) {
		res, err := svc.InsertPrompt(sample(t), payload("p2", "Other", "x"), 99)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Index)
		assert.Equal(t, "[Text(hello), Prompt(Greeting), Text(), Prompt(Other), Text()]", res.Document.String())
	})
}

func TestDocumentService_DropPrompt(t *testing.T) {
	svc, _, _ := newService(t)
	boxes := []valueobjects.BoundingBox{valueobjects.NewBoundingBox(0, 20)}

	res, err := svc.DropPrompt(domainservices.ToTree(nil), payload("p1", "Greeting", "Hi"), 15, boxes)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, "[Text(), Prompt(Greeting), Text()]", res.Document.String())

	res, err = svc.DropPrompt(domainservices.ToTree(nil), valueobjects.PromptPayload{}, 15, boxes)
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestDocumentService_InsertPromptFromSaved(t *testing.T) {
	svc, repo, _ := newService(t)
	content, err := valueobjects.NewPromptContent("Sign-off", "Best regards")
	require.NoError(t, err)
	prompt, err := entities.NewSavedPromptWithID("p9", "u1", content, nil, config.DefaultDomainConfig())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), prompt))

	zero := 0
	res, err := svc.InsertPromptFromSaved(context.Background(), "u1", "p9", sample(t), &zero)
	require.NoError(t, err)
	assert.Equal(t, "[Prompt(Sign-off), Text(hello), Prompt(Greeting), Text()]", res.Document.String())
	inserted := res.Document.At(0).(entities.PromptBlock)
	assert.Equal(t, "p9", inserted.SourceID())
	assert.NotEqual(t, "p9", inserted.ID().String())

	_, err = svc.InsertPromptFromSaved(context.Background(), "u2", "p9", sample(t), nil)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDocumentService_RemoveAndBackspace(t *testing.T) {
	svc, _, _ := newService(t)

	res, err := svc.RemoveBlock(sample(t), "b1")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 0, res.Document.PromptCount())

	res, err = svc.RemoveBlock(sample(t), "t1")
	require.NoError(t, err)
	assert.False(t, res.Applied, "text blocks are only removed by merging")

	res, err = svc.Backspace(sample(t), "t2")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	require.NotNil(t, res.Cursor)
	assert.Equal(t, id(t, "t1"), res.Cursor.BlockID)
	assert.Equal(t, 5, res.Cursor.Offset)

	res, err = svc.Backspace(sample(t), "t1")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Nil(t, res.Cursor)
}

func TestDocumentService_Limits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxBlocksPerDocument = 2
	svc := NewDocumentService(memory.NewPromptRepository(), nil, cfg, zap.NewNop())

	_, err := svc.Move(sample(t), "b1", 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, pkgerrors.CodeDocumentTooLarge, pkgerrors.GetAppError(err).Code)
}

func TestDocumentService_ResolveAndHasContent(t *testing.T) {
	svc, _, _ := newService(t)
	boxes := []valueobjects.BoundingBox{
		valueobjects.NewBoundingBox(0, 10),
		valueobjects.NewBoundingBox(10, 30),
		valueobjects.NewBoundingBox(30, 50),
	}
	assert.Equal(t, 3, svc.Resolve(40, boxes), "tie at the midpoint goes down")
	assert.Equal(t, 0, svc.Resolve(-5, boxes))

	assert.False(t, svc.HasContent(domainservices.ToTree(nil)))
	assert.True(t, svc.HasContent(sample(t)))
}
