package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/core/valueobjects"
)

func TestTextBlock_WithContentKeepsID(t *testing.T) {
	b := NewTextBlock("hello")
	edited := b.WithContent("hello world")

	assert.True(t, b.ID().Equals(edited.ID()))
	assert.Equal(t, "hello", b.Content())
	assert.Equal(t, "hello world", edited.Content())
	assert.Equal(t, KindText, edited.Kind())
}

func TestTextBlock_IsBlank(t *testing.T) {
	assert.True(t, NewTextBlock("").IsBlank())
	assert.True(t, NewTextBlock(" \n\t").IsBlank())
	assert.False(t, NewTextBlock(" x ").IsBlank())
}

func TestReconstructBlocks_ZeroIDGetsFresh(t *testing.T) {
	tb := ReconstructTextBlock(valueobjects.BlockID{}, "x")
	assert.False(t, tb.ID().IsZero())

	pb := ReconstructPromptBlock(valueobjects.BlockID{}, valueobjects.NewPromptRef("p", "T", "C", nil, 0))
	assert.False(t, pb.ID().IsZero())
}

func TestPromptBlock_SnapshotIsIsolated(t *testing.T) {
	tags := []string{"a"}
	ref := valueobjects.NewPromptRef("p1", "Greeting", "Hi there", tags, 7)
	b := NewPromptBlock(ref)

	ref.Tags[0] = "mutated"
	got := b.Tags()
	got[0] = "also mutated"

	assert.Equal(t, []string{"a"}, b.Tags())
	assert.Equal(t, "p1", b.SourceID())
	assert.Equal(t, "Greeting", b.Title())
	assert.Equal(t, "Hi there", b.Content())
	assert.Equal(t, int64(7), b.CreatedAt())
	assert.Equal(t, KindPrompt, b.Kind())
}

func TestBlockJSON(t *testing.T) {
	id, err := valueobjects.NewBlockIDFromString("b1")
	require.NoError(t, err)

	data, err := json.Marshal(ReconstructTextBlock(id, "hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b1","kind":"text","content":"hi"}`, string(data))

	data, err = json.Marshal(ReconstructPromptBlock(id, valueobjects.NewPromptRef("p1", "T", "C", nil, 5)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b1","kind":"prompt","sourceId":"p1","title":"T","content":"C","tags":[],"createdAt":5}`, string(data))
}

func TestBlockText(t *testing.T) {
	assert.Equal(t, "x", BlockText(NewTextBlock("x")))
	assert.Equal(t, "C", BlockText(NewPromptBlock(valueobjects.NewPromptRef("p", "T", "C", nil, 0))))
}
