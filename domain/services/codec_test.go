package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/core/aggregates"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
)

func greeting() valueobjects.PromptRef {
	return valueobjects.NewPromptRef("p1", "Greeting", "Hi there", []string{"social"}, 1_700_000_000_000)
}

func TestToSequence(t *testing.T) {
	prompt := valueobjects.PromptNode("b2", greeting())

	tests := []struct {
		name  string
		nodes []valueobjects.TreeNode
		want  string
	}{
		{
			name:  "consecutive paragraphs join into one text block",
			nodes: []valueobjects.TreeNode{valueobjects.Paragraph("a"), valueobjects.Paragraph(""), valueobjects.Paragraph("b")},
			want:  "[Text(a\n\nb)]",
		},
		{
			name:  "prompt splits text runs",
			nodes: []valueobjects.TreeNode{valueobjects.Paragraph("a"), prompt, valueobjects.Paragraph("b")},
			want:  "[Text(a), Prompt(Greeting), Text(b)]",
		},
		{
			name:  "leading prompt has no gap before it",
			nodes: []valueobjects.TreeNode{prompt, valueobjects.Paragraph("b")},
			want:  "[Prompt(Greeting), Text(b)]",
		},
		{
			name:  "trailing prompt gets a gap after it",
			nodes: []valueobjects.TreeNode{valueobjects.Paragraph("a"), prompt},
			want:  "[Text(a), Prompt(Greeting), Text()]",
		},
		{
			name:  "adjacent prompts get a gap between them",
			nodes: []valueobjects.TreeNode{prompt, prompt},
			want:  "[Prompt(Greeting), Text(), Prompt(Greeting), Text()]",
		},
		{
			name:  "leading empty paragraph is kept",
			nodes: []valueobjects.TreeNode{valueobjects.Paragraph(""), prompt, valueobjects.Paragraph("")},
			want:  "[Text(), Prompt(Greeting), Text()]",
		},
		{
			name:  "empty document",
			nodes: nil,
			want:  "[Text()]",
		},
		{
			name:  "unknown nodes are skipped",
			nodes: []valueobjects.TreeNode{{Type: "horizontalRule"}, valueobjects.Paragraph("a")},
			want:  "[Text(a)]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := valueobjects.ContentTree{Type: valueobjects.NodeTypeDoc, Content: tt.nodes}
			got := aggregates.NewDocument(ToSequence(tree))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToSequence_IDs(t *testing.T) {
	tree := valueobjects.ContentTree{
		Type: valueobjects.NodeTypeDoc,
		Content: []valueobjects.TreeNode{
			valueobjects.ParagraphWithID("t1", "a"),
			valueobjects.Paragraph("b"),
			valueobjects.PromptNode("p-block", greeting()),
			valueobjects.Paragraph("c"),
		},
	}

	blocks := ToSequence(tree)
	require.Len(t, blocks, 3)
	assert.Equal(t, "t1", blocks[0].ID().String())
	assert.Equal(t, "p-block", blocks[1].ID().String())
	assert.False(t, blocks[2].ID().IsZero())

	pb := blocks[1].(entities.PromptBlock)
	assert.Equal(t, greeting(), pb.Ref())
}

func TestToSequence_DuplicateIDs(t *testing.T) {
	tree := valueobjects.ContentTree{
		Type: valueobjects.NodeTypeDoc,
		Content: []valueobjects.TreeNode{
			valueobjects.PromptNode("dup", greeting()),
			valueobjects.ParagraphWithID("dup", "x"),
			valueobjects.PromptNode("dup", greeting()),
			valueobjects.Paragraph(""),
		},
	}

	blocks := ToSequence(tree)
	require.Len(t, blocks, 4)
	assert.Equal(t, "dup", blocks[0].ID().String(), "first holder keeps the id")

	seen := make(map[string]int)
	for _, b := range blocks {
		seen[b.ID().String()]++
	}
	assert.Len(t, seen, 4)

	doc := aggregates.NewDocument(blocks)
	moved := doc.Move(blocks[2].ID(), 0)
	assert.Equal(t, blocks[2].ID(), moved.At(0).ID())
}

func TestRoundTrip(t *testing.T) {
	docs := map[string][]entities.Block{
		"single empty": {entities.NewTextBlock("")},
		"text and prompt": {
			entities.NewTextBlock("first line\nsecond line"),
			entities.NewPromptBlock(greeting()),
			entities.NewTextBlock(""),
		},
		"leading prompt": {
			entities.NewPromptBlock(greeting()),
			entities.NewTextBlock("tail\n\n"),
		},
		"alternating": {
			entities.NewTextBlock("\n"),
			entities.NewPromptBlock(greeting()),
			entities.NewTextBlock("x"),
			entities.NewPromptBlock(valueobjects.NewPromptRef("p2", "Other", "", nil, 0)),
			entities.NewTextBlock(""),
		},
	}

	for name, blocks := range docs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, blocks, ToSequence(ToTree(blocks)))
		})
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	blocks := []entities.Block{
		entities.NewTextBlock("line one\nline two"),
		entities.NewPromptBlock(greeting()),
		entities.NewTextBlock(""),
	}

	raw, err := Serialize(ToTree(blocks))
	require.NoError(t, err)

	tree, ok := Deserialize(raw)
	require.True(t, ok)
	assert.Equal(t, blocks, ToSequence(tree))
}

func TestDeserialize_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{name: "garbage", raw: "{not json", wantOK: false},
		{name: "blank", raw: "  ", wantOK: false},
		{name: "wrong root", raw: `{"type":"table","content":[]}`, wantOK: false},
		{name: "empty doc", raw: `{"type":"doc","content":[]}`, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, ok := Deserialize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, valueobjects.EmptyTree(), tree)
		})
	}
}

func TestToTree(t *testing.T) {
	tb := entities.NewTextBlock("a\n\nb")
	tree := ToTree([]entities.Block{tb, entities.NewPromptBlock(greeting())})

	require.Len(t, tree.Content, 4)
	assert.Equal(t, tb.ID().String(), tree.Content[0].AttrID())
	assert.Equal(t, "", tree.Content[1].Text())
	assert.Equal(t, "b", tree.Content[2].Text())
	assert.True(t, tree.Content[3].IsPrompt())

	assert.Equal(t, valueobjects.EmptyTree(), ToTree(nil))
}

func TestPlainText(t *testing.T) {
	doc := aggregates.NewDocument([]entities.Block{entities.NewTextBlock("hello")}).
		InsertPrompt(valueobjects.NewPromptRef("p1", "Greeting", "Hi there", nil, 0), 1)

	assert.Equal(t, "hello\n\nHi there", PlainTextOf(doc.Blocks()))

	tests := []struct {
		name   string
		blocks []entities.Block
		want   string
	}{
		{name: "empty", blocks: []entities.Block{entities.NewTextBlock("")}, want: ""},
		{name: "interior blank line kept", blocks: []entities.Block{entities.NewTextBlock("a\n\nb")}, want: "a\n\n\n\nb"},
		{name: "edges trimmed", blocks: []entities.Block{entities.NewTextBlock("\n\na\n")}, want: "a"},
		{
			name: "prompt content only",
			blocks: []entities.Block{
				entities.NewTextBlock(""),
				entities.NewPromptBlock(greeting()),
				entities.NewTextBlock(""),
			},
			want: "Hi there",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainTextOf(tt.blocks))
		})
	}
}
