package entities

import (
	"encoding/json"
	"strings"

	"promptbuilder/domain/core/valueobjects"
)

// BlockKind names the two kinds of block a document holds
type BlockKind string

const (
	KindText   BlockKind = "text"
	KindPrompt BlockKind = "prompt"
)

// Block is one element of a document's ordered sequence. The set of
// implementations is closed: TextBlock and PromptBlock.
type Block interface {
	ID() valueobjects.BlockID
	Kind() BlockKind
	sealed()
}

// TextBlock is a run of free text. Newlines separate paragraphs.
type TextBlock struct {
	id      valueobjects.BlockID
	content string
}

// NewTextBlock creates a text block with a fresh id
func NewTextBlock(content string) TextBlock {
	return TextBlock{id: valueobjects.NewBlockID(), content: content}
}

// ReconstructTextBlock creates a text block with a known id
func ReconstructTextBlock(id valueobjects.BlockID, content string) TextBlock {
	if id.IsZero() {
		id = valueobjects.NewBlockID()
	}
	return TextBlock{id: id, content: content}
}

func (b TextBlock) ID() valueobjects.BlockID { return b.id }
func (b TextBlock) Kind() BlockKind          { return KindText }
func (b TextBlock) sealed()                  {}

// Content returns the block text
func (b TextBlock) Content() string {
	return b.content
}

// WithContent returns the same block, same id, with new text
func (b TextBlock) WithContent(content string) TextBlock {
	return TextBlock{id: b.id, content: content}
}

// IsBlank reports whether the text is empty or whitespace only
func (b TextBlock) IsBlank() bool {
	return strings.TrimSpace(b.content) == ""
}

// Paragraphs splits the text into its paragraphs
func (b TextBlock) Paragraphs() []string {
	return strings.Split(b.content, "\n")
}

// MarshalJSON implements json.Marshaler
func (b TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string    `json:"id"`
		Kind    BlockKind `json:"kind"`
		Content string    `json:"content"`
	}{b.id.String(), KindText, b.content})
}

// PromptBlock is an embedded snapshot of a saved prompt. It is atomic:
// never split, never edited inline.
type PromptBlock struct {
	id  valueobjects.BlockID
	ref valueobjects.PromptRef
}

// NewPromptBlock creates a prompt block with a fresh id
func NewPromptBlock(ref valueobjects.PromptRef) PromptBlock {
	return PromptBlock{id: valueobjects.NewBlockID(), ref: ref.Clone()}
}

// ReconstructPromptBlock creates a prompt block with a known id
func ReconstructPromptBlock(id valueobjects.BlockID, ref valueobjects.PromptRef) PromptBlock {
	if id.IsZero() {
		id = valueobjects.NewBlockID()
	}
	return PromptBlock{id: id, ref: ref.Clone()}
}

func (b PromptBlock) ID() valueobjects.BlockID { return b.id }
func (b PromptBlock) Kind() BlockKind          { return KindPrompt }
func (b PromptBlock) sealed()                  {}

// Ref returns a copy of the snapshot
func (b PromptBlock) Ref() valueobjects.PromptRef { return b.ref.Clone() }

// SourceID returns the id of the saved prompt this was copied from
func (b PromptBlock) SourceID() string { return b.ref.SourceID }

// Title returns the snapshot title
func (b PromptBlock) Title() string { return b.ref.Title }

// Content returns the snapshot content
func (b PromptBlock) Content() string { return b.ref.Content }

// Tags returns a copy of the snapshot tags
func (b PromptBlock) Tags() []string { return b.ref.Clone().Tags }

// CreatedAt returns the snapshot creation time in epoch milliseconds
func (b PromptBlock) CreatedAt() int64 { return b.ref.CreatedAt }

// MarshalJSON implements json.Marshaler
func (b PromptBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Kind      BlockKind `json:"kind"`
		SourceID  string    `json:"sourceId"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		Tags      []string  `json:"tags"`
		CreatedAt int64     `json:"createdAt"`
	}{b.id.String(), KindPrompt, b.ref.SourceID, b.ref.Title, b.ref.Content, b.Tags(), b.ref.CreatedAt})
}

// BlockText returns the rendered text of any block: a text block's content
// or a prompt block's snapshot content.
func BlockText(b Block) string {
	switch v := b.(type) {
	case TextBlock:
		return v.content
	case PromptBlock:
		return v.ref.Content
	default:
		return ""
	}
}
