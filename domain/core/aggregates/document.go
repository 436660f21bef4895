package aggregates

import (
	"slices"
	"strings"
	"unicode/utf8"

	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
)

// Document is the ordered block sequence being edited. It is a value:
// every operation returns a new Document and leaves the receiver intact,
// so a handler always works on the document it was given.
//
// A Document is never empty; constructors and operations normalise an
// empty result to a single empty TextBlock. The zero value is not usable,
// build one with NewDocument or EmptyDocument.
type Document struct {
	blocks []entities.Block
}

// Cursor is a caret position after a structural edit. Offset counts runes
// into a TextBlock; for a PromptBlock 1 means "just after the block".
type Cursor struct {
	BlockID valueobjects.BlockID `json:"blockId"`
	Offset  int                  `json:"offset"`
}

// NewDocument builds a document from blocks, copying the slice
func NewDocument(blocks []entities.Block) Document {
	return Document{blocks: normalize(slices.Clone(blocks))}
}

// EmptyDocument returns a document holding one empty TextBlock
func EmptyDocument() Document {
	return Document{blocks: normalize(nil)}
}

// Blocks returns a copy of the block sequence
func (d Document) Blocks() []entities.Block {
	return slices.Clone(d.blocks)
}

// Len returns the number of blocks
func (d Document) Len() int {
	return len(d.blocks)
}

// At returns the block at index i
func (d Document) At(i int) entities.Block {
	return d.blocks[i]
}

// IndexOf returns the position of the block with the given id, or -1
func (d Document) IndexOf(id valueobjects.BlockID) int {
	return slices.IndexFunc(d.blocks, func(b entities.Block) bool {
		return b.ID().Equals(id)
	})
}

// Find returns the block with the given id
func (d Document) Find(id valueobjects.BlockID) (entities.Block, bool) {
	i := d.IndexOf(id)
	if i < 0 {
		return nil, false
	}
	return d.blocks[i], true
}

// PromptCount returns how many PromptBlocks the document embeds
func (d Document) PromptCount() int {
	n := 0
	for _, b := range d.blocks {
		if _, ok := b.(entities.PromptBlock); ok {
			n++
		}
	}
	return n
}

// HasContent reports whether the document holds any PromptBlock or any
// TextBlock with non-whitespace text.
func (d Document) HasContent() bool {
	for _, b := range d.blocks {
		switch v := b.(type) {
		case entities.PromptBlock:
			return true
		case entities.TextBlock:
			if !v.IsBlank() {
				return true
			}
		}
	}
	return false
}

// Move relocates the block with sourceID to the pre-removal gap index dest,
// where dest counts gaps in [0, Len()]. Moving a block onto its own gap,
// or the gap right after it, leaves the document unchanged, as do an
// unknown id and an out-of-range dest.
func (d Document) Move(sourceID valueobjects.BlockID, dest int) Document {
	s := d.IndexOf(sourceID)
	if s < 0 {
		return d
	}
	if dest < 0 || dest > len(d.blocks) {
		return d
	}

	effective := dest
	if s < dest {
		effective = dest - 1
	}
	if effective == s {
		return d
	}

	moved := d.blocks[s]
	blocks := slices.Delete(slices.Clone(d.blocks), s, s+1)
	blocks = slices.Insert(blocks, effective, moved)

	return Document{blocks: blocks}
}

// InsertPrompt embeds a snapshot of ref as a new PromptBlock at index at,
// clamped to [0, Len()]. When the block after it is missing or is another
// PromptBlock, an empty TextBlock follows so the caret has somewhere to go.
func (d Document) InsertPrompt(ref valueobjects.PromptRef, at int) Document {
	blocks := d.Blocks()
	at = max(0, min(at, len(blocks)))

	inserted := []entities.Block{entities.NewPromptBlock(ref)}
	if at == len(blocks) || blocks[at].Kind() != entities.KindText {
		inserted = append(inserted, entities.NewTextBlock(""))
	}

	return Document{blocks: normalize(slices.Insert(blocks, at, inserted...))}
}

// AppendPrompt inserts ref at the end of the document
func (d Document) AppendPrompt(ref valueobjects.PromptRef) Document {
	return d.InsertPrompt(ref, d.Len())
}

// RemoveBlock deletes a PromptBlock by id. TextBlocks only disappear by
// merging on the editing surface, so removing one is a no-op.
func (d Document) RemoveBlock(id valueobjects.BlockID) Document {
	i := d.IndexOf(id)
	if i < 0 {
		return d
	}
	if _, ok := d.blocks[i].(entities.PromptBlock); !ok {
		return d
	}

	blocks := slices.Delete(slices.Clone(d.blocks), i, i+1)
	return Document{blocks: normalize(blocks)}
}

// Backspace applies the backspace rule with the caret at offset 0 of the
// TextBlock cursorID. If the preceding block is a PromptBlock it is
// deleted whole and the caret lands at the end of the block before it,
// or at the start of the document. Otherwise nothing changes and the
// edit belongs to the editing surface (handled is false).
func (d Document) Backspace(cursorID valueobjects.BlockID) (doc Document, cursor Cursor, handled bool) {
	i := d.IndexOf(cursorID)
	if i <= 0 {
		return d, Cursor{BlockID: cursorID}, false
	}
	if _, ok := d.blocks[i].(entities.TextBlock); !ok {
		return d, Cursor{BlockID: cursorID}, false
	}
	if _, ok := d.blocks[i-1].(entities.PromptBlock); !ok {
		return d, Cursor{BlockID: cursorID}, false
	}

	blocks := slices.Delete(slices.Clone(d.blocks), i-1, i)
	if i-1 == 0 {
		return Document{blocks: blocks}, Cursor{BlockID: cursorID}, true
	}

	return Document{blocks: blocks}, endOf(blocks[i-2]), true
}

// UpdateText replaces the content of a TextBlock, keeping its id.
// Unknown ids and PromptBlocks are left untouched.
func (d Document) UpdateText(id valueobjects.BlockID, content string) Document {
	i := d.IndexOf(id)
	if i < 0 {
		return d
	}
	tb, ok := d.blocks[i].(entities.TextBlock)
	if !ok {
		return d
	}

	blocks := slices.Clone(d.blocks)
	blocks[i] = tb.WithContent(content)
	return Document{blocks: blocks}
}

// Texts returns the rendered text of every block, in order
func (d Document) Texts() []string {
	out := make([]string, 0, len(d.blocks))
	for _, b := range d.blocks {
		out = append(out, entities.BlockText(b))
	}
	return out
}

// String renders the document for debugging
func (d Document) String() string {
	parts := make([]string, 0, len(d.blocks))
	for _, b := range d.blocks {
		switch v := b.(type) {
		case entities.TextBlock:
			parts = append(parts, "Text("+v.Content()+")")
		case entities.PromptBlock:
			parts = append(parts, "Prompt("+v.Title()+")")
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func endOf(b entities.Block) Cursor {
	switch v := b.(type) {
	case entities.TextBlock:
		return Cursor{BlockID: v.ID(), Offset: utf8.RuneCountInString(v.Content())}
	default:
		return Cursor{BlockID: b.ID(), Offset: 1}
	}
}

func normalize(blocks []entities.Block) []entities.Block {
	if len(blocks) == 0 {
		return []entities.Block{entities.NewTextBlock("")}
	}
	return blocks
}
