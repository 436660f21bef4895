package services

import (
	"encoding/json"
	"strings"

	"promptbuilder/domain/core/aggregates"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
)

// ToSequence flattens a content tree into its block sequence.
//
// Consecutive paragraphs form one TextBlock, joined by "\n". A prompt node
// closes the pending run and becomes a PromptBlock. A closed run becomes a
// TextBlock even when empty, so the caret always has a gap between two
// prompts, except at the very start of the document when no paragraph was
// seen. The last run is always emitted, so the sequence ends in a TextBlock.
// Nodes of any other type are skipped. An id already used by an earlier
// block is replaced with a fresh one.
func ToSequence(tree valueobjects.ContentTree) []entities.Block {
	var (
		blocks  []entities.Block
		lines   []string
		runID   string
		started bool
		seen    = make(map[string]struct{})
	)

	// unique drops an id already taken so Reconstruct mints a fresh one
	unique := func(raw string) valueobjects.BlockID {
		id := parseID(raw)
		if id.IsZero() {
			return id
		}
		if _, dup := seen[id.String()]; dup {
			return valueobjects.BlockID{}
		}
		seen[id.String()] = struct{}{}
		return id
	}

	flush := func(force bool) {
		if len(lines) > 0 || force {
			blocks = append(blocks, entities.ReconstructTextBlock(unique(runID), strings.Join(lines, "\n")))
		}
		lines = nil
		runID = ""
	}

	for _, node := range tree.Content {
		switch node.Type {
		case valueobjects.NodeTypeParagraph:
			if len(lines) == 0 {
				runID = node.AttrID()
			}
			lines = append(lines, node.Text())
		case valueobjects.NodeTypePromptBlock:
			flush(started)
			blocks = append(blocks, entities.ReconstructPromptBlock(unique(node.AttrID()), node.Ref()))
		default:
			continue
		}
		started = true
	}
	flush(true)

	return blocks
}

// ToTree expands a block sequence into a content tree: one paragraph per
// line of each TextBlock, one prompt node per PromptBlock. The first
// paragraph of a TextBlock carries the block id so ids survive a round trip.
func ToTree(blocks []entities.Block) valueobjects.ContentTree {
	nodes := make([]valueobjects.TreeNode, 0, len(blocks))

	for _, b := range blocks {
		switch v := b.(type) {
		case entities.TextBlock:
			for i, line := range v.Paragraphs() {
				if i == 0 {
					nodes = append(nodes, valueobjects.ParagraphWithID(v.ID().String(), line))
					continue
				}
				nodes = append(nodes, valueobjects.Paragraph(line))
			}
		case entities.PromptBlock:
			nodes = append(nodes, valueobjects.PromptNode(v.ID().String(), v.Ref()))
		}
	}

	if len(nodes) == 0 {
		return valueobjects.EmptyTree()
	}

	return valueobjects.ContentTree{Type: valueobjects.NodeTypeDoc, Content: nodes}
}

// DocumentFromTree loads a tree as a Document
func DocumentFromTree(tree valueobjects.ContentTree) aggregates.Document {
	return aggregates.NewDocument(ToSequence(tree))
}

// TreeFromDocument renders a Document as a tree
func TreeFromDocument(doc aggregates.Document) valueobjects.ContentTree {
	return ToTree(doc.Blocks())
}

// PlainText renders the tree for external consumers: paragraph text and
// prompt content, joined by a blank line. Blank segments at either end
// are dropped; interior blank paragraphs stay as empty lines.
func PlainText(tree valueobjects.ContentTree) string {
	segments := make([]string, 0, len(tree.Content))
	for _, node := range tree.Content {
		switch node.Type {
		case valueobjects.NodeTypeParagraph:
			segments = append(segments, node.Text())
		case valueobjects.NodeTypePromptBlock:
			segments = append(segments, node.Ref().Content)
		}
	}

	start, end := 0, len(segments)
	for start < end && strings.TrimSpace(segments[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(segments[end-1]) == "" {
		end--
	}

	return strings.Join(segments[start:end], "\n\n")
}

// PlainTextOf renders a block sequence the same way PlainText renders its tree
func PlainTextOf(blocks []entities.Block) string {
	return PlainText(ToTree(blocks))
}

// Serialize encodes a tree in the persisted JSON format
func Serialize(tree valueobjects.ContentTree) (string, error) {
	if tree.Type == "" {
		tree.Type = valueobjects.NodeTypeDoc
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Deserialize decodes a persisted tree. Anything unreadable yields an empty
// single-paragraph tree with ok false; it never fails.
func Deserialize(raw string) (tree valueobjects.ContentTree, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return valueobjects.EmptyTree(), false
	}
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return valueobjects.EmptyTree(), false
	}
	if tree.Type != "" && tree.Type != valueobjects.NodeTypeDoc {
		return valueobjects.EmptyTree(), false
	}
	if len(tree.Content) == 0 {
		return valueobjects.EmptyTree(), true
	}
	tree.Type = valueobjects.NodeTypeDoc
	return tree, true
}

// parseID turns a tree attribute into a BlockID; a missing or unusable id
// yields the zero value, which block constructors replace with a fresh id.
func parseID(raw string) valueobjects.BlockID {
	id, err := valueobjects.NewBlockIDFromString(raw)
	if err != nil {
		return valueobjects.BlockID{}
	}
	return id
}
