package valueobjects

import "strings"

// Node types understood by the editor tree
const (
	NodeTypeDoc         = "doc"
	NodeTypeParagraph   = "paragraph"
	NodeTypePromptBlock = "promptBlock"
	NodeTypeText        = "text"
)

// ContentTree is the editor's persisted document: a root "doc" node whose
// children are paragraphs and prompt nodes. The JSON shape matches what the
// rich-text client stores and exchanges.
type ContentTree struct {
	Type    string     `json:"type"`
	Content []TreeNode `json:"content"`
}

// TreeNode is a top-level child of the document root
type TreeNode struct {
	Type    string       `json:"type"`
	Attrs   *NodeAttrs   `json:"attrs,omitempty"`
	Content []InlineNode `json:"content,omitempty"`
}

// InlineNode is an inline child of a paragraph. Marks are not modelled.
type InlineNode struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NodeAttrs carries the attributes of a prompt node, and the optional
// block id of a paragraph.
type NodeAttrs struct {
	ID        string   `json:"id,omitempty"`
	PromptID  string   `json:"promptId,omitempty"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"createdAt,omitempty"`
}

// EmptyTree returns a document holding a single empty paragraph
func EmptyTree() ContentTree {
	return ContentTree{
		Type:    NodeTypeDoc,
		Content: []TreeNode{Paragraph("")},
	}
}

// Paragraph builds a paragraph node; an empty string yields a paragraph
// with no inline children.
func Paragraph(text string) TreeNode {
	node := TreeNode{Type: NodeTypeParagraph}
	if text != "" {
		node.Content = []InlineNode{{Type: NodeTypeText, Text: text}}
	}
	return node
}

// ParagraphWithID builds a paragraph tagged with a block id
func ParagraphWithID(id, text string) TreeNode {
	node := Paragraph(text)
	if id != "" {
		node.Attrs = &NodeAttrs{ID: id}
	}
	return node
}

// PromptNode builds a prompt node carrying the block id and the snapshot
func PromptNode(id string, ref PromptRef) TreeNode {
	return TreeNode{
		Type: NodeTypePromptBlock,
		Attrs: &NodeAttrs{
			ID:        id,
			PromptID:  ref.SourceID,
			Title:     ref.Title,
			Content:   ref.Content,
			Tags:      copyTags(ref.Tags),
			CreatedAt: ref.CreatedAt,
		},
	}
}

// IsParagraph reports whether the node is a paragraph
func (n TreeNode) IsParagraph() bool {
	return n.Type == NodeTypeParagraph
}

// IsPrompt reports whether the node is a prompt node
func (n TreeNode) IsPrompt() bool {
	return n.Type == NodeTypePromptBlock
}

// AttrID returns the id attribute or "" when absent
func (n TreeNode) AttrID() string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs.ID
}

// Text concatenates the text of the node's inline children
func (n TreeNode) Text() string {
	if len(n.Content) == 1 {
		return n.Content[0].Text
	}
	var b strings.Builder
	for _, inline := range n.Content {
		b.WriteString(inline.Text)
	}
	return b.String()
}

// Ref extracts the prompt snapshot held in a prompt node's attributes
func (n TreeNode) Ref() PromptRef {
	if n.Attrs == nil {
		return NewPromptRef("", "", "", nil, 0)
	}
	return NewPromptRef(n.Attrs.PromptID, n.Attrs.Title, n.Attrs.Content, n.Attrs.Tags, n.Attrs.CreatedAt)
}
