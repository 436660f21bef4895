package services

import (
	"time"

	"promptbuilder/domain/core/aggregates"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
)

// DragSourceKind tells a block being reordered apart from a prompt
// dragged in from the library.
type DragSourceKind int

const (
	DragSourceBlock DragSourceKind = iota + 1
	DragSourcePrompt
)

// DragSource is what a drag carries
type DragSource struct {
	Kind    DragSourceKind
	BlockID valueobjects.BlockID
	Payload valueobjects.PromptPayload
}

// BlockSource drags an existing block of the document
func BlockSource(id valueobjects.BlockID) DragSource {
	return DragSource{Kind: DragSourceBlock, BlockID: id}
}

// PromptSource drags a prompt reference from outside the document
func PromptSource(payload valueobjects.PromptPayload) DragSource {
	return DragSource{Kind: DragSourcePrompt, Payload: payload}
}

// Ghost is the content snapshot rendered under the pointer while dragging
type Ghost struct {
	Title   string
	Content string
}

// DragSession tracks one drag gesture on one editing surface:
// Start, any number of Over calls, then exactly one Drop or Cancel.
// Over and Cancel never touch the document; Drop applies one mutation.
// A DragSession is not safe for concurrent use.
type DragSession struct {
	active    bool
	source    DragSource
	ghost     Ghost
	indicator int
	now       func() time.Time
}

// NewDragSession creates an idle session
func NewDragSession() *DragSession {
	return &DragSession{indicator: -1, now: time.Now}
}

// Start begins a drag. A block source must exist in doc; a prompt source
// must carry a well-formed payload. Returns false when no drag began.
func (s *DragSession) Start(doc aggregates.Document, source DragSource) bool {
	s.reset()

	switch source.Kind {
	case DragSourceBlock:
		b, ok := doc.Find(source.BlockID)
		if !ok {
			return false
		}
		s.ghost = ghostOf(b)
	case DragSourcePrompt:
		if err := source.Payload.Validate(); err != nil {
			return false
		}
		s.ghost = Ghost{Title: source.Payload.Title, Content: *source.Payload.Content}
	default:
		return false
	}

	s.active = true
	s.source = source
	return true
}

// Over moves the pointer and returns the gap the indicator sits at,
// or -1 when no drag is active.
func (s *DragSession) Over(pointerY float64, boxes []valueobjects.BoundingBox) int {
	if !s.active {
		return -1
	}
	s.indicator = ResolveInsertionIndex(pointerY, boxes)
	return s.indicator
}

// Drop ends the drag at the pointer position and returns the new document.
// Without an active drag the document is returned unchanged.
func (s *DragSession) Drop(doc aggregates.Document, pointerY float64, boxes []valueobjects.BoundingBox) aggregates.Document {
	if !s.active {
		return doc
	}
	defer s.reset()

	index := ResolveInsertionIndex(pointerY, boxes)

	switch s.source.Kind {
	case DragSourceBlock:
		return doc.Move(s.source.BlockID, index)
	case DragSourcePrompt:
		ref, err := s.source.Payload.ToRef(s.now())
		if err != nil {
			return doc
		}
		return doc.InsertPrompt(ref, index)
	}
	return doc
}

// Cancel abandons the drag
func (s *DragSession) Cancel() {
	s.reset()
}

// Active reports whether a drag is in progress
func (s *DragSession) Active() bool {
	return s.active
}

// Indicator returns the last resolved gap, if any
func (s *DragSession) Indicator() (int, bool) {
	if !s.active || s.indicator < 0 {
		return 0, false
	}
	return s.indicator, true
}

// Ghost returns the dragged content snapshot
func (s *DragSession) Ghost() (Ghost, bool) {
	return s.ghost, s.active
}

func (s *DragSession) reset() {
	s.active = false
	s.source = DragSource{}
	s.ghost = Ghost{}
	s.indicator = -1
}

func ghostOf(b entities.Block) Ghost {
	switch v := b.(type) {
	case entities.PromptBlock:
		return Ghost{Title: v.Title(), Content: v.Content()}
	case entities.TextBlock:
		return Ghost{Content: v.Content()}
	}
	return Ghost{}
}
