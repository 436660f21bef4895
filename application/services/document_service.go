package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"promptbuilder/application/ports"
	"promptbuilder/domain/config"
	"promptbuilder/domain/core/aggregates"
	"promptbuilder/domain/core/valueobjects"
	domainservices "promptbuilder/domain/services"
	pkgerrors "promptbuilder/pkg/errors"
)

// DocumentMetrics receives one sample per document operation
type DocumentMetrics interface {
	RecordDocumentOperation(operation string, applied bool)
}

// DocumentService runs the block engine over a document supplied by the
// client. It holds no document state and is called directly by the HTTP
// layer, without going through the command bus, because nothing is persisted.
type DocumentService struct {
	prompts ports.PromptRepository
	metrics DocumentMetrics
	cfg     *config.DomainConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewDocumentService creates a new document service. metrics may be nil.
func NewDocumentService(
	prompts ports.PromptRepository,
	metrics DocumentMetrics,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		prompts: prompts,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Result is the outcome of one document operation. Applied is false when
// the operation was a no-op: a malformed payload, an unknown block or a
// move onto the block's own position.
type Result struct {
	Document aggregates.Document
	Applied  bool
	Index    int
	Cursor   *aggregates.Cursor
}

// Tree returns the result in its persisted form
func (r Result) Tree() valueobjects.ContentTree {
	return domainservices.TreeFromDocument(r.Document)
}

// Load decodes a content tree into a document, enforcing the size limit
func (s *DocumentService) Load(tree valueobjects.ContentTree) (aggregates.Document, error) {
	doc := domainservices.DocumentFromTree(tree)
	if doc.Len() > s.cfg.MaxBlocksPerDocument {
		return aggregates.Document{}, s.tooLarge(doc.Len())
	}
	return doc, nil
}

func (s *DocumentService) tooLarge(n int) error {
	return pkgerrors.NewValidationError(fmt.Sprintf("document exceeds %d blocks", s.cfg.MaxBlocksPerDocument)).
		WithCode(pkgerrors.CodeDocumentTooLarge).
		WithDetails(map[string]interface{}{"blocks": n})
}

// Move reorders a block to a gap index
func (s *DocumentService) Move(tree valueobjects.ContentTree, sourceID string, dest int) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	id, ok := parseBlockID(sourceID)
	if !ok {
		return s.done("move", doc, doc, dest), nil
	}
	return s.done("move", doc, doc.Move(id, dest), dest), nil
}

// DropBlock finishes a reorder drag: the pointer position is resolved
// against the rendered boxes and the block is moved there.
func (s *DocumentService) DropBlock(tree valueobjects.ContentTree, sourceID string, pointerY float64, boxes []valueobjects.BoundingBox) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	index := domainservices.ResolveInsertionIndex(pointerY, boxes)
	id, ok := parseBlockID(sourceID)
	if !ok {
		return s.done("move", doc, doc, index), nil
	}

	session := domainservices.NewDragSession()
	if !session.Start(doc, domainservices.BlockSource(id)) {
		return s.done("move", doc, doc, index), nil
	}
	return s.done("move", doc, session.Drop(doc, pointerY, boxes), index), nil
}

// InsertPrompt inserts a prompt reference at an index. A malformed payload
// leaves the document unchanged.
func (s *DocumentService) InsertPrompt(tree valueobjects.ContentTree, payload valueobjects.PromptPayload, at int) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	ref, err := payload.ToRef(s.now())
	if err != nil {
		s.logger.Debug("Ignoring malformed prompt reference", zap.Error(err))
		return s.done("insert", doc, doc, clamp(at, doc.Len())), nil
	}
	return s.done("insert", doc, doc.InsertPrompt(ref, at), clamp(at, doc.Len())), nil
}

// AppendPrompt inserts a prompt reference at the end of the document
func (s *DocumentService) AppendPrompt(tree valueobjects.ContentTree, payload valueobjects.PromptPayload) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	return s.InsertPrompt(tree, payload, doc.Len())
}

// DropPrompt finishes a drag from the prompt library at the pointer position
func (s *DocumentService) DropPrompt(tree valueobjects.ContentTree, payload valueobjects.PromptPayload, pointerY float64, boxes []valueobjects.BoundingBox) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	index := domainservices.ResolveInsertionIndex(pointerY, boxes)

	session := domainservices.NewDragSession()
	if !session.Start(doc, domainservices.PromptSource(payload)) {
		s.logger.Debug("Ignoring drop of malformed prompt reference")
		return s.done("insert", doc, doc, index), nil
	}
	return s.done("insert", doc, session.Drop(doc, pointerY, boxes), index), nil
}

// InsertPromptFromSaved snapshots one of the user's saved prompts into the
// document. A nil index appends.
func (s *DocumentService) InsertPromptFromSaved(ctx context.Context, userID, promptID string, tree valueobjects.ContentTree, at *int) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	prompt, err := s.prompts.GetByID(ctx, userID, promptID)
	if err != nil {
		return Result{}, err
	}

	index := doc.Len()
	if at != nil {
		index = clamp(*at, doc.Len())
	}
	return s.done("insert", doc, doc.InsertPrompt(prompt.ToRef(), index), index), nil
}

// RemoveBlock deletes a prompt block by id
func (s *DocumentService) RemoveBlock(tree valueobjects.ContentTree, blockID string) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	id, ok := parseBlockID(blockID)
	if !ok {
		return s.done("remove", doc, doc, -1), nil
	}
	return s.done("remove", doc, doc.RemoveBlock(id), doc.IndexOf(id)), nil
}

// Backspace applies the backspace rule at offset 0 of a text block
func (s *DocumentService) Backspace(tree valueobjects.ContentTree, cursorBlockID string) (Result, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return Result{}, err
	}
	id, ok := parseBlockID(cursorBlockID)
	if !ok {
		return s.done("backspace", doc, doc, -1), nil
	}

	next, cursor, handled := doc.Backspace(id)
	res := Result{Document: next, Applied: handled, Index: doc.IndexOf(id)}
	if handled {
		res.Cursor = &cursor
	}
	s.record("backspace", handled)
	return res, nil
}

// Resolve maps a pointer position to a gap index
func (s *DocumentService) Resolve(pointerY float64, boxes []valueobjects.BoundingBox) int {
	return domainservices.ResolveInsertionIndex(pointerY, boxes)
}

// Export flattens the document to plain text
func (s *DocumentService) Export(tree valueobjects.ContentTree) (string, error) {
	doc, err := s.Load(tree)
	if err != nil {
		return "", err
	}
	s.record("export", true)
	return domainservices.PlainTextOf(doc.Blocks()), nil
}

// HasContent reports whether the document is worth saving
func (s *DocumentService) HasContent(tree valueobjects.ContentTree) bool {
	return domainservices.DocumentFromTree(tree).HasContent()
}

func (s *DocumentService) done(op string, before, after aggregates.Document, index int) Result {
	applied := changed(before, after)
	s.record(op, applied)
	return Result{Document: after, Applied: applied, Index: index}
}

func (s *DocumentService) record(op string, applied bool) {
	if s.metrics != nil {
		s.metrics.RecordDocumentOperation(op, applied)
	}
}

// changed compares block identity and order; the engine never edits
// content in the operations routed through here.
func changed(a, b aggregates.Document) bool {
	if a.Len() != b.Len() {
		return true
	}
	for i := 0; i < a.Len(); i++ {
		if !a.At(i).ID().Equals(b.At(i).ID()) {
			return true
		}
	}
	return false
}

func parseBlockID(raw string) (valueobjects.BlockID, bool) {
	id, err := valueobjects.NewBlockIDFromString(raw)
	if err != nil {
		return valueobjects.BlockID{}, false
	}
	return id, true
}

func clamp(i, n int) int {
	return max(0, min(i, n))
}
