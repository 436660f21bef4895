package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"promptbuilder/application/commands"
	"promptbuilder/application/commands/bus"
	"promptbuilder/application/queries"
	querybus "promptbuilder/application/queries/bus"
	"promptbuilder/application/services"
	"promptbuilder/domain/core/aggregates"
	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
	"promptbuilder/pkg/common"
	pkgerrors "promptbuilder/pkg/errors"
	"promptbuilder/pkg/utils"
)

// DocumentHandler exposes the block engine. The client sends its current
// document with every request and receives the replacement document back.
type DocumentHandler struct {
	documents  *services.DocumentService
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	documents *services.DocumentService,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documents:  documents,
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// DocumentRequest carries the client's current document
type DocumentRequest struct {
	Document valueobjects.ContentTree `json:"document"`
}

// MoveRequest moves a block either to an explicit gap index or to the gap
// under the pointer
type MoveRequest struct {
	DocumentRequest
	SourceID string                     `json:"sourceId"`
	Index    *int                       `json:"index,omitempty"`
	PointerY *float64                   `json:"pointerY,omitempty"`
	Boxes    []valueobjects.BoundingBox `json:"boxes,omitempty"`
}

// InsertRequest inserts a prompt reference. PromptID snapshots a saved
// prompt; otherwise Prompt is the dragged payload. Without an index or a
// pointer the prompt is appended.
type InsertRequest struct {
	DocumentRequest
	PromptID string                      `json:"promptId,omitempty"`
	Prompt   *valueobjects.PromptPayload `json:"prompt,omitempty"`
	Index    *int                        `json:"index,omitempty"`
	PointerY *float64                    `json:"pointerY,omitempty"`
	Boxes    []valueobjects.BoundingBox  `json:"boxes,omitempty"`
}

// BlockRequest targets one block of the document
type BlockRequest struct {
	DocumentRequest
	BlockID string `json:"blockId"`
}

// ResolveRequest maps a pointer position to a gap index
type ResolveRequest struct {
	PointerY float64                    `json:"pointerY"`
	Boxes    []valueobjects.BoundingBox `json:"boxes"`
}

// SaveAsPromptRequest saves the flattened document as a new prompt
type SaveAsPromptRequest struct {
	DocumentRequest
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
}

// DocumentResponse is the document after an operation. Applied is false
// when the request was a no-op.
type DocumentResponse struct {
	Document valueobjects.ContentTree `json:"document"`
	Blocks   []entities.Block         `json:"blocks"`
	Applied  bool                     `json:"applied"`
	Index    int                      `json:"index"`
	Cursor   *aggregates.Cursor       `json:"cursor,omitempty"`
}

func toResponse(res services.Result) DocumentResponse {
	return DocumentResponse{
		Document: res.Tree(),
		Blocks:   res.Document.Blocks(),
		Applied:  res.Applied,
		Index:    res.Index,
		Cursor:   res.Cursor,
	}
}

func (h *DocumentHandler) respond(w http.ResponseWriter, r *http.Request, res services.Result, err error) {
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toResponse(res))
}

// Normalize handles POST /documents/normalize
func (h *DocumentHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	doc, err := h.documents.Load(req.Document)
	h.respond(w, r, services.Result{Document: doc, Index: -1}, err)
}

// Move handles POST /documents/move
func (h *DocumentHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	switch {
	case req.Index != nil:
		res, err := h.documents.Move(req.Document, req.SourceID, *req.Index)
		h.respond(w, r, res, err)
	case req.PointerY != nil:
		res, err := h.documents.DropBlock(req.Document, req.SourceID, *req.PointerY, req.Boxes)
		h.respond(w, r, res, err)
	default:
		h.errors.Handle(w, r, pkgerrors.NewValidationError("index or pointerY is required"))
	}
}

// Insert handles POST /documents/insert
func (h *DocumentHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if req.PromptID != "" {
		userID, err := currentUser(r)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		at := req.Index
		if req.PointerY != nil {
			index := h.documents.Resolve(*req.PointerY, req.Boxes)
			at = &index
		}
		res, err := h.documents.InsertPromptFromSaved(r.Context(), userID, req.PromptID, req.Document, at)
		h.respond(w, r, res, err)
		return
	}

	var payload valueobjects.PromptPayload
	if req.Prompt != nil {
		payload = *req.Prompt
	}

	var (
		res services.Result
		err error
	)
	switch {
	case req.PointerY != nil:
		res, err = h.documents.DropPrompt(req.Document, payload, *req.PointerY, req.Boxes)
	case req.Index != nil:
		res, err = h.documents.InsertPrompt(req.Document, payload, *req.Index)
	default:
		res, err = h.documents.AppendPrompt(req.Document, payload)
	}
	h.respond(w, r, res, err)
}

// Remove handles POST /documents/remove
func (h *DocumentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	res, err := h.documents.RemoveBlock(req.Document, req.BlockID)
	h.respond(w, r, res, err)
}

// Backspace handles POST /documents/backspace
func (h *DocumentHandler) Backspace(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	res, err := h.documents.Backspace(req.Document, req.BlockID)
	h.respond(w, r, res, err)
}

// Resolve handles POST /documents/resolve
func (h *DocumentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]int{
		"index": h.documents.Resolve(req.PointerY, req.Boxes),
	})
}

// Export handles POST /documents/export
func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	text, err := h.documents.Export(req.Document)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"text": text})
}

// SaveAsPrompt handles POST /documents/save-as-prompt. Title and the
// flattened text are trimmed and both must be non-empty.
func (h *DocumentHandler) SaveAsPrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req SaveAsPromptRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	text, err := h.documents.Export(req.Document)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	text = strings.TrimSpace(text)
	if title == "" || text == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("a prompt needs a title and content"))
		return
	}

	promptID := uuid.New().String()
	cmd := commands.SavePromptCommand{
		UserID:   userID,
		PromptID: promptID,
		Title:    title,
		Content:  text,
		Tags:     req.Tags,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetPromptQuery{UserID: userID, PromptID: promptID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}
