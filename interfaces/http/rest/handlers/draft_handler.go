package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"promptbuilder/application/commands"
	"promptbuilder/application/commands/bus"
	"promptbuilder/application/queries"
	querybus "promptbuilder/application/queries/bus"
	"promptbuilder/application/services"
	"promptbuilder/domain/core/valueobjects"
	"promptbuilder/pkg/common"
	pkgerrors "promptbuilder/pkg/errors"
)

// DraftHandler handles the auto-saved draft history
type DraftHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	documents  *services.DocumentService
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	documents *services.DocumentService,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *DraftHandler {
	return &DraftHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		documents:  documents,
		errors:     errorHandler,
		logger:     logger,
	}
}

// SaveDraftRequest is the auto-save payload
type SaveDraftRequest struct {
	Title    string                   `json:"title"`
	Document valueobjects.ContentTree `json:"document"`
}

// SaveDraftResponse reports whether anything was stored. Empty documents
// are not saved.
type SaveDraftResponse struct {
	ID    string                `json:"id"`
	Saved bool                  `json:"saved"`
	Draft *queries.DraftSummary `json:"draft,omitempty"`
}

// ListDrafts handles GET /drafts
func (h *DraftHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListDraftsQuery{
		UserID: userID,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetDraft handles GET /drafts/{draftID}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetDraftQuery{
		UserID:  userID,
		DraftID: chi.URLParam(r, "draftID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// SaveDraft handles PUT /drafts/{draftID}
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req SaveDraftRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	draftID := chi.URLParam(r, "draftID")
	if !h.documents.HasContent(req.Document) {
		common.RespondJSON(w, http.StatusOK, SaveDraftResponse{ID: draftID, Saved: false})
		return
	}

	cmd := commands.SaveDraftCommand{
		UserID:   userID,
		DraftID:  draftID,
		Title:    req.Title,
		Document: req.Document,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := SaveDraftResponse{ID: draftID, Saved: true}
	if result, err := h.queryBus.Ask(r.Context(), queries.GetDraftQuery{UserID: userID, DraftID: draftID}); err == nil {
		if view, ok := result.(*queries.DraftView); ok {
			resp.Draft = &view.DraftSummary
		}
	} else {
		h.logger.Warn("Saved draft could not be read back", zap.String("draftID", draftID), zap.Error(err))
	}

	common.RespondJSON(w, http.StatusOK, resp)
}

// DeleteDraft handles DELETE /drafts/{draftID}
func (h *DraftHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := commands.DeleteDraftCommand{UserID: userID, DraftID: chi.URLParam(r, "draftID")}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}
