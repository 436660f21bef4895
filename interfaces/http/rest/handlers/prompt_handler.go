package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"promptbuilder/application/commands"
	"promptbuilder/application/commands/bus"
	"promptbuilder/application/queries"
	querybus "promptbuilder/application/queries/bus"
	"promptbuilder/pkg/common"
	pkgerrors "promptbuilder/pkg/errors"
	"promptbuilder/pkg/utils"
)

// PromptHandler handles the saved-prompt library
type PromptHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PromptHandler {
	return &PromptHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// CreatePromptRequest represents the request body for saving a prompt
type CreatePromptRequest struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
}

// UpdatePromptRequest represents the request body for editing a prompt.
// Absent fields are left unchanged.
type UpdatePromptRequest struct {
	Title   *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=30"`
}

// ListPrompts handles GET /prompts
func (h *PromptHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	q := r.URL.Query()
	result, err := h.queryBus.Ask(r.Context(), queries.ListPromptsQuery{
		UserID:     userID,
		Search:     q.Get("search"),
		Tag:        q.Get("tag"),
		Pagination: common.ExtractPaginationParams(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// CreatePrompt handles POST /prompts
func (h *PromptHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req CreatePromptRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	promptID := uuid.New().String()
	cmd := commands.SavePromptCommand{
		UserID:   userID,
		PromptID: promptID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondPrompt(w, r, userID, promptID, http.StatusCreated)
}

// GetPrompt handles GET /prompts/{promptID}
func (h *PromptHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondPrompt(w, r, userID, chi.URLParam(r, "promptID"), http.StatusOK)
}

// UpdatePrompt handles PUT /prompts/{promptID}
func (h *PromptHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req UpdatePromptRequest
	if err := decodeBody(w, r, &req, 0); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	promptID := chi.URLParam(r, "promptID")
	cmd := commands.UpdatePromptCommand{
		UserID:   userID,
		PromptID: promptID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respondPrompt(w, r, userID, promptID, http.StatusOK)
}

// DeletePrompt handles DELETE /prompts/{promptID}
func (h *PromptHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := commands.DeletePromptCommand{UserID: userID, PromptID: chi.URLParam(r, "promptID")}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

// ListTags handles GET /tags
func (h *PromptHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListTagsQuery{UserID: userID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// respondPrompt reads the prompt back through the query side
func (h *PromptHandler) respondPrompt(w http.ResponseWriter, r *http.Request, userID, promptID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPromptQuery{UserID: userID, PromptID: promptID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, result)
}
