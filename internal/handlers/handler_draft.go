package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/gin-gonic/gin"
)

// draftHandler serves the draft review workflow: create, edit, approve, post.
type draftHandler struct {
	draftService portssvc.DraftSvcFacade
}

func newDraftHandler(ds portssvc.DraftSvcFacade) *draftHandler {
	return &draftHandler{draftService: ds}
}

func registerDraftRoutes(rg *gin.RouterGroup, draftService portssvc.DraftSvcFacade) {
	registerValidators()
	h := newDraftHandler(draftService)

	drafts := rg.Group("/drafts")
	{
		drafts.POST("", h.createDraft)
		drafts.GET("", h.listDrafts)
		drafts.GET("/:id", h.getDraft)
		drafts.PUT("/:id", h.editDraft)
		drafts.POST("/:id/approve", h.approveDraft)
		drafts.POST("/:id/post", h.postDraft)
	}
}

// createDraft godoc
// @Summary Create a draft
// @Description Stores the intent and entities extracted from a prompt as a draft awaiting review.
// @Tags drafts
// @Accept  json
// @Produce  json
// @Param   draft body dto.CreateDraftRequest true "Intent and entities"
// @Success 201 {object} dto.DraftResponse
// @Failure 400 {object} map[string]string "Invalid draft payload"
// @Failure 403 {object} map[string]string "Role may not create drafts"
// @Security BearerAuth
// @Router /drafts [post]
func (h *draftHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	draft, err := h.draftService.CreateDraft(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to create draft")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDraftResponse(draft))
}

// listDrafts godoc
// @Summary List drafts
// @Tags drafts
// @Produce  json
// @Param   status query string false "Filter by status" Enums(draft, approved, posted)
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListDraftsResponse
// @Security BearerAuth
// @Router /drafts [get]
func (h *draftHandler) listDrafts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListDraftsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListDrafts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	drafts, next, err := h.draftService.ListDrafts(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list drafts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListDraftsResponse(drafts, next))
}

// getDraft godoc
// @Summary Get a draft
// @Tags drafts
// @Produce  json
// @Param   id path string true "Draft ID"
// @Success 200 {object} dto.DraftResponse
// @Failure 404 {object} map[string]string "Draft not found"
// @Security BearerAuth
// @Router /drafts/{id} [get]
func (h *draftHandler) getDraft(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	draft, err := h.draftService.GetDraft(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve draft")
		return
	}
	c.JSON(http.StatusOK, dto.ToDraftResponse(draft))
}

// editDraft godoc
// @Summary Edit a draft
// @Description Any content change on an approved draft sends it back to draft status. Posted drafts are immutable.
// @Tags drafts
// @Accept  json
// @Produce  json
// @Param   id path string true "Draft ID"
// @Param   changes body dto.UpdateDraftRequest true "Fields to change"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} map[string]string "Invalid draft payload"
// @Failure 409 {object} map[string]string "Draft is posted or was changed concurrently"
// @Security BearerAuth
// @Router /drafts/{id} [put]
func (h *draftHandler) editDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for EditDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	draft, err := h.draftService.EditDraft(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to edit draft")
		return
	}
	c.JSON(http.StatusOK, dto.ToDraftResponse(draft))
}

// approveDraft godoc
// @Summary Approve a draft
// @Tags drafts
// @Produce  json
// @Param   id path string true "Draft ID"
// @Success 200 {object} dto.DraftResponse
// @Failure 403 {object} map[string]string "Role may not approve"
// @Failure 409 {object} map[string]string "Draft already posted"
// @Security BearerAuth
// @Router /drafts/{id}/approve [post]
func (h *draftHandler) approveDraft(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	draft, err := h.draftService.ApproveDraft(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to approve draft")
		return
	}
	c.JSON(http.StatusOK, dto.ToDraftResponse(draft))
}

// postDraft godoc
// @Summary Post an approved draft to the ledger
// @Description Idempotent: posting a posted draft returns the existing journal entry id.
// @Tags drafts
// @Produce  json
// @Param   id path string true "Draft ID"
// @Success 200 {object} dto.PostDraftResponse
// @Failure 400 {object} map[string]string "Unbalanced entry or intent does not post"
// @Failure 409 {object} map[string]string "Draft not approved"
// @Failure 422 {object} map[string]interface{} "Chart of accounts cannot serve the intent"
// @Failure 500 {object} map[string]string "Write failed"
// @Security BearerAuth
// @Router /drafts/{id}/post [post]
func (h *draftHandler) postDraft(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	draftID := c.Param("id")
	entryID, err := h.draftService.PostDraft(c.Request.Context(), actor, draftID)
	if err != nil {
		respondError(c, err, "Failed to post draft")
		return
	}
	c.JSON(http.StatusOK, dto.PostDraftResponse{DraftID: draftID, EntryID: entryID})
}
