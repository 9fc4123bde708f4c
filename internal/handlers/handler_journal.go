package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// registerJournalRoutes registers journal specific routes
func registerJournalRoutes(group *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := group.Group("/journals")
	{
		journals.POST("", h.createManualJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:id", h.getJournal)
	}
}

// createManualJournal godoc
// @Summary Post a manual journal entry
// @Description Posts hand-entered lines without a draft. Lines must balance and use active accounts.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.ManualJournalRequest true "Entry and lines"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Unbalanced or invalid lines"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Role may not post"
// @Failure 500 {object} map[string]string "Failed to post journal"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createManualJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ManualJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateManualJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	entry, err := h.journalService.CreateManualJournalEntry(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "Failed to post journal")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalResponse(entry))
}

// getJournal godoc
// @Summary Get a journal entry and its lines
// @Tags journals
// @Produce  json
// @Param   id path string true "Journal entry ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to retrieve journal"
// @Security BearerAuth
// @Router /journals/{id} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	entry, err := h.journalService.GetJournalEntry(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// listJournals godoc
// @Summary List journal entries
// @Description Newest entry date first.
// @Tags journals
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListJournals", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	entries, next, err := h.journalService.ListJournalEntries(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list journals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListJournalsResponse(entries, next))
}
