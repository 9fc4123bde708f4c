package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/gin-gonic/gin"
)

type mappingHandler struct {
	mappingService portssvc.MappingSvcFacade
}

func newMappingHandler(ms portssvc.MappingSvcFacade) *mappingHandler {
	return &mappingHandler{mappingService: ms}
}

func registerMappingRoutes(rg *gin.RouterGroup, mappingService portssvc.MappingSvcFacade) {
	h := newMappingHandler(mappingService)

	mappings := rg.Group("/mappings")
	{
		mappings.PUT("/:intent", h.upsertMapping)
		mappings.GET("/:intent", h.getMapping)
		mappings.GET("/:intent/resolved", h.resolveMapping)
	}
}

// upsertMapping godoc
// @Summary Save an explicit intent mapping
// @Description Overrides the code-based fallback for create_invoice, create_bill or record_payment.
// @Tags mappings
// @Accept  json
// @Produce  json
// @Param   intent path string true "Intent" Enums(create_invoice, create_bill, record_payment)
// @Param   mapping body dto.UpsertMappingRequest true "Account slots"
// @Success 200 {object} dto.MappingResponse
// @Failure 400 {object} map[string]string "Invalid mapping"
// @Failure 403 {object} map[string]string "Role may not change mappings"
// @Security BearerAuth
// @Router /mappings/{intent} [put]
func (h *mappingHandler) upsertMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpsertMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertMapping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	mapping, err := h.mappingService.UpsertMapping(c.Request.Context(), actor, domain.Intent(c.Param("intent")), req)
	if err != nil {
		respondError(c, err, "Failed to save mapping")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingResponse(mapping))
}

// getMapping godoc
// @Summary Get the explicit mapping of an intent
// @Tags mappings
// @Produce  json
// @Param   intent path string true "Intent"
// @Success 200 {object} dto.MappingResponse
// @Failure 404 {object} map[string]string "No explicit mapping"
// @Security BearerAuth
// @Router /mappings/{intent} [get]
func (h *mappingHandler) getMapping(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	mapping, err := h.mappingService.GetMapping(c.Request.Context(), actor, domain.Intent(c.Param("intent")))
	if err != nil {
		respondError(c, err, "Failed to retrieve mapping")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingResponse(mapping))
}

// resolveMapping godoc
// @Summary Preview the accounts an intent would post to
// @Description Runs the same resolution as posting: explicit mapping first, then the code conventions.
// @Tags mappings
// @Produce  json
// @Param   intent path string true "Intent"
// @Success 200 {object} dto.ResolvedMappingResponse
// @Failure 422 {object} map[string]interface{} "Chart of accounts cannot serve the intent"
// @Security BearerAuth
// @Router /mappings/{intent}/resolved [get]
func (h *mappingHandler) resolveMapping(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	intent := domain.Intent(c.Param("intent"))
	if !intent.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown intent " + string(intent)})
		return
	}
	mapping, err := h.mappingService.Resolve(c.Request.Context(), actor.TenantID, intent)
	if err != nil {
		respondError(c, err, "Failed to resolve mapping")
		return
	}
	c.JSON(http.StatusOK, dto.ResolvedMappingResponse{Intent: intent, Mapping: mapping})
}
