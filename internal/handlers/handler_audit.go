package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := &auditHandler{auditService: auditService}
	rg.GET("/audit", h.listAuditEvents)
}

// listAuditEvents godoc
// @Summary List audit events
// @Description Newest first, optionally narrowed to one entity.
// @Tags audit
// @Produce  json
// @Param   entity query string false "Entity kind, e.g. draft or journal_entry"
// @Param   entityID query string false "Entity ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListAuditResponse
// @Security BearerAuth
// @Router /audit [get]
func (h *auditHandler) listAuditEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAuditEvents", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	events, next, err := h.auditService.ListAuditEvents(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err, "Failed to list audit events")
		return
	}
	c.JSON(http.StatusOK, dto.ListAuditResponse{Events: events, NextToken: next})
}
