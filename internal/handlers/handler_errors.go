package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/gin-gonic/gin"
)

// errorStatus maps an engine error to its HTTP status.
func errorStatus(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrPartialWrite):
		return http.StatusInternalServerError
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.As(err, &appErr) && appErr.Code >= 400:
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": msg}. Business refusals keep their message since it
// names the offending amounts, codes or statuses; internal failures get fallback instead.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := errorStatus(err)
	body := gin.H{"error": err.Error()}

	var cfgErr *apperrors.ConfigurationError
	if errors.As(err, &cfgErr) {
		body["missingCodes"] = cfgErr.MissingCodes
		body["remediation"] = cfgErr.Remediation
	}

	switch {
	case errors.Is(err, apperrors.ErrPartialWrite):
		logger.Error(fallback, slog.String("error", err.Error()))
	case status >= http.StatusInternalServerError:
		logger.Error(fallback, slog.String("error", err.Error()))
		body = gin.H{"error": fallback}
	default:
		logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	}
	c.JSON(status, body)
}

// requireActor fetches the authenticated actor or aborts with 401.
func requireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Actor not found in context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}
