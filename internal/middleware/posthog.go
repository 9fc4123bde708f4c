package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/prompt_books/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedPaths are never sent to PostHog.
var untrackedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// PosthogMiddleware records one product-analytics event per successful authenticated
// request, named after the route template ("/api/v1/drafts/:id/post" -> "api_v1_drafts_id_post").
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || untrackedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		actor, ok := GetActorFromContext(c)
		if !ok {
			return
		}
		eventName := routeEventName(c.FullPath())
		if eventName == "" {
			return
		}

		posthogClient.Enqueue(actor.UserID, eventName, map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
			"tenant_id":   actor.TenantID,
			"role":        string(actor.Role),
		})
	}
}

func routeEventName(fullPath string) string {
	name := strings.TrimPrefix(fullPath, "/")
	name = strings.ReplaceAll(name, ":", "")
	return strings.ReplaceAll(name, "/", "_")
}
