package handlers

import (
	"net/http"

	"github.com/SscSPs/prompt_books/cmd/docs"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/SscSPs/prompt_books/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// metricsHandler may be nil, in which case /metrics is not served.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	metricsHandler http.Handler,
	apiMiddleware ...gin.HandlerFunc,
) {
	r.GET("/health", getHealth)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	setupAPIV1Routes(r, cfg, services, apiMiddleware...)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations.
// Extra middleware runs after authentication so it can see the actor.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {
	chain := append([]gin.HandlerFunc{middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)}, apiMiddleware...)
	v1 := r.Group("/api/v1", chain...)

	registerAccountRoutes(v1, service.Account)
	registerMappingRoutes(v1, service.Mapping)
	registerDraftRoutes(v1, service.Draft)
	registerJournalRoutes(v1, service.Journal)
	registerAuditRoutes(v1, service.Audit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
