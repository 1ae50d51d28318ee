package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"billforge/internal/config"
	"billforge/internal/handler"
	"billforge/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	logger *zap.Logger,
	documentH *handler.DocumentHandler,
	clientH *handler.ClientHandler,
	productH *handler.ProductHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// All business routes require a resolved identity
	protected := v1.Group("")
	protected.Use(middleware.Identity())

	// Document routes
	documents := protected.Group("/documents")
	documents.POST("", documentH.Create)
	documents.GET("", documentH.List)
	documents.POST("/extract", documentH.Extract)
	documents.GET("/export", documentH.Export)
	documents.GET("/:id", documentH.GetByID)
	documents.PUT("/:id", documentH.Update)
	documents.PATCH("/:id/status", documentH.UpdateStatus)
	documents.DELETE("/:id", documentH.Delete)
	documents.GET("/:id/pdf", documentH.DownloadPDF)
	documents.POST("/:id/send", documentH.Send)

	// Client routes
	clients := protected.Group("/clients")
	clients.POST("", clientH.Create)
	clients.GET("", clientH.List)
	clients.POST("/match", clientH.Match)
	clients.GET("/:id", clientH.GetByID)
	clients.PUT("/:id", clientH.Update)
	clients.DELETE("/:id", clientH.Delete)

	// Product routes
	products := protected.Group("/products")
	products.POST("", productH.Create)
	products.GET("", productH.List)
	products.POST("/match", productH.Match)
	products.GET("/:id", productH.GetByID)
	products.PUT("/:id", productH.Update)
	products.DELETE("/:id", productH.Delete)

	return r
}
